package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. BASTION_ALGO_SEED.
const EnvPrefix = "BASTION"

type Config struct {
	Log  LogConfig  `mapstructure:"log"`
	Algo AlgoConfig `mapstructure:"algo"`
}

// LogConfig controls the zap logger. An empty File keeps logging on stderr only,
// since stdout belongs to the engine protocol.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
	Dev        bool   `mapstructure:"dev"`
}

type AlgoConfig struct {
	// Seed fixes the random source for the whole process. Zero means seed from the clock.
	Seed             uint64 `mapstructure:"seed"`
	SuppressWarnings bool   `mapstructure:"suppress_warnings"`
}

// ReloadFunc receives the re-read config after the watched file changes.
type ReloadFunc func(cfg Config, err error)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.dev", false)
	v.SetDefault("algo.seed", 0)
	v.SetDefault("algo.suppress_warnings", false)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("bastion", pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.Uint64("seed", 0, "random seed for attacker placement (0 = clock)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	return fs
}

// Source keeps the layered viper instance behind a loaded Config so the
// config file can be watched once the caller is ready for reloads.
type Source struct {
	v    *viper.Viper
	path string
}

// Path is the config file in use, or "" when none was given.
func (s *Source) Path() string { return s.path }

// Watch calls onReload with the re-read config on every change to the config
// file. It reports false and does nothing when no file was given.
func (s *Source) Watch(onReload ReloadFunc) bool {
	if s.path == "" || onReload == nil {
		return false
	}
	s.v.OnConfigChange(func(fsnotify.Event) {
		var cfg Config
		err := s.v.Unmarshal(&cfg)
		onReload(cfg, err)
	})
	s.v.WatchConfig()
	return true
}

// Load layers defaults, an optional config file, BASTION_* env vars and
// command-line flags. Nothing is watched until Watch is called on the
// returned Source.
func Load(args []string) (Config, *Source, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlag("algo.seed", fs.Lookup("seed")); err != nil {
		return Config{}, nil, fmt.Errorf("bind seed flag: %w", err)
	}
	if err := v.BindPFlag("log.level", fs.Lookup("log-level")); err != nil {
		return Config{}, nil, fmt.Errorf("bind log-level flag: %w", err)
	}

	path, _ := fs.GetString("config")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, &Source{v: v, path: path}, nil
}
