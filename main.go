package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nstehr/bastion/agent"
	"github.com/nstehr/bastion/config"
	"github.com/nstehr/bastion/ipc"
	"github.com/nstehr/bastion/logs"
	"github.com/nstehr/bastion/rules"
)

const banner = `
██████╗  █████╗ ███████╗████████╗██╗ ██████╗ ███╗   ██╗
██╔══██╗██╔══██╗██╔════╝╚══██╔══╝██║██╔═══██╗████╗  ██║
██████╔╝███████║███████╗   ██║   ██║██║   ██║██╔██╗ ██║
██╔══██╗██╔══██║╚════██║   ██║   ██║██║   ██║██║╚██╗██║
██████╔╝██║  ██║███████║   ██║   ██║╚██████╔╝██║ ╚████║
╚═════╝ ╚═╝  ╚═╝╚══════╝   ╚═╝   ╚═╝ ╚═════╝ ╚═╝  ╚═══╝

Fixed-Fortress Terminal Algo`

func main() {
	cfg, src, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	if err := logs.Init("bastion", cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer logs.Sync()

	// Reloads touch the logger, so the watcher only starts once it exists.
	if src.Watch(reloadLogLevel) {
		logs.Debug("watching config", zap.String("path", src.Path()))
	}

	// stdout is the command channel; everything human-facing goes to stderr.
	fmt.Fprintln(os.Stderr, banner)

	var opts []rules.Option
	if cfg.Algo.Seed != 0 {
		opts = append(opts, rules.WithSeed(cfg.Algo.Seed))
	}
	engine, err := rules.NewEngine(rules.DefaultRules(), opts...)
	if err != nil {
		logs.Error("failed to build rule engine", zap.Error(err))
		logs.Sync()
		os.Exit(1)
	}

	logs.Info("starting bastion", zap.Uint64("seed", engine.Seed()), zap.String("logLevel", logs.Level().String()))

	conn := ipc.NewConnection(os.Stdin, os.Stdout, nil)
	a := agent.New(conn, engine)
	a.SuppressWarnings(cfg.Algo.SuppressWarnings)
	conn.RegisterHandler(ipc.FrameConfig, a.HandleConfig)
	conn.RegisterHandler(ipc.FrameTurnState, a.HandleTurn)

	if err := conn.ReadLoop(); err != nil {
		logs.Error("game aborted", zap.Error(err))
		logs.Sync()
		os.Exit(1)
	}
	logs.Info("shutting down")
}

func reloadLogLevel(cfg config.Config, err error) {
	if err != nil {
		logs.Warn("config reload failed", zap.Error(err))
		return
	}
	logs.SetLevel(cfg.Log.Level)
	logs.Info("log level reloaded", zap.String("level", logs.Level().String()))
}
