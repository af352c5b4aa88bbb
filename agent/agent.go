package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nstehr/bastion/ipc"
	"github.com/nstehr/bastion/logs"
	"github.com/nstehr/bastion/model"
	"github.com/nstehr/bastion/rules"
)

var (
	ErrNotConfigured = errors.New("turn state received before game config")
	ErrUnknownPhase  = errors.New("unknown turn phase")
)

// Agent owns the decisions for a single game.
type Agent struct {
	Conn    rules.CommandWriter
	Engine  *rules.Engine
	Session string

	registry *rules.Registry
	quiet    bool
	log      *zap.Logger
}

func New(conn rules.CommandWriter, engine *rules.Engine) *Agent {
	return &Agent{Conn: conn, Engine: engine, log: logs.L()}
}

// SuppressWarnings is applied to every turn's board.
func (a *Agent) SuppressWarnings(quiet bool) {
	a.quiet = quiet
}

// HandleConfig binds the unit roles from the game-start frame. A config the
// planner cannot work with ends the game.
func (a *Agent) HandleConfig(frame []byte) error {
	var cfg model.GameConfig
	if err := json.Unmarshal(frame, &cfg); err != nil {
		return fmt.Errorf("unmarshal game config: %w", err)
	}
	reg, err := rules.NewRegistry(cfg)
	if err != nil {
		return err
	}

	a.registry = &reg
	a.Session = uuid.NewString()
	a.log = logs.L().With(zap.String("session", a.Session))
	a.log.Info("configuring fortress strategy",
		zap.String("wall", reg.Shorthand(rules.Wall)),
		zap.String("economy", reg.Shorthand(rules.Economy)),
		zap.String("defense", reg.Shorthand(rules.Defense)),
		zap.String("fast", reg.Shorthand(rules.FastAttacker)),
		zap.String("area", reg.Shorthand(rules.AreaAttacker)),
		zap.String("debuff", reg.Shorthand(rules.DebuffAttacker)),
		zap.Uint64("seed", a.Engine.Seed()),
	)
	return nil
}

// HandleTurn plans and submits on deploy frames, ignores action frames and
// reports ipc.ErrGameOver on the end frame.
func (a *Agent) HandleTurn(frame []byte) error {
	ts, err := model.ParseTurnState(frame)
	if err != nil {
		return err
	}

	switch ts.Phase() {
	case model.PhaseDeploy:
		return a.playTurn(ts)
	case model.PhaseAction:
		return nil
	case model.PhaseEnd:
		a.log.Info("game over",
			zap.Int("turn", ts.TurnNumber()),
			zap.Float64("health", ts.Self().Health),
			zap.Float64("opponentHealth", ts.Opponent().Health),
		)
		return ipc.ErrGameOver
	}
	return fmt.Errorf("%w: %d", ErrUnknownPhase, int(ts.Phase()))
}

func (a *Agent) playTurn(ts model.TurnState) error {
	if a.registry == nil {
		return ErrNotConfigured
	}

	board := rules.NewBoard(*a.registry, ts)
	board.SuppressWarnings(a.quiet)

	self := ts.Self()
	a.log.Info("performing turn",
		zap.Int("turn", ts.TurnNumber()),
		zap.Float64("cores", self.Cores),
		zap.Float64("bits", self.Bits),
		zap.Float64("health", self.Health),
	)

	if err := a.Engine.Evaluate(board); err != nil {
		return fmt.Errorf("turn %d: %w", ts.TurnNumber(), err)
	}
	if err := board.Submit(a.Conn); err != nil {
		return fmt.Errorf("turn %d: %w", ts.TurnNumber(), err)
	}

	a.log.Debug("turn submitted",
		zap.Int("turn", ts.TurnNumber()),
		zap.Int("structures", len(board.BuildStack())),
		zap.Int("mobile", len(board.DeployStack())),
		zap.Float64("coresLeft", board.Resource(rules.Cores)),
		zap.Float64("bitsLeft", board.Resource(rules.Bits)),
	)
	return nil
}
