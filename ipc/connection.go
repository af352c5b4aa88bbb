package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/nstehr/bastion/logs"
)

// Handler processes one frame. Returning ErrGameOver stops the read loop
// without an error; any other error is fatal for the game.
type Handler func(frame []byte) error

// Connection is the bot's side of the engine pipe: frames arrive on the
// reader (stdin) and commands leave on the writer (stdout).
type Connection struct {
	r        *bufio.Scanner
	w        *bufio.Writer
	handlers map[string]Handler
}

func NewConnection(r io.Reader, w io.Writer, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		r:        NewFrameScanner(r, maxFrameSize),
		w:        bufio.NewWriter(w),
		handlers: handlers,
	}
}

func (c *Connection) RegisterHandler(kind string, handler Handler) {
	c.handlers[kind] = handler
}

// Send writes v as one command line.
func (c *Connection) Send(v any) error {
	return WriteFrame(c.w, v)
}

// ReadLoop blocks until the engine closes the pipe, a handler reports the
// end of the game, or a handler fails.
func (c *Connection) ReadLoop() error {
	for {
		frame, err := ReadFrame(c.r)
		if errors.Is(err, io.EOF) {
			logs.Info("engine closed input")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		kind, err := Classify(frame)
		if err != nil {
			return err
		}

		handler, ok := c.handlers[kind]
		if !ok {
			logs.Warn("no handler for frame kind", zap.String("kind", kind))
			continue
		}

		if err := handler(frame); err != nil {
			if errors.Is(err, ErrGameOver) {
				return nil
			}
			return fmt.Errorf("handle %s frame: %w", kind, err)
		}
	}
}
