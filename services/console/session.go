package console

import (
	"context"
	"errors"
	"io"
	"time"
)

// DefaultIdlePoll is how long Run yields after a read that returned nothing.
const DefaultIdlePoll = 10 * time.Millisecond

// Config tunes a Session. Zero values select defaults.
type Config struct {
	FullSize uint32
	IdlePoll time.Duration
}

// Session is the console loop: bytes in, editor, interpreter, text out.
// One command always runs to completion before the next byte is read.
type Session struct {
	in     io.Reader
	out    io.Writer
	ed     *Editor
	interp *Interpreter
	idle   time.Duration
	sleep  func(time.Duration)
}

func NewSession(in io.Reader, out io.Writer, flash Flash, cfg Config) *Session {
	idle := cfg.IdlePoll
	if idle <= 0 {
		idle = DefaultIdlePoll
	}
	return &Session{
		in:     in,
		out:    out,
		ed:     NewEditor(out),
		interp: NewInterpreter(flash, out, cfg.FullSize),
		idle:   idle,
		sleep:  time.Sleep,
	}
}

// Interpreter exposes the session's interpreter.
func (s *Session) Interpreter() *Interpreter { return s.interp }

// Run prints the first prompt and serves input until the reader reports
// io.EOF (nil result), another read error, or ctx is cancelled. ctx is only
// observed between reads; a running dump is never interrupted.
func (s *Session) Run(ctx context.Context) error {
	s.prompt()
	var buf [64]byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.in.Read(buf[:])
		for _, b := range buf[:n] {
			line, done := s.ed.Feed(b)
			if !done {
				continue
			}
			if line != "" {
				s.interp.Exec(line)
			}
			s.prompt()
		}
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		case n == 0:
			s.sleep(s.idle)
		}
	}
}

func (s *Session) prompt() { _, _ = io.WriteString(s.out, Prompt) }
