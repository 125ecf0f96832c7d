// Package core wires the interpreter together: the interactive session
// loop and the SSH server that exposes it to remote clients.
package core

import (
	"fmt"
	"io"
	"log"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"

	"github.com/pipesh/pipesh/core/config"
	"github.com/pipesh/pipesh/core/logger"
	"github.com/pipesh/pipesh/core/pipeline"
	"github.com/pipesh/pipesh/core/proc"
)

// SessionIO carries the endpoints one interactive session reads and writes.
type SessionIO struct {
	// Stdin and Stdout are the line-editing endpoints.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// PipelineStdin feeds the first stage of executed pipelines. Nil means
	// /dev/null; remote sessions leave it nil so children do not race the
	// line reader for the same channel.
	PipelineStdin io.Reader

	// Optional terminal callbacks for readline.
	FuncGetWidth   func() int
	FuncIsTerminal func() bool
}

// Session is one interactive interpreter session: it prompts, reads a
// line, validates and parses it, executes the resulting pipeline, and
// loops until end-of-input.
type Session struct {
	Config   *config.Configuration
	Readline *readline.Instance

	runner      *proc.Runner
	log         *logger.SessionLogger
	promptColor *color.Color
	toClose     listCloser
}

func NewSession(configuration *config.Configuration, sio SessionIO, slog *logger.SessionLogger) (*Session, error) {
	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(sio.Stdin),
		Stdout: sio.Stdout,
		Stderr: sio.Stderr,
	}
	if sio.FuncGetWidth != nil {
		cfg.FuncGetWidth = sio.FuncGetWidth
	}
	if sio.FuncIsTerminal != nil {
		cfg.FuncIsTerminal = sio.FuncIsTerminal
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	promptColor := color.New(color.FgGreen)
	if sio.FuncIsTerminal != nil && sio.FuncIsTerminal() {
		// Remote PTYs want color even though the server's own stdout is
		// not a terminal.
		promptColor.EnableColor()
	}

	session := &Session{
		Config:   configuration,
		Readline: rl,
		runner: &proc.Runner{
			Stdin:  sio.PipelineStdin,
			Stdout: sio.Stdout,
			Stderr: sio.Stderr,
		},
		log:         slog,
		promptColor: promptColor,
	}
	session.toClose = append(session.toClose, rl)
	return session, nil
}

func (s *Session) Prompt() string {
	return s.promptColor.Sprint(s.Config.Prompt)
}

// Run drives the session until end-of-input. Each iteration builds a fresh
// Pipeline; nothing is carried over between lines.
func (s *Session) Run() error {
	limits := s.Config.Limits()

	for {
		s.Readline.SetPrompt(s.Prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return nil // Input closed, quit.

		case err == readline.ErrInterrupt:
			continue

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue
		}

		if err := pipeline.Validate(line, limits); err != nil {
			fmt.Fprintf(s.Readline, "error: %v\n", err)
			s.log.Record(&logger.LineRejected{Line: line, Reason: err.Error()})
			continue
		}

		parsed, err := pipeline.Parse(line, limits)
		if err != nil {
			fmt.Fprintf(s.Readline, "error: %v\n", err)
			s.log.Record(&logger.LineRejected{Line: line, Reason: err.Error()})
			continue
		}

		result, err := s.runner.Run(parsed)
		if err != nil {
			// Pipe allocation failed; the pipeline was rolled back and
			// the session keeps going.
			fmt.Fprintf(s.Readline, "error: %v\n", err)
			continue
		}

		s.log.Record(&logger.PipelineRun{
			Programs:  parsed.Programs(),
			ExitCodes: result.ExitCodes(),
			Errors:    stageErrors(result),
		})
	}
}

func (s *Session) Close() error {
	return s.toClose.Close()
}

// stageErrors flattens per-stage failures for the event log; nil when
// every stage ran.
func stageErrors(result *proc.Result) []string {
	any := false
	out := make([]string, len(result.Stages))
	for i, stage := range result.Stages {
		if stage.Err != nil {
			out[i] = stage.Err.Error()
			any = true
		}
	}
	if !any {
		return nil
	}
	return out
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
