package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/internal/service/agent"
	"github.com/sandevgo/sazed/pkg/log"
)

type Chatter interface {
	RunStream(ctx context.Context, sessionID, text string, emit func(agent.Event)) (agent.Result, error)
}

// Options configures the line editor. Stdin and Stdout default to the
// terminal; setting Stdin also turns off terminal handling.
type Options struct {
	HistoryFile string
	Stdin       io.ReadCloser
	Stdout      io.Writer
}

// REPL is a local line-oriented chat against the in-process agent.
// Slash commands go through the router first.
type REPL struct {
	agent     Chatter
	router    core.CmdRouter
	rl        *readline.Instance
	sessionID string
}

func NewREPL(chatter Chatter, sessionID string, opts Options) (*REPL, error) {
	cfg := &readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     opts.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          opts.Stdout,
	}
	if opts.Stdin != nil {
		cfg.Stdin = opts.Stdin
		cfg.FuncIsTerminal = func() bool { return false }
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init readline: %w", err)
	}

	return &REPL{
		agent:     chatter,
		rl:        rl,
		sessionID: sessionID,
	}, nil
}

// SessionID is the conversation the REPL currently writes to. It is
// assigned by the first answer when the REPL starts without one.
func (r *REPL) SessionID() string {
	return r.sessionID
}

// Use installs the slash-command router.
func (r *REPL) Use(router core.CmdRouter) {
	r.router = router
}

// Rotate switches the REPL onto a fresh session, so /new behaves as it does
// in chat transports.
func (r *REPL) Rotate(ctx context.Context, current string) string {
	r.sessionID = uuid.NewString()
	return r.sessionID
}

func (r *REPL) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Debug().Str("session_id", r.sessionID).Msg("local chat started")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			r.rl.Close()
		case <-done:
		}
	}()

	for {
		line, err := r.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		r.handle(ctx, line)
	}
}

func (r *REPL) Shutdown(ctx context.Context) error {
	return r.rl.Close()
}

func (r *REPL) handle(ctx context.Context, line string) {
	out := r.rl.Stdout()

	if r.router != nil && r.sessionID != "" {
		if reply, ok := r.router.Execute(ctx, r.sessionID, line); ok {
			fmt.Fprintln(out, reply)
			return
		}
	}

	streamed := false
	res, err := r.agent.RunStream(ctx, r.sessionID, line, func(ev agent.Event) {
		switch ev.Name {
		case agent.EventTextDelta:
			if text, ok := ev.Data["text"].(string); ok {
				streamed = true
				fmt.Fprint(out, text)
			}
		case agent.EventToolStart:
			if name, ok := ev.Data["name"].(string); ok {
				fmt.Fprintf(out, "\n  > calling %s\n", name)
			}
		}
	})
	if res.SessionID != "" {
		r.sessionID = res.SessionID
	}
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("agent run failed")
		fmt.Fprintf(out, "\nError: %v\n", err)
		return
	}

	if !streamed {
		fmt.Fprint(out, res.Text)
	}
	if res.Truncated {
		fmt.Fprint(out, "\n(stopped early)")
	}
	fmt.Fprintln(out)
}
