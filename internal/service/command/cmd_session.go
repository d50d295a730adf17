package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

type NewCommand struct {
	rotator   SessionRotator
	processor Processor
	formatter *ResponseFormatter
}

func NewNewCommand(rotator SessionRotator, processor Processor) *NewCommand {
	return &NewCommand{
		rotator:   rotator,
		processor: processor,
		formatter: NewResponseFormatter(),
	}
}

func (c *NewCommand) Name() string {
	return "new"
}

func (c *NewCommand) Description() string {
	return "Start a new conversation and distill the current one"
}

func (c *NewCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	next := c.rotator.Rotate(ctx, sessionID)

	if c.processor != nil {
		bg := context.WithoutCancel(ctx)
		go func() {
			if _, err := c.processor.Process(bg, sessionID); err != nil && !errors.Is(err, core.ErrSessionNotFound) {
				log.FromCtx(bg).Warn().Err(err).Str("session_id", sessionID).Msg("failed to distill previous session")
			}
		}()
	}

	return c.formatter.Combine(
		c.formatter.Success("Started a new conversation"),
		c.formatter.Label("Session", next),
	), nil
}

type ProcessCommand struct {
	processor Processor
	formatter *ResponseFormatter
}

func NewProcessCommand(processor Processor) *ProcessCommand {
	return &ProcessCommand{
		processor: processor,
		formatter: NewResponseFormatter(),
	}
}

func (c *ProcessCommand) Name() string {
	return "process"
}

func (c *ProcessCommand) Description() string {
	return "Extract facts and a summary from this conversation"
}

func (c *ProcessCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	res, err := c.processor.Process(ctx, sessionID)
	if errors.Is(err, core.ErrSessionNotFound) {
		return c.formatter.Tip("Nothing to process yet, send a message first."), nil
	}
	if err != nil {
		return "", err
	}

	sections := []string{
		c.formatter.Success("Conversation processed"),
		c.formatter.Label("Facts extracted", fmt.Sprintf("%d", res.FactsExtracted)),
	}
	if res.SummaryRef != nil {
		sections = append(sections, c.formatter.Label("Knowledge base entry", *res.SummaryRef))
	}
	if res.Summary != "" {
		sections = append(sections, c.formatter.Section("📝", "Summary", res.Summary))
	}
	return c.formatter.Combine(sections...), nil
}
