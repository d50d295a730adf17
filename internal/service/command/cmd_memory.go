package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/sazed/internal/core"
)

type MemoryCommand struct {
	facts     core.MemoryRepository
	formatter *ResponseFormatter
}

func NewMemoryCommand(facts core.MemoryRepository) *MemoryCommand {
	return &MemoryCommand{
		facts:     facts,
		formatter: NewResponseFormatter(),
	}
}

func (c *MemoryCommand) Name() string {
	return "memory"
}

func (c *MemoryCommand) Description() string {
	return "List remembered facts"
}

func (c *MemoryCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	facts, err := c.facts.Load(ctx)
	if err != nil {
		return "", err
	}

	if len(facts) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Memory"),
			"Nothing remembered yet.\n",
			c.formatter.Tip("Say \"remember that ...\" to store a fact"),
		), nil
	}

	items := make([]string, len(facts))
	for i, f := range facts {
		items[i] = fmt.Sprintf("[%s] **%s**: %s (`%s`)", f.FactType, f.Key, f.Value, f.ID)
	}

	return c.formatter.Combine(
		c.formatter.Info("Memory"),
		c.formatter.List(items),
		c.formatter.Tip("/forget <id> removes a fact"),
	), nil
}

type ForgetCommand struct {
	facts     core.MemoryRepository
	formatter *ResponseFormatter
}

func NewForgetCommand(facts core.MemoryRepository) *ForgetCommand {
	return &ForgetCommand{
		facts:     facts,
		formatter: NewResponseFormatter(),
	}
}

func (c *ForgetCommand) Name() string {
	return "forget"
}

func (c *ForgetCommand) Description() string {
	return "Delete a remembered fact by id"
}

func (c *ForgetCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) != 1 {
		return c.formatter.Usage("/forget <id>"), nil
	}

	deleted, err := c.facts.Delete(ctx, args[0])
	if err != nil {
		return "", err
	}
	if !deleted {
		return fmt.Sprintf("No fact with id `%s`.", args[0]), nil
	}
	return c.formatter.Success("Forgotten"), nil
}
