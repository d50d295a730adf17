package command

import (
	"context"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/internal/providers/tools"
	"github.com/sandevgo/sazed/internal/service/memory"
)

// SessionRotator swaps the conversation a chat is bound to.
type SessionRotator interface {
	Rotate(ctx context.Context, current string) string
}

type Processor interface {
	Process(ctx context.Context, sessionID string) (memory.Result, error)
}

type ToolCatalog interface {
	Catalog() []tools.Info
}

func NewCommands(
	rotator SessionRotator,
	processor Processor,
	facts core.MemoryRepository,
	catalog ToolCatalog,
) []core.Command {
	return []core.Command{
		NewNewCommand(rotator, processor),
		NewProcessCommand(processor),
		NewMemoryCommand(facts),
		NewForgetCommand(facts),
		NewToolsCommand(catalog),
	}
}
