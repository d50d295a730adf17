package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type ToolsCommand struct {
	catalog   ToolCatalog
	formatter *ResponseFormatter
}

func NewToolsCommand(catalog ToolCatalog) *ToolsCommand {
	return &ToolsCommand{
		catalog:   catalog,
		formatter: NewResponseFormatter(),
	}
}

func (c *ToolsCommand) Name() string {
	return "tools"
}

func (c *ToolsCommand) Description() string {
	return "Show the tools the assistant can call"
}

func (c *ToolsCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	infos := c.catalog.Catalog()

	var order []string
	byCategory := make(map[string][]string)
	for _, info := range infos {
		if _, ok := byCategory[info.Category]; !ok {
			order = append(order, info.Category)
		}
		byCategory[info.Category] = append(byCategory[info.Category], "`"+info.Name+"`")
	}
	sort.Strings(order)

	items := make([]string, len(order))
	for i, category := range order {
		items[i] = fmt.Sprintf("**%s**: %s", category, strings.Join(byCategory[category], ", "))
	}

	return c.formatter.Combine(
		c.formatter.Info("Tools"),
		c.formatter.Label("Available", fmt.Sprintf("%d", len(infos))),
		c.formatter.List(items),
	), nil
}
