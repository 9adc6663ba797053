package main

import (
	"time"

	"github.com/rivalhq/rival/mcp"
)

// MCPCmd serves the analysis pipeline over MCP on stdio.
type MCPCmd struct {
	Timeout time.Duration `short:"t" default:"30s" help:"Navigation timeout per page."`
}

// Run blocks serving MCP requests until the client disconnects or the
// context is canceled.
func (c *MCPCmd) Run(deps *Dependencies) error {
	p, fetcher, err := newPipeline(deps, c.Timeout, deps.Config.Headless)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	return mcp.NewServer(p, deps.Version).Run(deps.Ctx)
}
