// Package mcp exposes the analysis pipeline as a Model Context Protocol
// server over stdio.
package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rivalhq/rival"
	"github.com/rivalhq/rival/fs"
	"github.com/rivalhq/rival/pipeline"
	"golang.org/x/sync/singleflight"
)

// Server serves the analyze_competitor tool over stdio.
type Server struct {
	pipeline *pipeline.Pipeline
	server   *mcp.Server

	// group coalesces concurrent analyses of the same URL. The browser
	// holds a single browsing context per run, so concurrent runs of the
	// same page would interfere and burn duplicate model calls.
	group singleflight.Group
}

// NewServer creates a Server around an analysis pipeline.
func NewServer(p *pipeline.Pipeline, version string) *Server {
	s := &Server{pipeline: p}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "rival",
		Version: version,
	}, nil)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_competitor",
		Description: "Analyze a competitor's product or pricing page. Scrapes the rendered page and returns structured product information: name, pricing tiers, core features and a summary.",
	}, s.analyzeCompetitor)

	return s
}

// Run serves MCP requests over stdio until ctx is canceled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// AnalyzeArgs is the input of the analyze_competitor tool.
type AnalyzeArgs struct {
	URL string `json:"url" jsonschema:"URL of the competitor product or pricing page to analyze"`
}

// Analyze runs one analysis for url, coalescing concurrent calls for the
// same URL into a single run.
func (s *Server) Analyze(ctx context.Context, url string) (*rival.Product, error) {
	if strings.TrimSpace(url) == "" {
		return nil, rival.Errorf(rival.EINVALID, "url is required")
	}

	v, err, _ := s.group.Do(url, func() (any, error) {
		a := s.pipeline.Run(ctx, url)
		if a.Err != nil {
			return nil, a.Err
		}
		return a.Product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rival.Product), nil
}

func (s *Server) analyzeCompetitor(ctx context.Context, req *mcp.CallToolRequest, args AnalyzeArgs) (*mcp.CallToolResult, *rival.Product, error) {
	product, err := s.Analyze(ctx, args.URL)
	if err != nil {
		return nil, nil, err
	}

	data, err := fs.FormatProduct(product)
	if err != nil {
		return nil, nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, product, nil
}
