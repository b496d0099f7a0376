package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arturoeanton/codelens-timemachine/internal/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "codelens-timemachine"
	serverVersion = "1.0.0"
)

// Resolver is the part of service.PeriodService exposed to MCP clients.
type Resolver interface {
	ResolveResource(ctx context.Context, resourceID int64) (*service.Resolution, error)
}

// Server exposes period resolution as Model Context Protocol tools.
type Server struct {
	mcpServer *mcp.Server
	port      string
}

// NewServer creates a new MCP server.
func NewServer(resolver Resolver, port string) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, ResolvePeriodsTool(), ResolvePeriodsHandler(resolver))
	return &Server{mcpServer: mcpServer, port: port}
}

// Start serves the streamable HTTP transport on the configured port.
func (s *Server) Start() error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)

	slog.Info("MCP server starting", "port", s.port)
	return http.ListenAndServe(":"+s.port, mux)
}

// Run serves a single session over transport until ctx is done.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// ResolvePeriodsInput is the input of the resolve_periods tool.
type ResolvePeriodsInput struct {
	ResourceID int64 `json:"resource_id" jsonschema:"identifier of the project or module"`
}

// PeriodEntry is one resolved period.
type PeriodEntry struct {
	Index         int    `json:"index" jsonschema:"1-based period index"`
	Mode          string `json:"mode" jsonschema:"date, days, previous_analysis or version"`
	ModeParameter string `json:"mode_parameter,omitempty" jsonschema:"mode parameter such as a day count or version label"`
	Label         string `json:"label" jsonschema:"human readable description of the comparison point"`
	TargetDate    string `json:"target_date,omitempty" jsonschema:"RFC3339 nominal target of the period"`
	SnapshotDate  string `json:"snapshot_date,omitempty" jsonschema:"RFC3339 date of the matched snapshot; empty when no comparison is possible"`
}

// ResolvePeriodsResult is the output of the resolve_periods tool.
type ResolvePeriodsResult struct {
	ResourceKey string        `json:"resource_key" jsonschema:"key of the resource"`
	Qualifier   string        `json:"qualifier" jsonschema:"resource qualifier"`
	Periods     []PeriodEntry `json:"periods" jsonschema:"periods in configuration order"`
}

// ResolvePeriodsTool defines the resolve_periods tool.
func ResolvePeriodsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "resolve_periods",
		Description: "Resolves the configured comparison periods of a project or module to the dates of its past snapshots.",
	}
}

// ResolvePeriodsHandler executes a resolve_periods request.
func ResolvePeriodsHandler(resolver Resolver) mcp.ToolHandlerFor[ResolvePeriodsInput, ResolvePeriodsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ResolvePeriodsInput) (*mcp.CallToolResult, ResolvePeriodsResult, error) {
		res, err := resolver.ResolveResource(ctx, input.ResourceID)
		if err != nil {
			return nil, ResolvePeriodsResult{}, fmt.Errorf("resolve periods of resource %d: %w", input.ResourceID, err)
		}

		out := ResolvePeriodsResult{
			ResourceKey: res.Resource.Key,
			Qualifier:   res.Resource.Qualifier,
			Periods:     make([]PeriodEntry, 0, len(res.Periods)),
		}
		for i, p := range res.Periods {
			past := res.PastSnapshots[i]
			entry := PeriodEntry{
				Index:         p.Index,
				Mode:          string(past.Mode),
				ModeParameter: past.ModeParameter,
				Label:         past.String(),
			}
			if p.TargetDate != nil {
				entry.TargetDate = p.TargetDate.Format(time.RFC3339)
			}
			if p.SnapshotDate != nil {
				entry.SnapshotDate = p.SnapshotDate.Format(time.RFC3339)
			}
			out.Periods = append(out.Periods, entry)
		}
		return nil, out, nil
	}
}
