// Package server exposes identity resolution over the Model Context
// Protocol, so agent tooling can ask "where does this person file" without
// linking the resolver directly.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fintrace/insider/resolve"
	"github.com/fintrace/insider/version"
)

// MCPServer wraps a Resolver and exposes it via Model Context Protocol
type MCPServer struct {
	resolver *resolve.Resolver
	defaults resolve.Options
	server   *server.MCPServer
}

// NewMCPServer creates an MCP server over the given resolver. defaults
// seed the per-call options; tool arguments override them.
func NewMCPServer(resolver *resolve.Resolver, defaults resolve.Options) *MCPServer {
	s := &MCPServer{
		resolver: resolver,
		defaults: defaults,
	}

	s.server = server.NewMCPServer(
		"insider",
		version.Version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	return s
}

// registerTools registers the resolution tools
func (s *MCPServer) registerTools() {
	resolveTool := mcp.NewTool("resolve_identity",
		mcp.WithDescription("Resolve a person's name to the companies where they file as a corporate insider, with confidence scores and filing evidence"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Person's name in any common form (\"Gale Klappa\", \"KLAPPA GALE E\", \"Klappa, Gale\")"),
		),
		mcp.WithNumber("entity_limit",
			mcp.Description("Cap the fallback scan to the N largest companies (0 = no cap)"),
		),
		mcp.WithBoolean("fallback",
			mcp.Description("Run the exhaustive scan when indexed search finds nothing (default: true)"),
		),
		mcp.WithNumber("deadline_seconds",
			mcp.Description("Overall deadline for the resolution in seconds"),
		),
		mcp.WithNumber("concurrency",
			mcp.Description("Fallback scan worker count (0 = server default)"),
		),
	)
	s.server.AddTool(resolveTool, s.handleResolveIdentity)

	positionsTool := mcp.NewTool("current_positions",
		mcp.WithDescription("List only the companies where a person currently holds an insider reporting role, judged by recent filing activity"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Person's name in any common form"),
		),
	)
	s.server.AddTool(positionsTool, s.handleCurrentPositions)
}

// options builds per-call options from tool arguments over the defaults.
func (s *MCPServer) options(request mcp.CallToolRequest) resolve.Options {
	opts := s.defaults
	opts.FallbackOnEmpty = request.GetBool("fallback", opts.FallbackOnEmpty)
	opts.EntityLimit = request.GetInt("entity_limit", opts.EntityLimit)
	if secs := request.GetInt("deadline_seconds", 0); secs > 0 {
		opts.Deadline = time.Duration(secs) * time.Second
	}
	opts.Concurrency = request.GetInt("concurrency", opts.Concurrency)
	return opts
}

// handleResolveIdentity handles resolve_identity tool calls
func (s *MCPServer) handleResolveIdentity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	identity, err := s.resolver.Resolve(ctx, name, s.options(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Resolution failed: %v", err)), nil
	}

	payload, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// handleCurrentPositions handles current_positions tool calls
func (s *MCPServer) handleCurrentPositions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	identity, err := s.resolver.Resolve(ctx, name, s.defaults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Resolution failed: %v", err)), nil
	}

	current := identity.CurrentAffiliations()
	if len(current) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No current insider positions found for %q", identity.CanonicalName)), nil
	}

	payload, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// Serve starts the MCP server on stdio. Blocks until the client disconnects.
func (s *MCPServer) Serve() error {
	return server.ServeStdio(s.server)
}
