package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"transcript_search": {
		def: mcp.NewTool("transcript_search",
			mcp.WithDescription("Semantic search over indexed lecture transcripts."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Free-text query")),
			mcp.WithNumber("limit", mcp.Description("Maximum hits, default 5")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"deck_list": {
		def: mcp.NewTool("deck_list",
			mcp.WithDescription("List generated slide decks."),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"deck_fetch": {
		def: mcp.NewTool("deck_fetch",
			mcp.WithDescription("Fetch one slide deck as JSON."),
			mcp.WithString("video_id", mcp.Required(), mcp.Description("Video identifier of the deck")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"run_history": {
		def: mcp.NewTool("run_history",
			mcp.WithDescription("Recent processing runs, newest first."),
			mcp.WithString("video_id", mcp.Description("Restrict to one video")),
			mcp.WithNumber("limit", mcp.Description("Maximum runs, default 20")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuns },
	},
}

// NewServer creates an MCP server exposing decks, runs and transcript search.
func NewServer(h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"slide-flow",
		version,
		server.WithToolCapabilities(true),
	)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(h *Handlers, version string) error {
	return server.ServeStdio(NewServer(h, version))
}
