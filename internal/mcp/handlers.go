package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nguyentantai21042004/slide-flow/internal/kgraph"
	"github.com/nguyentantai21042004/slide-flow/internal/render"
	"github.com/nguyentantai21042004/slide-flow/internal/store"
)

const (
	codeInvalid  = "INVALID_REQUEST"
	codeNotFound = "NOT_FOUND"
	codeInternal = "INTERNAL"
)

// toolError is a failure that is safe to show to the client.
type toolError struct {
	code    string
	message string
}

func (e *toolError) Error() string { return e.message }

func invalid(msg string) error  { return &toolError{code: codeInvalid, message: msg} }
func notFound(msg string) error { return &toolError{code: codeNotFound, message: msg} }

// Handlers holds dependencies for MCP tool handlers. Searcher and Runs may be nil.
type Handlers struct {
	searcher  kgraph.Searcher
	runs      store.RunLog
	outputDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(searcher kgraph.Searcher, runs store.RunLog, outputDir string) *Handlers {
	return &Handlers{searcher: searcher, runs: runs, outputDir: outputDir}
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type FetchRequest struct {
	VideoID string `json:"video_id"`
}

type RunsRequest struct {
	VideoID string `json:"video_id,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// DeckSummary describes one generated deck.
type DeckSummary struct {
	Name    string `json:"name"`
	HTML    string `json:"html"`
	HasJSON bool   `json:"has_json"`
	HasDocx bool   `json:"has_docx"`
}

func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(invalid(err.Error())), nil
	}
	if strings.TrimSpace(input.Query) == "" {
		return errorResult(invalid("query is required")), nil
	}
	if h.searcher == nil {
		return errorResult(notFound("transcript index is not configured")), nil
	}
	if input.Limit <= 0 {
		input.Limit = 5
	}

	hits, err := h.searcher.Search(ctx, input.Query, input.Limit)
	if errors.Is(err, kgraph.ErrIndexEmpty) {
		return successResult(map[string]any{"hits": []store.Hit{}})
	}
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"hits": hits})
}

func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matches, err := filepath.Glob(filepath.Join(h.outputDir, "*.html"))
	if err != nil {
		return errorResult(err), nil
	}
	sort.Strings(matches)

	decks := make([]DeckSummary, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".html")
		decks = append(decks, DeckSummary{
			Name:    name,
			HTML:    m,
			HasJSON: exists(filepath.Join(h.outputDir, name+".json")),
			HasDocx: exists(filepath.Join(h.outputDir, name+".docx")),
		})
	}
	return successResult(map[string]any{"decks": decks})
}

func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(invalid(err.Error())), nil
	}
	if strings.TrimSpace(input.VideoID) == "" {
		return errorResult(invalid("video_id is required")), nil
	}

	deck, err := render.ReadDeck(render.JSONPath(h.outputDir, input.VideoID))
	if errors.Is(err, os.ErrNotExist) {
		return errorResult(notFound("no JSON deck for " + input.VideoID)), nil
	}
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(deck)
}

func (h *Handlers) HandleRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RunsRequest](req)
	if err != nil {
		return errorResult(invalid(err.Error())), nil
	}
	if h.runs == nil {
		return errorResult(notFound("run log is not configured")), nil
	}
	if input.Limit <= 0 {
		input.Limit = 20
	}

	runs, err := h.runs.Runs(ctx, input.VideoID, input.Limit)
	if err != nil {
		return errorResult(err), nil
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	return successResult(map[string]any{"runs": runs})
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// errorResult creates an MCP error result. Only toolError messages reach the client.
func errorResult(err error) *mcp.CallToolResult {
	errorObj := map[string]any{"code": codeInternal, "message": "an internal error occurred"}
	var te *toolError
	if errors.As(err, &te) {
		errorObj = map[string]any{"code": te.code, "message": te.message}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
