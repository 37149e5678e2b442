package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Pushpachoudary/Qurey-Stream/docstore"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const noRelevantInfo = "No relevant information found in the indexed documents."

type docRetriever interface {
	Query(ctx context.Context, query string, n int) ([]docstore.SearchResult, error)
}

type questionAnswerer interface {
	Answer(ctx context.Context, question string) (*Answer, error)
}

// NewRagServer exposes the retrieval and answer paths over MCP, for agents
// that want raw chunks or a complete grounded answer. Streaming clients use
// the HTTP API instead.
func NewRagServer(retriever docRetriever, answerer questionAnswerer, results int) *server.MCPServer {
	srv := server.NewMCPServer("Qurey-Stream", "0.1.0", server.WithToolCapabilities(false))

	searchTool := mcp.NewTool("search_documents",
		mcp.WithDescription("Searches the ingested documents and returns the most relevant chunks"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		))

	srv.AddTool(searchTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := retriever.Query(ctx, q, results)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var response strings.Builder
		for _, r := range res {
			raw, err := json.Marshal(r)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			fmt.Fprintf(&response, "%s\n", string(raw))
		}

		return mcp.NewToolResultText(response.String()), nil
	})

	askTool := mcp.NewTool("ask_question",
		mcp.WithDescription("Answers a question using only the ingested documents as context"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to answer"),
		))

	srv.AddTool(askTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := request.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		ans, err := answerer.Answer(ctx, q)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ans.Found {
			return mcp.NewToolResultText(noRelevantInfo), nil
		}

		var full strings.Builder
		for frag := range ans.Fragments {
			if frag.Err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("answer interrupted: %s", frag.Err)), nil
			}
			full.WriteString(frag.Text)
		}

		return mcp.NewToolResultText(full.String()), nil
	})

	return srv
}
