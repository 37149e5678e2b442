// Package llm generates answers with an Ollama chat model, streaming fragments
// as the model produces them.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

const systemPrompt = `You are an AI assistant tasked with providing detailed answers based solely on the given context. Use only the information in the context to answer the question. If the context does not contain enough information to answer, say that the context is insufficient instead of guessing.`

// Fragment is one streamed piece of an answer. A mid-stream failure arrives as
// the final fragment with Err set, so consumers can tell a truncated answer
// from a complete one.
type Fragment struct {
	Text string
	Err  error
}

type chatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

type Generator struct {
	chat  chatClient
	model string
}

func NewGenerator(model, baseURL string) (*Generator, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}

	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &Generator{
		chat:  api.NewClient(parsed, hc),
		model: model,
	}, nil
}

// Stream asks the chat model to answer question using only contextText. The
// returned channel delivers fragments in arrival order and closes when the
// model reports completion. Consumption is single-pass; cancel ctx to stop the
// producer early.
func (g *Generator) Stream(ctx context.Context, contextText, question string) <-chan Fragment {
	stream := true
	req := &api.ChatRequest{
		Model:  g.model,
		Stream: &stream,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Context: %s\nQuestion: %s", contextText, question)},
		},
	}

	out := make(chan Fragment)
	go func() {
		defer close(out)

		err := g.chat.Chat(ctx, req, func(resp api.ChatResponse) error {
			if resp.Done {
				return nil
			}

			select {
			case out <- Fragment{Text: resp.Message.Content}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			select {
			case out <- Fragment{Err: fmt.Errorf("chat stream failed: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return out
}
