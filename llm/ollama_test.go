package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	fragments []string
	err       error
	req       *api.ChatRequest
}

func (f *fakeChat) Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error {
	f.req = req
	for _, frag := range f.fragments {
		if err := fn(api.ChatResponse{Message: api.Message{Role: "assistant", Content: frag}}); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}

	return fn(api.ChatResponse{Done: true})
}

func collect(t *testing.T, out <-chan Fragment) (string, error) {
	t.Helper()

	var sb strings.Builder
	for frag := range out {
		if frag.Err != nil {
			return sb.String(), frag.Err
		}
		sb.WriteString(frag.Text)
	}

	return sb.String(), nil
}

func Test_Stream(t *testing.T) {
	chat := &fakeChat{fragments: []string{"The", " answer", " is", " forty", "-two."}}
	g := &Generator{chat: chat, model: "llama3.2:3b"}

	answer, err := collect(t, g.Stream(context.Background(), "some context", "what is the answer?"))
	require.NoError(t, err)

	assert.Equal(t, "The answer is forty-two.", answer)
}

func Test_Stream_Messages(t *testing.T) {
	chat := &fakeChat{}
	g := &Generator{chat: chat, model: "llama3.2:3b"}

	_, err := collect(t, g.Stream(context.Background(), "Paris is the capital of France.", "What is the capital of France?"))
	require.NoError(t, err)

	require.Len(t, chat.req.Messages, 2)
	assert.Equal(t, "system", chat.req.Messages[0].Role)
	assert.Equal(t, "user", chat.req.Messages[1].Role)
	assert.Contains(t, chat.req.Messages[1].Content, "Context: Paris is the capital of France.")
	assert.Contains(t, chat.req.Messages[1].Content, "Question: What is the capital of France?")
	require.NotNil(t, chat.req.Stream)
	assert.True(t, *chat.req.Stream)
}

func Test_Stream_MidStreamFailure(t *testing.T) {
	chat := &fakeChat{
		fragments: []string{"partial"},
		err:       errors.New("connection reset"),
	}
	g := &Generator{chat: chat, model: "llama3.2:3b"}

	answer, err := collect(t, g.Stream(context.Background(), "ctx", "q"))

	assert.Equal(t, "partial", answer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func Test_Stream_Cancellation(t *testing.T) {
	chat := &fakeChat{fragments: []string{"a", "b", "c"}}
	g := &Generator{chat: chat, model: "llama3.2:3b"}

	ctx, cancel := context.WithCancel(context.Background())
	out := g.Stream(ctx, "ctx", "q")

	<-out
	cancel()

	for range out {
		// drain until the producer notices cancellation and closes
	}
}
