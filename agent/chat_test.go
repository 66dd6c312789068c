package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/graphflow/llm"
	"github.com/BaSui01/graphflow/workflow"
)

// stubClient echoes the last user message, or fails when told to.
type stubClient struct {
	fail  error
	calls int
}

func (s *stubClient) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.calls++
	if s.fail != nil {
		return nil, s.fail
	}
	last := req.Messages[len(req.Messages)-1]
	return &llm.ChatResponse{
		Model:   req.Model,
		Message: llm.Message{Role: llm.RoleAssistant, Content: "echo: " + last.Content},
		Usage:   llm.Usage{PromptTokens: len(req.Messages), CompletionTokens: 1},
	}, nil
}

func TestRunChat_SingleTurn(t *testing.T) {
	stub := &stubClient{}
	g, err := NewChatGraph(stub)
	require.NoError(t, err)

	final, err := RunChat(context.Background(), g, "gpt-4o-mini", nil, "hello model")
	require.NoError(t, err)

	history := History(final)
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleUser, history[0].Role)
	assert.Equal(t, llm.RoleAssistant, history[1].Role)
	assert.Equal(t, "echo: hello model", history[1].Content)
	assert.Equal(t, 1, stub.calls)
}

func TestRunChat_HistoryAccumulates(t *testing.T) {
	stub := &stubClient{}
	g, err := NewChatGraph(stub)
	require.NoError(t, err)

	var history []llm.Message
	for turn := 0; turn < 3; turn++ {
		final, err := RunChat(context.Background(), g, "gpt-4o-mini", history,
			fmt.Sprintf("turn %d", turn))
		require.NoError(t, err)
		history = History(final)
	}

	// Each turn adds a user message and an assistant reply, in order.
	require.Len(t, history, 6)
	assert.Equal(t, "turn 0", history[0].Content)
	assert.Equal(t, "echo: turn 2", history[5].Content)
}

func TestRunChat_ModelFailure(t *testing.T) {
	stub := &stubClient{fail: errors.New("upstream down")}
	g, err := NewChatGraph(stub)
	require.NoError(t, err)

	_, err = RunChat(context.Background(), g, "gpt-4o-mini", nil, "hello")
	var nerr *workflow.NodeExecutionError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "llm", nerr.Node)

	// The failing node's state snapshot still holds the user message.
	assert.Len(t, History(nerr.State), 1)
}
