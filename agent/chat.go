package agent

import (
	"context"
	"fmt"

	"github.com/BaSui01/graphflow/llm"
	"github.com/BaSui01/graphflow/workflow"
)

// Chat workflow state fields.
const (
	FieldModelName = "model_name"
)

// ChatClient is the surface the chat node needs from an LLM client.
type ChatClient interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// NewChatGraph builds the single-node model workflow:
//
//	start -> llm -> end
//
// The llm node sends the accumulated messages field to the model and
// appends the reply; feeding the final messages back in as the next
// initial state yields a conversation. To the engine the model call is an
// opaque, possibly failing node.
func NewChatGraph(client ChatClient, opts ...workflow.GraphOption) (*workflow.CompiledGraph, error) {
	schema, err := workflow.NewSchema(
		workflow.AppendField(FieldMessages),
		workflow.ScalarField(FieldModelName),
	)
	if err != nil {
		return nil, err
	}

	b := workflow.NewGraph("chat", schema, opts...)
	if err := b.AddNode("llm", callModel(client)); err != nil {
		return nil, err
	}
	b.AddEdge(workflow.Start, "llm").AddEdge("llm", workflow.End)

	return b.Compile()
}

// RunChat runs one turn: history plus the new user message go in, the
// updated history comes back out of the final state's messages field.
func RunChat(ctx context.Context, g *workflow.CompiledGraph, model string, history []llm.Message, userMessage string) (workflow.State, error) {
	msgs := make([]any, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, m)
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: userMessage})

	return g.Invoke(ctx, workflow.State{
		FieldMessages:  msgs,
		FieldModelName: model,
	})
}

// History extracts the conversation from a final state.
func History(s workflow.State) []llm.Message {
	raw := s.GetSlice(FieldMessages)
	out := make([]llm.Message, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(llm.Message); ok {
			out = append(out, m)
		}
	}
	return out
}

func callModel(client ChatClient) workflow.NodeFunc {
	return func(ctx context.Context, s workflow.State) (workflow.State, error) {
		history := History(s)
		if len(history) == 0 {
			return nil, fmt.Errorf("chat state has no messages")
		}
		resp, err := client.Chat(ctx, llm.ChatRequest{
			Model:    s.GetString(FieldModelName),
			Messages: history,
		})
		if err != nil {
			return nil, err
		}
		return workflow.State{FieldMessages: resp.Message}, nil
	}
}
