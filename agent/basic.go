package agent

import (
	"context"
	"fmt"

	"github.com/BaSui01/graphflow/llm"
	"github.com/BaSui01/graphflow/workflow"
)

// Basic workflow state fields.
const (
	FieldMessages  = "messages"
	FieldUserName  = "user_name"
	FieldStepCount = "step_count"
)

// NewBasicGraph builds the introductory pipeline:
//
//	start -> greet -> process -> summarize -> end
//
// messages accumulates a conversation log; user_name and step_count are
// plain overwrite fields.
func NewBasicGraph(opts ...workflow.GraphOption) (*workflow.CompiledGraph, error) {
	schema, err := workflow.NewSchema(
		workflow.AppendField(FieldMessages),
		workflow.ScalarField(FieldUserName),
		workflow.ScalarField(FieldStepCount),
	)
	if err != nil {
		return nil, err
	}

	b := workflow.NewGraph("basic", schema, opts...)
	for name, fn := range map[string]workflow.NodeFunc{
		"greet":     greetUser,
		"process":   processInput,
		"summarize": summarize,
	} {
		if err := b.AddNode(name, fn); err != nil {
			return nil, err
		}
	}
	b.AddEdge(workflow.Start, "greet").
		AddEdge("greet", "process").
		AddEdge("process", "summarize").
		AddEdge("summarize", workflow.End)

	return b.Compile()
}

// RunBasic compiles and runs the basic pipeline for one user input.
func RunBasic(ctx context.Context, userName, userInput string, opts ...workflow.GraphOption) (workflow.State, error) {
	g, err := NewBasicGraph(opts...)
	if err != nil {
		return nil, err
	}
	return g.Invoke(ctx, workflow.State{
		FieldMessages:  []any{llm.Message{Role: llm.RoleUser, Content: userInput}},
		FieldUserName:  userName,
		FieldStepCount: 0,
	})
}

func greetUser(ctx context.Context, s workflow.State) (workflow.State, error) {
	name := s.GetString(FieldUserName)
	if name == "" {
		name = "there"
	}
	greeting := fmt.Sprintf("Hello, %s! I am a GraphFlow agent.", name)
	return workflow.State{
		FieldMessages:  llm.Message{Role: llm.RoleAssistant, Content: greeting},
		FieldStepCount: s.GetInt(FieldStepCount) + 1,
	}, nil
}

func processInput(ctx context.Context, s workflow.State) (workflow.State, error) {
	last := ""
	if msgs := s.GetSlice(FieldMessages); len(msgs) > 0 {
		if m, ok := msgs[len(msgs)-1].(llm.Message); ok {
			last = m.Content
		}
	}
	step := s.GetInt(FieldStepCount) + 1
	response := fmt.Sprintf("Processed %q at step %d.", last, step)
	return workflow.State{
		FieldMessages:  llm.Message{Role: llm.RoleAssistant, Content: response},
		FieldStepCount: step,
	}, nil
}

func summarize(ctx context.Context, s workflow.State) (workflow.State, error) {
	steps := s.GetInt(FieldStepCount)
	summary := fmt.Sprintf("Executed %d steps with %d messages so far.",
		steps, len(s.GetSlice(FieldMessages)))
	return workflow.State{
		FieldMessages:  llm.Message{Role: llm.RoleAssistant, Content: summary},
		FieldStepCount: steps + 1,
	}, nil
}
