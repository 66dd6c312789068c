package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/graphflow/workflow"
)

// Conditional workflow state fields.
const (
	FieldMessage     = "message"
	FieldMessageType = "message_type"
	FieldResponse    = "response"
	FieldProcessed   = "processed"
)

// Message classification labels; each labels exactly one handler node.
const (
	TypeGreeting = "greeting"
	TypeQuestion = "question"
	TypeCommand  = "command"
	TypeUnknown  = "unknown"
)

var (
	greetingWords = []string{"hello", "hi", "hey", "greetings"}
	questionWords = []string{"?", "what", "how", "why", "when", "where", "who"}
	commandWords  = []string{"run", "start", "stop", "execute", "cancel"}
)

// NewConditionalGraph builds the classifier/dispatcher:
//
//	start -> classify -(message_type)-> greeting|question|command|unknown -> end
//
// The router reads the label written by classify; each label maps to one
// handler, so the compiler can enumerate all reachable successors even
// though the choice is made at run time.
func NewConditionalGraph(opts ...workflow.GraphOption) (*workflow.CompiledGraph, error) {
	schema, err := workflow.NewSchema(
		workflow.ScalarField(FieldMessage),
		workflow.ScalarField(FieldMessageType),
		workflow.ScalarField(FieldResponse),
		workflow.ScalarField(FieldProcessed),
	)
	if err != nil {
		return nil, err
	}

	b := workflow.NewGraph("conditional", schema, opts...)
	if err := b.AddNode("classify", classifyMessage); err != nil {
		return nil, err
	}
	handlers := map[string]workflow.NodeFunc{
		TypeGreeting: handleGreeting,
		TypeQuestion: handleQuestion,
		TypeCommand:  handleCommand,
		TypeUnknown:  handleUnknown,
	}
	targets := make(map[string]string, len(handlers))
	for label, fn := range handlers {
		if err := b.AddNode(label, fn); err != nil {
			return nil, err
		}
		targets[label] = label
		b.AddEdge(label, workflow.End)
	}

	b.AddEdge(workflow.Start, "classify")
	b.AddConditionalEdge("classify", routeMessage, targets)

	return b.Compile()
}

// RunConditional compiles and runs the classifier for one message.
func RunConditional(ctx context.Context, message string, opts ...workflow.GraphOption) (workflow.State, error) {
	g, err := NewConditionalGraph(opts...)
	if err != nil {
		return nil, err
	}
	return g.Invoke(ctx, workflow.State{FieldMessage: message})
}

// classifyMessage tags the message with a type using simple keyword rules.
func classifyMessage(ctx context.Context, s workflow.State) (workflow.State, error) {
	msg := strings.ToLower(s.GetString(FieldMessage))

	label := TypeUnknown
	switch {
	case containsAny(msg, greetingWords):
		label = TypeGreeting
	case containsAny(msg, questionWords):
		label = TypeQuestion
	case containsAny(msg, commandWords):
		label = TypeCommand
	}
	return workflow.State{FieldMessageType: label}, nil
}

// routeMessage is the conditional edge's decision function.
func routeMessage(s workflow.State) string {
	return s.GetString(FieldMessageType)
}

func handleGreeting(ctx context.Context, s workflow.State) (workflow.State, error) {
	return workflow.State{
		FieldResponse:  "Hello! How can I help you today?",
		FieldProcessed: true,
	}, nil
}

func handleQuestion(ctx context.Context, s workflow.State) (workflow.State, error) {
	return workflow.State{
		FieldResponse:  fmt.Sprintf("Looking into %q...", s.GetString(FieldMessage)),
		FieldProcessed: true,
	}, nil
}

func handleCommand(ctx context.Context, s workflow.State) (workflow.State, error) {
	return workflow.State{
		FieldResponse:  fmt.Sprintf("Executing command: %s", s.GetString(FieldMessage)),
		FieldProcessed: true,
	}, nil
}

func handleUnknown(ctx context.Context, s workflow.State) (workflow.State, error) {
	return workflow.State{
		FieldResponse:  "Sorry, I did not understand that. Could you rephrase?",
		FieldProcessed: true,
	}, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
