package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/graphflow/llm"
	"github.com/BaSui01/graphflow/workflow"
)

func TestNewBasicGraph(t *testing.T) {
	g, err := NewBasicGraph()
	require.NoError(t, err)
	assert.Equal(t, "greet", g.Entry())
	assert.Equal(t, []string{"greet", "process", "summarize"}, g.Nodes())
}

func TestRunBasic(t *testing.T) {
	final, err := RunBasic(context.Background(), "Ada", "I want to learn GraphFlow!")
	require.NoError(t, err)

	// greet, process and summarize each advance the counter once.
	assert.Equal(t, 3, final.GetInt(FieldStepCount))
	assert.Equal(t, "Ada", final.GetString(FieldUserName))

	msgs := final.GetSlice(FieldMessages)
	require.Len(t, msgs, 4)

	first, ok := msgs[0].(llm.Message)
	require.True(t, ok)
	assert.Equal(t, llm.RoleUser, first.Role)
	assert.Equal(t, "I want to learn GraphFlow!", first.Content)

	greeting := msgs[1].(llm.Message)
	assert.Equal(t, llm.RoleAssistant, greeting.Role)
	assert.Contains(t, greeting.Content, "Ada")

	summary := msgs[3].(llm.Message)
	assert.Contains(t, summary.Content, "2 steps")
	assert.Contains(t, summary.Content, "3 messages")
}

func TestRunBasic_DefaultUserName(t *testing.T) {
	final, err := RunBasic(context.Background(), "", "hi")
	require.NoError(t, err)

	greeting := final.GetSlice(FieldMessages)[1].(llm.Message)
	assert.Contains(t, greeting.Content, "there")
}

func TestBasicGraph_VisitOrder(t *testing.T) {
	g, err := NewBasicGraph()
	require.NoError(t, err)

	var tr workflow.Trace
	_, err = g.Invoke(context.Background(), workflow.State{
		FieldMessages:  []any{llm.Message{Role: llm.RoleUser, Content: "x"}},
		FieldStepCount: 0,
	}, workflow.WithTrace(&tr))
	require.NoError(t, err)
	assert.Equal(t, []string{"greet", "process", "summarize"}, tr.Visited())
}
