package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/graphflow/workflow"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		message  string
		wantType string
	}{
		{"Hello there!", TypeGreeting},
		{"hey, anyone around", TypeGreeting},
		{"What is GraphFlow?", TypeQuestion},
		{"why does merging append", TypeQuestion},
		{"run the nightly report", TypeCommand},
		{"stop all jobs", TypeCommand},
		{"nice code today", TypeUnknown},
	}
	g, err := NewConditionalGraph()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			var tr workflow.Trace
			final, err := g.Invoke(context.Background(),
				workflow.State{FieldMessage: tt.message},
				workflow.WithTrace(&tr))
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, final.GetString(FieldMessageType))
			assert.True(t, final.GetBool(FieldProcessed))
			assert.NotEmpty(t, final.GetString(FieldResponse))

			// Exactly the classifier and the one matching handler run.
			assert.Equal(t, []string{"classify", tt.wantType}, tr.Visited())
		})
	}
}

func TestRunConditional(t *testing.T) {
	final, err := RunConditional(context.Background(), "What time is it?")
	require.NoError(t, err)
	assert.Equal(t, TypeQuestion, final.GetString(FieldMessageType))
	assert.Contains(t, final.GetString(FieldResponse), "What time is it?")
}
