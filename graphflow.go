// Package graphflow provides a top-level convenience entry point for building
// workflow graphs with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/graphflow"
//
//	schema := graphflow.MustSchema(
//	    graphflow.ScalarField("count"),
//	    graphflow.AppendField("log"),
//	)
//	b := graphflow.NewGraph("pipeline", schema)
//	if err := b.AddNode("step", stepFn); err != nil {
//	    return err
//	}
//	g, err := b.AddEdge(graphflow.Start, "step").
//	    AddEdge("step", graphflow.End).
//	    Compile()
//
// This is a thin wrapper around the workflow package; both produce identical
// results. Use this package when you prefer the shorter import path.
package graphflow

import (
	"github.com/BaSui01/graphflow/workflow"
)

// Sentinel node names marking the entry and exit of every graph.
const (
	Start = workflow.Start
	End   = workflow.End
)

// State is the mergeable key-value state passed between nodes.
type State = workflow.State

// Schema declares the state fields and their merge behavior.
type Schema = workflow.Schema

// GraphBuilder accumulates nodes and edges before Compile.
type GraphBuilder = workflow.GraphBuilder

// CompiledGraph is a validated, executable graph.
type CompiledGraph = workflow.CompiledGraph

// NodeFunc is the signature of a graph node.
type NodeFunc = workflow.NodeFunc

// RouterFunc picks the label of the branch to follow.
type RouterFunc = workflow.RouterFunc

// Trace records the visited node sequence and timings of one run.
type Trace = workflow.Trace

// NewGraph starts a graph definition over the given state schema.
var NewGraph = workflow.NewGraph

// NewSchema builds a state schema, rejecting duplicate or invalid fields.
var NewSchema = workflow.NewSchema

// MustSchema is NewSchema that panics on error, for package-level schemas.
var MustSchema = workflow.MustSchema

// ScalarField declares a last-write-wins field.
var ScalarField = workflow.ScalarField

// AppendField declares an accumulating list field.
var AppendField = workflow.AppendField

// WithLogger attaches a zap logger to the graph.
var WithLogger = workflow.WithLogger

// WithMetrics attaches a collector recording run and node metrics.
var WithMetrics = workflow.WithMetrics

// WithStepLimit caps the number of node invocations in a run.
var WithStepLimit = workflow.WithStepLimit

// WithTrace records the visited node sequence into the given Trace.
var WithTrace = workflow.WithTrace
