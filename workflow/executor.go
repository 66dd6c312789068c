package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/BaSui01/graphflow/workflow"

// runConfig carries per-run knobs; the compiled graph itself stays
// immutable across runs.
type runConfig struct {
	stepLimit int
	trace     *Trace
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// WithStepLimit aborts the run with a StepLimitExceededError once the given
// number of node invocations has been made without reaching the terminal
// marker. The engine imposes no limit of its own; graphs with cycles should
// always set one.
func WithStepLimit(n int) RunOption {
	return func(c *runConfig) {
		c.stepLimit = n
	}
}

// WithTrace records the visited node sequence and timings into t.
func WithTrace(t *Trace) RunOption {
	return func(c *runConfig) {
		c.trace = t
	}
}

// Invoke executes the graph from the start marker with the caller-supplied
// initial state and returns the accumulated state when the terminal marker
// is reached. Exactly one node is invoked per transition, in the single
// total order defined by the traversal. The engine applies no retries and
// no timeouts: cancellation belongs to the caller's ctx, timeouts to the
// nodes themselves.
func (g *CompiledGraph) Invoke(ctx context.Context, initial State, opts ...RunOption) (State, error) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	runID := uuid.NewString()
	logger := g.logger.With(zap.String("run_id", runID))

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "workflow.run")
	span.SetAttributes(
		attribute.String("graphflow.graph", g.name),
		attribute.String("graphflow.run_id", runID),
	)
	defer span.End()

	if cfg.trace != nil {
		cfg.trace.begin(runID, g.name)
	}

	start := time.Now()
	final, steps, err := g.run(ctx, logger, tracer, cfg, initial)
	elapsed := time.Since(start)

	status := "completed"
	if err != nil {
		status = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("run failed",
			zap.Int("steps", steps),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
	} else {
		logger.Info("run completed",
			zap.Int("steps", steps),
			zap.Duration("duration", elapsed),
		)
	}
	if cfg.trace != nil {
		cfg.trace.complete(err)
	}
	if g.collector != nil {
		g.collector.RecordRun(g.name, status, elapsed, steps)
	}
	return final, err
}

func (g *CompiledGraph) run(ctx context.Context, logger *zap.Logger, tracer trace.Tracer, cfg *runConfig, initial State) (State, int, error) {
	// Merging the initial values into an empty state validates them against
	// the schema and normalizes append fields to their sequence form.
	acc, err := g.schema.Merge(State{}, initial)
	if err != nil {
		return nil, 0, &NodeExecutionError{Node: Start, State: initial.Clone(), Err: err}
	}

	current := Start
	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			return acc, steps, err
		}

		next, err := g.successor(current, acc)
		if err != nil {
			return acc, steps, err
		}
		if next == End {
			return acc, steps, nil
		}
		if cfg.stepLimit > 0 && steps >= cfg.stepLimit {
			return acc, steps, &StepLimitExceededError{Limit: cfg.stepLimit, State: acc}
		}

		update, err := g.invokeNode(ctx, logger, tracer, cfg, next, acc)
		if err != nil {
			return acc, steps, err
		}
		merged, err := g.schema.Merge(acc, update)
		if err != nil {
			return acc, steps, &NodeExecutionError{Node: next, State: acc, Err: err}
		}
		acc = merged
		current = next
		steps++
	}
}

// successor resolves the next node name from the current position: a static
// lookup, or the conditional edge's router evaluated on the accumulated
// state. An unmapped router label is a RoutingError, never a silent fall
// through to the terminal marker.
func (g *CompiledGraph) successor(current string, acc State) (string, error) {
	if to, ok := g.edges[current]; ok {
		return to, nil
	}
	ce := g.conds[current]
	label := ce.router(acc)
	to, ok := ce.targets[label]
	if !ok {
		return "", &RoutingError{Node: current, Label: label}
	}
	g.logger.Debug("router resolved",
		zap.String("node", current),
		zap.String("label", label),
		zap.String("target", to),
	)
	return to, nil
}

func (g *CompiledGraph) invokeNode(ctx context.Context, logger *zap.Logger, tracer trace.Tracer, cfg *runConfig, name string, acc State) (State, error) {
	nodeCtx, span := tracer.Start(ctx, "workflow.node")
	span.SetAttributes(attribute.String("graphflow.node", name))
	defer span.End()

	var rec *NodeRecord
	if cfg.trace != nil {
		rec = cfg.trace.nodeStart(name)
	}

	logger.Debug("executing node", zap.String("node", name))
	start := time.Now()
	update, err := g.nodes[name](nodeCtx, acc.Clone())
	elapsed := time.Since(start)

	if cfg.trace != nil {
		cfg.trace.nodeEnd(rec, err)
	}

	status := "completed"
	if err != nil {
		status = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if g.collector != nil {
		g.collector.RecordNode(g.name, name, status, elapsed)
	}
	if err != nil {
		return nil, &NodeExecutionError{Node: name, State: acc, Err: err}
	}
	logger.Debug("node completed",
		zap.String("node", name),
		zap.Duration("duration", elapsed),
	)
	return update, nil
}
