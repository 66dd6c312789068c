package workflow

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/BaSui01/graphflow/internal/metrics"
)

// Sentinel markers for the graph entry and terminal. Start has exactly one
// outgoing edge and is never executed; End has no outgoing edges and is
// never executed — reaching it completes the run.
const (
	Start = "__start__"
	End   = "__end__"
)

// NodeFunc is the node contract: given a read-only view of the accumulated
// state, return a new partial update. Nodes may perform I/O but must not
// retain or mutate the state they are given.
type NodeFunc func(ctx context.Context, state State) (State, error)

// RouterFunc is the decision function of a conditional edge. It maps the
// accumulated state to a label looked up in the edge's label→target table.
// Routers must be pure with respect to engine state and total over the
// labels declared for their edge.
type RouterFunc func(state State) string

type conditionalEdge struct {
	router  RouterFunc
	targets map[string]string
}

// GraphBuilder accumulates node and edge registrations for one graph.
// Registration problems that cannot fail their own call (dangling targets,
// unreachable nodes) are deferred and reported in aggregate by Compile.
type GraphBuilder struct {
	name       string
	schema     *Schema
	nodes      map[string]NodeFunc
	order      []string
	edges      map[string]string
	conds      map[string]*conditionalEdge
	violations []string
	logger     *zap.Logger
	collector  *metrics.Collector
}

// GraphOption configures a builder.
type GraphOption func(*GraphBuilder)

// WithLogger sets the logger used by the builder and every run of the
// compiled graph.
func WithLogger(logger *zap.Logger) GraphOption {
	return func(b *GraphBuilder) {
		b.logger = logger
	}
}

// WithMetrics attaches a collector recording run and node metrics.
func WithMetrics(c *metrics.Collector) GraphOption {
	return func(b *GraphBuilder) {
		b.collector = c
	}
}

// NewGraph creates a builder for a graph over the given state schema.
func NewGraph(name string, schema *Schema, opts ...GraphOption) *GraphBuilder {
	b := &GraphBuilder{
		name:   name,
		schema: schema,
		nodes:  make(map[string]NodeFunc),
		edges:  make(map[string]string),
		conds:  make(map[string]*conditionalEdge),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if schema == nil {
		b.violations = append(b.violations, "graph has no state schema")
	}
	return b
}

// AddNode registers a named node function. Registration fails immediately
// on a duplicate or reserved name; the builder holds no execution state, so
// the same compiled graph can later be run concurrently from independent
// initial states.
func (b *GraphBuilder) AddNode(name string, fn NodeFunc) error {
	if name == Start || name == End {
		return fmt.Errorf("node name %q is reserved", name)
	}
	if name == "" {
		return fmt.Errorf("node name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("node %q has nil function", name)
	}
	if _, dup := b.nodes[name]; dup {
		return &DuplicateNodeError{Node: name}
	}
	b.nodes[name] = fn
	b.order = append(b.order, name)
	return nil
}

// AddEdge declares a static edge from source to target. Start and End are
// valid source and target respectively. A source may carry either one
// static edge or one conditional edge, never both.
func (b *GraphBuilder) AddEdge(from, to string) *GraphBuilder {
	if b.hasOutgoing(from) {
		b.violations = append(b.violations,
			fmt.Sprintf("node %q already has an outgoing edge", from))
		return b
	}
	b.edges[from] = to
	return b
}

// AddConditionalEdge declares a conditional edge: at run time the router is
// invoked on the accumulated state and its label resolved through targets.
// Keeping the enumerable target table separate from the router keeps every
// reachable successor statically known to the compiler.
func (b *GraphBuilder) AddConditionalEdge(from string, router RouterFunc, targets map[string]string) *GraphBuilder {
	if b.hasOutgoing(from) {
		b.violations = append(b.violations,
			fmt.Sprintf("node %q already has an outgoing edge", from))
		return b
	}
	if router == nil {
		b.violations = append(b.violations,
			fmt.Sprintf("conditional edge at %q has nil router", from))
		return b
	}
	if len(targets) == 0 {
		b.violations = append(b.violations,
			fmt.Sprintf("conditional edge at %q has no targets", from))
		return b
	}
	copied := make(map[string]string, len(targets))
	for label, to := range targets {
		copied[label] = to
	}
	b.conds[from] = &conditionalEdge{router: router, targets: copied}
	return b
}

func (b *GraphBuilder) hasOutgoing(from string) bool {
	_, static := b.edges[from]
	_, cond := b.conds[from]
	return static || cond
}

// Compile validates the definition and freezes it into an immutable
// CompiledGraph. Every violation found is reported in one
// GraphDefinitionError. Compile is idempotent: it reads the builder without
// consuming it, and two compilations of the same definition behave
// identically.
func (b *GraphBuilder) Compile() (*CompiledGraph, error) {
	violations := append([]string(nil), b.violations...)

	if len(b.nodes) == 0 {
		violations = append(violations, "graph has no nodes")
	}
	if _, ok := b.conds[Start]; ok {
		violations = append(violations, "start marker cannot carry a conditional edge")
	}
	entry, hasEntry := b.edges[Start]
	if !hasEntry {
		violations = append(violations, "start marker has no outgoing edge")
	}
	if b.hasOutgoing(End) {
		violations = append(violations, "terminal marker cannot have outgoing edges")
	}

	for from, to := range b.edges {
		if from != Start && !b.registered(from) {
			violations = append(violations,
				fmt.Sprintf("edge source %q is not a registered node", from))
		}
		if to != End && !b.registered(to) {
			violations = append(violations,
				fmt.Sprintf("edge target %q is not a registered node", to))
		}
		if to == Start {
			violations = append(violations,
				fmt.Sprintf("edge from %q targets the start marker", from))
		}
	}
	for from, ce := range b.conds {
		if !b.registered(from) {
			violations = append(violations,
				fmt.Sprintf("conditional edge source %q is not a registered node", from))
		}
		for _, label := range sortedLabels(ce.targets) {
			to := ce.targets[label]
			if to != End && !b.registered(to) {
				violations = append(violations,
					fmt.Sprintf("conditional target %q (label %q at %q) is not a registered node", to, label, from))
			}
		}
	}

	// Dead ends stall a run before the terminal marker is reached.
	for _, name := range b.order {
		if !b.hasOutgoing(name) {
			violations = append(violations,
				fmt.Sprintf("node %q has no outgoing edge", name))
		}
	}

	if hasEntry {
		reachable := b.reach(entry)
		for _, name := range b.order {
			if !reachable[name] {
				violations = append(violations,
					fmt.Sprintf("node %q is not reachable from the start marker", name))
			}
		}
	}

	if len(violations) > 0 {
		return nil, &GraphDefinitionError{Graph: b.name, Violations: violations}
	}

	g := &CompiledGraph{
		name:      b.name,
		schema:    b.schema,
		nodes:     make(map[string]NodeFunc, len(b.nodes)),
		order:     append([]string(nil), b.order...),
		edges:     make(map[string]string, len(b.edges)),
		conds:     make(map[string]*conditionalEdge, len(b.conds)),
		logger:    b.logger.With(zap.String("graph", b.name)),
		collector: b.collector,
	}
	for name, fn := range b.nodes {
		g.nodes[name] = fn
	}
	for from, to := range b.edges {
		g.edges[from] = to
	}
	for from, ce := range b.conds {
		targets := make(map[string]string, len(ce.targets))
		for label, to := range ce.targets {
			targets[label] = to
		}
		g.conds[from] = &conditionalEdge{router: ce.router, targets: targets}
	}

	g.logger.Info("graph compiled",
		zap.Int("nodes", len(g.nodes)),
		zap.Int("static_edges", len(g.edges)),
		zap.Int("conditional_edges", len(g.conds)),
	)
	return g, nil
}

func (b *GraphBuilder) registered(name string) bool {
	_, ok := b.nodes[name]
	return ok
}

// reach walks every statically enumerable successor — static targets plus
// all labels of each conditional edge — from the entry node.
func (b *GraphBuilder) reach(entry string) map[string]bool {
	reachable := make(map[string]bool)
	stack := []string{entry}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == End || reachable[cur] || !b.registered(cur) {
			continue
		}
		reachable[cur] = true
		if to, ok := b.edges[cur]; ok {
			stack = append(stack, to)
		}
		if ce, ok := b.conds[cur]; ok {
			for _, to := range ce.targets {
				stack = append(stack, to)
			}
		}
	}
	return reachable
}

func sortedLabels(targets map[string]string) []string {
	labels := make([]string, 0, len(targets))
	for label := range targets {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// CompiledGraph is the validated, immutable, executable form of a graph.
// It holds no per-run state: any number of runs may execute concurrently
// against the same compiled graph.
type CompiledGraph struct {
	name      string
	schema    *Schema
	nodes     map[string]NodeFunc
	order     []string
	edges     map[string]string
	conds     map[string]*conditionalEdge
	logger    *zap.Logger
	collector *metrics.Collector
}

// Name returns the graph name.
func (g *CompiledGraph) Name() string { return g.name }

// Schema returns the state schema the graph runs over.
func (g *CompiledGraph) Schema() *Schema { return g.schema }

// Nodes returns node names in registration order.
func (g *CompiledGraph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// Entry returns the target of the start marker's edge.
func (g *CompiledGraph) Entry() string { return g.edges[Start] }

// StaticEdge returns the static successor of from, if any.
func (g *CompiledGraph) StaticEdge(from string) (string, bool) {
	to, ok := g.edges[from]
	return to, ok
}

// Branches returns a copy of the label→target table of the conditional
// edge at from, if any.
func (g *CompiledGraph) Branches(from string) (map[string]string, bool) {
	ce, ok := g.conds[from]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(ce.targets))
	for label, to := range ce.targets {
		out[label] = to
	}
	return out, true
}
