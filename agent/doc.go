// Package agent contains the example workflows shipped with GraphFlow: a
// fixed three-step pipeline, a rule-based classifier with conditional
// routing, and a chat workflow backed by an external model. Each is
// ordinary user code written against the workflow package's node contract.
package agent
