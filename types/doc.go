// Package types holds shared primitive types used across GraphFlow
// packages: structured error codes and the error wrapper.
package types
