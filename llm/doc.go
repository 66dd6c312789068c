// Package llm provides a minimal chat-completion client for
// OpenAI-compatible endpoints. The workflow engine has no knowledge of this
// package: model calls happen inside ordinary node functions.
package llm
