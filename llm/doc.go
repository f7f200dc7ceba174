// Package llm provides a minimal completion abstraction for the optional
// AI-assisted role matching path. The engine never requires an LLM: the
// keyword-scoring fallback in the infer package is always present, and any
// Client failure degrades to it silently.
package llm
