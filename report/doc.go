// Package report turns a sealed run summary into operator-facing artifacts:
// the JSON document the external PDF renderer consumes, the evidence sinks
// drivers write screenshots and captured snippets through, and an optional
// Redis pub/sub hand-off of the finished document.
package report
