// Package preview serves rendered schema documents over HTTP.
//
// The server renders its source document at "/", accepts ad-hoc documents
// at POST /api/render, exposes Prometheus metrics, and, when watching is
// enabled, pushes reload messages to open pages over a WebSocket whenever
// the source file changes.
package preview
