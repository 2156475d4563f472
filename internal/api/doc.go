// Package api implements the HTTP surface of the Motion Control Container.
//
// All endpoints live under /api/v1 and answer with a unified envelope
// carrying a correlation ID. Request bodies are decoded strictly: unknown
// fields and trailing data are rejected.
//
// Architecture References:
//   - OpenAPI v1 §2: Endpoint catalogue
//   - OpenAPI v1 §2.2: Error envelope
package api
