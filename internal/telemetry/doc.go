// Package telemetry implements the event hub for the Motion Control Container.
//
// The hub fans out limit-change and validation events to all SSE clients on a
// single stream and buffers the last N events for reconnection support using
// Last-Event-ID headers.
//
// Architecture References:
//   - Telemetry SSE §2: Event streaming protocol
//   - MC-TIMING §5: Event buffering constraints
package telemetry
