// Package command implements the orchestrator that routes validated API
// intents to the limit store.
//
// The orchestrator owns input validation, audit logging, and telemetry
// publication; the store owns the limit state itself.
//
// Architecture References:
//   - Architecture §5.2: Command orchestration
//   - Architecture §8.6: Audit coupling
package command
