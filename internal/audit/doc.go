// Package audit implements the audit logger for the Motion Control Container.
//
// The audit logger provides append-only action logging with user, parameters,
// outcome, and timestamp information for compliance and debugging. Entries
// carry a correlation ID so API responses can be matched to their audit
// records.
//
// Architecture References:
//   - Architecture §8.6: Audit log schema
//   - Architecture §14.1: Privacy and compliance requirements
package audit
