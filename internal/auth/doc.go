// Package auth implements bearer-token authentication for the Motion Control
// Container API.
//
// Tokens are JWTs signed with HS256 (shared secret) or RS256 (PEM public
// key). Claims carry a subject, roles, and scopes; handlers gate operations
// on scopes.
//
//   - OpenAPI v1 §1.1: "Send Authorization: Bearer <token> header on every request (except /health)"
//   - OpenAPI v1 §1.2: "viewer: read-only (get limits, check velocities, subscribe to telemetry)"
//   - OpenAPI v1 §1.2: "controller: all viewer privileges plus limit reconfiguration"
package auth
