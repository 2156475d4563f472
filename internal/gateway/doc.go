// Package gateway implements the reconfiguration gateway for the Motion Control Container.
//
// The gateway sits between parameter-change transports (a file watcher in
// production, a channel-fed transport in tests) and the kinematic limit
// store. It owns debouncing: change batches arriving inside the debounce
// window collapse into a single atomic applyUpdate delivery, last write wins
// per name. Registered listeners observe every applied batch, which is how
// limit changes reach telemetry and audit.
//
// Architecture References:
//   - Architecture §6.2: Reconfiguration delivery contract
//   - MC-TIMING §4.1: Debounce window constraints
package gateway
