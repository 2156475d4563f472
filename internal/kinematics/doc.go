// Package kinematics implements the kinematic limit store for the Motion Control Container.
//
// The limit store is the single source of truth for the tunable velocity,
// speed-magnitude, acceleration, and deceleration bounds used by command
// validation. All mutation goes through ApplyUpdate, which keeps the derived
// squared-speed caches consistent with the bounds they are derived from.
//
// Architecture References:
//   - Architecture §4.1: Limit store atomicity and snapshot semantics
//   - Architecture §4.2: Speed validity predicate
package kinematics
