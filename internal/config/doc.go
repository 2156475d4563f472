// Package config implements the configuration source for the Motion Control Container.
//
// The configuration source resolves kinematic limit values by canonical name
// (including legacy parameter aliasing), merges baseline defaults with an
// optional YAML file and MCC_* environment overrides, and carries the service
// timing configuration. The limit store never sees a deprecated name.
//
// Architecture References:
//   - MC-TIMING §3-5: Timing configuration constraints
//   - Architecture §8.4: Configuration management patterns
package config
