// Package registry holds the named post-transform hooks available to
// presets. Hook implementations live under modules/ and register themselves
// against a Registry instance at application startup; presets reference
// them by name in the manifest.
package registry
