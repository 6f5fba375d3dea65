//go:build !linux
// +build !linux

// Package openmm total memory stub for non-Linux platforms
package openmm

// getSystemMemory returns a conservative default on platforms without a
// sysinfo-style probe.
func getSystemMemory() uint64 {
	return defaultSystemMemory
}
