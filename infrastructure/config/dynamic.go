package config

import "sync/atomic"

// DynamicConfig holds the hot-reloadable settings. Readers never block.
type DynamicConfig struct {
	current atomic.Pointer[DynamicSettings]
}

// NewDynamicConfig creates a holder seeded with initial
func NewDynamicConfig(initial DynamicSettings) *DynamicConfig {
	d := &DynamicConfig{}
	d.Store(initial)
	return d
}

// Store replaces the current settings
func (d *DynamicConfig) Store(s DynamicSettings) {
	d.current.Store(&s)
}

// Snapshot returns a copy of the current settings
func (d *DynamicConfig) Snapshot() DynamicSettings {
	return *d.current.Load()
}

func (d *DynamicConfig) NotifySelfComment() bool {
	return d.current.Load().NotifySelfComment
}

func (d *DynamicConfig) MaxPageSize() int {
	return d.current.Load().MaxPageSize
}

// MaxSessionsPerIdentity returns the per-identity connection cap; zero means unlimited
func (d *DynamicConfig) MaxSessionsPerIdentity() int {
	return d.current.Load().MaxSessionsPerIdentity
}
