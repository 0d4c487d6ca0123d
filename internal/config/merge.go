package config

import (
	"maps"
	"sync"
)

// WasExplicitlySet checks if a flag was explicitly set by the user
func WasExplicitlySet(flags map[string]bool, flagName string) bool {
	if flags == nil {
		return false
	}
	return flags[flagName]
}

// Merge returns override when flagName was set on the command line, base otherwise
func Merge[T any](base, override T, flagName string, flags map[string]bool) T {
	if WasExplicitlySet(flags, flagName) {
		return override
	}
	return base
}

// MergeStringSlice keeps base unless the flag was set with at least one value
func MergeStringSlice(base, override []string, flagName string, flags map[string]bool) []string {
	if WasExplicitlySet(flags, flagName) && len(override) > 0 {
		return override
	}
	return base
}

// FlagTracker records which command line flags the user set. It is shared
// between the CLI and the MCP handlers, so access is synchronized.
type FlagTracker struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewFlagTracker creates an empty tracker
func NewFlagTracker() *FlagTracker {
	return &FlagTracker{flags: make(map[string]bool)}
}

// NewFlagTrackerWithFlags creates a tracker seeded with a copy of flags
func NewFlagTrackerWithFlags(flags map[string]bool) *FlagTracker {
	ft := NewFlagTracker()
	maps.Copy(ft.flags, flags)
	return ft
}

// Set marks a flag as explicitly set
func (ft *FlagTracker) Set(flagName string) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.flags[flagName] = true
}

// WasSet checks if a flag was explicitly set
func (ft *FlagTracker) WasSet(flagName string) bool {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	return ft.flags[flagName]
}

// GetAll returns a copy of the tracked flags
func (ft *FlagTracker) GetAll() map[string]bool {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	return maps.Clone(ft.flags)
}

// Count returns the number of explicitly set flags
func (ft *FlagTracker) Count() int {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	n := 0
	for _, set := range ft.flags {
		if set {
			n++
		}
	}
	return n
}

func (ft *FlagTracker) MergeString(base, override, flagName string) string {
	if ft.WasSet(flagName) {
		return override
	}
	return base
}

func (ft *FlagTracker) MergeInt(base, override int, flagName string) int {
	if ft.WasSet(flagName) {
		return override
	}
	return base
}

func (ft *FlagTracker) MergeBool(base, override bool, flagName string) bool {
	if ft.WasSet(flagName) {
		return override
	}
	return base
}

func (ft *FlagTracker) MergeStringSlice(base, override []string, flagName string) []string {
	if ft.WasSet(flagName) && len(override) > 0 {
		return override
	}
	return base
}
