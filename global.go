package ioc

import (
	"sync"
)

// The process-wide default container is an explicit, optional slot for code
// that cannot receive a container through parameters. Reserve it for
// top-level bootstrap; prefer passing the container explicitly everywhere
// else.
var (
	defaultMu        sync.RWMutex
	defaultContainer *Container
)

// SetDefault installs c as the process-wide default container.
func SetDefault(c *Container) {
	defaultMu.Lock()
	defaultContainer = c
	defaultMu.Unlock()
}

// Default returns the process-wide default container, or nil if none was set.
func Default() *Container {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultContainer
}

// ResetDefault clears the process-wide default container.
func ResetDefault() {
	defaultMu.Lock()
	defaultContainer = nil
	defaultMu.Unlock()
}
