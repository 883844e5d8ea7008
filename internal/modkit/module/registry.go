package module

import "sync"

// process wide port bundles, filled while the API mounts
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register records ports under the module name, replacing earlier ones
func Register(name string, ports any) {
	mu.Lock()
	defer mu.Unlock()
	reg[name] = ports
}

// Lookup finds T in the ports registered under name
func Lookup[T any](name string) (T, bool) {
	mu.RLock()
	ports, ok := reg[name]
	mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	return find[T](ports)
}

// Reset empties the registry
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	reg = map[string]any{}
}
