package observability

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Factory builds an observer that writes diagnostics through logger.
type Factory func(logger *slog.Logger) Observer

var (
	factories = map[string]Factory{
		"noop": func(*slog.Logger) Observer { return NoOpObserver{} },
		"slog": func(logger *slog.Logger) Observer { return NewSlogObserver(logger) },
	}
	mutex sync.RWMutex
)

// GetObserver builds the observer registered under name so configuration
// can select one with a string. "noop" and "slog" are always present. A
// nil logger means slog.Default().
func GetObserver(name string, logger *slog.Logger) (Observer, error) {
	mutex.RLock()
	factory, exists := factories[name]
	mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown observer: %s", name)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return factory(logger), nil
}

// RegisterObserver adds or replaces a named factory.
func RegisterObserver(name string, factory Factory) {
	mutex.Lock()
	defer mutex.Unlock()

	factories[name] = factory
}

// Observers lists the registered names in sorted order.
func Observers() []string {
	mutex.RLock()
	defer mutex.RUnlock()

	return slices.Sorted(maps.Keys(factories))
}
