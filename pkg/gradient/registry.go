package gradient

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownGradientName is returned when looking up a name that was never registered.
var ErrUnknownGradientName = errors.New("unknown gradient name")

// Registry maps gradient names to validated ramps. Names are case-insensitive and
// enumerate in registration order.
type Registry struct {
	ramps map[string]Ramp
	order []string

	sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{ramps: make(map[string]Ramp)}
}

// NewDefaultRegistry returns a registry holding the built-in palettes
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range builtinPalettes {
		if err := r.Register(p.name, p.stops); err != nil {
			// built-in tables are constants, a failure here is a programming error
			panic(err)
		}
	}
	return r
}

// NormalizeName folds a user supplied name to its registry key
func NormalizeName(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	return strings.NewReplacer("-", "_", " ", "_").Replace(n)
}

// Register validates the stops and stores them under name, replacing any previous entry
func (r *Registry) Register(name string, stops []Stop) error {
	key := NormalizeName(name)
	if key == "" {
		return errors.New("gradient name cannot be empty")
	}
	ramp, err := New(key, stops)
	if err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()
	if _, exists := r.ramps[key]; !exists {
		r.order = append(r.order, key)
	}
	r.ramps[key] = ramp
	return nil
}

// Lookup returns the ramp registered under name
func (r *Registry) Lookup(name string) (Ramp, error) {
	key := NormalizeName(name)

	r.RLock()
	defer r.RUnlock()
	ramp, ok := r.ramps[key]
	if !ok {
		return Ramp{}, errors.Wrapf(ErrUnknownGradientName, "%q", name)
	}
	return ramp, nil
}

// Names returns every registered name in registration order
func (r *Registry) Names() []string {
	r.RLock()
	defer r.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

var defaultRegistry = NewDefaultRegistry()

// Default returns the process-wide registry of built-in palettes
func Default() *Registry {
	return defaultRegistry
}

// Lookup resolves name against the default registry
func Lookup(name string) (Ramp, error) {
	return defaultRegistry.Lookup(name)
}

// Names lists the default registry
func Names() []string {
	return defaultRegistry.Names()
}
