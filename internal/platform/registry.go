package platform

import (
	"sync"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/logging"
)

// Sentinel errors for registry operations.
var (
	// ErrFamilyAlreadyRegistered is returned when a family already has a
	// strategy.
	ErrFamilyAlreadyRegistered = errors.New("platform family already registered")

	// ErrInvalidFamily is returned for families outside [Families].
	ErrInvalidFamily = errors.New("invalid platform family")
)

// Factory builds a strategy from its collaborators.
type Factory func(Deps) Strategy

// Registry maps families to strategies. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	deps      Deps
	factories map[Family]Factory
}

// NewRegistry returns an empty registry whose strategies receive deps.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = logging.NewDiscard()
	}
	if deps.Options.FTPURL == "" {
		deps.Options.FTPURL = DefaultFTPURL
	}
	return &Registry{
		deps:      deps,
		factories: make(map[Family]Factory),
	}
}

// DefaultRegistry returns a registry with a strategy for every family.
func DefaultRegistry(deps Deps) *Registry {
	r := NewRegistry(deps)
	for f, factory := range map[Family]Factory{
		Windows:    newWindows,
		DebianLike: newDebian,
		FedoraLike: newFedora,
		MacOS:      newMacOS,
		Unknown:    newUnknown,
	} {
		_ = r.Register(f, factory)
	}
	return r
}

// Register adds a factory for family.
func (r *Registry) Register(family Family, factory Factory) error {
	if !validFamily(family) || factory == nil {
		return ErrInvalidFamily
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[family]; exists {
		return ErrFamilyAlreadyRegistered
	}
	r.factories[family] = factory
	return nil
}

// For returns the strategy for the profile's family, falling back to the
// Unknown strategy.
func (r *Registry) For(profile Profile) Strategy {
	r.mu.RLock()
	factory, ok := r.factories[profile.Family]
	if !ok {
		factory, ok = r.factories[Unknown]
	}
	r.mu.RUnlock()

	if !ok {
		return newUnknown(r.deps)
	}
	return factory(r.deps)
}

// Families returns the registered families in [Families] order.
func (r *Registry) Families() []Family {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Family, 0, len(r.factories))
	for _, f := range Families() {
		if _, ok := r.factories[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func validFamily(f Family) bool {
	for _, known := range Families() {
		if f == known {
			return true
		}
	}
	return false
}
