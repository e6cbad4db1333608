package rig

import "fmt"

// Registry is an immutable collection of capability descriptors, one per
// model identifier. Build it once at startup and never mutate it; every
// lookup is a deterministic first-match scan, which is fine at registry
// scale.
type Registry struct {
	caps []*Caps
}

// NewRegistry builds a registry from a fixed descriptor list. Nil entries
// and duplicate model identifiers are rejected so the one-descriptor-per-
// model invariant holds from the start.
func NewRegistry(caps ...*Caps) (*Registry, error) {
	seen := make(map[ModelID]bool, len(caps))
	list := make([]*Caps, 0, len(caps))

	for _, c := range caps {
		if c == nil {
			return nil, newError(CodeInvalidParameter, fmt.Errorf("nil capability descriptor"))
		}
		if c.Backend == nil {
			return nil, newError(CodeInvalidParameter, fmt.Errorf("model %d has no backend", c.Model))
		}
		if seen[c.Model] {
			return nil, newError(CodeInvalidConfiguration, fmt.Errorf("duplicate model %d", c.Model))
		}
		seen[c.Model] = true
		list = append(list, c)
	}

	return &Registry{caps: list}, nil
}

// Lookup returns the capability descriptor for a model, or an error when
// the model is not registered. The descriptor is shared; callers must not
// mutate it.
func (g *Registry) Lookup(model ModelID) (*Caps, error) {
	for _, c := range g.caps {
		if c.Model == model {
			return c, nil
		}
	}
	return nil, newError(CodeInvalidConfiguration, fmt.Errorf("model %d not registered", model))
}

// Models returns the registered model identifiers in registration order.
func (g *Registry) Models() []ModelID {
	ids := make([]ModelID, len(g.caps))
	for i, c := range g.caps {
		ids[i] = c.Model
	}
	return ids
}

// NewRig looks up the model and allocates a handle around its descriptor,
// seeding the handle state from the descriptor defaults.
func (g *Registry) NewRig(model ModelID, opts ...Option) (*Rig, error) {
	caps, err := g.Lookup(model)
	if err != nil {
		return nil, err
	}
	return newRig(caps, opts...)
}
