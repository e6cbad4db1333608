package rig

import "fmt"

// Probe tries to identify the device behind portPath by walking the
// registry and letting every probing-capable backend query the port. The
// first model whose probe answers wins and its handle is returned open;
// ownership transfers to the caller. Probing is best effort: models without
// a probe routine are skipped, false negatives are expected, and two models
// answering alike can produce a false positive. What is guaranteed is that
// a returned handle passed its own probe and that no handle leaks on any
// failure branch.
func (g *Registry) Probe(portPath string, opts ...Option) (*Rig, error) {
	for _, caps := range g.caps {
		prober, ok := caps.Backend.(Prober)
		if !ok {
			continue
		}

		candidate, err := newRig(caps, append(opts, WithPortPath(portPath))...)
		if err != nil {
			// Creation failed before any resource was acquired; try
			// the next model.
			continue
		}

		if err := candidate.Open(); err != nil {
			candidate.Release()
			continue
		}

		if err := prober.Probe(candidate); err == nil {
			return candidate, nil
		}

		candidate.Close()
		candidate.Release()
	}

	return nil, newError(CodeInvalidConfiguration, fmt.Errorf("no rig detected on %s", portPath))
}
