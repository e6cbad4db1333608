// Package riglist wires every linked backend into the process-wide
// capability registry. New backends get registered by adding their
// descriptor to the list below; nothing registers itself through package
// init side effects.
package riglist

import (
	"sync"

	"github.com/radio-control/rigcore/internal/backend/dummy"
	"github.com/radio-control/rigcore/internal/backend/ft747"
	"github.com/radio-control/rigcore/internal/rig"
)

var (
	once     sync.Once
	registry *rig.Registry
	buildErr error
)

// Registry returns the process-wide registry, building it exactly once on
// first use. The returned registry is immutable.
func Registry() (*rig.Registry, error) {
	once.Do(func() {
		registry, buildErr = rig.NewRegistry(
			dummy.Caps,
			ft747.Caps,
		)
	})
	return registry, buildErr
}
