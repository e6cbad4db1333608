// Package api exposes rig control over HTTP with a JSON envelope and an
// SSE telemetry stream.
package api

import (
	"context"
	"net/http"

	"github.com/radio-control/rigcore/internal/rig"
	"github.com/radio-control/rigcore/internal/telemetry"
)

// RigPort is the minimal rig surface the handlers need.
type RigPort interface {
	Caps() *rig.Caps
	SetFrequency(freq rig.Frequency) error
	GetFrequency() (rig.Frequency, error)
	SetMode(mode rig.Mode) error
	GetMode() (rig.Mode, error)
	SetVFO(vfo rig.VFO) error
	GetVFO() (rig.VFO, error)
}

// RegistryPort is the capability-lookup surface the handlers need.
type RegistryPort interface {
	Models() []rig.ModelID
	Lookup(model rig.ModelID) (*rig.Caps, error)
}

// ProbePort detects which registered model answers on a port.
type ProbePort interface {
	Detect(portPath string) (*rig.Caps, error)
}

// TelemetryPort is the SSE surface: handlers subscribe clients and
// publish state changes after successful mutations.
type TelemetryPort interface {
	Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error
	PublishState(data map[string]any)
}

var _ RigPort = (*rig.Rig)(nil)
var _ RegistryPort = (*rig.Registry)(nil)
var _ TelemetryPort = (*telemetry.Hub)(nil)
