// Ports (interfaces) the rig core consumes from its collaborators: model
// backends and the transport layer.
package rig

import (
	"io"
	"time"

	"github.com/radio-control/rigcore/internal/transport/serial"
)

// Backend is the contract every model driver satisfies. Identification is
// the only required method; every protocol operation is optional and the
// dispatcher discovers support through assertions against the capability
// interfaces below. Per-handle backend state belongs in State.Priv, never
// on the Backend value itself, so one Backend may serve many handles.
type Backend interface {
	Model() ModelID
}

// Initializer lets a backend populate State.Priv when a handle is created.
type Initializer interface {
	Init(r *Rig) error
}

// Opener is called after the transport opened successfully.
type Opener interface {
	Open(r *Rig) error
}

// Closer is called before the transport is released.
type Closer interface {
	Close(r *Rig) error
}

// Cleaner frees backend-private state when a handle is released.
type Cleaner interface {
	Cleanup(r *Rig) error
}

// Prober issues a model-specific identification query over an open handle.
// A nil return means the device on the port answered as this model would.
type Prober interface {
	Probe(r *Rig) error
}

// FrequencySetter and friends are the per-operation capability interfaces
// the dispatcher delegates to.
type FrequencySetter interface {
	SetFrequency(r *Rig, freq Frequency) error
}

type FrequencyGetter interface {
	GetFrequency(r *Rig) (Frequency, error)
}

type ModeSetter interface {
	SetMode(r *Rig, mode Mode) error
}

type ModeGetter interface {
	GetMode(r *Rig) (Mode, error)
}

type VFOSetter interface {
	SetVFO(r *Rig, vfo VFO) error
}

type VFOGetter interface {
	GetVFO(r *Rig) (VFO, error)
}

// BackendBase carries the model identity for backend implementations, the
// same way adapters embed a common base in the container.
type BackendBase struct {
	ModelID ModelID
}

// Model returns the model identifier this backend serves.
func (b BackendBase) Model() ModelID { return b.ModelID }

// Port is an open transport connection owned by exactly one handle.
type Port interface {
	io.ReadWriteCloser
}

// Transport opens connections for the lifecycle state machine. The
// production implementation wraps the serial package; tests inject fakes.
type Transport interface {
	Open(path string, cfg serial.Config) (Port, error)
}

// serialTransport is the default Transport, backed by a POSIX serial port.
type serialTransport struct{}

func (serialTransport) Open(path string, cfg serial.Config) (Port, error) {
	return serial.Open(path, cfg)
}

// AuditSink receives one record per dispatcher operation. The audit package
// provides the production implementation; a nil sink disables auditing.
type AuditSink interface {
	LogAction(action string, rigID string, outcome string, latency time.Duration)
}
