package rig

import (
	"time"

	"github.com/google/uuid"

	"github.com/radio-control/rigcore/internal/transport/serial"
)

// DefaultPortPath is the port a freshly created handle points at until the
// caller overrides it.
const DefaultPortPath = "/dev/ttyS0"

// stage tracks where a handle is in its life cycle. Transitions are
// one-directional: Initialized -> Opened -> Closed -> Released. There is no
// re-open from Closed; a fresh handle is required.
type stage int

const (
	stageInitialized stage = iota + 1
	stageOpened
	stageClosed
	stageReleased
)

func (s stage) String() string {
	switch s {
	case stageInitialized:
		return "initialized"
	case stageOpened:
		return "opened"
	case stageClosed:
		return "closed"
	case stageReleased:
		return "released"
	default:
		return "unknown"
	}
}

// State is the mutable per-handle block. Transport parameters are seeded
// from the descriptor defaults at creation and may be overridden before the
// handle is opened. Priv belongs to the backend; the core never looks
// inside it.
type State struct {
	PortType  PortType
	PortPath  string
	BaudRate  int
	DataBits  int
	StopBits  int
	Parity    serial.Parity
	Handshake serial.FlowControl

	// Timeout and Retry are hints for the backend's protocol exchanges;
	// the core stores them but does not enforce them.
	Timeout time.Duration
	Retry   int

	PTTType PTTType

	// Calibration is the multiplicative correction applied to requested
	// frequencies. Zero disables compensation.
	Calibration float64

	// Port is the open transport connection, nil outside the Opened stage.
	Port Port

	// Priv is backend-private extension data, opaque to the core.
	Priv any
}

// Rig is a device handle: a shared read-only capability descriptor plus an
// exclusively owned state block. A Rig must not be used from multiple
// goroutines; concurrent handles for the same model are safe because the
// descriptor is never mutated.
type Rig struct {
	// ID correlates audit records for this handle.
	ID string

	// State may be adjusted between creation and Open.
	State State

	caps      *Caps
	stage     stage
	transport Transport
	audit     AuditSink
}

// Option adjusts a handle at creation time.
type Option func(*Rig)

// WithTransport replaces the default serial transport, typically with a
// fake in tests.
func WithTransport(t Transport) Option {
	return func(r *Rig) { r.transport = t }
}

// WithAudit attaches an audit sink that receives one record per dispatcher
// operation.
func WithAudit(sink AuditSink) Option {
	return func(r *Rig) { r.audit = sink }
}

// WithPortPath overrides the default port path before the handle is opened.
func WithPortPath(path string) Option {
	return func(r *Rig) { r.State.PortPath = path }
}

// newRig allocates a handle around caps and lets the backend populate its
// private state. A backend init failure is propagated and no handle is
// returned.
func newRig(caps *Caps, opts ...Option) (*Rig, error) {
	if caps == nil {
		return nil, ErrInvalidParameter
	}

	r := &Rig{
		ID:        uuid.NewString(),
		caps:      caps,
		stage:     stageInitialized,
		transport: serialTransport{},
		State: State{
			PortType:    caps.PortType,
			PortPath:    DefaultPortPath,
			BaudRate:    caps.SerialRateMax, // fastest by default
			DataBits:    caps.SerialDataBits,
			StopBits:    caps.SerialStopBits,
			Parity:      caps.SerialParity,
			Handshake:   caps.SerialHandshake,
			Timeout:     caps.Timeout,
			Retry:       caps.Retry,
			PTTType:     caps.PTTType,
			Calibration: 0,
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	if init, ok := caps.Backend.(Initializer); ok {
		if err := init.Init(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Caps returns the shared capability descriptor. Callers must treat it as
// read-only.
func (r *Rig) Caps() *Caps { return r.caps }

// valid reports whether the handle can be dispatched to at all: non-nil,
// carrying a descriptor, and not yet released.
func (r *Rig) valid() error {
	if r == nil || r.caps == nil {
		return ErrInvalidParameter
	}
	if r.stage == stageReleased {
		return ErrInvalidConfiguration
	}
	return nil
}

// Open connects the handle to its transport and runs the backend's open
// hook. The handle must be freshly created; opening twice without an
// intervening Close fails with an invalid-configuration error. On transport
// failure the transport's error is returned unchanged and the handle stays
// in its created stage.
func (r *Rig) Open() error {
	if err := r.valid(); err != nil {
		return err
	}
	if r.stage != stageInitialized {
		return ErrInvalidConfiguration
	}

	switch r.State.PortType {
	case PortSerial:
		port, err := r.transport.Open(r.State.PortPath, serial.Config{
			BaudRate:    r.State.BaudRate,
			DataBits:    r.State.DataBits,
			StopBits:    r.State.StopBits,
			Parity:      r.State.Parity,
			FlowControl: r.State.Handshake,
			ReadTimeout: r.State.Timeout,
		})
		if err != nil {
			return err
		}
		r.State.Port = port
	case PortNone:
		// Portless models (simulators) have nothing to connect.
	default:
		// Network and other transports are not wired up yet.
		return ErrInvalidConfiguration
	}

	if op, ok := r.caps.Backend.(Opener); ok {
		if err := op.Open(r); err != nil {
			// A half-opened handle is unusable; give the transport
			// back before surfacing the backend failure.
			if r.State.Port != nil {
				r.State.Port.Close()
				r.State.Port = nil
			}
			return err
		}
	}

	r.stage = stageOpened
	return nil
}

// Close runs the backend's close hook and releases the transport
// unconditionally. Closing a handle that was never opened, or closing
// twice, is a caller error and is rejected.
func (r *Rig) Close() error {
	if err := r.valid(); err != nil {
		return err
	}
	if r.stage != stageOpened {
		return ErrInvalidConfiguration
	}

	var backendErr error
	if cl, ok := r.caps.Backend.(Closer); ok {
		backendErr = cl.Close(r)
	}

	var portErr error
	if r.State.Port != nil {
		portErr = r.State.Port.Close()
		r.State.Port = nil
	}

	r.stage = stageClosed

	if backendErr != nil {
		return backendErr
	}
	return portErr
}

// Release frees the backend's private state and retires the handle. A
// never-opened handle may be released directly; an opened one must be
// closed first. The handle must not be used afterwards.
func (r *Rig) Release() error {
	if err := r.valid(); err != nil {
		return err
	}
	if r.stage != stageInitialized && r.stage != stageClosed {
		return ErrInvalidConfiguration
	}

	var err error
	if c, ok := r.caps.Backend.(Cleaner); ok {
		err = c.Cleanup(r)
	}

	r.State.Priv = nil
	r.stage = stageReleased
	return err
}

// SetFrequency tunes the rig. When a calibration factor is set the
// requested frequency is corrected before it reaches the backend, so
// hardware with a known reference offset can be compensated transparently.
func (r *Rig) SetFrequency(freq Frequency) error {
	start := time.Now()
	if err := r.valid(); err != nil {
		return err
	}

	if r.State.Calibration != 0 {
		freq = Frequency(r.State.Calibration * float64(freq))
	}

	bk, ok := r.caps.Backend.(FrequencySetter)
	if !ok {
		r.logAction("setFrequency", "NOT_IMPLEMENTED", start)
		return ErrNotImplemented
	}

	err := bk.SetFrequency(r, freq)
	r.logAction("setFrequency", outcome(err), start)
	return err
}

// GetFrequency reads the current frequency from the rig.
func (r *Rig) GetFrequency() (Frequency, error) {
	start := time.Now()
	if err := r.valid(); err != nil {
		return 0, err
	}

	bk, ok := r.caps.Backend.(FrequencyGetter)
	if !ok {
		r.logAction("getFrequency", "NOT_IMPLEMENTED", start)
		return 0, ErrNotImplemented
	}

	freq, err := bk.GetFrequency(r)
	r.logAction("getFrequency", outcome(err), start)
	return freq, err
}

// SetMode sets the operating mode.
func (r *Rig) SetMode(mode Mode) error {
	start := time.Now()
	if err := r.valid(); err != nil {
		return err
	}

	bk, ok := r.caps.Backend.(ModeSetter)
	if !ok {
		r.logAction("setMode", "NOT_IMPLEMENTED", start)
		return ErrNotImplemented
	}

	err := bk.SetMode(r, mode)
	r.logAction("setMode", outcome(err), start)
	return err
}

// GetMode reads the current operating mode.
func (r *Rig) GetMode() (Mode, error) {
	start := time.Now()
	if err := r.valid(); err != nil {
		return ModeNone, err
	}

	bk, ok := r.caps.Backend.(ModeGetter)
	if !ok {
		r.logAction("getMode", "NOT_IMPLEMENTED", start)
		return ModeNone, ErrNotImplemented
	}

	mode, err := bk.GetMode(r)
	r.logAction("getMode", outcome(err), start)
	return mode, err
}

// SetVFO selects the active VFO.
func (r *Rig) SetVFO(vfo VFO) error {
	start := time.Now()
	if err := r.valid(); err != nil {
		return err
	}

	bk, ok := r.caps.Backend.(VFOSetter)
	if !ok {
		r.logAction("setVFO", "NOT_IMPLEMENTED", start)
		return ErrNotImplemented
	}

	err := bk.SetVFO(r, vfo)
	r.logAction("setVFO", outcome(err), start)
	return err
}

// GetVFO reads the active VFO.
func (r *Rig) GetVFO() (VFO, error) {
	start := time.Now()
	if err := r.valid(); err != nil {
		return VFOCurrent, err
	}

	bk, ok := r.caps.Backend.(VFOGetter)
	if !ok {
		r.logAction("getVFO", "NOT_IMPLEMENTED", start)
		return VFOCurrent, ErrNotImplemented
	}

	vfo, err := bk.GetVFO(r)
	r.logAction("getVFO", outcome(err), start)
	return vfo, err
}

// HasFunction tests a feature flag against the descriptor's support mask.
// An invalid handle reports an error, which is distinct from a valid handle
// lacking the feature.
func (r *Rig) HasFunction(fn Function) (bool, error) {
	if err := r.valid(); err != nil {
		return false, err
	}
	return r.caps.HasFunc&fn != 0, nil
}

// logAction forwards one dispatcher record to the audit sink, if any.
func (r *Rig) logAction(action, result string, start time.Time) {
	if r.audit == nil {
		return
	}
	r.audit.LogAction(action, r.ID, result, time.Since(start))
}

// outcome maps a dispatcher result to an audit outcome token.
func outcome(err error) string {
	if err == nil {
		return "SUCCESS"
	}
	return "ERROR"
}
