// Package dummy provides a portless, in-memory rig backend. It behaves
// like a well-mannered transceiver without touching any hardware, which
// makes it the default model for the daemon in development and the
// reference backend for exercising the dispatcher.
package dummy

import (
	"time"

	"github.com/radio-control/rigcore/internal/rig"
)

// Model is the registry identifier of the dummy rig.
const Model rig.ModelID = 1

// Caps is the capability descriptor registered for the dummy rig. The
// serial parameters are nominal; the dummy never opens a port.
var Caps = &rig.Caps{
	Model:          Model,
	ModelName:      "Dummy",
	MfgName:        "rigcore",
	Version:        "0.1",
	PortType:       rig.PortNone,
	SerialRateMin:  300,
	SerialRateMax:  38400,
	SerialDataBits: 8,
	SerialStopBits: 1,
	Timeout:        200 * time.Millisecond,
	Retry:          3,
	HasFunc:        rig.FuncFAGC | rig.FuncNoiseBlanker | rig.FuncVOX,
	PTTType:        rig.PTTRig,
	Backend:        &Backend{rig.BackendBase{ModelID: Model}},
}

// state is the dummy's private per-handle block, stored in State.Priv.
type state struct {
	freq rig.Frequency
	mode rig.Mode
	vfo  rig.VFO
	open bool
}

// Backend implements the dummy rig driver. It is stateless; all per-handle
// data lives in the handle's Priv field.
type Backend struct {
	rig.BackendBase
}

// Init seeds the private state with a plausible resting frequency.
func (b *Backend) Init(r *rig.Rig) error {
	r.State.Priv = &state{
		freq: 14250000,
		mode: rig.ModeUSB,
		vfo:  rig.VFOA,
	}
	return nil
}

// Open marks the simulated radio powered on.
func (b *Backend) Open(r *rig.Rig) error {
	s, err := priv(r)
	if err != nil {
		return err
	}
	s.open = true
	return nil
}

// Close powers the simulated radio off.
func (b *Backend) Close(r *rig.Rig) error {
	s, err := priv(r)
	if err != nil {
		return err
	}
	s.open = false
	return nil
}

// Cleanup drops the private state.
func (b *Backend) Cleanup(r *rig.Rig) error {
	r.State.Priv = nil
	return nil
}

func (b *Backend) SetFrequency(r *rig.Rig, freq rig.Frequency) error {
	s, err := priv(r)
	if err != nil {
		return err
	}
	if freq <= 0 {
		return rig.ErrRejected
	}
	s.freq = freq
	return nil
}

func (b *Backend) GetFrequency(r *rig.Rig) (rig.Frequency, error) {
	s, err := priv(r)
	if err != nil {
		return 0, err
	}
	return s.freq, nil
}

func (b *Backend) SetMode(r *rig.Rig, mode rig.Mode) error {
	s, err := priv(r)
	if err != nil {
		return err
	}
	s.mode = mode
	return nil
}

func (b *Backend) GetMode(r *rig.Rig) (rig.Mode, error) {
	s, err := priv(r)
	if err != nil {
		return rig.ModeNone, err
	}
	return s.mode, nil
}

func (b *Backend) SetVFO(r *rig.Rig, vfo rig.VFO) error {
	s, err := priv(r)
	if err != nil {
		return err
	}
	s.vfo = vfo
	return nil
}

func (b *Backend) GetVFO(r *rig.Rig) (rig.VFO, error) {
	s, err := priv(r)
	if err != nil {
		return rig.VFOCurrent, err
	}
	return s.vfo, nil
}

// priv recovers the dummy state from the handle.
func priv(r *rig.Rig) (*state, error) {
	s, ok := r.State.Priv.(*state)
	if !ok {
		return nil, rig.ErrInternal
	}
	return s, nil
}
