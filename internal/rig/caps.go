package rig

import (
	"fmt"
	"time"

	"github.com/radio-control/rigcore/internal/transport/serial"
)

// ModelID uniquely identifies one supported radio model in the registry.
type ModelID int

// Frequency is a tuning frequency in Hz.
type Frequency int64

// Mode identifies an operating mode.
type Mode int

// Operating modes understood by the dispatcher. Backends translate these to
// their wire representation.
const (
	ModeNone Mode = iota
	ModeAM
	ModeCW
	ModeUSB
	ModeLSB
	ModeRTTY
	ModeFM
	ModeWFM
)

// VFO selects one of a radio's tunable frequency registers.
type VFO int

const (
	VFOCurrent VFO = iota
	VFOA
	VFOB
	VFOMemory
)

// Function is a bitmask of device features a model supports (has_func).
type Function uint64

const (
	FuncFAGC Function = 1 << iota
	FuncNoiseBlanker
	FuncCompressor
	FuncVOX
	FuncToneSquelch
	FuncSBKin
	FuncFBKin
)

// PTTType describes how push-to-talk is keyed for a model.
type PTTType int

const (
	PTTNone PTTType = iota
	PTTRig
	PTTSerialDTR
	PTTSerialRTS
	PTTParallel
)

// PortType describes the transport kind a model talks over.
type PortType int

const (
	PortNone PortType = iota
	PortSerial
	PortNetwork
)

// Caps is the static capability descriptor for one radio model. Exactly one
// descriptor exists per model identifier; descriptors are shared read-only
// by every handle created for that model and must never be mutated after
// registration.
type Caps struct {
	Model     ModelID
	ModelName string
	MfgName   string
	Version   string

	// Default transport parameters, copied into the handle state at
	// creation time. BaudRate is seeded from SerialRateMax.
	PortType        PortType
	SerialRateMin   int
	SerialRateMax   int
	SerialDataBits  int
	SerialStopBits  int
	SerialParity    serial.Parity
	SerialHandshake serial.FlowControl

	// Timeout and Retry are hints stored on the handle for the backend to
	// consult; the core does not enforce them itself.
	Timeout time.Duration
	Retry   int

	// HasFunc is the feature-support mask tested by Rig.HasFunction.
	HasFunc Function

	PTTType PTTType

	// Backend is the model driver. Operations beyond identification are
	// optional and discovered through interface assertions; see ports.go.
	Backend Backend
}

// Summary returns a one-line printable description of the model and its
// supported serial rate bounds, for diagnostic tooling.
func (c *Caps) Summary() string {
	return fmt.Sprintf("%s %s (model %d), serial %d-%d baud",
		c.MfgName, c.ModelName, c.Model, c.SerialRateMin, c.SerialRateMax)
}
