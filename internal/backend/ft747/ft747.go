// Package ft747 drives the Yaesu FT-747GX over its 4800 baud CAT
// interface. Commands are five-byte blocks, four parameter bytes followed
// by an opcode; the status opcode returns a block the driver decodes for
// reads and probing.
package ft747

import (
	"fmt"
	"time"

	"github.com/radio-control/rigcore/internal/rig"
)

// Model is the registry identifier for the FT-747GX.
const Model rig.ModelID = 101

// CAT opcodes.
const (
	opSelectVFO = 0x05
	opSetFreq   = 0x0A
	opSetMode   = 0x0C
	opStatus    = 0x10
)

// statusLen is the size of the update block the radio returns for opStatus.
const statusLen = 28

// Offsets into the status block.
const (
	statusFreqOffset = 1
	statusVFOOffset  = 5
	statusModeOffset = 6
)

var modeCodes = map[rig.Mode]byte{
	rig.ModeLSB: 0x00,
	rig.ModeUSB: 0x01,
	rig.ModeCW:  0x02,
	rig.ModeAM:  0x04,
	rig.ModeFM:  0x08,
}

// Caps describes the FT-747GX. The CAT port runs fixed 4800 8N2 with no
// handshake.
var Caps = &rig.Caps{
	Model:     Model,
	ModelName: "FT-747GX",
	MfgName:   "Yaesu",
	Version:   "0.2",

	PortType:       rig.PortSerial,
	SerialRateMin:  4800,
	SerialRateMax:  4800,
	SerialDataBits: 8,
	SerialStopBits: 2,

	Timeout: 2 * time.Second,
	Retry:   2,

	HasFunc: rig.FuncNoiseBlanker,
	PTTType: rig.PTTRig,

	Backend: &Backend{BackendBase: rig.BackendBase{ModelID: Model}},
}

// Backend implements the CAT protocol. Per-handle state lives in the
// handle's Priv field.
type Backend struct {
	rig.BackendBase
}

type state struct {
	vfo rig.VFO
}

func (b *Backend) priv(r *rig.Rig) (*state, error) {
	st, ok := r.State.Priv.(*state)
	if !ok {
		return nil, rig.ErrInternal
	}
	return st, nil
}

// Init seeds the handle's private state.
func (b *Backend) Init(r *rig.Rig) error {
	r.State.Priv = &state{vfo: rig.VFOA}
	return nil
}

// Cleanup drops the private state.
func (b *Backend) Cleanup(r *rig.Rig) error {
	r.State.Priv = nil
	return nil
}

// Probe requests a status block and accepts the port if a full block
// comes back.
func (b *Backend) Probe(r *rig.Rig) error {
	_, err := b.readStatus(r)
	return err
}

// sendCommand writes one five-byte CAT block.
func (b *Backend) sendCommand(r *rig.Rig, p1, p2, p3, p4, opcode byte) error {
	if r.State.Port == nil {
		return rig.ErrIO
	}
	block := []byte{p1, p2, p3, p4, opcode}
	if _, err := r.State.Port.Write(block); err != nil {
		return fmt.Errorf("CAT write failed: %w", rig.ErrIO)
	}
	return nil
}

// readStatus requests and reads a full update block.
func (b *Backend) readStatus(r *rig.Rig) ([]byte, error) {
	if err := b.sendCommand(r, 0, 0, 0, 0, opStatus); err != nil {
		return nil, err
	}

	block := make([]byte, statusLen)
	read := 0
	for read < statusLen {
		n, err := r.State.Port.Read(block[read:])
		if err != nil {
			return nil, fmt.Errorf("CAT read failed: %w", rig.ErrIO)
		}
		if n == 0 {
			if read == 0 {
				return nil, fmt.Errorf("no status response: %w", rig.ErrTimeout)
			}
			return nil, fmt.Errorf("short status block (%d of %d bytes): %w",
				read, statusLen, rig.ErrProtocol)
		}
		read += n
	}
	return block, nil
}

// SetFrequency tunes to freq. The CAT interface carries the frequency as
// eight packed BCD digits in 10 Hz steps.
func (b *Backend) SetFrequency(r *rig.Rig, freq rig.Frequency) error {
	if freq <= 0 {
		return rig.ErrInvalidParameter
	}
	units := int64(freq) / 10
	if units > 99999999 {
		return rig.ErrInvalidParameter
	}

	var digits [4]byte
	for i := 3; i >= 0; i-- {
		lo := byte(units % 10)
		units /= 10
		hi := byte(units % 10)
		units /= 10
		digits[i] = hi<<4 | lo
	}
	return b.sendCommand(r, digits[0], digits[1], digits[2], digits[3], opSetFreq)
}

// GetFrequency reads the current frequency from a status block.
func (b *Backend) GetFrequency(r *rig.Rig) (rig.Frequency, error) {
	block, err := b.readStatus(r)
	if err != nil {
		return 0, err
	}

	var units int64
	for _, digit := range block[statusFreqOffset : statusFreqOffset+4] {
		hi, lo := digit>>4, digit&0x0F
		if hi > 9 || lo > 9 {
			return 0, fmt.Errorf("invalid BCD digit %#02x: %w", digit, rig.ErrProtocol)
		}
		units = units*100 + int64(hi)*10 + int64(lo)
	}
	return rig.Frequency(units * 10), nil
}

// SetMode selects the operating mode.
func (b *Backend) SetMode(r *rig.Rig, mode rig.Mode) error {
	code, ok := modeCodes[mode]
	if !ok {
		return fmt.Errorf("mode %v not supported: %w", mode, rig.ErrInvalidParameter)
	}
	return b.sendCommand(r, code, 0, 0, 0, opSetMode)
}

// GetMode reads the current mode from a status block.
func (b *Backend) GetMode(r *rig.Rig) (rig.Mode, error) {
	block, err := b.readStatus(r)
	if err != nil {
		return rig.ModeNone, err
	}
	for mode, code := range modeCodes {
		if code == block[statusModeOffset] {
			return mode, nil
		}
	}
	return rig.ModeNone, fmt.Errorf("unknown mode code %#02x: %w",
		block[statusModeOffset], rig.ErrProtocol)
}

// SetVFO selects VFO A or B. The radio has no other tunable registers.
func (b *Backend) SetVFO(r *rig.Rig, vfo rig.VFO) error {
	st, err := b.priv(r)
	if err != nil {
		return err
	}

	var sel byte
	switch vfo {
	case rig.VFOA:
		sel = 0x00
	case rig.VFOB:
		sel = 0x01
	default:
		return fmt.Errorf("VFO %v not supported: %w", vfo, rig.ErrInvalidParameter)
	}
	if err := b.sendCommand(r, sel, 0, 0, 0, opSelectVFO); err != nil {
		return err
	}
	st.vfo = vfo
	return nil
}

// GetVFO returns the last selected VFO. The status block reports it too,
// but the cached value avoids a round trip.
func (b *Backend) GetVFO(r *rig.Rig) (rig.VFO, error) {
	st, err := b.priv(r)
	if err != nil {
		return rig.VFOCurrent, err
	}
	return st.vfo, nil
}
