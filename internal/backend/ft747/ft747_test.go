package ft747

import (
	"bytes"
	"errors"
	"testing"

	"github.com/radio-control/rigcore/internal/backendtest"
	"github.com/radio-control/rigcore/internal/rig"
	"github.com/radio-control/rigcore/internal/transport/serial"
)

// simPort emulates the radio side of the CAT link: it parses five-byte
// command blocks and answers status requests from simulated state.
type simPort struct {
	freqUnits int64 // 10 Hz steps
	modeCode  byte
	vfoSel    byte

	pending bytes.Buffer // queued response bytes
	inbound bytes.Buffer // partial command bytes
	mute    bool         // swallow status requests
	short   int          // if >0, answer status with this many bytes
	closed  bool
}

func (p *simPort) Write(data []byte) (int, error) {
	p.inbound.Write(data)
	for p.inbound.Len() >= 5 {
		var block [5]byte
		p.inbound.Read(block[:])
		p.handle(block)
	}
	return len(data), nil
}

func (p *simPort) handle(block [5]byte) {
	switch block[4] {
	case opSetFreq:
		var units int64
		for _, digit := range block[:4] {
			units = units*100 + int64(digit>>4)*10 + int64(digit&0x0F)
		}
		p.freqUnits = units
	case opSetMode:
		p.modeCode = block[0]
	case opSelectVFO:
		p.vfoSel = block[0]
	case opStatus:
		if p.mute {
			return
		}
		status := make([]byte, statusLen)
		units := p.freqUnits
		for i := statusFreqOffset + 3; i >= statusFreqOffset; i-- {
			lo := byte(units % 10)
			units /= 10
			hi := byte(units % 10)
			units /= 10
			status[i] = hi<<4 | lo
		}
		status[statusVFOOffset] = p.vfoSel
		status[statusModeOffset] = p.modeCode
		if p.short > 0 {
			status = status[:p.short]
		}
		p.pending.Write(status)
	}
}

func (p *simPort) Read(buf []byte) (int, error) {
	// A zero-byte read models the serial timeout.
	if p.pending.Len() == 0 {
		return 0, nil
	}
	return p.pending.Read(buf)
}

func (p *simPort) Close() error {
	p.closed = true
	return nil
}

type simTransport struct {
	port  *simPort
	fail  error
	opens int
}

func (t *simTransport) Open(path string, cfg serial.Config) (rig.Port, error) {
	t.opens++
	if t.fail != nil {
		return nil, t.fail
	}
	return t.port, nil
}

func newOpenRig(t *testing.T, port *simPort) *rig.Rig {
	t.Helper()

	reg, err := rig.NewRegistry(Caps)
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}
	r, err := reg.NewRig(Model, rig.WithTransport(&simTransport{port: port}))
	if err != nil {
		t.Fatalf("NewRig() failed: %v", err)
	}
	if err := r.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() {
		r.Close()
		r.Release()
	})
	return r
}

func TestSetFrequencyEncodesBCD(t *testing.T) {
	port := &simPort{}
	r := newOpenRig(t, port)

	if err := r.SetFrequency(14250000); err != nil {
		t.Fatalf("SetFrequency() failed: %v", err)
	}
	if port.freqUnits != 1425000 {
		t.Errorf("Radio tuned to %d units, want 1425000", port.freqUnits)
	}
}

func TestFrequencyRoundTrip(t *testing.T) {
	port := &simPort{}
	r := newOpenRig(t, port)

	if err := r.SetFrequency(7074000); err != nil {
		t.Fatalf("SetFrequency() failed: %v", err)
	}
	freq, err := r.GetFrequency()
	if err != nil {
		t.Fatalf("GetFrequency() failed: %v", err)
	}
	if freq != 7074000 {
		t.Errorf("GetFrequency() = %d, want 7074000", freq)
	}
}

func TestSetFrequencyRejectsOutOfRange(t *testing.T) {
	port := &simPort{}
	r := newOpenRig(t, port)

	if err := r.SetFrequency(0); !errors.Is(err, rig.ErrInvalidParameter) {
		t.Errorf("SetFrequency(0) = %v, want invalid parameter", err)
	}
	// Above eight BCD digits of 10 Hz units.
	if err := r.SetFrequency(1000000000); !errors.Is(err, rig.ErrInvalidParameter) {
		t.Errorf("SetFrequency(1 GHz) = %v, want invalid parameter", err)
	}
}

func TestModeRoundTrip(t *testing.T) {
	port := &simPort{}
	r := newOpenRig(t, port)

	if err := r.SetMode(rig.ModeCW); err != nil {
		t.Fatalf("SetMode() failed: %v", err)
	}
	if port.modeCode != 0x02 {
		t.Errorf("Radio mode code = %#02x, want 0x02", port.modeCode)
	}
	mode, err := r.GetMode()
	if err != nil {
		t.Fatalf("GetMode() failed: %v", err)
	}
	if mode != rig.ModeCW {
		t.Errorf("GetMode() = %v, want CW", mode)
	}
}

func TestUnsupportedModeRejected(t *testing.T) {
	port := &simPort{}
	r := newOpenRig(t, port)

	if err := r.SetMode(rig.ModeWFM); !errors.Is(err, rig.ErrInvalidParameter) {
		t.Errorf("SetMode(WFM) = %v, want invalid parameter", err)
	}
}

func TestVFOSelection(t *testing.T) {
	port := &simPort{}
	r := newOpenRig(t, port)

	if err := r.SetVFO(rig.VFOB); err != nil {
		t.Fatalf("SetVFO() failed: %v", err)
	}
	if port.vfoSel != 0x01 {
		t.Errorf("Radio VFO selector = %#02x, want 0x01", port.vfoSel)
	}
	vfo, err := r.GetVFO()
	if err != nil {
		t.Fatalf("GetVFO() failed: %v", err)
	}
	if vfo != rig.VFOB {
		t.Errorf("GetVFO() = %v, want VFOB", vfo)
	}

	if err := r.SetVFO(rig.VFOMemory); !errors.Is(err, rig.ErrInvalidParameter) {
		t.Errorf("SetVFO(memory) = %v, want invalid parameter", err)
	}
}

func TestGetFrequencyTimeout(t *testing.T) {
	port := &simPort{mute: true}
	r := newOpenRig(t, port)

	if _, err := r.GetFrequency(); !errors.Is(err, rig.ErrTimeout) {
		t.Errorf("GetFrequency() with silent radio = %v, want timeout", err)
	}
}

func TestGetFrequencyShortBlock(t *testing.T) {
	port := &simPort{short: 10}
	r := newOpenRig(t, port)

	if _, err := r.GetFrequency(); !errors.Is(err, rig.ErrProtocol) {
		t.Errorf("GetFrequency() with short block = %v, want protocol error", err)
	}
}

func TestProbeDetectsRadio(t *testing.T) {
	port := &simPort{}
	reg, err := rig.NewRegistry(Caps)
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	r, err := reg.Probe("/dev/ttyS0", rig.WithTransport(&simTransport{port: port}))
	if err != nil {
		t.Fatalf("Probe() failed: %v", err)
	}
	defer func() {
		r.Close()
		r.Release()
	}()

	if r.Caps().Model != Model {
		t.Errorf("Probe detected model %d, want %d", r.Caps().Model, Model)
	}
}

func TestConformance(t *testing.T) {
	backendtest.RunConformance(t, Caps,
		rig.WithTransport(&simTransport{port: &simPort{}}))
}

func TestProbeSilentPort(t *testing.T) {
	port := &simPort{mute: true}
	reg, err := rig.NewRegistry(Caps)
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	if _, err := reg.Probe("/dev/ttyS0", rig.WithTransport(&simTransport{port: port})); err == nil {
		t.Fatal("Expected probe failure on silent port")
	}
	if !port.closed {
		t.Error("Probe must close the port it opened")
	}
}
