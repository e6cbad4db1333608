package rig

import "fmt"

var modeNames = map[Mode]string{
	ModeNone: "NONE",
	ModeAM:   "AM",
	ModeCW:   "CW",
	ModeUSB:  "USB",
	ModeLSB:  "LSB",
	ModeRTTY: "RTTY",
	ModeFM:   "FM",
	ModeWFM:  "WFM",
}

// String returns the conventional short name for the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a short mode name back to its Mode value.
func ParseMode(name string) (Mode, error) {
	for mode, n := range modeNames {
		if n == name {
			return mode, nil
		}
	}
	return ModeNone, newError(CodeInvalidParameter, fmt.Errorf("unknown mode %q", name))
}

var vfoNames = map[VFO]string{
	VFOCurrent: "CURR",
	VFOA:       "VFOA",
	VFOB:       "VFOB",
	VFOMemory:  "MEM",
}

// String returns the conventional short name for the VFO.
func (v VFO) String() string {
	if name, ok := vfoNames[v]; ok {
		return name
	}
	return fmt.Sprintf("VFO(%d)", int(v))
}

// ParseVFO maps a short VFO name back to its VFO value.
func ParseVFO(name string) (VFO, error) {
	for vfo, n := range vfoNames {
		if n == name {
			return vfo, nil
		}
	}
	return VFOCurrent, newError(CodeInvalidParameter, fmt.Errorf("unknown VFO %q", name))
}
