package serial

import "time"

// Parity represents the parity mode.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// FlowControl represents the handshake mode.
type FlowControl int

const (
	FlowControlNone FlowControl = iota
	FlowControlXonXoff
	FlowControlRTSCTS
)

// Config holds the line parameters for a serial connection.
type Config struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      Parity
	FlowControl FlowControl

	// ReadTimeout bounds a single blocking Read. Zero means reads block
	// indefinitely. Granularity is a tenth of a second (VTIME).
	ReadTimeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults (9600 8N1).
func DefaultConfig() Config {
	return Config{
		BaudRate:    9600,
		DataBits:    8,
		StopBits:    1,
		Parity:      ParityNone,
		FlowControl: FlowControlNone,
		ReadTimeout: 2 * time.Second,
	}
}

// Validate checks the configuration against what the line discipline can
// express.
func (c Config) Validate() error {
	if !validBaudRates[c.BaudRate] {
		return ErrInvalidBaudRate
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return ErrInvalidConfig
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return ErrInvalidConfig
	}
	if c.ReadTimeout < 0 || c.ReadTimeout > 25500*time.Millisecond {
		return ErrInvalidConfig
	}
	return nil
}

// readTimeoutTenths converts ReadTimeout to VTIME deciseconds.
func (c Config) readTimeoutTenths() uint8 {
	return uint8(c.ReadTimeout / (100 * time.Millisecond))
}

// validBaudRates lists the line speeds the termios layer can express.
var validBaudRates = map[int]bool{
	50: true, 75: true, 110: true, 134: true, 150: true, 200: true,
	300: true, 600: true, 1200: true, 1800: true, 2400: true, 4800: true,
	9600: true, 19200: true, 38400: true, 57600: true, 115200: true,
	230400: true, 460800: true, 921600: true,
}
