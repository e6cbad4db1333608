//go:build linux

package serial

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Port is an open serial connection. It implements io.ReadWriteCloser.
type Port struct {
	mu     sync.RWMutex
	fd     int
	config Config
	closed bool
}

// Open opens the serial device at path and applies the line configuration.
func Open(path string, cfg Config) (*Port, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		switch {
		case errors.Is(err, unix.ENOENT):
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
		case errors.Is(err, unix.EACCES):
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		default:
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
	}

	if err := configurePort(fd, cfg); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Port{fd: fd, config: cfg}, nil
}

// configurePort programs the line discipline: raw mode, speed, framing and
// handshake from cfg.
func configurePort(fd int, cfg Config) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %w", err)
	}

	// Raw mode, receiver enabled, modem control lines ignored.
	termios.Cflag = unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// VMIN=0 with VTIME from config gives bounded blocking reads.
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = cfg.readTimeoutTenths()

	baud, err := baudConstant(cfg.BaudRate)
	if err != nil {
		return err
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baud
	termios.Ispeed = baud
	termios.Ospeed = baud

	termios.Cflag &^= unix.CSIZE
	switch cfg.DataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	default:
		termios.Cflag |= unix.CS8
	}

	if cfg.StopBits == 2 {
		termios.Cflag |= unix.CSTOPB
	}

	switch cfg.Parity {
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		termios.Cflag |= unix.PARENB
	}

	switch cfg.FlowControl {
	case FlowControlRTSCTS:
		termios.Cflag |= unix.CRTSCTS
	case FlowControlXonXoff:
		termios.Iflag |= unix.IXON | unix.IXOFF
	}

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %w", err)
	}

	return nil
}

// baudConstant converts an integer baud rate to the termios constant.
func baudConstant(rate int) (uint32, error) {
	switch rate {
	case 50:
		return unix.B50, nil
	case 75:
		return unix.B75, nil
	case 110:
		return unix.B110, nil
	case 134:
		return unix.B134, nil
	case 150:
		return unix.B150, nil
	case 200:
		return unix.B200, nil
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 1800:
		return unix.B1800, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 921600:
		return unix.B921600, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// Read reads data from the serial port. It returns 0, nil on a VTIME
// expiry; callers decide whether that counts as a timeout.
func (p *Port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	return unix.Read(p.fd, buf)
}

// Write writes data to the serial port.
func (p *Port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	return unix.Write(p.fd, data)
}

// Close closes the serial port. Closing twice returns ErrPortClosed.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}
	err := unix.Close(p.fd)
	p.closed = true
	return err
}

// FlushInput discards unread input.
func (p *Port) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}
