//go:build !linux

package serial

// Port is a placeholder on platforms without termios support.
type Port struct{}

// Open always fails on unsupported platforms.
func Open(path string, cfg Config) (*Port, error) {
	return nil, ErrUnsupported
}

func (p *Port) Read(buf []byte) (int, error)   { return 0, ErrUnsupported }
func (p *Port) Write(data []byte) (int, error) { return 0, ErrUnsupported }
func (p *Port) Close() error                   { return ErrUnsupported }
func (p *Port) FlushInput() error              { return ErrUnsupported }
