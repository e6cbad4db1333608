// Package serial opens and configures POSIX serial ports for the rig
// transport layer. It covers exactly what rig backends need: raw-mode
// reads and writes with a bounded read timeout, speed, framing, parity and
// handshake configuration. Only Linux is supported; Open fails cleanly
// elsewhere.
package serial
