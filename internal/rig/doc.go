// Package rig is the hardware-abstraction core for radio transceivers: a
// registry of per-model capability descriptors, a device-handle lifecycle
// (create, open, operate, close, release), a generic command dispatcher
// that applies cross-cutting policy before delegating to model backends,
// and a best-effort prober for unknown hardware.
//
// The core is synchronous and lock-free. Capability descriptors are shared
// read-only across handles; each handle exclusively owns its state block
// and transport connection. Model protocol implementations and the serial
// transport live outside this package and plug in through the interfaces in
// ports.go.
package rig
