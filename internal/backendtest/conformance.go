// Package backendtest provides a model-agnostic conformance suite for rig
// backends. A backend passing the suite behaves correctly under the
// lifecycle rules and advertises only operations it implements.
package backendtest

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/radio-control/rigcore/internal/rig"
)

// Result is the outcome of one conformance check.
type Result struct {
	TestName string
	Passed   bool
	Error    string
	Duration time.Duration
}

// Report aggregates the results for one model.
type Report struct {
	ModelName     string
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Results       []Result
	OverallPassed bool
	Duration      time.Duration
}

// RunConformance runs the complete conformance suite against the model
// described by caps. Options are forwarded to every handle created, so
// serial-backed models can inject a fake transport.
func RunConformance(t *testing.T, caps *rig.Caps, opts ...rig.Option) {
	t.Helper()
	start := time.Now()

	report := &Report{
		ModelName:     caps.ModelName,
		OverallPassed: true,
	}

	reg, err := rig.NewRegistry(caps)
	if err != nil {
		t.Fatalf("Registration failed: %v", err)
	}

	runLifecycleChecks(reg, caps, opts, report)
	runDispatchChecks(reg, caps, opts, report)
	runFeatureMaskChecks(reg, caps, opts, report)

	report.Duration = time.Since(start)
	printReport(t, report)

	if !report.OverallPassed {
		t.Fatalf("Backend conformance failed: %d/%d checks passed",
			report.PassedTests, report.TotalTests)
	}
}

func (r *Report) add(name string, start time.Time, err error) {
	result := Result{
		TestName: name,
		Passed:   err == nil,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Error = err.Error()
		r.FailedTests++
		r.OverallPassed = false
	} else {
		r.PassedTests++
	}
	r.TotalTests++
	r.Results = append(r.Results, result)
}

func runLifecycleChecks(reg *rig.Registry, caps *rig.Caps, opts []rig.Option, report *Report) {
	start := time.Now()
	report.add("Lifecycle_FullCycle", start, func() error {
		r, err := reg.NewRig(caps.Model, opts...)
		if err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		if err := r.Open(); err != nil {
			return fmt.Errorf("open failed: %w", err)
		}
		if err := r.Close(); err != nil {
			return fmt.Errorf("close failed: %w", err)
		}
		if err := r.Release(); err != nil {
			return fmt.Errorf("release failed: %w", err)
		}
		return nil
	}())

	start = time.Now()
	report.add("Lifecycle_ReleaseWithoutOpen", start, func() error {
		r, err := reg.NewRig(caps.Model, opts...)
		if err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		if err := r.Release(); err != nil {
			return fmt.Errorf("release of never-opened handle failed: %w", err)
		}
		return nil
	}())

	start = time.Now()
	report.add("Lifecycle_ReleasedHandleRejectsOps", start, func() error {
		r, err := reg.NewRig(caps.Model, opts...)
		if err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		if err := r.Release(); err != nil {
			return fmt.Errorf("release failed: %w", err)
		}
		if err := r.Open(); !errors.Is(err, rig.ErrInvalidConfiguration) {
			return fmt.Errorf("open after release = %v, want lifecycle rejection", err)
		}
		return nil
	}())

	start = time.Now()
	report.add("Lifecycle_DoubleOpenRejected", start, func() error {
		r, err := reg.NewRig(caps.Model, opts...)
		if err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		defer func() {
			r.Close()
			r.Release()
		}()
		if err := r.Open(); err != nil {
			return fmt.Errorf("open failed: %w", err)
		}
		if err := r.Open(); !errors.Is(err, rig.ErrInvalidConfiguration) {
			return fmt.Errorf("second open = %v, want lifecycle rejection", err)
		}
		return nil
	}())
}

func runDispatchChecks(reg *rig.Registry, caps *rig.Caps, opts []rig.Option, report *Report) {
	r, err := reg.NewRig(caps.Model, opts...)
	if err != nil {
		start := time.Now()
		report.add("Dispatch_CreateHandle", start, err)
		return
	}
	defer func() {
		r.Close()
		r.Release()
	}()
	if err := r.Open(); err != nil {
		start := time.Now()
		report.add("Dispatch_OpenHandle", start, err)
		return
	}

	_, hasSetFreq := caps.Backend.(rig.FrequencySetter)
	_, hasGetFreq := caps.Backend.(rig.FrequencyGetter)

	start := time.Now()
	report.add("Dispatch_Frequency", start, func() error {
		if hasSetFreq && hasGetFreq {
			if err := r.SetFrequency(7074000); err != nil {
				return fmt.Errorf("set failed: %w", err)
			}
			freq, err := r.GetFrequency()
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}
			if freq != 7074000 {
				return fmt.Errorf("round trip returned %d, want 7074000", freq)
			}
			return nil
		}
		if !hasSetFreq {
			if err := r.SetFrequency(7074000); !errors.Is(err, rig.ErrNotImplemented) {
				return fmt.Errorf("unimplemented set = %v, want not-implemented", err)
			}
		}
		if !hasGetFreq {
			if _, err := r.GetFrequency(); !errors.Is(err, rig.ErrNotImplemented) {
				return fmt.Errorf("unimplemented get = %v, want not-implemented", err)
			}
		}
		return nil
	}())

	_, hasSetMode := caps.Backend.(rig.ModeSetter)
	_, hasGetMode := caps.Backend.(rig.ModeGetter)

	start = time.Now()
	report.add("Dispatch_Mode", start, func() error {
		if hasSetMode && hasGetMode {
			if err := r.SetMode(rig.ModeCW); err != nil {
				return fmt.Errorf("set failed: %w", err)
			}
			mode, err := r.GetMode()
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}
			if mode != rig.ModeCW {
				return fmt.Errorf("round trip returned %v, want CW", mode)
			}
			return nil
		}
		if !hasSetMode {
			if err := r.SetMode(rig.ModeCW); !errors.Is(err, rig.ErrNotImplemented) {
				return fmt.Errorf("unimplemented set = %v, want not-implemented", err)
			}
		}
		return nil
	}())

	_, hasSetVFO := caps.Backend.(rig.VFOSetter)
	_, hasGetVFO := caps.Backend.(rig.VFOGetter)

	start = time.Now()
	report.add("Dispatch_VFO", start, func() error {
		if hasSetVFO && hasGetVFO {
			if err := r.SetVFO(rig.VFOA); err != nil {
				return fmt.Errorf("set failed: %w", err)
			}
			vfo, err := r.GetVFO()
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}
			if vfo != rig.VFOA {
				return fmt.Errorf("round trip returned %v, want VFOA", vfo)
			}
			return nil
		}
		if !hasSetVFO {
			if err := r.SetVFO(rig.VFOA); !errors.Is(err, rig.ErrNotImplemented) {
				return fmt.Errorf("unimplemented set = %v, want not-implemented", err)
			}
		}
		return nil
	}())
}

func runFeatureMaskChecks(reg *rig.Registry, caps *rig.Caps, opts []rig.Option, report *Report) {
	start := time.Now()
	report.add("Features_MaskMatchesCaps", start, func() error {
		r, err := reg.NewRig(caps.Model, opts...)
		if err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		defer r.Release()

		probes := []rig.Function{
			rig.FuncFAGC, rig.FuncNoiseBlanker, rig.FuncCompressor,
			rig.FuncVOX, rig.FuncToneSquelch, rig.FuncSBKin, rig.FuncFBKin,
		}
		for _, fn := range probes {
			has, err := r.HasFunction(fn)
			if err != nil {
				return fmt.Errorf("HasFunction(%d) failed: %w", fn, err)
			}
			if want := caps.HasFunc&fn != 0; has != want {
				return fmt.Errorf("HasFunction(%d) = %v, want %v", fn, has, want)
			}
		}
		return nil
	}())
}

func printReport(t *testing.T, report *Report) {
	t.Helper()
	t.Logf("\n%s", strings.Repeat("=", 72))
	t.Logf("BACKEND CONFORMANCE REPORT")
	t.Logf("Model: %s", report.ModelName)
	t.Logf("Total: %d  Passed: %d  Failed: %d  Overall: %s  Duration: %v",
		report.TotalTests, report.PassedTests, report.FailedTests,
		map[bool]string{true: "PASS", false: "FAIL"}[report.OverallPassed],
		report.Duration)
	t.Logf("%s", strings.Repeat("-", 72))
	for _, result := range report.Results {
		status := "PASS"
		if !result.Passed {
			status = "FAIL"
		}
		t.Logf("%-38s %-6s %-12s %s", result.TestName, status,
			result.Duration.String(), result.Error)
	}
	t.Logf("%s", strings.Repeat("=", 72))
}
