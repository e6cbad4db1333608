package riglist

import (
	"testing"

	"github.com/radio-control/rigcore/internal/backend/dummy"
	"github.com/radio-control/rigcore/internal/backend/ft747"
)

func TestRegistryBuildsOnce(t *testing.T) {
	first, err := Registry()
	if err != nil {
		t.Fatalf("Registry() failed: %v", err)
	}
	second, err := Registry()
	if err != nil {
		t.Fatalf("Registry() failed on second call: %v", err)
	}
	if first != second {
		t.Error("Expected the same registry instance on every call")
	}
}

func TestRegistryContainsDummy(t *testing.T) {
	reg, err := Registry()
	if err != nil {
		t.Fatalf("Registry() failed: %v", err)
	}

	caps, err := reg.Lookup(dummy.Model)
	if err != nil {
		t.Fatalf("Lookup(dummy) failed: %v", err)
	}
	if caps.ModelName != "Dummy" {
		t.Errorf("Unexpected model name %q", caps.ModelName)
	}
}

func TestRegistryContainsFT747(t *testing.T) {
	reg, err := Registry()
	if err != nil {
		t.Fatalf("Registry() failed: %v", err)
	}

	caps, err := reg.Lookup(ft747.Model)
	if err != nil {
		t.Fatalf("Lookup(ft747) failed: %v", err)
	}
	if caps.MfgName != "Yaesu" {
		t.Errorf("Unexpected manufacturer %q", caps.MfgName)
	}
}
