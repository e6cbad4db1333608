package rig

import (
	"errors"
	"fmt"
	"testing"
)

func TestDescribeKnownCodes(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{OK, "Command completed successfully"},
		{CodeInvalidParameter, "Invalid parameter"},
		{CodeInvalidConfiguration, "Invalid configuration"},
		{CodeMemoryShortage, "Memory shortage"},
		{CodeNotImplemented, "Feature not implemented"},
		{CodeTimeout, "Communication timed out"},
		{CodeIO, "IO error"},
		{CodeInternal, "Internal error"},
		{CodeProtocol, "Protocol error"},
		{CodeRejected, "Command rejected by the rig"},
		{CodeTruncated, "Command performed, but arg truncated, result not guaranteed"},
	}

	for _, tt := range tests {
		if got := Describe(tt.code); got != tt.want {
			t.Errorf("Describe(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestDescribeOutOfRange(t *testing.T) {
	for _, code := range []Code{-1, Code(len(descriptions)), 1000} {
		if got := Describe(code); got != "Unknown error code" {
			t.Errorf("Describe(%d) = %q, want the fallback string", code, got)
		}
	}
}

func TestErrorCodeMatching(t *testing.T) {
	wrapped := fmt.Errorf("reading response: %w", newError(CodeTimeout, errors.New("deadline exceeded")))

	if !errors.Is(wrapped, ErrTimeout) {
		t.Error("Expected a wrapped timeout to match ErrTimeout")
	}
	if errors.Is(wrapped, ErrIO) {
		t.Error("A timeout must not match ErrIO")
	}

	var rigErr *Error
	if !errors.As(wrapped, &rigErr) {
		t.Fatal("Expected errors.As to recover the taxonomy error")
	}
	if rigErr.Code != CodeTimeout {
		t.Errorf("Recovered code %d, want %d", rigErr.Code, CodeTimeout)
	}
}

func TestErrorMessageCarriesDescription(t *testing.T) {
	if ErrRejected.Error() != "Command rejected by the rig" {
		t.Errorf("ErrRejected.Error() = %q", ErrRejected.Error())
	}

	withCause := newError(CodeIO, errors.New("write: broken pipe"))
	if got := withCause.Error(); got != "IO error: write: broken pipe" {
		t.Errorf("Error() = %q", got)
	}
}
