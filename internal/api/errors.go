package api

import (
	"errors"
	"net/http"

	"github.com/radio-control/rigcore/internal/rig"
)

// WriteRigError maps a core error to its HTTP status and error code and
// writes the envelope. The rig error description travels in the message.
func WriteRigError(w http.ResponseWriter, err error) {
	code, status := classify(err)
	WriteError(w, status, code, err.Error(), nil)
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, rig.ErrInvalidParameter):
		return "INVALID_PARAMETER", http.StatusBadRequest
	case errors.Is(err, rig.ErrInvalidConfiguration):
		return "INVALID_CONFIGURATION", http.StatusConflict
	case errors.Is(err, rig.ErrNotImplemented):
		return "NOT_IMPLEMENTED", http.StatusNotImplemented
	case errors.Is(err, rig.ErrTimeout):
		return "TIMEOUT", http.StatusGatewayTimeout
	case errors.Is(err, rig.ErrIO):
		return "IO", http.StatusBadGateway
	case errors.Is(err, rig.ErrProtocol):
		return "PROTOCOL", http.StatusBadGateway
	case errors.Is(err, rig.ErrRejected):
		return "REJECTED", http.StatusUnprocessableEntity
	case errors.Is(err, rig.ErrTruncated):
		return "TRUNCATED", http.StatusBadGateway
	case errors.Is(err, rig.ErrMemoryShortage):
		return "INTERNAL", http.StatusInternalServerError
	default:
		return "INTERNAL", http.StatusInternalServerError
	}
}
