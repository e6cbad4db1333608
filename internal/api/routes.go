package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/radio-control/rigcore/internal/auth"
	"github.com/radio-control/rigcore/internal/rig"
)

const apiV1 = "/api/v1"

// RegisterRoutes wires all v1 endpoints onto mux. Health is always open;
// reads need the read scope and mutations the control scope when auth is
// enabled.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(apiV1+"/health", s.handleHealth)

	mux.HandleFunc(apiV1+"/capabilities", s.readOnly(s.handleCapabilities))
	mux.HandleFunc(apiV1+"/capabilities/", s.readOnly(s.handleCapabilitiesByModel))

	mux.HandleFunc(apiV1+"/radio", s.readOnly(s.handleRadio))
	mux.HandleFunc(apiV1+"/radio/frequency", s.readOrControl(s.handleGetFrequency, s.handleSetFrequency))
	mux.HandleFunc(apiV1+"/radio/mode", s.readOrControl(s.handleGetMode, s.handleSetMode))
	mux.HandleFunc(apiV1+"/radio/vfo", s.readOrControl(s.handleGetVFO, s.handleSetVFO))

	mux.HandleFunc(apiV1+"/probe", s.authMW.RequireScope(auth.ScopeControl, s.handleProbe))

	mux.HandleFunc(apiV1+"/telemetry", s.readOnly(s.handleTelemetry))
}

// readOnly gates a GET-only handler on the read scope.
func (s *Server) readOnly(h http.HandlerFunc) http.HandlerFunc {
	gated := s.authMW.RequireScope(auth.ScopeRead, h)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
				"Only GET method is allowed", nil)
			return
		}
		gated(w, r)
	}
}

// readOrControl routes GET to a read-scoped handler and POST to a
// control-scoped one.
func (s *Server) readOrControl(get, post http.HandlerFunc) http.HandlerFunc {
	gatedGet := s.authMW.RequireScope(auth.ScopeRead, get)
	gatedPost := s.authMW.RequireScope(auth.ScopeControl, post)
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gatedGet(w, r)
		case http.MethodPost:
			gatedPost(w, r)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
				"Only GET and POST methods are allowed", nil)
		}
	}
}

// decodeStrict parses the request body as a single JSON object, rejecting
// unknown fields and trailing data.
func decodeStrict(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	subsystems := map[string]bool{
		"rig":       s.currentRig != nil,
		"registry":  s.registry != nil,
		"telemetry": s.telemetry != nil,
	}
	status := "ok"
	for _, up := range subsystems {
		if !up {
			status = "degraded"
		}
	}

	health := map[string]interface{}{
		"status":     status,
		"uptimeSec":  time.Since(s.startTime).Seconds(),
		"subsystems": subsystems,
	}

	if status == "ok" {
		WriteSuccess(w, health)
	} else {
		WriteError(w, http.StatusServiceUnavailable, "SERVICE_DEGRADED",
			"One or more subsystems are unavailable", health)
	}
}

// capsView is the JSON shape of a capability descriptor.
type capsView struct {
	Model      int    `json:"model"`
	ModelName  string `json:"modelName"`
	MfgName    string `json:"mfgName"`
	Version    string `json:"version"`
	PortType   int    `json:"portType"`
	SerialMin  int    `json:"serialRateMin"`
	SerialMax  int    `json:"serialRateMax"`
	Functions  uint64 `json:"functions"`
	Summary    string `json:"summary"`
	TimeoutMS  int64  `json:"timeoutMs"`
	RetryCount int    `json:"retry"`
}

func viewOfCaps(c *rig.Caps) capsView {
	return capsView{
		Model:      int(c.Model),
		ModelName:  c.ModelName,
		MfgName:    c.MfgName,
		Version:    c.Version,
		PortType:   int(c.PortType),
		SerialMin:  c.SerialRateMin,
		SerialMax:  c.SerialRateMax,
		Functions:  uint64(c.HasFunc),
		Summary:    c.Summary(),
		TimeoutMS:  c.Timeout.Milliseconds(),
		RetryCount: c.Retry,
	}
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Registry not available", nil)
		return
	}

	models := s.registry.Models()
	views := make([]capsView, 0, len(models))
	for _, model := range models {
		caps, err := s.registry.Lookup(model)
		if err != nil {
			continue
		}
		views = append(views, viewOfCaps(caps))
	}
	WriteSuccess(w, map[string]interface{}{"models": views})
}

func (s *Server) handleCapabilitiesByModel(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Registry not available", nil)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, apiV1+"/capabilities/")
	model, err := strconv.Atoi(raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_PARAMETER",
			"Model must be an integer", nil)
		return
	}

	caps, err := s.registry.Lookup(rig.ModelID(model))
	if err != nil {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Model not registered", nil)
		return
	}
	WriteSuccess(w, viewOfCaps(caps))
}

func (s *Server) requireRig(w http.ResponseWriter) bool {
	if s.currentRig == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"No rig attached", nil)
		return false
	}
	return true
}

// handleRadio reports the rig's current tuning state in one shot.
func (s *Server) handleRadio(w http.ResponseWriter, r *http.Request) {
	if !s.requireRig(w) {
		return
	}

	state := map[string]interface{}{
		"model":     viewOfCaps(s.currentRig.Caps()),
		"frequency": nil,
		"mode":      nil,
		"vfo":       nil,
	}
	if freq, err := s.currentRig.GetFrequency(); err == nil {
		state["frequency"] = int64(freq)
	}
	if mode, err := s.currentRig.GetMode(); err == nil {
		state["mode"] = mode.String()
	}
	if vfo, err := s.currentRig.GetVFO(); err == nil {
		state["vfo"] = vfo.String()
	}
	WriteSuccess(w, state)
}

func (s *Server) handleGetFrequency(w http.ResponseWriter, r *http.Request) {
	if !s.requireRig(w) {
		return
	}
	freq, err := s.currentRig.GetFrequency()
	if err != nil {
		WriteRigError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"frequencyHz": int64(freq)})
}

func (s *Server) handleSetFrequency(w http.ResponseWriter, r *http.Request) {
	if !s.requireRig(w) {
		return
	}

	var req struct {
		FrequencyHz int64 `json:"frequencyHz"`
	}
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Malformed JSON or unknown fields", nil)
		return
	}
	if req.FrequencyHz <= 0 {
		WriteError(w, http.StatusBadRequest, "INVALID_PARAMETER",
			"frequencyHz must be positive", nil)
		return
	}

	if err := s.currentRig.SetFrequency(rig.Frequency(req.FrequencyHz)); err != nil {
		WriteRigError(w, err)
		return
	}
	s.publishState(map[string]any{"frequencyHz": req.FrequencyHz})
	WriteSuccess(w, map[string]interface{}{"frequencyHz": req.FrequencyHz})
}

func (s *Server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	if !s.requireRig(w) {
		return
	}
	mode, err := s.currentRig.GetMode()
	if err != nil {
		WriteRigError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"mode": mode.String()})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	if !s.requireRig(w) {
		return
	}

	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Malformed JSON or unknown fields", nil)
		return
	}

	mode, err := rig.ParseMode(req.Mode)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_PARAMETER",
			"Unknown mode", nil)
		return
	}

	if err := s.currentRig.SetMode(mode); err != nil {
		WriteRigError(w, err)
		return
	}
	s.publishState(map[string]any{"mode": mode.String()})
	WriteSuccess(w, map[string]interface{}{"mode": mode.String()})
}

func (s *Server) handleGetVFO(w http.ResponseWriter, r *http.Request) {
	if !s.requireRig(w) {
		return
	}
	vfo, err := s.currentRig.GetVFO()
	if err != nil {
		WriteRigError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"vfo": vfo.String()})
}

func (s *Server) handleSetVFO(w http.ResponseWriter, r *http.Request) {
	if !s.requireRig(w) {
		return
	}

	var req struct {
		VFO string `json:"vfo"`
	}
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Malformed JSON or unknown fields", nil)
		return
	}

	vfo, err := rig.ParseVFO(req.VFO)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_PARAMETER",
			"Unknown VFO", nil)
		return
	}

	if err := s.currentRig.SetVFO(vfo); err != nil {
		WriteRigError(w, err)
		return
	}
	s.publishState(map[string]any{"vfo": vfo.String()})
	WriteSuccess(w, map[string]interface{}{"vfo": vfo.String()})
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only POST method is allowed", nil)
		return
	}
	if s.prober == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Probing not available", nil)
		return
	}

	var req struct {
		PortPath string `json:"portPath"`
	}
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Malformed JSON or unknown fields", nil)
		return
	}
	if req.PortPath == "" {
		WriteError(w, http.StatusBadRequest, "INVALID_PARAMETER",
			"portPath is required", nil)
		return
	}

	caps, err := s.prober.Detect(req.PortPath)
	if err != nil {
		WriteRigError(w, err)
		return
	}
	WriteSuccess(w, viewOfCaps(caps))
}

func (s *Server) publishState(data map[string]any) {
	if s.telemetry != nil {
		s.telemetry.PublishState(data)
	}
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	if s.telemetry == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Telemetry service not available", nil)
		return
	}

	if err := s.telemetry.Subscribe(r.Context(), w, r); err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL",
			"Failed to subscribe to telemetry stream", nil)
	}
}
