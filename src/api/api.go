// Package api exposes the dispatcher over JSON/HTTP. Every write is queued for the
// next tick and answered with 202 Accepted.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hkaab/elevator.manager/src/dispatcher"
	"github.com/hkaab/elevator.manager/src/types"
)

type Dispatcher interface {
	Submit(payload types.CmdPayload) (uint64, error)
	Snapshot() dispatcher.Snapshot
}

type FlagLister interface {
	All() map[string]bool
}

type Server struct {
	engine Dispatcher
	flags  FlagLister
	mux    *http.ServeMux
}

type rideRequest struct {
	FromFloor     int  `json:"from_floor"`
	ToFloor       int  `json:"to_floor"`
	HasAccessCard bool `json:"has_access_card"`
}

type accepted struct {
	Seq    uint64 `json:"seq"`
	Status string `json:"status"`
}

type problem struct {
	Error string `json:"error"`
}

func NewServer(engine Dispatcher, flags FlagLister) *Server {
	s := &Server{engine: engine, flags: flags, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /api/elevator/status", s.status)
	s.mux.HandleFunc("POST /api/elevator/request/general", s.generalRequest)
	s.mux.HandleFunc("POST /api/elevator/request/private/{id}", s.privateRequest)
	s.mux.HandleFunc("POST /api/elevator/request/service", s.serviceRequest)
	s.mux.HandleFunc("POST /api/elevator/firealarm/{active}", s.fireAlarm)
	s.mux.HandleFunc("POST /api/elevator/issue/{id}/{hasIssue}", s.setIssue)
	s.mux.HandleFunc("POST /api/elevator/emergencycall/{id}", s.emergencyCall)
	s.mux.HandleFunc("GET /api/info/featureflags", s.featureFlags)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http api: %w", err)
	}
	slog.Info("HTTP API stopped")
	return nil
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) featureFlags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.flags.All())
}

func (s *Server) generalRequest(w http.ResponseWriter, r *http.Request) {
	var req rideRequest
	if !decode(w, r, &req) {
		return
	}
	s.submit(w, types.GeneralSummon{Origin: req.FromFloor, Destination: req.ToFloor})
}

func (s *Server) privateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req rideRequest
	if !decode(w, r, &req) {
		return
	}
	s.submit(w, types.PrivateSummon{ElevatorID: id, Origin: req.FromFloor, Destination: req.ToFloor})
}

func (s *Server) serviceRequest(w http.ResponseWriter, r *http.Request) {
	var req rideRequest
	if !decode(w, r, &req) {
		return
	}
	s.submit(w, types.ServiceSummon{Origin: req.FromFloor, Destination: req.ToFloor, HasAccessCard: req.HasAccessCard})
}

func (s *Server) fireAlarm(w http.ResponseWriter, r *http.Request) {
	active, ok := pathBool(w, r, "active")
	if !ok {
		return
	}
	if s.engine.Snapshot().FireAlarmActive == active {
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("fire alarm is already %s", onOff(active)))
		return
	}
	s.submit(w, types.FireAlarm{Active: active})
}

func (s *Server) setIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	hasIssue, ok := pathBool(w, r, "hasIssue")
	if !ok {
		return
	}
	elevator, found := s.engine.Snapshot().Elevator(id)
	if !found {
		writeProblem(w, http.StatusNotFound, fmt.Sprintf("elevator %d not found", id))
		return
	}
	if elevator.HasIssue == hasIssue {
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("elevator %d issue is already %s", id, onOff(hasIssue)))
		return
	}
	s.submit(w, types.SetIssue{ElevatorID: id, HasIssue: hasIssue})
}

func (s *Server) emergencyCall(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	elevator, found := s.engine.Snapshot().Elevator(id)
	if !found {
		writeProblem(w, http.StatusNotFound, fmt.Sprintf("elevator %d not found", id))
		return
	}
	if elevator.EmergencyCall {
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("emergency call already active on elevator %d", id))
		return
	}
	s.submit(w, types.EmergencyCall{ElevatorID: id})
}

func (s *Server) submit(w http.ResponseWriter, payload types.CmdPayload) {
	seq, err := s.engine.Submit(payload)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, accepted{Seq: seq, Status: "queued"})
	case errors.Is(err, dispatcher.ErrUnknownElevator):
		writeProblem(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dispatcher.ErrInvalidRequest), errors.Is(err, dispatcher.ErrGateDenied):
		writeProblem(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Submit failed", "kind", payload.Kind(), "err", err)
		writeProblem(w, http.StatusInternalServerError, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeProblem(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return false
	}
	return true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("%s must be an integer", name))
		return 0, false
	}
	return n, true
}

func pathBool(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	b, err := strconv.ParseBool(r.PathValue(name))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("%s must be true or false", name))
		return false, false
	}
	return b, true
}

func writeProblem(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, problem{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "err", err)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
