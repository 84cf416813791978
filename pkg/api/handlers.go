package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/stakelist/pkg/biglist"
	"github.com/ssargent/stakelist/pkg/codec"
	"github.com/ssargent/stakelist/pkg/store"
)

const maxAppendBody = 4096

// statusFor maps ledger errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, biglist.ErrFull):
		return http.StatusInsufficientStorage
	case errors.Is(err, biglist.ErrIndexOutOfRange):
		return http.StatusNotFound
	case codec.IsDecodeError(err), errors.Is(err, biglist.ErrCountOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, start time.Time, err error) {
	s.metrics.RecordLedgerOperation(op, false, time.Since(start))
	sendError(w, err.Error(), statusFor(err))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListValidators returns every stored position in append order
func (s *Server) handleListValidators(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entries, err := s.ledger.Validators()
	if err != nil {
		s.fail(w, "list", start, err)
		return
	}

	out := make([]ValidatorEntry, 0, len(entries))
	for _, e := range entries {
		entry := ValidatorEntry{Index: e.Index}
		if e.Err != nil {
			entry.Error = e.Err.Error()
		} else {
			v := e.Validator
			entry.Validator = &v
		}
		out = append(out, entry)
	}

	s.metrics.RecordLedgerOperation("list", true, time.Since(start))
	sendSuccessFor(w, r, http.StatusOK, out)
}

// handleAppend stores one validator record
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AppendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAppendBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.metrics.RecordLedgerOperation("append", false, time.Since(start))
		sendError(w, fmt.Sprintf("Invalid JSON in request body: %v", err), http.StatusBadRequest)
		return
	}

	index, err := s.ledger.Append(req.Validator())
	if err != nil {
		s.fail(w, "append", start, err)
		return
	}

	s.metrics.RecordLedgerOperation("append", true, time.Since(start))
	sendSuccessFor(w, r, http.StatusCreated, AppendResponse{
		Index:             index,
		RemainingCapacity: s.ledger.Stats().RemainingCapacity,
	})
}

// handleGetValidator returns the record at {index}
func (s *Server) handleGetValidator(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		s.metrics.RecordLedgerOperation("get", false, time.Since(start))
		sendError(w, "Index must be a non-negative integer", http.StatusBadRequest)
		return
	}

	v, err := s.ledger.Get(index)
	if err != nil {
		s.fail(w, "get", start, err)
		return
	}

	s.metrics.RecordLedgerOperation("get", true, time.Since(start))
	sendSuccessFor(w, r, http.StatusOK, ValidatorEntry{Index: index, Validator: &v})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.ledger.Stats()
	s.metrics.UpdateLedgerStats(stats)
	sendSuccessFor(w, r, http.StatusOK, stats)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := s.ledger.Verify()
	if err != nil {
		s.fail(w, "verify", start, err)
		return
	}
	s.metrics.RecordLedgerOperation("verify", res.OK(), time.Since(start))
	sendSuccessFor(w, r, http.StatusOK, res)
}

// handleRaw streams the used buffer prefix exactly as stored
func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	raw, err := s.ledger.Raw()
	if err != nil {
		s.fail(w, "raw", start, err)
		return
	}
	s.metrics.RecordLedgerOperation("raw", true, time.Since(start))

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// handleCompact rewrites the buffer, dropping corrupt positions and, with
// ?drop_inactive=true, inactive validators
func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var keep func(codec.Validator) bool
	if dropInactive, _ := strconv.ParseBool(r.URL.Query().Get("drop_inactive")); dropInactive {
		keep = store.DropInactive
	}

	res, err := s.ledger.Compact(keep)
	if err != nil {
		s.fail(w, "compact", start, err)
		return
	}
	s.metrics.RecordLedgerOperation("compact", true, time.Since(start))
	s.metrics.UpdateLedgerStats(s.ledger.Stats())
	sendSuccessFor(w, r, http.StatusOK, res)
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if s.snapshots == nil {
		sendError(w, "Snapshot storage is not configured", http.StatusServiceUnavailable)
		return
	}

	data, err := s.ledger.Snapshot()
	if err != nil {
		s.fail(w, "snapshot", start, err)
		return
	}

	id, err := s.snapshots.Save(data)
	if err != nil {
		s.fail(w, "snapshot", start, err)
		return
	}

	s.metrics.RecordLedgerOperation("snapshot", true, time.Since(start))
	sendSuccessFor(w, r, http.StatusCreated, map[string]interface{}{"id": id.String(), "size": len(data)})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		sendError(w, "Snapshot storage is not configured", http.StatusServiceUnavailable)
		return
	}

	infos, err := s.snapshots.List()
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list snapshots: %v", err), http.StatusInternalServerError)
		return
	}
	sendSuccessFor(w, r, http.StatusOK, infos)
}
