package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/internal/engine"
	"github.com/tradehook-lab/tradehook/internal/executor"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultLogPageSize = 20
	maxLogPageSize     = 100
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

// writeError maps coded engine errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.HasCode(err, errors.ErrCodeUserNotFound),
		errors.HasCode(err, errors.ErrCodeStrategyNotFound),
		errors.HasCode(err, errors.ErrCodeUnsupportedProvider):
		status = http.StatusNotFound
	case errors.HasCode(err, errors.ErrCodeStrategyExists):
		status = http.StatusConflict
	case errors.IsRetryable(err):
		// Nothing executed and nothing was logged; the caller may resend.
		status = http.StatusTooManyRequests

		w.Header().Set("Retry-After", "1")
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	}

	code := errors.ErrCodeUnknown
	var coded *errors.Error
	if errors.As(err, &coded) {
		code = coded.Code
	}

	s.writeJSON(w, status, map[string]any{
		"error": err.Error(),
		"code":  int(code),
	})
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := s.engine.ProcessSignal(r.Context(), vars["user"], vars["strategy"], vars["signal"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"users": s.engine.Users()})
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.engine.ListStrategies(mux.Vars(r)["user"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"strategies": snapshots})
}

type createStrategyRequest struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	LongSymbol     string   `json:"long_symbol"`
	ShortSymbol    string   `json:"short_symbol"`
	InitialBalance *float64 `json:"initial_balance"`
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var body createStrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	params := engine.CreateStrategyParams{DisplayName: body.DisplayName}

	if body.LongSymbol != "" {
		params.LongSymbol = optional.Some(body.LongSymbol)
	}

	if body.ShortSymbol != "" {
		params.ShortSymbol = optional.Some(body.ShortSymbol)
	}

	if body.InitialBalance != nil {
		params.InitialCash = optional.Some(decimal.NewFromFloat(*body.InitialBalance))
	}

	snapshot, err := s.engine.CreateStrategy(mux.Vars(r)["user"], body.Name, params)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, snapshot)
}

func (s *Server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	snapshot, err := s.engine.Snapshot(vars["user"], vars["strategy"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleDeleteStrategy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := s.engine.DeleteStrategy(vars["user"], vars["strategy"]); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleForce(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := s.engine.Force(r.Context(), vars["user"], vars["strategy"], types.ForceDirection(vars["direction"]))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

type startCooldownRequest struct {
	Hours *float64 `json:"hours"`
}

func (s *Server) handleStartCooldown(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var body startCooldownRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

			return
		}
	}

	duration := optional.None[time.Duration]()
	if body.Hours != nil {
		duration = optional.Some(time.Duration(*body.Hours * float64(time.Hour)))
	}

	info, err := s.engine.StartCooldown(vars["user"], vars["strategy"], duration)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleStopCooldown(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	info, err := s.engine.StopCooldown(vars["user"], vars["strategy"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, info)
}

type setBalanceRequest struct {
	Amount *float64 `json:"amount"`
}

func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var body setBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	if body.Amount == nil {
		s.writeError(w, errors.New(errors.ErrCodeMissingParameter, "amount is required"))

		return
	}

	info, err := s.engine.SetBalance(vars["user"], vars["strategy"], decimal.NewFromFloat(*body.Amount))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		s.writeError(w, err)

		return
	}

	limit, err := queryInt(r, "limit", defaultLogPageSize)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if limit > maxLogPageSize {
		limit = maxLogPageSize
	}

	entries, total, hasMore, err := s.engine.Logs(vars["user"], vars["strategy"], skip, limit)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"entries":  entries,
		"total":    total,
		"has_more": hasMore,
		"skip":     skip,
		"limit":    limit,
	})
}

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	providers := make([]executor.ProviderInfo, 0)

	for _, name := range executor.GetSupportedProviders() {
		info, err := executor.GetProviderInfo(name)
		if err != nil {
			continue
		}

		providers = append(providers, info)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
}

func (s *Server) handleProviderSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := executor.GetProviderConfigSchema(mux.Vars(r)["provider"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(schema))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be a non-negative integer", key)
	}

	return value, nil
}
