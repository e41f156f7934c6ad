package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/obrador/fabricacion/pkg/application/dto"
	"github.com/obrador/fabricacion/pkg/application/services/recompute"
	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/obrador/fabricacion/pkg/domain/repositories"
	"github.com/obrador/fabricacion/pkg/infrastructure/repositories/document"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Failure *entities.Failure `json:"failure,omitempty"`
}

type catalogResponse struct {
	Entries []entities.IngredientPriceEntry `json:"entries"`
}

type replaceCatalogResponse struct {
	Entries int                            `json:"entries"`
	Report  *dto.RecomputeReport           `json:"report,omitempty"`
	Results []entities.ManufacturingResult `json:"results,omitempty"`
}

type recomputeResponse struct {
	Report  dto.RecomputeReport            `json:"report"`
	Results []entities.ManufacturingResult `json:"results"`
}

type jobResponse struct {
	Result entities.ManufacturingResult `json:"result"`
	Error  string                       `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResolvePrices(w http.ResponseWriter, r *http.Request) {
	ingredients, err := document.DecodeIngredients(http.MaxBytesReader(w, r.Body, maxBodyBytes), document.FormatJSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, catalogResponse{Entries: s.resolver.ResolveCheapestPrices(ingredients)})
}

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{Entries: s.coordinator.Catalog().Entries()})
}

// handleReplaceCatalog resolves a fresh ingredient snapshot into the catalog.
// With ?reprice=true every stored job is recomputed against it.
func (s *Server) handleReplaceCatalog(w http.ResponseWriter, r *http.Request) {
	ingredients, err := document.DecodeIngredients(http.MaxBytesReader(w, r.Body, maxBodyBytes), document.FormatJSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	catalog := s.resolver.BuildCatalog(ingredients)
	s.coordinator.ReplaceCatalog(catalog)

	response := replaceCatalogResponse{Entries: len(catalog)}
	if r.URL.Query().Get("reprice") == "true" {
		report := s.coordinator.Reprice()
		response.Report = &report
		response.Results = s.coordinator.Results()
		s.saveSnapshots(r.Context(), response.Results)
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleRecomputeAll(w http.ResponseWriter, r *http.Request) {
	jobs, err := document.DecodeJobs(http.MaxBytesReader(w, r.Body, maxBodyBytes), document.FormatJSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report := s.coordinator.RecomputeAll(jobs)
	results := s.coordinator.Results()
	s.replaceSnapshots(r.Context(), results)

	writeJSON(w, http.StatusOK, recomputeResponse{Report: report, Results: results})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	results := s.coordinator.Results()

	if status := r.URL.Query().Get("status"); status != "" {
		wanted, err := entities.ParseResultStatus(status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		filtered := make([]entities.ManufacturingResult, 0, len(results))
		for _, result := range results {
			if result.Status == wanted {
				filtered = append(filtered, result)
			}
		}
		results = filtered
	}

	if results == nil {
		results = []entities.ManufacturingResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleReprice(w http.ResponseWriter, r *http.Request) {
	report := s.coordinator.Reprice()
	results := s.coordinator.Results()
	s.saveSnapshots(r.Context(), results)

	writeJSON(w, http.StatusOK, recomputeResponse{Report: report, Results: results})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := entities.JobID(chi.URLParam(r, "id"))

	result, ok := s.coordinator.Result(jobID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("job %s not found", jobID))
		return
	}

	writeJSON(w, http.StatusOK, jobResponse{Result: result})
}

func (s *Server) handleRecomputeJob(w http.ResponseWriter, r *http.Request) {
	jobID := entities.JobID(chi.URLParam(r, "id"))

	var patch recompute.JobPatch
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid patch: %w", err))
		return
	}

	result, found, err := s.coordinator.Recompute(jobID, patch)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("job %s not found", jobID))
		return
	}
	s.saveSnapshots(r.Context(), []entities.ManufacturingResult{result})

	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, jobResponse{Result: result, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, jobResponse{Result: result})
}

func (s *Server) handleRemoveJob(w http.ResponseWriter, r *http.Request) {
	jobID := entities.JobID(chi.URLParam(r, "id"))

	if !s.coordinator.Remove(jobID) {
		writeError(w, http.StatusNotFound, fmt.Errorf("job %s not found", jobID))
		return
	}

	if s.snapshots != nil {
		err := s.snapshots.DeleteSnapshot(r.Context(), jobID)
		if err != nil && !errors.Is(err, repositories.ErrSnapshotNotFound) {
			s.logger.Warn("failed to delete snapshot", zap.String("job_id", string(jobID)), zap.Error(err))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleJobHistory(w http.ResponseWriter, r *http.Request) {
	jobID := entities.JobID(chi.URLParam(r, "id"))

	history, err := s.coordinator.History(jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if len(history) == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("no history for job %s", jobID))
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// saveSnapshots persists results when a snapshot repository is configured. Failures are
// logged; the in-memory result stays authoritative.
func (s *Server) saveSnapshots(ctx context.Context, results []entities.ManufacturingResult) {
	if s.snapshots == nil || len(results) == 0 {
		return
	}
	if err := s.snapshots.SaveSnapshots(ctx, results); err != nil {
		s.logger.Warn("failed to save snapshots", zap.Int("results", len(results)), zap.Error(err))
	}
}

// replaceSnapshots makes results the whole stored set, mirroring a bulk recompute
func (s *Server) replaceSnapshots(ctx context.Context, results []entities.ManufacturingResult) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.ReplaceSnapshots(ctx, results); err != nil {
		s.logger.Warn("failed to replace snapshots", zap.Int("results", len(results)), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	response := errorResponse{Error: strings.TrimSpace(err.Error())}

	var paramErr *entities.InvalidParameterError
	if errors.As(err, &paramErr) {
		response.Failure = paramErr.Failure()
	}

	writeJSON(w, status, response)
}
