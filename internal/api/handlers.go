package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mediagrab/internal/domain"
)

// handleExtract runs the extraction cascade for ?url=. Mirroring the
// original API surface, failures are reported inside a 200 JSON envelope,
// not via status codes.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		if s.metrics != nil {
			s.metrics.ExtractionFailed("bad_input")
		}
		s.respondWithJSON(w, http.StatusOK, domain.ExtractResult{OK: false, Error: "url missing"})
		return
	}

	if s.cache != nil {
		if res, hit, err := s.cache.GetResult(r.Context(), target); err != nil {
			s.logger.Warn("result cache lookup failed", zap.Error(err))
		} else if hit {
			s.respondWithJSON(w, http.StatusOK, res)
			return
		}
	}

	start := time.Now()
	res := s.extractor.Extract(r.Context(), target)

	if res.OK && s.cache != nil {
		if err := s.cache.PutResult(r.Context(), target, res); err != nil {
			s.logger.Warn("result cache store failed", zap.Error(err))
		}
	}
	s.recordExtraction(target, res, time.Since(start))

	s.respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) recordExtraction(target string, res domain.ExtractResult, took time.Duration) {
	if s.history == nil {
		return
	}
	rec := &domain.ExtractionRecord{
		URL:        target,
		Status:     "ok",
		Kind:       res.Kind,
		DurationMS: took.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	for _, item := range res.Items {
		rec.SourceCount += len(item.Sources)
	}
	if !res.OK {
		rec.Status = "failed"
		rec.FailReason = res.Error
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.history.SaveExtraction(ctx, rec); err != nil {
		s.logger.Warn("failed to save extraction record", zap.Error(err))
	}
}

// handleProxy streams the target resource's bytes to the caller with a
// download disposition. Headers are copied from upstream; the body is never
// buffered in memory.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		s.respondWithJSON(w, http.StatusOK, domain.ExtractResult{OK: false, Error: "proxy url missing"})
		return
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "download.mp4"
	}

	resp, err := s.fetcher.Get(r.Context(), target)
	if err != nil {
		s.logger.Warn("proxy fetch failed", zap.String("url", target), zap.Error(err))
		s.respondWithJSON(w, http.StatusOK, domain.ExtractResult{OK: false, Error: err.Error()})
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename=`+strconv.Quote(filename))
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		w.Header().Set("Content-Length", cl)
	}

	n, err := io.Copy(w, resp.Body)
	if s.metrics != nil {
		s.metrics.AddProxyBytes(n)
	}
	if err != nil {
		// Headers are gone; nothing to report to the caller.
		s.logger.Warn("proxy stream interrupted", zap.String("url", target), zap.Error(err))
	}
}

// handleHistory returns recent extraction records when the audit store is
// configured.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondWithError(w, http.StatusNotFound, "history store not configured")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	records, err := s.history.RecentExtractions(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read extraction history", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "could not read history")
		return
	}
	s.respondWithJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"server": "healthy"}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			healthStatus["redis"] = "unhealthy"
			s.logger.Error("health check failed for redis", zap.Error(err))
		} else {
			healthStatus["redis"] = "healthy"
		}
	} else {
		healthStatus["redis"] = "disabled"
	}

	if s.history != nil {
		if err := s.history.Ping(ctx); err != nil {
			healthStatus["postgres"] = "unhealthy"
			s.logger.Error("health check failed for postgres", zap.Error(err))
		} else {
			healthStatus["postgres"] = "healthy"
		}
	} else {
		healthStatus["postgres"] = "disabled"
	}

	for _, v := range healthStatus {
		if v == "unhealthy" {
			s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
			return
		}
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
