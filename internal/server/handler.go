package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	scopeErrors "salaryscope/internal/errors"
	"salaryscope/internal/observability"
	"salaryscope/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// createAnalyzeHandler wraps the analyze handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		tracer := om.Tracer("salaryscope.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		requestID := uuid.NewString()
		span.SetAttributes(attribute.String("request.id", requestID))

		var req types.AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(),
				"Send a JSON body with a jobDescription field", http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "jobDescription field is required",
				"Include the full posting text in jobDescription", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.Bool("request.force_refresh", req.ForceRefresh),
			attribute.String("operation", "analyze"),
		)

		if s.Pipeline == nil {
			writeErrorResponse(w, "Pipeline unavailable", "server is still starting",
				"Retry shortly", http.StatusServiceUnavailable)
			return
		}

		result, err := s.Pipeline.Analyze(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "analysis"))
			writeAnalysisError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("response.cached", result.Cached),
			attribute.String("response.estimate_type", result.Analysis.Confidence.EstimateType),
			attribute.Float64("response.overall_confidence", result.Analysis.Confidence.Overall),
		)

		response := AnalyzeResponse{
			Analysis: result.Analysis,
			Metadata: ResponseMetadata{
				RequestID:      requestID,
				Cached:         result.Cached,
				CacheAge:       result.CacheAge,
				ProcessingTime: result.ProcessingTime,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// writeAnalysisError maps pipeline error codes onto HTTP statuses
func writeAnalysisError(w http.ResponseWriter, err error) {
	switch scopeErrors.GetErrorCode(err) {
	case scopeErrors.ErrCodeInvalidRequest:
		writeErrorResponse(w, "Invalid request", err.Error(),
			"Correct the request fields and retry", http.StatusBadRequest)
	case scopeErrors.ErrCodeUpstreamUnavailable:
		writeErrorResponse(w, "Analysis service unavailable", err.Error(),
			"The completion provider is unreachable or rate limited; retry later", http.StatusBadGateway)
	case scopeErrors.ErrCodeSynthesisParse, scopeErrors.ErrCodeSynthesisEmpty:
		writeErrorResponse(w, "Synthesis produced no usable analysis", err.Error(),
			"Retry the analysis; no figures were fabricated", http.StatusBadGateway)
	default:
		writeErrorResponse(w, "Failed to analyze job", err.Error(),
			"Retry the analysis", http.StatusInternalServerError)
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				om.GetMetrics().RecordRateLimitHit(r.Context(), om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
