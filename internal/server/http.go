package server

import (
	"time"

	"salaryscope/internal/config"
	scopeErrors "salaryscope/internal/errors"
	"salaryscope/internal/pipeline"
	"salaryscope/internal/types"
)

// ErrorResponse is the error contract for every endpoint. FallbackUsed
// is always false: failed analyses return errors or explicit sentinel
// analyses, never silently substituted numbers.
type ErrorResponse struct {
	Error          string `json:"error"`
	Message        string `json:"message,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	FallbackUsed   bool   `json:"fallbackUsed"`
}

// ResponseMetadata rides along with every analysis response
type ResponseMetadata struct {
	RequestID      string `json:"requestId"`
	Cached         bool   `json:"cached"`
	CacheAge       string `json:"cacheAge,omitempty"`
	ProcessingTime string `json:"processingTime"`
}

// AnalyzeResponse is the analyze endpoint's response envelope
type AnalyzeResponse struct {
	Analysis types.CompensationAnalysis `json:"analysis"`
	Metadata ResponseMetadata           `json:"metadata"`
}

// InvalidateRequest selects cache entries to drop. At least one field
// must be set; an empty pattern matches nothing.
type InvalidateRequest struct {
	JobID    string `json:"jobId,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Location string `json:"location,omitempty"`
}

// InvalidateResponse reports how many entries were removed
type InvalidateResponse struct {
	Removed int `json:"removed"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Pipeline, wired during Start
	Pipeline *pipeline.Service

	// Logger
	Logger *scopeErrors.Logger
}

// NewServer creates a new Server instance from the loaded configuration
func NewServer(appCfg *config.Config, version string, logger *scopeErrors.Logger) *Server {
	srvCfg := appCfg.Server

	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range srvCfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if srvCfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			srvCfg.RateLimit.RequestsPerMin,
			srvCfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           srvCfg.Host,
		Port:           srvCfg.Port,
		Version:        version,
		AppConfig:      appCfg,
		TLSConfig:      srvCfg.TLS,
		APIKeys:        apiKeyMap,
		ReadTimeout:    srvCfg.ReadTimeout,
		WriteTimeout:   srvCfg.WriteTimeout,
		IdleTimeout:    srvCfg.IdleTimeout,
		MaxRequestSize: srvCfg.MaxRequestSize,
		RateLimit:      &srvCfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
