package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"salaryscope/internal/config"
	scopeErrors "salaryscope/internal/errors"

	"google.golang.org/api/googleapi"
)

// timeoutNetError satisfies net.Error with Timeout() == true
type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

// plainNetError satisfies net.Error with Timeout() == false
type plainNetError struct{}

func (plainNetError) Error() string   { return "connection refused" }
func (plainNetError) Timeout() bool   { return false }
func (plainNetError) Temporary() bool { return false }

func TestNewGeminiProviderMissingAPIKey(t *testing.T) {
	_, err := NewGeminiProvider(config.ResolvedAIConfig{Provider: "gemini", Model: "test-model"},
		"synthesize", scopeErrors.NewLogger(slog.LevelError))
	if err == nil {
		t.Fatal("expected an error without an API key")
	}
	if code := scopeErrors.GetErrorCode(err); code != scopeErrors.ErrCodeMissingAPIKey {
		t.Errorf("expected error code %s, got %s", scopeErrors.ErrCodeMissingAPIKey, code)
	}
}

func TestClassifyErrorCodes(t *testing.T) {
	g := &GeminiProvider{logger: scopeErrors.NewLogger(slog.LevelError)}

	tests := []struct {
		name         string
		cause        error
		expectedCode string
		expectedType scopeErrors.ErrorType
	}{
		{
			name:         "context deadline maps to AI timeout",
			cause:        context.DeadlineExceeded,
			expectedCode: scopeErrors.ErrCodeAITimeout,
			expectedType: scopeErrors.ErrorTypeAI,
		},
		{
			name:         "network timeout maps to network timeout",
			cause:        timeoutNetError{},
			expectedCode: scopeErrors.ErrCodeNetworkTimeout,
			expectedType: scopeErrors.ErrorTypeNetwork,
		},
		{
			name:         "non-timeout network failure maps to upstream unavailable",
			cause:        plainNetError{},
			expectedCode: scopeErrors.ErrCodeUpstreamUnavailable,
			expectedType: scopeErrors.ErrorTypeAI,
		},
		{
			name:         "server-side API failure maps to upstream unavailable",
			cause:        &googleapi.Error{Code: http.StatusServiceUnavailable},
			expectedCode: scopeErrors.ErrCodeUpstreamUnavailable,
			expectedType: scopeErrors.ErrorTypeAI,
		},
		{
			name:         "client-side API failure maps to service failed",
			cause:        &googleapi.Error{Code: http.StatusBadRequest},
			expectedCode: scopeErrors.ErrCodeAIServiceFailed,
			expectedType: scopeErrors.ErrorTypeAI,
		},
		{
			name:         "plain error maps to service failed",
			cause:        errors.New("boom"),
			expectedCode: scopeErrors.ErrCodeAIServiceFailed,
			expectedType: scopeErrors.ErrorTypeAI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.classifyError("synthesize_analysis", tt.cause)
			if code := scopeErrors.GetErrorCode(err); code != tt.expectedCode {
				t.Errorf("expected error code %s, got %s", tt.expectedCode, code)
			}
			if typ := scopeErrors.GetErrorType(err); typ != tt.expectedType {
				t.Errorf("expected error type %s, got %s", tt.expectedType, typ)
			}
			if !errors.Is(err, tt.cause) {
				t.Error("classified error must wrap its cause")
			}
		})
	}
}
