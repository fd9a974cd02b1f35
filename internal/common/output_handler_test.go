package common

import (
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name          string
		format        string
		supported     []string
		expectError   bool
		expectedError string
	}{
		{
			name:        "valid format - json",
			format:      "json",
			supported:   []string{"json", "text", "markdown"},
			expectError: false,
		},
		{
			name:        "valid format - markdown",
			format:      "markdown",
			supported:   []string{"json", "text", "markdown"},
			expectError: false,
		},
		{
			name:          "invalid format - xml",
			format:        "xml",
			supported:     []string{"json", "text", "markdown"},
			expectError:   true,
			expectedError: "unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{
			name:          "case sensitive - JSON uppercase",
			format:        "JSON",
			supported:     []string{"json", "text", "markdown"},
			expectError:   true,
			expectedError: "unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{
			name:          "empty format string",
			format:        "",
			supported:     []string{"json", "text", "markdown"},
			expectError:   true,
			expectedError: "unsupported output format ''. Supported formats: [json text markdown]",
		},
		{
			name:        "empty allow-list permits any format",
			format:      "xml",
			supported:   []string{},
			expectError: false,
		},
		{
			name:          "single supported format - invalid",
			format:        "text",
			supported:     []string{"json"},
			expectError:   true,
			expectedError: "unsupported output format 'text'. Supported formats: [json]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
					return
				}
				if tt.expectedError != "" && err.Error() != tt.expectedError {
					t.Errorf("Expected error '%s', got '%s'", tt.expectedError, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supported := []string{"json", "text", "markdown"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supported)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supported)
		}
	})
}
