package cache

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	params := KeyParams{JobID: "job-1", UserID: "user-1", Location: "Berlin, Germany"}

	if Fingerprint(params) != Fingerprint(params) {
		t.Error("same params must produce the same fingerprint")
	}
	if len(Fingerprint(params)) != 64 {
		t.Errorf("expected a hex sha256, got %q", Fingerprint(params))
	}
}

func TestFingerprintLocationNormalization(t *testing.T) {
	base := Fingerprint(KeyParams{JobID: "job-1", Location: "new york"})

	equivalent := []string{
		"New York",
		"  new   york  ",
		"NEW YORK",
		"new\tyork",
	}
	for _, loc := range equivalent {
		if got := Fingerprint(KeyParams{JobID: "job-1", Location: loc}); got != base {
			t.Errorf("location %q should address the same entry as \"new york\"", loc)
		}
	}

	if Fingerprint(KeyParams{JobID: "job-1", Location: "newyork"}) == base {
		t.Error("distinct locations must not collide")
	}
}

func TestFingerprintComponentSensitivity(t *testing.T) {
	base := KeyParams{JobID: "job-1", UserID: "user-1", Location: "Austin, TX"}

	variants := map[string]KeyParams{
		"jobID":       {JobID: "job-2", UserID: "user-1", Location: "Austin, TX"},
		"userID":      {JobID: "job-1", UserID: "user-2", Location: "Austin, TX"},
		"location":    {JobID: "job-1", UserID: "user-1", Location: "Dallas, TX"},
		"profileHash": {JobID: "job-1", UserID: "user-1", Location: "Austin, TX", ProfileHash: "abc"},
		"workMode":    {JobID: "job-1", UserID: "user-1", Location: "Austin, TX", WorkMode: "remote"},
		"currency":    {JobID: "job-1", UserID: "user-1", Location: "Austin, TX", Currency: "EUR"},
	}

	baseKey := Fingerprint(base)
	for field, params := range variants {
		if Fingerprint(params) == baseKey {
			t.Errorf("changing %s must change the fingerprint", field)
		}
	}
}

func TestFingerprintOptionalFieldCasing(t *testing.T) {
	a := Fingerprint(KeyParams{JobID: "job-1", WorkMode: "Remote", Currency: "usd"})
	b := Fingerprint(KeyParams{JobID: "job-1", WorkMode: "remote", Currency: "USD"})
	if a != b {
		t.Error("work mode and currency should be case-insensitive")
	}
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"New York", "new york"},
		{"  San   Francisco,  CA ", "san francisco, ca"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLocation(tt.in); got != tt.expected {
			t.Errorf("NormalizeLocation(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}
