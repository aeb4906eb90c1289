package core

import (
	"testing"
	"time"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseSessionID tests session ID parsing from cookie values
func TestParseSessionID(t *testing.T) {
	valid := NewSessionID().String()
	tests := []struct {
		input    string
		hasError bool
	}{
		{valid, false},
		{"", true},
		{"   ", true},
		{"not-a-uuid", true},
	}

	for _, test := range tests {
		result, err := ParseSessionID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError {
			if err != nil {
				t.Errorf("Unexpected error for input '%s': %v", test.input, err)
			}
			if result.String() != test.input {
				t.Errorf("Expected %s, got %s", test.input, result)
			}
		}
	}
}

// TestParseDocumentID tests route parameter parsing
func TestParseDocumentID(t *testing.T) {
	valid := NewDocumentID().String()
	if got, err := ParseDocumentID(" " + valid + " "); err != nil || got.String() != valid {
		t.Errorf("Expected %s, got %s (%v)", valid, got, err)
	}
	for _, input := range []string{"", "  ", "not-a-document"} {
		if _, err := ParseDocumentID(input); err == nil {
			t.Errorf("Expected error for input '%s', but got none", input)
		}
	}
}

// TestFingerprint tests that file identity depends on both name and bytes
func TestFingerprint(t *testing.T) {
	a := Fingerprint("notes.txt", []byte("abc"))
	if a != Fingerprint("notes.txt", []byte("abc")) {
		t.Error("Expected identical input to produce identical fingerprint")
	}
	if a == Fingerprint("other.txt", []byte("abc")) {
		t.Error("Expected different name to change fingerprint")
	}
	if a == Fingerprint("notes.txt", []byte("abd")) {
		t.Error("Expected different content to change fingerprint")
	}
}

// TestMinutesBetween tests fractional minute computation
func TestMinutesBetween(t *testing.T) {
	clock := &FixedClock{T: time.Date(2025, 3, 5, 13, 0, 0, 0, time.UTC)}
	start := clock.Now()
	clock.Advance(5*time.Minute + 30*time.Second)

	got := MinutesBetween(start, clock.Now())
	if got < 5.4999 || got > 5.5001 {
		t.Errorf("Expected 5.5 minutes, got %f", got)
	}
}
