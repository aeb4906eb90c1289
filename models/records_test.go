package models

import (
	"testing"
	"time"
)

func TestRegistrationFilterIsZero(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		filter RegistrationFilter
		want   bool
	}{
		{"empty", RegistrationFilter{}, true},
		{"empty slices", RegistrationFilter{Majors: []string{}, Campuses: nil}, true},
		{"from", RegistrationFilter{From: &now}, false},
		{"to", RegistrationFilter{To: &now}, false},
		{"majors", RegistrationFilter{Majors: []string{"Finance"}}, false},
		{"campuses", RegistrationFilter{Campuses: []string{"Metro"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsZero(); got != tt.want {
				t.Errorf("IsZero() = %v, want %v", got, tt.want)
			}
		})
	}
}
