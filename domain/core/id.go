package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SessionID  ID
	DocumentID ID
)

func (id SessionID) String() string  { return ID(id).String() }
func (id DocumentID) String() string { return ID(id).String() }

// NewSessionID creates a fresh session identifier
func NewSessionID() SessionID { return SessionID(NewID()) }

// NewDocumentID creates a fresh document identifier
func NewDocumentID() DocumentID { return DocumentID(NewID()) }

// ParseSessionID parses a cookie value into a SessionID. Only UUIDs are accepted.
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("session ID is not a UUID: %w", err)
	}
	return SessionID(s), nil
}

// ParseDocumentID parses a route parameter into a DocumentID
func ParseDocumentID(s string) (DocumentID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("document ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("document ID is not a UUID: %w", err)
	}
	return DocumentID(s), nil
}
