package workspace

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"nuanswers/domain/core"
	"nuanswers/internal/errors"
)

// PreviewLimit is the number of characters shown for an unhighlighted document
const PreviewLimit = 500

// Direction moves a document one slot
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down"
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown direction %q", s))
}

// DeleteState is either empty or holds the document awaiting confirmation
type DeleteState struct {
	Pending core.DocumentID `json:"pending,omitempty"`
}

// IsPending reports whether a deletion is awaiting confirmation
func (s DeleteState) IsPending() bool { return s.Pending != "" }

// Workspace is a session's ordered document collection
type Workspace struct {
	Documents   []Document  `json:"documents"`
	Delete      DeleteState `json:"delete"`
	Query       string      `json:"query,omitempty"`
	ShowReorder bool        `json:"show_reorder,omitempty"`
}

// Len returns the number of documents
func (w *Workspace) Len() int { return len(w.Documents) }

// Contains reports whether a document with this fingerprint is present
func (w *Workspace) Contains(fp core.Hash) bool {
	for _, d := range w.Documents {
		if d.Fingerprint == fp {
			return true
		}
	}
	return false
}

// Add appends doc unless a document with the same fingerprint exists.
// It returns false when the document was skipped.
func (w *Workspace) Add(doc Document) bool {
	if w.Contains(doc.Fingerprint) {
		return false
	}
	w.Documents = append(w.Documents, doc)
	return true
}

// IndexOf returns the position of id, or -1
func (w *Workspace) IndexOf(id core.DocumentID) int {
	for i, d := range w.Documents {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the document with id
func (w *Workspace) Get(id core.DocumentID) (Document, bool) {
	if i := w.IndexOf(id); i >= 0 {
		return w.Documents[i], true
	}
	return Document{}, false
}

// Reorder swaps the entries at from and to, which must be adjacent.
// A target outside the collection is a no-op.
func (w *Workspace) Reorder(from, to int) error {
	if from < 0 || from >= len(w.Documents) {
		return errors.InvalidInput(fmt.Sprintf("index %d out of range", from))
	}
	if to < 0 || to >= len(w.Documents) {
		return nil
	}
	if d := from - to; d != 1 && d != -1 {
		return errors.InvalidInput(fmt.Sprintf("reorder %d->%d is not an adjacent swap", from, to))
	}
	w.Documents[from], w.Documents[to] = w.Documents[to], w.Documents[from]
	return nil
}

// Move shifts the document one slot in dir
func (w *Workspace) Move(id core.DocumentID, dir Direction) error {
	i := w.IndexOf(id)
	if i < 0 {
		return errors.NotFound("document")
	}
	if dir == Up {
		return w.Reorder(i, i-1)
	}
	return w.Reorder(i, i+1)
}

// RequestDelete marks id as awaiting confirmation, replacing any earlier request
func (w *Workspace) RequestDelete(id core.DocumentID) error {
	if w.IndexOf(id) < 0 {
		return errors.NotFound("document")
	}
	w.Delete = DeleteState{Pending: id}
	return nil
}

// ConfirmDelete removes the pending document and clears the request
func (w *Workspace) ConfirmDelete() (Document, error) {
	if !w.Delete.IsPending() {
		return Document{}, errors.InvalidState("no deletion is pending")
	}
	id := w.Delete.Pending
	w.Delete = DeleteState{}

	i := w.IndexOf(id)
	if i < 0 {
		return Document{}, errors.NotFound("document")
	}
	doc := w.Documents[i]
	w.Documents = append(w.Documents[:i], w.Documents[i+1:]...)
	return doc, nil
}

// CancelDelete clears any pending request
func (w *Workspace) CancelDelete() {
	w.Delete = DeleteState{}
}

// Match is a search hit with its rendered preview
type Match struct {
	Document    Document
	Preview     string
	Highlighted bool
}

// Search returns documents whose name or content contains query, ignoring
// case, in workspace order. An empty query matches everything.
func (w *Workspace) Search(query string) []Match {
	out := make([]Match, 0, len(w.Documents))
	for _, d := range w.Documents {
		if query != "" && indexFold(d.Name, query) < 0 && indexFold(d.Content, query) < 0 {
			continue
		}
		m := Match{Document: d}
		m.Preview, m.Highlighted = Highlight(d.Content, query)
		out = append(out, m)
	}
	return out
}

// Highlight wraps the first case-insensitive occurrence of query in content
// with ** markers and returns the full text. Without a match the content is
// truncated to PreviewLimit characters.
func Highlight(content, query string) (string, bool) {
	if query != "" {
		if start := indexFold(content, query); start >= 0 {
			end := start + matchLen(content[start:], query)
			return content[:start] + "**" + content[start:end] + "**" + content[end:], true
		}
	}
	return Truncate(content, PreviewLimit), false
}

// Truncate cuts s to n characters and appends "..." when anything was cut
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}

// ContextBlock renders the documents in order for the chat prompt, or "" when empty
func (w *Workspace) ContextBlock() string {
	if len(w.Documents) == 0 {
		return ""
	}
	parts := make([]string, len(w.Documents))
	for i, d := range w.Documents {
		parts[i] = fmt.Sprintf("Document: %s\nContent: %s", d.Name, d.Content)
	}
	return "Here is the context from uploaded documents:\n\n" + strings.Join(parts, "\n\n") + "\n\n"
}

// indexFold is a case-insensitive strings.Index returning a byte offset in s
func indexFold(s, substr string) int {
	if substr == "" {
		return 0
	}
	for i := range s {
		if n := matchLen(s[i:], substr); n > 0 {
			return i
		}
	}
	return -1
}

// matchLen returns the byte length of the prefix of s that case-folds to substr, or 0
func matchLen(s, substr string) int {
	j := 0
	for _, qr := range substr {
		if j >= len(s) {
			return 0
		}
		sr, size := utf8.DecodeRuneInString(s[j:])
		if !equalFoldRune(sr, qr) {
			return 0
		}
		j += size
	}
	return j
}

func equalFoldRune(a, b rune) bool {
	return a == b || strings.EqualFold(string(a), string(b))
}
