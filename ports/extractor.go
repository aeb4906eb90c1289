package ports

// TextExtractor turns an uploaded file into plain text
type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
	Supports(filename string) bool
	// Extensions lists the accepted extensions, lower-case with the leading dot
	Extensions() []string
}
