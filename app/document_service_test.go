package app

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"nuanswers/adapters/extract"
	"nuanswers/adapters/llm"
	"nuanswers/domain/core"
	"nuanswers/domain/workspace"
	"nuanswers/internal"
	"nuanswers/internal/errors"
	"nuanswers/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAnalyzer struct {
	mimeType    string
	instruction string
}

func (r *recordingAnalyzer) AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	r.mimeType = mimeType
	r.instruction = instruction
	return "a balance sheet", nil
}

func newService(t *testing.T, analyzer ports.ImageAnalyzer) *DocumentService {
	t.Helper()
	logger := internal.NewLoggerTo(os.Stderr, internal.LogLevelError, false)
	clock := &core.FixedClock{T: time.Date(2024, 3, 6, 13, 0, 0, 0, time.UTC)}
	svc, err := NewDocumentService(extract.New(t.TempDir(), logger), analyzer, nil, clock, logger)
	require.NoError(t, err)
	return svc
}

func TestAcceptListsDocumentsAndImages(t *testing.T) {
	svc := newService(t, nil)
	assert.Equal(t, ".csv,.docx,.pdf,.pptx,.txt,.xls,.xlsx,.png,.jpg,.jpeg", svc.Accept())
}

func TestIngestTextAndImages(t *testing.T) {
	analyzer := &recordingAnalyzer{}
	svc := newService(t, analyzer)
	ws := &workspace.Workspace{}

	results := svc.Ingest(context.Background(), ws, []Upload{
		{Name: "notes.txt", Data: []byte("debits on the left")},
		{Name: "chart.PNG", Data: []byte{0x89, 'P', 'N', 'G'}},
	})

	require.Len(t, results, 2)
	require.Equal(t, 2, ws.Len())
	assert.Equal(t, "debits on the left", ws.Documents[0].Content)
	assert.Equal(t, "Successfully processed notes.txt", results[0].Message())

	assert.Equal(t, workspace.KindImage, ws.Documents[1].Kind)
	assert.Equal(t, "[Image Analysis: a balance sheet]", ws.Documents[1].Content)
	assert.Equal(t, "image/png", analyzer.mimeType)
	assert.Contains(t, analyzer.instruction, "accounting, finance, or business studies")
	assert.Equal(t, "Successfully processed image chart.PNG", results[1].Message())
}

func TestIngestImageFailureStoresPlaceholder(t *testing.T) {
	svc := newService(t, &llm.MockLLMClient{ImageErr: fmt.Errorf("quota")})
	ws := &workspace.Workspace{}

	results := svc.Ingest(context.Background(), ws, []Upload{{Name: "scan.jpg", Data: []byte("jpg")}})
	require.NoError(t, results[0].Err)
	require.Equal(t, 1, ws.Len())
	assert.Equal(t, "[Image File: scan.jpg]", ws.Documents[0].Content)
}

func TestIngestWithoutAnalyzer(t *testing.T) {
	svc := newService(t, nil)
	ws := &workspace.Workspace{}

	svc.Ingest(context.Background(), ws, []Upload{{Name: "scan.jpeg", Data: []byte("jpg")}})
	require.Equal(t, 1, ws.Len())
	assert.Equal(t, "[Image File: scan.jpeg]", ws.Documents[0].Content)
}

func TestIngestSkipsDuplicatesSilently(t *testing.T) {
	svc := newService(t, nil)
	ws := &workspace.Workspace{}
	up := Upload{Name: "a.txt", Data: []byte("same")}

	svc.Ingest(context.Background(), ws, []Upload{up})
	results := svc.Ingest(context.Background(), ws, []Upload{up, {Name: "b.txt", Data: []byte("same")}})

	assert.True(t, results[0].Duplicate)
	assert.Empty(t, results[0].Message())
	assert.False(t, results[1].Duplicate, "identity includes the file name")
	assert.Equal(t, 2, ws.Len())
}

func TestIngestUnsupportedContinues(t *testing.T) {
	svc := newService(t, nil)
	ws := &workspace.Workspace{}

	results := svc.Ingest(context.Background(), ws, []Upload{
		{Name: "lecture.mp4", Data: []byte("video")},
		{Name: "ok.txt", Data: []byte("fine")},
	})

	require.Error(t, results[0].Err)
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(results[0].Err))
	assert.Equal(t, "Error processing lecture.mp4: unsupported file type: .mp4", results[0].Message())
	require.Equal(t, 1, ws.Len())
	assert.Equal(t, "ok.txt", ws.Documents[0].Name)
}
