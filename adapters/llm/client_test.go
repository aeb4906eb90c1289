package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nuanswers/internal/errors"
	"nuanswers/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	return newTimedClient(t, 0, handler)
}

func newTimedClient(t *testing.T, timeout time.Duration, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, ChatModel: "gpt-3.5-turbo", VisionModel: "gpt-4o-mini", Timeout: timeout})
	require.NoError(t, err)
	return c
}

func sseChunk(content string) string {
	return fmt.Sprintf("data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", content)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestStreamChat(t *testing.T) {
	var body []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		io.WriteString(w, sseChunk("What do "))
		io.WriteString(w, ": keep-alive\n\n")
		io.WriteString(w, sseChunk("you think?"))
		io.WriteString(w, "data: [DONE]\n\n")
	})

	var deltas []string
	reply, err := c.StreamChat(context.Background(), []ports.Message{
		{Role: ports.RoleSystem, Content: "tutor"},
		{Role: ports.RoleUser, Content: "help"},
	}, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "What do you think?", reply)
	assert.Equal(t, []string{"What do ", "you think?"}, deltas)

	assert.True(t, gjson.GetBytes(body, "stream").Bool())
	assert.Equal(t, "gpt-3.5-turbo", gjson.GetBytes(body, "model").String())
	assert.Equal(t, "help", gjson.GetBytes(body, "messages.1.content").String())
}

func TestStreamChatOutlastsHeaderTimeout(t *testing.T) {
	c := newTimedClient(t, 50*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, part := range []string{"Slow ", "and ", "steady"} {
			io.WriteString(w, sseChunk(part))
			flusher.Flush()
			time.Sleep(40 * time.Millisecond)
		}
		io.WriteString(w, "data: [DONE]\n\n")
	})

	reply, err := c.StreamChat(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Slow and steady", reply)
}

func TestSlowHeadersTimeOut(t *testing.T) {
	c := newTimedClient(t, 20*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	_, err := c.StreamChat(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}

func TestStreamChatTruncated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseChunk("partial"))
	})

	_, err := c.StreamChat(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}

func TestStreamChatHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Incorrect API key provided"}}`)
	})

	_, err := c.StreamChat(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestReadStreamErrorChunk(t *testing.T) {
	_, err := readStream(strings.NewReader("data: {\"error\":{\"message\":\"overloaded\"}}\n"), nil)
	assert.ErrorContains(t, err, "overloaded")

	_, err = readStream(strings.NewReader("data: {not json\n"), nil)
	assert.ErrorContains(t, err, "malformed")
}

func TestAnalyzeImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		raw, _ := json.Marshal(req)
		assert.Equal(t, "gpt-4o-mini", gjson.GetBytes(raw, "model").String())
		assert.Equal(t, int64(300), gjson.GetBytes(raw, "max_tokens").Int())
		assert.Equal(t, "describe", gjson.GetBytes(raw, "messages.0.content.0.text").String())
		assert.True(t, strings.HasPrefix(gjson.GetBytes(raw, "messages.0.content.1.image_url.url").String(), "data:image/png;base64,"))
		io.WriteString(w, `{"choices":[{"message":{"content":"A balance sheet"}}]}`)
	})

	got, err := c.AnalyzeImage(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png", "describe")
	require.NoError(t, err)
	assert.Equal(t, "A balance sheet", got)
}

func TestMockLLMClient(t *testing.T) {
	m := &MockLLMClient{Chunks: []string{"a", "b"}, Error: fmt.Errorf("boom")}
	var got string
	_, err := m.StreamChat(context.Background(), []ports.Message{{Role: ports.RoleUser, Content: "x"}}, func(d string) error {
		got += d
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, "ab", got, "chunks are delivered before the failure")
	assert.Equal(t, "x", m.LastCall()[0].Content)
}
