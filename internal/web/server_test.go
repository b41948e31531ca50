package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard-ai/internal/imagegen"
	"moodboard-ai/internal/moodboard"
)

type fakeText struct {
	calls int
	text  string
	err   error
}

func (f *fakeText) Generate(context.Context, moodboard.Request) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeImages struct {
	prompts []string
	images  []moodboard.GeneratedImage
	err     error
}

func (f *fakeImages) Generate(_ context.Context, prompts []string) ([]moodboard.GeneratedImage, error) {
	f.prompts = prompts
	return f.images, f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	srv := New(Options{Text: &fakeText{}})

	rec, body := do(t, srv.Router(), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMoodboard(t *testing.T) {
	text := &fakeText{text: "[PALETTE]\n#0f172a - deep navy\n[KEYWORDS]\na, b\n[PROMPTS]\n1. one\n2. two\n3. three\n4. four"}
	srv := New(Options{Text: text})

	rec, body := do(t, srv.Router(), http.MethodPost, "/api/moodboard", `{"theme":"navy","useCase":"branding","style":"minimal","intensity":"bold"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["text"], "[PALETTE]")
	board := body["moodboard"].(map[string]any)
	assert.Equal(t, []any{"a", "b"}, board["keywords"])
	assert.Len(t, board["prompts"], 4)
	assert.Len(t, board["imagePrompts"], 3)
	swatches := board["swatches"].([]any)
	require.Len(t, swatches, 1)
	assert.Equal(t, "#0f172a", swatches[0].(map[string]any)["hex"])
}

func TestMoodboard_MissingTheme(t *testing.T) {
	text := &fakeText{}
	srv := New(Options{Text: text})

	rec, body := do(t, srv.Router(), http.MethodPost, "/api/moodboard", `{"theme":"  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing theme in request body", body["error"])
	assert.Zero(t, text.calls)
}

func TestMoodboard_InvalidJSON(t *testing.T) {
	srv := New(Options{Text: &fakeText{}})
	rec, _ := do(t, srv.Router(), http.MethodPost, "/api/moodboard", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMoodboard_UpstreamError(t *testing.T) {
	srv := New(Options{Text: &fakeText{err: &moodboard.UpstreamError{Provider: "openai", Status: 401, Detail: "bad key"}}})

	rec, body := do(t, srv.Router(), http.MethodPost, "/api/moodboard", `{"theme":"x"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "openai error", body["error"])
	assert.EqualValues(t, 401, body["status"])
	assert.Equal(t, "bad key", body["detail"])
}

func TestMoodboard_TransportError(t *testing.T) {
	srv := New(Options{Text: &fakeText{err: &moodboard.TransportError{Provider: "gemini", Err: errors.New("dial tcp")}}})

	rec, body := do(t, srv.Router(), http.MethodPost, "/api/moodboard", `{"theme":"x"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "gemini unreachable", body["error"])
}

func TestMoodboard_MethodNotAllowed(t *testing.T) {
	srv := New(Options{Text: &fakeText{}})
	rec, body := do(t, srv.Router(), http.MethodGet, "/api/moodboard", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", body["error"])
}

func TestImages(t *testing.T) {
	url := moodboard.URLSource("https://img.example.com/a.png")
	inline := moodboard.InlineBase64Source("QUJD", "image/png")
	images := &fakeImages{images: []moodboard.GeneratedImage{
		{PromptIndex: 0, Origin: moodboard.OriginRemote, Source: &url},
		{PromptIndex: 2, Origin: moodboard.OriginRemote, Source: &inline},
	}}
	srv := New(Options{Text: &fakeText{}, Images: images})

	rec, body := do(t, srv.Router(), http.MethodPost, "/api/images", `{"prompts":["a"," ","b","c","d"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a", "b", "c"}, images.prompts)
	assert.Equal(t, []any{"https://img.example.com/a.png", "data:image/png;base64,QUJD"}, body["urls"])
	assert.Len(t, body["images"], 2)
	assert.Nil(t, body["fallback"])
}

func TestImages_FallbackTiles(t *testing.T) {
	srv := New(Options{Text: &fakeText{}, Images: &fakeImages{}})

	rec, body := do(t, srv.Router(), http.MethodPost, "/api/images", `{"prompts":["a","b"],"palette":"#111111 - ink\n#eeeeee - paper"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["urls"])
	tiles := body["fallback"].([]any)
	require.Len(t, tiles, 2)
	assert.Equal(t, "linear-gradient(to bottom right, #eeeeee 0%, #111111 100%)", tiles[1].(map[string]any)["css"])
}

func TestImages_NoPrompts(t *testing.T) {
	srv := New(Options{Text: &fakeText{}, Images: &fakeImages{}})
	rec, body := do(t, srv.Router(), http.MethodPost, "/api/images", `{"prompts":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No prompts provided", body["error"])
}

func TestImages_NotConfigured(t *testing.T) {
	srv := New(Options{Text: &fakeText{}, Images: &fakeImages{err: imagegen.ErrNoProviders}})

	rec, body := do(t, srv.Router(), http.MethodPost, "/api/images", `{"prompts":["a"]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "no image providers configured", body["detail"])
	assert.Nil(t, body["fallback"])
}

func TestImages_NotConfiguredWithPalette(t *testing.T) {
	srv := New(Options{Text: &fakeText{}, Images: &fakeImages{err: imagegen.ErrNoProviders}})

	rec, body := do(t, srv.Router(), http.MethodPost, "/api/images", `{"prompts":["a","b"],"palette":"#111111 - ink\n#eeeeee - paper"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Image generation is not configured", body["error"])
	tiles := body["fallback"].([]any)
	require.Len(t, tiles, 2)
	assert.Equal(t, "linear-gradient(to bottom right, #111111 0%, #eeeeee 100%)", tiles[0].(map[string]any)["css"])
}

func TestImages_NilGeneratorWithPalette(t *testing.T) {
	srv := New(Options{Text: &fakeText{}})

	rec, body := do(t, srv.Router(), http.MethodPost, "/api/images", `{"prompts":["a"],"palette":"#111111"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, body["fallback"], 1)
}

func TestRequestID_Propagated(t *testing.T) {
	srv := New(Options{Text: &fakeText{}})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestPresets(t *testing.T) {
	srv := New(Options{Text: &fakeText{}})
	rec, body := do(t, srv.Router(), http.MethodGet, "/api/presets", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["styles"])
}
