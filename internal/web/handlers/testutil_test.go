package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/gate"
	"github.com/facegate/facegate/internal/storage"
	"github.com/facegate/facegate/internal/storage/memory"
)

// fakeExtractor returns canned embeddings without a sidecar.
type fakeExtractor struct {
	embeddings [][]float32
	err        error
}

func (f *fakeExtractor) FaceEmbeddings(ctx context.Context, imageData []byte) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.embeddings, nil
}

// testPipeline bundles the recognition components over one memory store.
type testPipeline struct {
	store     *memory.Store
	extractor *fakeExtractor
	audit     *gate.Audit
	capture   *gate.Capture
	matcher   *gate.Matcher
	sessions  *gate.Sessions
	enroller  *gate.Enroller
}

func newTestPipeline() *testPipeline {
	store := memory.NewStore(100)
	extractor := &fakeExtractor{}
	audit := gate.NewAudit(store)
	return &testPipeline{
		store:     store,
		extractor: extractor,
		audit:     audit,
		capture:   gate.NewCapture(store, extractor, audit, time.Hour, 8),
		matcher:   gate.NewMatcher(store, 0.6),
		sessions:  gate.NewSessions(store, audit),
		enroller:  gate.NewEnroller(store, store, audit),
	}
}

func testEmbedding(seed float32) []float32 {
	emb := make([]float32, 8)
	for i := range emb {
		emb[i] = seed + float32(i)*0.01
	}
	return emb
}

// testImagePayload renders a small PNG as a data-URL base64 payload.
func testImagePayload(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// insertIdentity seeds an enrolled identity directly into the store.
func insertIdentity(t *testing.T, store *memory.Store, name string, embedding []float32) storage.Identity {
	t.Helper()
	id := storage.Identity{
		Name:      name,
		NameKey:   gate.NameKey(name),
		Embedding: embedding,
		Preview:   "data:image/png;base64,preview",
		Class:     "10A",
		Roll:      "07",
		Code:      "AABBCCDDEEFF",
		CreatedAt: time.Now(),
	}
	if err := store.InsertIdentity(context.Background(), id); err != nil {
		t.Fatalf("insert identity %s: %v", name, err)
	}
	return id
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withCaptureCookie attaches the capture session cookie.
func withCaptureCookie(r *http.Request, token string) *http.Request {
	r.AddCookie(&http.Cookie{Name: captureCookieName, Value: token})
	return r
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
