package gate

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/facegate/facegate/internal/storage"
	"github.com/facegate/facegate/internal/storage/memory"
)

// fakeExtractor returns canned faces without touching the network.
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

// testEmbedding returns a deterministic embedding of the test dimension.
func testEmbedding(seed float32) []float32 {
	emb := make([]float32, 8)
	for i := range emb {
		emb[i] = seed + float32(i)*0.01
	}
	return emb
}

// pngPayload renders a small PNG and returns it as a data-URL base64
// payload, the shape browsers submit.
func pngPayload(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// newTestCapture wires a capture pipeline over the in-memory store.
func newTestCapture(store *memory.Store, ex Extractor) *Capture {
	return NewCapture(store, ex, NewAudit(store), time.Hour, 8)
}

// mustCapture runs a successful capture or fails the test.
func mustCapture(t *testing.T, c *Capture, token string, embedding []float32) {
	t.Helper()
	fake, ok := c.extractor.(*fakeExtractor)
	if !ok {
		t.Fatal("capture not built with fakeExtractor")
	}
	fake.embeddings = [][]float32{embedding}
	fake.err = nil
	if err := c.Process(context.Background(), token, pngPayload(t)); err != nil {
		t.Fatalf("capture for %s: %v", token, err)
	}
}

// enrolled inserts an identity directly, bypassing the capture flow.
func enrolled(t *testing.T, store *memory.Store, name string, embedding []float32, createdAt time.Time) storage.Identity {
	t.Helper()
	id := storage.Identity{
		Name:      name,
		NameKey:   NameKey(name),
		Embedding: embedding,
		Preview:   "data:image/png;base64,preview",
		Class:     "10A",
		Roll:      "07",
		Code:      "AABBCCDDEEFF",
		CreatedAt: createdAt,
	}
	if err := store.InsertIdentity(context.Background(), id); err != nil {
		t.Fatalf("insert identity %s: %v", name, err)
	}
	return id
}
