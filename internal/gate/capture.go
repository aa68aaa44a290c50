package gate

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/facegate/facegate/internal/storage"
)

const (
	// minPayloadLen rejects near-empty payloads before the base64 decode.
	minPayloadLen = 100
	// previewLen bounds the raw-image snippet stored for audit/UI.
	previewLen = 500
)

// Extractor is the feature extraction boundary: detect faces in an image
// and return one embedding per face, in detection order.
type Extractor interface {
	FaceEmbeddings(ctx context.Context, imageData []byte) ([][]float32, error)
}

// Capture validates captured face images and manages capture tickets.
type Capture struct {
	tickets   storage.TicketStore
	extractor Extractor
	audit     *Audit
	ttl       time.Duration
	dim       int
	now       func() time.Time
}

// NewCapture creates the capture pipeline. dim is the expected embedding
// length; ttl is the capture ticket lifetime.
func NewCapture(tickets storage.TicketStore, ex Extractor, audit *Audit, ttl time.Duration, dim int) *Capture {
	return &Capture{
		tickets:   tickets,
		extractor: ex,
		audit:     audit,
		ttl:       ttl,
		dim:       dim,
		now:       time.Now,
	}
}

// decodePayload strips an optional data-URL prefix and base64-decodes the
// image payload.
func decodePayload(payload string) ([]byte, error) {
	if idx := strings.Index(payload, "base64,"); idx >= 0 {
		payload = payload[idx+len("base64,"):]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// ExtractEmbedding runs the shared validation path: payload guard, base64
// decode, image decode, face detection, exactly-one-face rule. Every
// rejection is audited before the error is returned.
func (c *Capture) ExtractEmbedding(ctx context.Context, payload string) ([]float32, error) {
	if len(payload) < minPayloadLen {
		c.audit.Record(ctx, "ERROR: Invalid face data - image too small or empty")
		return nil, fmt.Errorf("%w: image too small or empty", ErrInvalidInput)
	}

	imageData, err := decodePayload(payload)
	if err != nil {
		c.audit.Record(ctx, "ERROR: Image decode failed - %v", err)
		return nil, fmt.Errorf("%w: invalid base64 payload", ErrInvalidInput)
	}

	if _, _, err := image.Decode(bytes.NewReader(imageData)); err != nil {
		c.audit.Record(ctx, "ERROR: Image decode failed - %v", err)
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	embeddings, err := c.extractor.FaceEmbeddings(ctx, imageData)
	if err != nil {
		c.audit.Record(ctx, "ERROR: Face extractor failed - %v", err)
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}

	switch {
	case len(embeddings) == 0:
		c.audit.Record(ctx, "ERROR: No face detected in captured image")
		return nil, ErrNoFaceDetected
	case len(embeddings) > 1:
		c.audit.Record(ctx, "WARNING: Multiple faces detected (%d)", len(embeddings))
		return nil, fmt.Errorf("%w (%d)", ErrMultipleFacesDetected, len(embeddings))
	}

	embedding := embeddings[0]
	if len(embedding) == 0 || (c.dim > 0 && len(embedding) != c.dim) {
		c.audit.Record(ctx, "ERROR: Failed to generate face embedding")
		return nil, ErrEncodingFailed
	}
	return embedding, nil
}

// Process validates the payload and upserts a capture ticket for the
// session token. A prior ticket for the same token is replaced, never
// merged; the ticket expires after the configured TTL.
func (c *Capture) Process(ctx context.Context, token, payload string) error {
	embedding, err := c.ExtractEmbedding(ctx, payload)
	if err != nil {
		return err
	}

	now := c.now()
	preview := payload
	if len(preview) > previewLen {
		preview = preview[:previewLen]
	}
	ticket := storage.CaptureTicket{
		Token:     token,
		Preview:   preview,
		Embedding: embedding,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	if err := c.tickets.UpsertTicket(ctx, ticket); err != nil {
		return storageErr(err)
	}

	c.audit.Record(ctx, "Face captured and validated for registration (Session: %s...)", shortToken(token))
	return nil
}

// Clear idempotently removes any capture ticket for the token.
func (c *Capture) Clear(ctx context.Context, token string) error {
	if err := c.tickets.DeleteTicket(ctx, token); err != nil {
		return storageErr(err)
	}
	return nil
}

// shortToken truncates a token for log output.
func shortToken(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
