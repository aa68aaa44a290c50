package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestApproveFace(t *testing.T) {
	p := newTestPipeline()
	embedding := testEmbedding(0.4)
	identity := insertIdentity(t, p.store, "Jana", embedding)
	p.extractor.embeddings = [][]float32{embedding}
	handler := NewApproveHandler(p.capture, p.matcher, p.sessions, p.audit)

	req := jsonRequest(t, http.MethodPost, "/api/approve-face", map[string]string{
		"face_image": testImagePayload(t),
	})
	rec := httptest.NewRecorder()
	handler.ApproveFace(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp map[string]any
	parseJSONResponse(t, rec, &resp)
	if resp["success"] != true || resp["name"] != "Jana" || resp["code"] != identity.Code {
		t.Errorf("response = %v", resp)
	}
	if resp["confidence"] != 100.00 {
		t.Errorf("confidence = %v, want 100", resp["confidence"])
	}

	sessionID, _ := resp["session_id"].(string)
	if sessionID == "" {
		t.Fatal("session_id missing")
	}
	session, err := p.store.GetSession(context.Background(), sessionID)
	if err != nil || session == nil {
		t.Fatalf("stored session: %v, %v", session, err)
	}
}

func TestApproveFaceUnknown(t *testing.T) {
	p := newTestPipeline()
	insertIdentity(t, p.store, "Jana", testEmbedding(0.1))
	far := testEmbedding(0.1)
	far[0] += 5
	p.extractor.embeddings = [][]float32{far}
	handler := NewApproveHandler(p.capture, p.matcher, p.sessions, p.audit)

	req := jsonRequest(t, http.MethodPost, "/api/approve-face", map[string]string{
		"face_image": testImagePayload(t),
	})
	rec := httptest.NewRecorder()
	handler.ApproveFace(rec, req)

	assertStatusCode(t, rec, http.StatusNotFound)

	logs, _ := p.store.RecentLogs(context.Background(), 1)
	if len(logs) == 0 || !strings.Contains(logs[0], "APPROVAL DENIED: Face not recognized") {
		t.Errorf("denial not audited: %v", logs)
	}
}

func TestApproveFaceNoFaceDetected(t *testing.T) {
	p := newTestPipeline()
	p.extractor.embeddings = [][]float32{}
	handler := NewApproveHandler(p.capture, p.matcher, p.sessions, p.audit)

	req := jsonRequest(t, http.MethodPost, "/api/approve-face", map[string]string{
		"face_image": testImagePayload(t),
	})
	rec := httptest.NewRecorder()
	handler.ApproveFace(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestApproveFaceSupersedesSession(t *testing.T) {
	p := newTestPipeline()
	embedding := testEmbedding(0.4)
	insertIdentity(t, p.store, "Jana", embedding)
	p.extractor.embeddings = [][]float32{embedding}
	handler := NewApproveHandler(p.capture, p.matcher, p.sessions, p.audit)

	var ids []string
	for i := 0; i < 2; i++ {
		req := jsonRequest(t, http.MethodPost, "/api/approve-face", map[string]string{
			"face_image": testImagePayload(t),
		})
		rec := httptest.NewRecorder()
		handler.ApproveFace(rec, req)
		assertStatusCode(t, rec, http.StatusOK)

		var resp map[string]any
		parseJSONResponse(t, rec, &resp)
		ids = append(ids, resp["session_id"].(string))
	}

	first, err := p.store.GetSession(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("get first session: %v", err)
	}
	if first != nil {
		t.Error("first session should be superseded by the second approval")
	}
	second, err := p.store.GetSession(context.Background(), ids[1])
	if err != nil || second == nil {
		t.Fatalf("second session: %v, %v", second, err)
	}
}
