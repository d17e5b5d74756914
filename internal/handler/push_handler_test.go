package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"gitdocsync/internal/docstore"
	"gitdocsync/internal/model"
)

// failingStore fails CheckIn for one document id and delegates the rest.
type failingStore struct {
	docstore.Store
	failDocID string
}

func (s *failingStore) CheckIn(ctx context.Context, req docstore.CheckInRequest) (*model.DocumentVersion, error) {
	if req.DocumentID == s.failDocID {
		return nil, fmt.Errorf("storage unavailable")
	}
	return s.Store.CheckIn(ctx, req)
}

func pushEngine(t *testing.T, store docstore.Store, tempDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	RegisterRoutes(engine, RouterDeps{
		Push:     NewPushHandler(store, tempDir),
		Show:     NewShowHandler(store),
		Pull:     NewPullHandler(store),
		TranxNum: "42",
	})
	return engine
}

func buildPushBody(t *testing.T, files map[string]string, clientData string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for docID, content := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, docID, docID+".md"))
		header.Set("Content-Type", "text/plain")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if clientData != "" {
		require.NoError(t, writer.WriteField("client_data", clientData))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func doPush(t *testing.T, engine *gin.Engine, files map[string]string, clientData string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := buildPushBody(t, files, clientData)
	req := httptest.NewRequest(http.MethodPost, "/actioncode?tranxNum=42&route=push", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestPushChecksInEveryFile(t *testing.T) {
	tempDir := t.TempDir()
	engine := pushEngine(t, docstore.NewMemoryStore(), tempDir)

	clientData := `{"current_branch":"main","current_sha_hash":"abc123","current_commit_msg":"first","version_type":"minor"}`
	w := doPush(t, engine, map[string]string{
		"DOC-1": "alpha content",
		"DOC-2": "beta content",
	}, clientData)
	require.Equal(t, http.StatusOK, w.Code)

	var results map[string]PushResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 2)
	require.Equal(t, "0.1", results["DOC-1"].VersionLabel)
	require.Equal(t, "0.1", results["DOC-2"].VersionLabel)
	require.NotEmpty(t, results["DOC-1"].DocVerID)
	require.NotZero(t, results["DOC-1"].EditDate)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	require.Empty(t, entries, "spooled temp files must be removed")
}

func TestPushVersionLabelSequence(t *testing.T) {
	store := docstore.NewMemoryStore()
	engine := pushEngine(t, store, t.TempDir())

	push := func(versionType string) string {
		w := doPush(t, engine, map[string]string{"DOC-1": "content"},
			fmt.Sprintf(`{"version_type":%q}`, versionType))
		require.Equal(t, http.StatusOK, w.Code)
		var results map[string]PushResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		return results["DOC-1"].VersionLabel
	}

	require.Equal(t, "0.1", push("minor"))
	require.Equal(t, "0.2", push("minor"))
	require.Equal(t, "1.0", push("major"))
	require.Equal(t, "1.1", push("minor"))
}

func TestPushUnknownVersionTypeAborts(t *testing.T) {
	store := docstore.NewMemoryStore()
	engine := pushEngine(t, store, t.TempDir())

	w := doPush(t, engine, map[string]string{"DOC-1": "content"}, `{"version_type":"patch"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	_, err := store.CurrentVersion(context.Background(), "DOC-1")
	require.Error(t, err, "nothing may be checked in when the version type is rejected")
}

func TestPushMalformedClientDataIsSwallowed(t *testing.T) {
	engine := pushEngine(t, docstore.NewMemoryStore(), t.TempDir())

	w := doPush(t, engine, map[string]string{"DOC-1": "content"}, `{not json`)
	require.Equal(t, http.StatusOK, w.Code)

	var results map[string]PushResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Contains(t, results, "DOC-1")
	require.Equal(t, "0.1", results["DOC-1"].VersionLabel)
}

func TestPushMissingClientDataDefaultsToMinor(t *testing.T) {
	engine := pushEngine(t, docstore.NewMemoryStore(), t.TempDir())

	w := doPush(t, engine, map[string]string{"DOC-1": "content"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var results map[string]PushResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Equal(t, "0.1", results["DOC-1"].VersionLabel)
}

func TestPushPartialSuccess(t *testing.T) {
	tempDir := t.TempDir()
	store := &failingStore{Store: docstore.NewMemoryStore(), failDocID: "DOC-BAD"}
	engine := pushEngine(t, store, tempDir)

	w := doPush(t, engine, map[string]string{
		"DOC-1":   "fine",
		"DOC-BAD": "doomed",
		"DOC-2":   "also fine",
	}, `{"version_type":"minor"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var results map[string]PushResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 2)
	require.Contains(t, results, "DOC-1")
	require.Contains(t, results, "DOC-2")
	require.NotContains(t, results, "DOC-BAD")

	// The failed check-in released its lock, so a retry succeeds.
	w = doPush(t, engine, map[string]string{"DOC-BAD": "retry"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{}`, w.Body.String())
	require.NoError(t, store.Store.Checkout(context.Background(), "DOC-BAD", "tester"))
	require.NoError(t, store.Store.CancelCheckout(context.Background(), "DOC-BAD"))

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	require.Empty(t, entries, "temp files must be removed on failure paths too")
}

func TestPushWithoutMultipartBodyIsRejected(t *testing.T) {
	engine := pushEngine(t, docstore.NewMemoryStore(), t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/actioncode?tranxNum=42&route=push",
		bytes.NewBufferString("plain text"))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
