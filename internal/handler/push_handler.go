package handler

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitdocsync/internal/docstore"
	"gitdocsync/internal/model"
	"gitdocsync/internal/pkg/errcode"
	"gitdocsync/internal/pkg/logutil"
	"gitdocsync/internal/pkg/response"
)

const clientDataField = "client_data"

type PushHandler struct {
	store   docstore.Store
	tempDir string
}

type PushResult struct {
	DocVerID     string `json:"_doc_ver_id"`
	VersionLabel string `json:"_version_label"`
	EditDate     int64  `json:"_edit_date"`
}

func NewPushHandler(store docstore.Store, tempDir string) *PushHandler {
	return &PushHandler{store: store, tempDir: tempDir}
}

// Handle checks in every file part of the multipart body as a new document
// version. Per-file failures are logged and skipped; the response contains
// exactly the document ids that succeeded.
func (h *PushHandler) Handle(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.InvalidMultipart, "multipart body required")
		return
	}
	logger := logutil.From(c.Request.Context())

	data := parseClientData(logger, form)
	versionType := model.VersionTypeMinor
	if data.VersionType != "" {
		versionType, err = model.ParseVersionType(data.VersionType)
		if err != nil {
			response.Error(c, http.StatusBadRequest, errcode.InvalidVersionType, err.Error())
			return
		}
	}
	comment, _ := json.Marshal(data)
	user := getUser(c)

	docIDs := make([]string, 0, len(form.File))
	for docID := range form.File {
		docIDs = append(docIDs, docID)
	}
	sort.Strings(docIDs)

	results := make(map[string]PushResult, len(docIDs))
	for _, docID := range docIDs {
		parts := form.File[docID]
		if len(parts) == 0 {
			continue
		}
		version, err := h.checkIn(c.Request.Context(), docID, parts[0], versionType, user, string(comment))
		if err != nil {
			logger.Error("check-in failed, skipping file",
				zap.String("doc_id", docID),
				zap.String("file", parts[0].Filename),
				zap.Error(err),
			)
			continue
		}
		results[docID] = PushResult{
			DocVerID:     version.ID,
			VersionLabel: version.Label(),
			EditDate:     version.EditDate,
		}
		logger.Info("checked in",
			zap.String("doc_id", docID),
			zap.String("version", version.Label()),
		)
	}
	response.JSON(c, results)
}

// checkIn spools the part to a temp file, runs the checkout / check-in
// cycle, and re-fetches the stored version. The temp file is removed on
// every path; a failed check-in cancels the checkout.
func (h *PushHandler) checkIn(ctx context.Context, docID string, part *multipart.FileHeader, versionType model.VersionType, user, comment string) (*model.DocumentVersion, error) {
	tmp, size, err := h.spool(part)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := h.store.Checkout(ctx, docID, user); err != nil {
		return nil, err
	}
	_, err = h.store.CheckIn(ctx, docstore.CheckInRequest{
		DocumentID:  docID,
		FileName:    part.Filename,
		Content:     tmp,
		Size:        size,
		VersionType: versionType,
		CheckedInBy: user,
		Comment:     comment,
	})
	if err != nil {
		if cancelErr := h.store.CancelCheckout(ctx, docID); cancelErr != nil {
			logutil.From(ctx).Error("cancel checkout failed",
				zap.String("doc_id", docID), zap.Error(cancelErr))
		}
		return nil, err
	}
	return h.store.CurrentVersion(ctx, docID)
}

func (h *PushHandler) spool(part *multipart.FileHeader) (*os.File, int64, error) {
	src, err := part.Open()
	if err != nil {
		return nil, 0, err
	}
	defer src.Close()
	tmp, err := os.CreateTemp(h.tempDir, "gitdocsync-push-*")
	if err != nil {
		return nil, 0, err
	}
	size, err := io.Copy(tmp, src)
	if err == nil {
		_, err = tmp.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, 0, err
	}
	return tmp, size, nil
}

// parseClientData reads the single JSON parameter part. A missing or
// malformed part is swallowed: the push proceeds with empty metadata.
func parseClientData(logger *zap.Logger, form *multipart.Form) model.ClientData {
	var data model.ClientData
	values := form.Value[clientDataField]
	if len(values) == 0 {
		logger.Warn("client_data part missing")
		return data
	}
	if err := json.Unmarshal([]byte(values[0]), &data); err != nil {
		logger.Warn("client_data part is not valid json, ignoring", zap.Error(err))
		return model.ClientData{}
	}
	return data
}
