package handler

import (
	"encoding/base64"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitdocsync/internal/docstore"
	"gitdocsync/internal/pkg/errcode"
	appErr "gitdocsync/internal/pkg/errors"
	"gitdocsync/internal/pkg/logutil"
	"gitdocsync/internal/pkg/response"
)

type PullHandler struct {
	store docstore.Store
}

type PullRequest struct {
	DocIDs []string `json:"doc_ids"`
}

type PullRecord struct {
	DocVerID     string `json:"doc_ver_id"`
	VersionLabel string `json:"version_label"`
	FileName     string `json:"file_name"`
	Content      string `json:"content"`
}

func NewPullHandler(store docstore.Store) *PullHandler {
	return &PullHandler{store: store}
}

// Handle returns current content (base64) per requested doc id. Unknown
// ids and per-file read failures are logged and omitted.
func (h *PullHandler) Handle(c *gin.Context) {
	var req PullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.InvalidBody, "json body with doc_ids required")
		return
	}
	logger := logutil.From(c.Request.Context())

	records := make(map[string]PullRecord, len(req.DocIDs))
	for _, docID := range req.DocIDs {
		version, rc, err := h.store.OpenContent(c.Request.Context(), docID)
		if err != nil {
			if !appErr.IsNotFound(err) {
				handleError(c, err)
				return
			}
			logger.Warn("no content for document", zap.String("doc_id", docID))
			continue
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			logger.Error("read content failed, skipping", zap.String("doc_id", docID), zap.Error(err))
			continue
		}
		records[docID] = PullRecord{
			DocVerID:     version.ID,
			VersionLabel: version.Label(),
			FileName:     version.FileName,
			Content:      base64.StdEncoding.EncodeToString(data),
		}
	}
	response.JSON(c, records)
}
