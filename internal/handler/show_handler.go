package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitdocsync/internal/docstore"
	appErr "gitdocsync/internal/pkg/errors"
	"gitdocsync/internal/pkg/logutil"
	"gitdocsync/internal/pkg/response"
)

type ShowHandler struct {
	store docstore.Store
}

type ShowRecord struct {
	DocVerID         string `json:"doc_ver_id"`
	VersionLabel     string `json:"version_label"`
	EditDate         int64  `json:"edit_date"`
	CheckedInBy      string `json:"checked_in_by"`
	CheckedInComment string `json:"checked_in_comment"`
	ContentURL       string `json:"content_url"`
}

func NewShowHandler(store docstore.Store) *ShowHandler {
	return &ShowHandler{store: store}
}

// Handle returns the current version record per requested doc_id, or for
// every known document when no ids are given. Unknown ids are omitted.
func (h *ShowHandler) Handle(c *gin.Context) {
	docIDs := c.QueryArray("doc_id")
	if len(docIDs) == 0 {
		docs, err := h.store.ListDocuments(c.Request.Context())
		if err != nil {
			handleError(c, err)
			return
		}
		for _, doc := range docs {
			docIDs = append(docIDs, doc.ID)
		}
	}
	logger := logutil.From(c.Request.Context())

	records := make(map[string]ShowRecord, len(docIDs))
	for _, docID := range docIDs {
		version, err := h.store.CurrentVersion(c.Request.Context(), docID)
		if err != nil {
			if !appErr.IsNotFound(err) {
				handleError(c, err)
				return
			}
			logger.Warn("no versions for document", zap.String("doc_id", docID))
			continue
		}
		records[docID] = ShowRecord{
			DocVerID:         version.ID,
			VersionLabel:     version.Label(),
			EditDate:         version.EditDate,
			CheckedInBy:      version.CheckedInBy,
			CheckedInComment: version.CheckedInComment,
			ContentURL:       version.ContentURL,
		}
	}
	response.JSON(c, records)
}
