package docstore

import (
	"context"
	"io"

	"gitdocsync/internal/model"
)

// Store is the document-store capability the bridge runs against:
// checkout / check-in around a version series, current-version lookup, and
// content retrieval. Backends are reference implementations; the bridge
// only ever calls this interface.
type Store interface {
	// Checkout takes the edit lock on a document, registering the
	// document on first contact. Returns ErrCheckedOut when the lock is
	// already held.
	Checkout(ctx context.Context, docID, user string) error

	// CancelCheckout releases the lock without creating a version.
	CancelCheckout(ctx context.Context, docID string) error

	// CheckIn stores content as the next version of the series and
	// releases the lock. The lock must be held.
	CheckIn(ctx context.Context, req CheckInRequest) (*model.DocumentVersion, error)

	// CurrentVersion returns the latest version of a document.
	CurrentVersion(ctx context.Context, docID string) (*model.DocumentVersion, error)

	// OpenContent returns the current version and a reader over its bytes.
	OpenContent(ctx context.Context, docID string) (*model.DocumentVersion, io.ReadCloser, error)

	ListDocuments(ctx context.Context) ([]model.Document, error)

	// ReleaseStaleCheckouts drops locks created before the cutoff and
	// reports how many were released.
	ReleaseStaleCheckouts(ctx context.Context, cutoff int64) (int64, error)
}

type CheckInRequest struct {
	DocumentID  string
	FileName    string
	Content     io.Reader
	Size        int64
	VersionType model.VersionType
	CheckedInBy string
	Comment     string
}
