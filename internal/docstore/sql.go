package docstore

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"gitdocsync/internal/filestore"
	"gitdocsync/internal/model"
	appErr "gitdocsync/internal/pkg/errors"
	"gitdocsync/internal/repo"
)

const currentVersionCacheSize = 512

// SQLStore keeps version-series metadata in postgres and content blobs in
// a filestore backend. Current-version lookups go through an LRU that is
// invalidated on check-in and cancel.
type SQLStore struct {
	docs      *repo.DocumentRepo
	versions  *repo.VersionRepo
	checkouts *repo.CheckoutRepo
	blobs     filestore.Store
	current   *lru.Cache[string, model.DocumentVersion]
}

func NewSQLStore(docs *repo.DocumentRepo, versions *repo.VersionRepo, checkouts *repo.CheckoutRepo, blobs filestore.Store) (*SQLStore, error) {
	cache, err := lru.New[string, model.DocumentVersion](currentVersionCacheSize)
	if err != nil {
		return nil, err
	}
	return &SQLStore{
		docs:      docs,
		versions:  versions,
		checkouts: checkouts,
		blobs:     blobs,
		current:   cache,
	}, nil
}

func (s *SQLStore) Checkout(ctx context.Context, docID, user string) error {
	if _, err := s.docs.GetByID(ctx, docID); err != nil {
		if !appErr.IsNotFound(err) {
			return err
		}
		doc := &model.Document{ID: docID, Name: docID, Ctime: time.Now().Unix()}
		if err := s.docs.Create(ctx, doc); err != nil && err != appErr.ErrConflict {
			return err
		}
	}
	return s.checkouts.Create(ctx, &model.Checkout{
		DocumentID:   docID,
		CheckedOutBy: user,
		Ctime:        time.Now().Unix(),
	})
}

func (s *SQLStore) CancelCheckout(ctx context.Context, docID string) error {
	s.current.Remove(docID)
	return s.checkouts.Delete(ctx, docID)
}

func (s *SQLStore) CheckIn(ctx context.Context, req CheckInRequest) (*model.DocumentVersion, error) {
	major, minor := 0, 0
	prev, err := s.versions.CurrentByDoc(ctx, req.DocumentID)
	switch {
	case err == nil:
		major, minor = prev.Major, prev.Minor
	case appErr.IsNotFound(err):
	default:
		return nil, err
	}
	major, minor = req.VersionType.Bump(major, minor)

	version := &model.DocumentVersion{
		ID:               uuid.NewString(),
		DocumentID:       req.DocumentID,
		Major:            major,
		Minor:            minor,
		FileName:         req.FileName,
		CheckedInBy:      req.CheckedInBy,
		CheckedInComment: req.Comment,
		EditDate:         time.Now().Unix(),
	}
	version.FileKey = blobKey(version)

	if err := s.blobs.Save(ctx, version.FileKey, req.Content, req.Size); err != nil {
		return nil, err
	}
	if err := s.versions.Create(ctx, version); err != nil {
		return nil, err
	}
	if err := s.checkouts.Delete(ctx, req.DocumentID); err != nil {
		return nil, err
	}
	version.ContentURL = s.blobs.URL(version.FileKey)
	s.current.Add(req.DocumentID, *version)
	return version, nil
}

func (s *SQLStore) CurrentVersion(ctx context.Context, docID string) (*model.DocumentVersion, error) {
	if v, ok := s.current.Get(docID); ok {
		return &v, nil
	}
	v, err := s.versions.CurrentByDoc(ctx, docID)
	if err != nil {
		return nil, err
	}
	v.ContentURL = s.blobs.URL(v.FileKey)
	s.current.Add(docID, *v)
	return v, nil
}

func (s *SQLStore) OpenContent(ctx context.Context, docID string) (*model.DocumentVersion, io.ReadCloser, error) {
	v, err := s.CurrentVersion(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, v.FileKey)
	if err != nil {
		return nil, nil, err
	}
	return v, rc, nil
}

func (s *SQLStore) ListDocuments(ctx context.Context) ([]model.Document, error) {
	return s.docs.List(ctx)
}

func (s *SQLStore) ReleaseStaleCheckouts(ctx context.Context, cutoff int64) (int64, error) {
	return s.checkouts.DeleteOlderThan(ctx, cutoff)
}

func blobKey(v *model.DocumentVersion) string {
	ext := strings.ToLower(filepath.Ext(v.FileName))
	return v.DocumentID + "_" + v.ID + ext
}
