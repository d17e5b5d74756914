package docstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitdocsync/internal/model"
	appErr "gitdocsync/internal/pkg/errors"
)

// MemoryStore is the map-backed reference backend used by tests and
// development runs. Content lives next to the metadata.
type MemoryStore struct {
	mu        sync.Mutex
	docs      map[string]model.Document
	versions  map[string][]model.DocumentVersion
	checkouts map[string]model.Checkout
	content   map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:      make(map[string]model.Document),
		versions:  make(map[string][]model.DocumentVersion),
		checkouts: make(map[string]model.Checkout),
		content:   make(map[string][]byte),
	}
}

func (s *MemoryStore) Checkout(ctx context.Context, docID, user string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkouts[docID]; ok {
		return appErr.ErrCheckedOut
	}
	if _, ok := s.docs[docID]; !ok {
		s.docs[docID] = model.Document{ID: docID, Name: docID, Ctime: time.Now().Unix()}
	}
	s.checkouts[docID] = model.Checkout{DocumentID: docID, CheckedOutBy: user, Ctime: time.Now().Unix()}
	return nil
}

func (s *MemoryStore) CancelCheckout(ctx context.Context, docID string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkouts[docID]; !ok {
		return appErr.ErrNotLocked
	}
	delete(s.checkouts, docID)
	return nil
}

func (s *MemoryStore) CheckIn(ctx context.Context, req CheckInRequest) (*model.DocumentVersion, error) {
	_ = ctx
	data, err := io.ReadAll(req.Content)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkouts[req.DocumentID]; !ok {
		return nil, appErr.ErrNotLocked
	}
	major, minor := 0, 0
	if versions := s.versions[req.DocumentID]; len(versions) > 0 {
		last := versions[len(versions)-1]
		major, minor = last.Major, last.Minor
	}
	major, minor = req.VersionType.Bump(major, minor)
	version := model.DocumentVersion{
		ID:               uuid.NewString(),
		DocumentID:       req.DocumentID,
		Major:            major,
		Minor:            minor,
		FileName:         req.FileName,
		CheckedInBy:      req.CheckedInBy,
		CheckedInComment: req.Comment,
		EditDate:         time.Now().Unix(),
	}
	version.FileKey = blobKey(&version)
	version.ContentURL = "memory://" + version.FileKey
	s.content[version.FileKey] = data
	s.versions[req.DocumentID] = append(s.versions[req.DocumentID], version)
	delete(s.checkouts, req.DocumentID)
	return &version, nil
}

func (s *MemoryStore) CurrentVersion(ctx context.Context, docID string) (*model.DocumentVersion, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.versions[docID]
	if len(versions) == 0 {
		return nil, appErr.ErrNotFound
	}
	v := versions[len(versions)-1]
	return &v, nil
}

func (s *MemoryStore) OpenContent(ctx context.Context, docID string) (*model.DocumentVersion, io.ReadCloser, error) {
	v, err := s.CurrentVersion(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	data, ok := s.content[v.FileKey]
	s.mu.Unlock()
	if !ok {
		return nil, nil, appErr.ErrNotFound
	}
	return v, io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) ListDocuments(ctx context.Context) ([]model.Document, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]model.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *MemoryStore) ReleaseStaleCheckouts(ctx context.Context, cutoff int64) (int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var released int64
	for docID, co := range s.checkouts {
		if co.Ctime < cutoff {
			delete(s.checkouts, docID)
			released++
		}
	}
	return released, nil
}
