package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"gitdocsync/internal/model"
	"gitdocsync/internal/pkg/dbutil"
	appErr "gitdocsync/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"doc_id": doc.ID,
		"name":   doc.Name,
		"ctime":  doc.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if dbutil.IsUniqueViolation(err) {
		return appErr.ErrConflict
	}
	return err
}

func (r *DocumentRepo) GetByID(ctx context.Context, docID string) (*model.Document, error) {
	where := map[string]interface{}{
		"doc_id": docID,
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, []string{"doc_id", "name", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var doc model.Document
	if err := rows.Scan(&doc.ID, &doc.Name, &doc.Ctime); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) List(ctx context.Context) ([]model.Document, error) {
	where := map[string]interface{}{
		"_orderby": "doc_id asc",
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, []string{"doc_id", "name", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	docs := make([]model.Document, 0)
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Ctime); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
