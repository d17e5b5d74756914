package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"gitdocsync/internal/model"
	"gitdocsync/internal/pkg/dbutil"
	appErr "gitdocsync/internal/pkg/errors"
)

type VersionRepo struct {
	db *sql.DB
}

func NewVersionRepo(db *sql.DB) *VersionRepo {
	return &VersionRepo{db: db}
}

var versionColumns = []string{
	"doc_ver_id", "doc_id", "major", "minor", "file_name", "file_key",
	"checked_in_by", "checked_in_comment", "edit_date",
}

func (r *VersionRepo) Create(ctx context.Context, version *model.DocumentVersion) error {
	data := map[string]interface{}{
		"doc_ver_id":         version.ID,
		"doc_id":             version.DocumentID,
		"major":              version.Major,
		"minor":              version.Minor,
		"file_name":          version.FileName,
		"file_key":           version.FileKey,
		"checked_in_by":      version.CheckedInBy,
		"checked_in_comment": version.CheckedInComment,
		"edit_date":          version.EditDate,
	}
	sqlStr, args, err := builder.BuildInsert("doc_versions", []map[string]interface{}{data})
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

// CurrentByDoc returns the highest-labeled version of a document.
func (r *VersionRepo) CurrentByDoc(ctx context.Context, docID string) (*model.DocumentVersion, error) {
	where := map[string]interface{}{
		"doc_id":   docID,
		"_orderby": "major desc, minor desc",
		"_limit":   []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("doc_versions", where, versionColumns)
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
	var v model.DocumentVersion
	if err := scanVersion(rows, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VersionRepo) ListByDoc(ctx context.Context, docID string) ([]model.DocumentVersion, error) {
	where := map[string]interface{}{
		"doc_id":   docID,
		"_orderby": "major desc, minor desc",
	}
	sqlStr, args, err := builder.BuildSelect("doc_versions", where, versionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	versions := make([]model.DocumentVersion, 0)
	for rows.Next() {
		var v model.DocumentVersion
		if err := scanVersion(rows, &v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func scanVersion(rows *sql.Rows, v *model.DocumentVersion) error {
	return rows.Scan(&v.ID, &v.DocumentID, &v.Major, &v.Minor, &v.FileName, &v.FileKey,
		&v.CheckedInBy, &v.CheckedInComment, &v.EditDate)
}
