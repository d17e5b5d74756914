package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"gitdocsync/internal/model"
	"gitdocsync/internal/pkg/dbutil"
	appErr "gitdocsync/internal/pkg/errors"
)

type CheckoutRepo struct {
	db *sql.DB
}

func NewCheckoutRepo(db *sql.DB) *CheckoutRepo {
	return &CheckoutRepo{db: db}
}

// Create takes the checkout lock for a document. A unique violation means
// someone else holds it.
func (r *CheckoutRepo) Create(ctx context.Context, co *model.Checkout) error {
	data := map[string]interface{}{
		"doc_id":         co.DocumentID,
		"checked_out_by": co.CheckedOutBy,
		"ctime":          co.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("doc_checkouts", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if dbutil.IsUniqueViolation(err) {
		return appErr.ErrCheckedOut
	}
	return err
}

func (r *CheckoutRepo) Delete(ctx context.Context, docID string) error {
	where := map[string]interface{}{
		"doc_id": docID,
	}
	sqlStr, args, err := builder.BuildDelete("doc_checkouts", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotLocked
	}
	return nil
}

// DeleteOlderThan removes locks created before the cutoff and reports how
// many were released.
func (r *CheckoutRepo) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	where := map[string]interface{}{
		"ctime <": cutoff,
	}
	sqlStr, args, err := builder.BuildDelete("doc_checkouts", where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
