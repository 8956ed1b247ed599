package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opArchiveCreate        = "reports.repository.create"
	opArchiveList          = "reports.repository.list"
	opArchiveGet           = "reports.repository.get"
	opArchiveListExpired   = "reports.repository.list_expired"
	opArchiveDelete        = "reports.repository.delete"
	errArchiveRepoNotReady = "report archive repository not configured"
)

// Archive is a stored report file.
type Archive struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"userId"`
	ReportType string    `json:"reportType"`
	Format     string    `json:"format"`
	FileName   string    `json:"fileName"`
	ObjectKey  string    `json:"-"`
	RowCount   int       `json:"rowCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ArchiveStore persists archive records.
type ArchiveStore interface {
	Create(ctx context.Context, a Archive) (Archive, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Archive, error)
	GetForUser(ctx context.Context, id uuid.UUID, userID string) (Archive, error)
	ListCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]Archive, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository stores archive records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const archiveColumns = `id, user_id, report_type, format, file_name, object_key, row_count, created_at`

func (r *Repository) Create(ctx context.Context, a Archive) (Archive, error) {
	if r == nil || r.pool == nil {
		return Archive{}, apperr.Internal(errArchiveRepoNotReady).WithOp(opArchiveCreate)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO report_archives (id, user_id, report_type, format, file_name, object_key, row_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+archiveColumns,
		a.ID, a.UserID, a.ReportType, a.Format, a.FileName, a.ObjectKey, a.RowCount)
	out, err := scanArchive(row)
	if err != nil {
		return Archive{}, apperr.Internal(fmt.Sprintf("create report archive failed: %v", err)).WithOp(opArchiveCreate)
	}
	return out, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]Archive, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errArchiveRepoNotReady).WithOp(opArchiveList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+archiveColumns+`
		FROM report_archives
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list report archives failed: %v", err)).WithOp(opArchiveList)
	}
	return collectArchives(rows, opArchiveList)
}

func (r *Repository) GetForUser(ctx context.Context, id uuid.UUID, userID string) (Archive, error) {
	if r == nil || r.pool == nil {
		return Archive{}, apperr.Internal(errArchiveRepoNotReady).WithOp(opArchiveGet)
	}

	row := r.pool.QueryRow(ctx, `
		SELECT `+archiveColumns+`
		FROM report_archives
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	a, err := scanArchive(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Archive{}, apperr.NotFound("report archive not found").WithOp(opArchiveGet)
	}
	if err != nil {
		return Archive{}, apperr.Internal(fmt.Sprintf("get report archive failed: %v", err)).WithOp(opArchiveGet)
	}
	return a, nil
}

func (r *Repository) ListCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]Archive, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errArchiveRepoNotReady).WithOp(opArchiveListExpired)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+archiveColumns+`
		FROM report_archives
		WHERE created_at < $1
		ORDER BY created_at
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list expired report archives failed: %v", err)).WithOp(opArchiveListExpired)
	}
	return collectArchives(rows, opArchiveListExpired)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errArchiveRepoNotReady).WithOp(opArchiveDelete)
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM report_archives WHERE id = $1`, id); err != nil {
		return apperr.Internal(fmt.Sprintf("delete report archive failed: %v", err)).WithOp(opArchiveDelete)
	}
	return nil
}

func scanArchive(row pgx.Row) (Archive, error) {
	var a Archive
	err := row.Scan(&a.ID, &a.UserID, &a.ReportType, &a.Format, &a.FileName, &a.ObjectKey, &a.RowCount, &a.CreatedAt)
	return a, err
}

func collectArchives(rows pgx.Rows, op string) ([]Archive, error) {
	defer rows.Close()
	items := make([]Archive, 0)
	for rows.Next() {
		a, err := scanArchive(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan report archives failed: %v", err)).WithOp(op)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate report archives failed: %v", err)).WithOp(op)
	}
	return items, nil
}

var _ ArchiveStore = (*Repository)(nil)
