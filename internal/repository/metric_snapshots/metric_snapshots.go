package metric_snapshots

import (
	"context"
	"fmt"

	"github.com/ilyadubrovsky/redis-admin/internal/database"
	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	"github.com/ilyadubrovsky/redis-admin/internal/repository/metric_snapshots/dbo"
)

type repo struct {
	db database.PG
}

func NewRepository(db database.PG) *repo {
	return &repo{
		db: db,
	}
}

func (r *repo) Save(ctx context.Context, snapshots ...*domain.MetricSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	query := `
		INSERT INTO metric_snapshots (
		    name,
		    value,
		    created_at
		)
		VALUES ($1, $2, $3)
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, snapshot := range snapshots {
		row := dbo.FromDomain(snapshot)
		_, err = tx.Exec(ctx, query,
			row.Name,      // $1
			row.Value,     // $2
			row.CreatedAt, // $3
		)
		if err != nil {
			return fmt.Errorf("tx.Exec: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}

	return nil
}

func (r *repo) List(ctx context.Context, name string, limit int64) ([]*domain.MetricSnapshot, error) {
	query := `
	SELECT
	  id,
	  name,
	  value,
	  created_at
	FROM metric_snapshots
	WHERE name = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2;
	`

	rows, err := r.db.Query(ctx, query, name, limit)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer func() {
		rows.Close()
	}()

	snapshots := make([]*domain.MetricSnapshot, 0)
	for rows.Next() {
		row := &dbo.MetricSnapshot{}
		err = rows.Scan(
			&row.ID,
			&row.Name,
			&row.Value,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		snapshots = append(snapshots, row.ToDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return snapshots, nil
}
