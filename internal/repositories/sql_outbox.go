package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/monitoring"
)

type OutboxRepository interface {
	Save(ctx context.Context, record models.OutboxRecord) error
	// FindUnprocessed returns pending records oldest first. A zero limit means no limit.
	FindUnprocessed(ctx context.Context, limit uint64) ([]models.OutboxRecord, error)
	// MarkProcessed flips processed to true. Already processed records yield ErrNoRowsAffected.
	MarkProcessed(ctx context.Context, record models.OutboxRecord, processedAt time.Time) error
}

type outboxRepository sqlRepo

var _ OutboxRepository = (*outboxRepository)(nil)

func (or *outboxRepository) Save(ctx context.Context, record models.OutboxRecord) (err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	db := or.r.writer(ctx)

	_, err = db.ExecContext(ctx, queryOutboxCreate,
		record.ID,
		record.AggregateType,
		record.AggregateID,
		record.EventType,
		record.Payload,
		record.Processed,
		record.CreatedAt,
	)
	return
}

func (or *outboxRepository) FindUnprocessed(ctx context.Context, limit uint64) (result []models.OutboxRecord, err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	query, args, err := buildFindUnprocessedOutboxQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	db := or.r.writer(ctx)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			record      models.OutboxRecord
			processedAt sql.NullTime
		)
		err = rows.Scan(
			&record.ID,
			&record.AggregateType,
			&record.AggregateID,
			&record.EventType,
			&record.Payload,
			&record.Processed,
			&record.CreatedAt,
			&processedAt,
		)
		if err != nil {
			return nil, err
		}
		if processedAt.Valid {
			record.ProcessedAt = &processedAt.Time
		}
		result = append(result, record)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (or *outboxRepository) MarkProcessed(ctx context.Context, record models.OutboxRecord, processedAt time.Time) (err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	db := or.r.writer(ctx)

	res, err := db.ExecContext(ctx, queryOutboxMarkProcessed, processedAt, record.ID)
	if err != nil {
		return
	}

	affectedRows, err := res.RowsAffected()
	if err != nil {
		return
	}

	if affectedRows == 0 {
		err = common.ErrNoRowsAffected
	}
	return
}
