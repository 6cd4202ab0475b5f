package repositories

import (
	sq "github.com/Masterminds/squirrel"
)

var outboxColumns = []string{
	`"id"`, `"aggregateType"`, `"aggregateId"`, `"eventType"`, `"payload"`, `"processed"`, `"createdAt"`, `"processedAt"`,
}

var (
	queryOutboxCreate = `
		INSERT INTO "outbox"(
			"id", "aggregateType", "aggregateId", "eventType", "payload", "processed", "createdAt"
		)
		VALUES($1, $2, $3, $4, $5, $6, $7);`

	queryOutboxMarkProcessed = `
		UPDATE "outbox"
		SET "processed" = TRUE, "processedAt" = $1
		WHERE "id" = $2 AND "processed" = FALSE;`
)

func buildFindUnprocessedOutboxQuery(limit uint64) (string, []interface{}, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query := psql.Select(outboxColumns...).
		From(`"outbox"`).
		Where(sq.Eq{`"processed"`: false}).
		OrderBy(`"createdAt" ASC`)
	if limit > 0 {
		query = query.Limit(limit)
	}

	return query.ToSql()
}
