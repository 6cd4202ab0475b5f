package repositories

import (
	"github.com/lib/pq"

	sq "github.com/Masterminds/squirrel"
)

var accountColumns = []string{`"id"`, `"accountNumber"`, `"balance"`, `"isBlocked"`, `"updatedAt"`}

// query to account database
var (
	queryAccountFind = `
		SELECT "id", "accountNumber", "balance", "isBlocked", "updatedAt"
		FROM "account"
		WHERE "id" = $1;`

	queryAccountFindForUpdate = `
		SELECT "id", "accountNumber", "balance", "isBlocked", "updatedAt"
		FROM "account"
		WHERE "id" = $1
		FOR UPDATE;`

	queryAccountSave = `
		UPDATE "account"
		SET "balance" = $1, "isBlocked" = $2, "updatedAt" = $3
		WHERE "id" = $4;`
)

// buildFindAccountsByIDsQuery locks the rows in id order so concurrent
// batches touching the same accounts cannot deadlock.
func buildFindAccountsByIDsQuery(ids []int64) (string, []interface{}, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	return psql.Select(accountColumns...).
		From(`"account"`).
		Where(sq.Expr(`"id" = ANY(?)`, pq.Array(ids))).
		OrderBy(`"id" ASC`).
		Suffix("FOR UPDATE").
		ToSql()
}
