package repositories

var (
	queryTransactionCreate = `
		INSERT INTO "transaction"(
			"eventId", "accountId", "amount", "kind", "balanceAfter",
			"sourceAccount", "targetAccount", "category", "createdAt"
		)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING "id";`
)
