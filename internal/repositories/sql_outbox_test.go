package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var outboxRowColumns = []string{
	"id", "aggregateType", "aggregateId", "eventType", "payload", "processed", "createdAt", "processedAt",
}

func TestOutboxRepositoryTestSuite(t *testing.T) {
	t.Helper()
	suite.Run(t, new(outboxTestSuite))
}

type outboxTestSuite struct {
	suite.Suite
	db   *sql.DB
	mock sqlmock.Sqlmock
	repo *Repository
}

func (suite *outboxTestSuite) SetupTest() {
	var err error

	suite.db, suite.mock, err = sqlmock.New()
	require.NoError(suite.T(), err)

	suite.repo = NewSQLRepository(suite.db, suite.db)
}

func (suite *outboxTestSuite) TearDownTest() {
	suite.db.Close()
}

func (suite *outboxTestSuite) SetupModel() models.OutboxRecord {
	return models.OutboxRecord{
		ID:            uuid.MustParse("6f1c2a8e-9a7b-4c55-8d0e-2b1f3c4d5e6f"),
		AggregateType: models.AggregateTypeAccount,
		AggregateID:   "1",
		EventType:     models.EventTypeTransactionApplied,
		Payload:       []byte(`{"eventId":42}`),
		CreatedAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func (suite *outboxTestSuite) TestRepository_SaveInsideAtomic() {
	record := suite.SetupModel()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(regexp.QuoteMeta(queryOutboxCreate)).
		WithArgs(record.ID, record.AggregateType, record.AggregateID, record.EventType,
			record.Payload, false, record.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Atomic(context.TODO(), func(ctx context.Context, r SQLRepository) error {
		return r.GetOutboxRepository().Save(ctx, record)
	})
	require.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *outboxTestSuite) TestRepository_FindUnprocessed() {
	record := suite.SetupModel()
	processedAt := record.CreatedAt.Add(time.Minute)

	suite.Run("limit applied", func() {
		query, _, err := buildFindUnprocessedOutboxQuery(10)
		require.NoError(suite.T(), err)
		assert.Contains(suite.T(), query, `ORDER BY "createdAt" ASC LIMIT 10`)

		suite.mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(false).
			WillReturnRows(sqlmock.NewRows(outboxRowColumns).
				AddRow(record.ID.String(), record.AggregateType, record.AggregateID, record.EventType,
					record.Payload, false, record.CreatedAt, nil).
				AddRow(uuid.NewString(), record.AggregateType, "2", record.EventType,
					[]byte(`{}`), false, record.CreatedAt.Add(time.Second), processedAt))

		got, err := suite.repo.GetOutboxRepository().FindUnprocessed(context.TODO(), 10)
		require.NoError(suite.T(), err)
		require.Len(suite.T(), got, 2)
		assert.Equal(suite.T(), record.ID, got[0].ID)
		assert.Nil(suite.T(), got[0].ProcessedAt)
		assert.Equal(suite.T(), "2", got[1].AggregateID)
		require.NotNil(suite.T(), got[1].ProcessedAt)
		assert.True(suite.T(), processedAt.Equal(*got[1].ProcessedAt))
		assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	})

	suite.Run("no limit", func() {
		query, _, err := buildFindUnprocessedOutboxQuery(0)
		require.NoError(suite.T(), err)
		assert.NotContains(suite.T(), query, "LIMIT")

		suite.mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(false).
			WillReturnRows(sqlmock.NewRows(outboxRowColumns))

		got, err := suite.repo.GetOutboxRepository().FindUnprocessed(context.TODO(), 0)
		require.NoError(suite.T(), err)
		assert.Empty(suite.T(), got)
		assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	})

	suite.Run("query error", func() {
		query, _, err := buildFindUnprocessedOutboxQuery(5)
		require.NoError(suite.T(), err)

		suite.mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(false).
			WillReturnError(sql.ErrConnDone)

		_, err = suite.repo.GetOutboxRepository().FindUnprocessed(context.TODO(), 5)
		assert.ErrorIs(suite.T(), err, sql.ErrConnDone)
		assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	})
}

func (suite *outboxTestSuite) TestRepository_MarkProcessed() {
	record := suite.SetupModel()
	processedAt := time.Date(2024, 1, 2, 3, 5, 0, 0, time.UTC)

	suite.Run("marked", func() {
		suite.mock.ExpectExec(regexp.QuoteMeta(queryOutboxMarkProcessed)).
			WithArgs(processedAt, record.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := suite.repo.GetOutboxRepository().MarkProcessed(context.TODO(), record, processedAt)
		assert.NoError(suite.T(), err)
		assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	})

	suite.Run("already processed", func() {
		suite.mock.ExpectExec(regexp.QuoteMeta(queryOutboxMarkProcessed)).
			WithArgs(processedAt, record.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := suite.repo.GetOutboxRepository().MarkProcessed(context.TODO(), record, processedAt)
		assert.ErrorIs(suite.T(), err, common.ErrNoRowsAffected)
		assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	})
}
