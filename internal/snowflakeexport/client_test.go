package snowflakeexport

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/service/linker"
)

func TestExportMetrics_WritesSummaryAndBucketRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &Client{db: db}

	m := &linker.Metrics{
		PeriodDays:         1,
		TotalConflicts:     2,
		ResolvedCount:      1,
		OpenCount:          1,
		RecurringConflicts: 0,
		BySeverity: map[domain.Severity]*linker.SeverityBucket{
			domain.SeverityHigh: {Total: 2, Resolved: 1},
		},
		ByType: map[domain.ConflictType]*linker.TypeBucket{
			domain.ConflictOrphan: {Total: 2, Resolved: 1},
		},
		ByResolver: map[string]int{"resolver-1": 1},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO CONFLICT_METRICS_SUMMARY").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO CONFLICT_METRICS_BY_SEVERITY").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO CONFLICT_METRICS_BY_TYPE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO CONFLICT_METRICS_BY_RESOLVER").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = client.ExportMetrics(context.Background(), m, time.Now())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportMetrics_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &Client{db: db}
	m := &linker.Metrics{PeriodDays: 1}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO CONFLICT_METRICS_SUMMARY").WillReturnError(assertErr{})
	mock.ExpectRollback()

	err = client.ExportMetrics(context.Background(), m, time.Now())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

type assertErr struct{}

func (assertErr) Error() string { return "snowflake insert failed" }
