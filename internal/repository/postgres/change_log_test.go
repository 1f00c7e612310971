package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
)

func TestInsertChangeLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewChangeLogRepo(db)
	entryID := "entry-1"
	row := &domain.ChangeLog{
		NetworkID:          "net-1",
		BrandID:            "brand-1",
		EntryID:            &entryID,
		ActionType:         domain.ActionCreateNode,
		AffectedNode:       "/blog",
		ActorUserID:        "u-1",
		ActorEmail:         "op@example.com",
		ChangeNote:         "add T1 supporter",
		NotificationStatus: domain.NotificationPending,
	}

	mock.ExpectExec("INSERT INTO seo_change_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.InsertChangeLog(context.Background(), row))
	assert.NotEmpty(t, row.ID, "an id is minted when the caller didn't set one")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotificationStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewChangeLogRepo(db)

	mock.ExpectExec("UPDATE seo_change_logs SET notification_status").
		WithArgs(domain.NotificationFailed, "log-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateNotificationStatus(context.Background(), "log-1", domain.NotificationFailed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByNetwork(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewChangeLogRepo(db)
	entryID := "entry-1"
	created := time.Now()

	cols := []string{
		"id", "network_id", "brand_id", "entry_id", "action_type", "affected_node",
		"actor_user_id", "actor_email", "change_note", "before_snapshot", "after_snapshot",
		"created_at", "notification_status", "archived",
	}
	mock.ExpectQuery("FROM seo_change_logs").
		WithArgs("net-1", 100, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("log-1", "net-1", "brand-1", entryID, "create_node", "/blog",
				"u-1", "op@example.com", "add T1 supporter", nil, nil,
				created, "success", false))

	rows, err := repo.ListByNetwork(context.Background(), "net-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "log-1", rows[0].ID)
	assert.Equal(t, domain.ActionCreateNode, rows[0].ActionType)
	assert.Nil(t, rows[0].BeforeSnapshot)
	require.NoError(t, mock.ExpectationsWereMet())
}
