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

func TestInsertComplaint(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewComplaintRepo(db)
	c := &domain.OptimizationComplaint{
		OptimizationID:     "opt-1",
		Reason:             "wrong keyword targeted",
		Priority:           "high",
		ResponsibleUserIDs: []string{"u-1"},
		Status:             domain.ComplaintCaseOpen,
	}

	mock.ExpectExec("INSERT INTO seo_optimization_complaints").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.InsertComplaint(context.Background(), c))
	assert.NotEmpty(t, c.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetComplaint(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewComplaintRepo(db)
	created := time.Now()

	cols := []string{
		"id", "optimization_id", "reason", "priority", "responsible_user_ids", "status",
		"resolved_at", "resolution_note", "time_to_resolution_hours", "created_at",
	}
	mock.ExpectQuery("FROM seo_optimization_complaints").
		WithArgs("complaint-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("complaint-1", "opt-1", "wrong keyword targeted", "high", []byte(`["u-1"]`),
				"open", nil, nil, nil, created))

	c, err := repo.GetComplaint(context.Background(), "complaint-1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "opt-1", c.OptimizationID)
	assert.Equal(t, []string{"u-1"}, c.ResponsibleUserIDs)
	assert.Nil(t, c.ResolvedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetComplaint_NotFoundIsNilNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewComplaintRepo(db)

	mock.ExpectQuery("FROM seo_optimization_complaints").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, err := repo.GetComplaint(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, c)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateComplaint(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewComplaintRepo(db)
	now := time.Now()
	hours := 2.5
	c := &domain.OptimizationComplaint{
		ID:                    "complaint-1",
		Status:                domain.ComplaintCaseResolved,
		ResolvedAt:            &now,
		ResolutionNote:        "rewrote the targeting plan",
		TimeToResolutionHours: &hours,
	}

	mock.ExpectExec("UPDATE seo_optimization_complaints").
		WithArgs(c.Status, c.ResolvedAt, c.ResolutionNote, c.TimeToResolutionHours, c.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateComplaint(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertProjectComplaint(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewComplaintRepo(db)
	c := &domain.ProjectComplaint{
		NetworkID: "net-1",
		Reason:    "whole network slipped",
		Priority:  "critical",
		Status:    domain.ComplaintCaseOpen,
	}

	mock.ExpectExec("INSERT INTO seo_project_complaints").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.InsertProjectComplaint(context.Background(), c))
	assert.NotEmpty(t, c.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
