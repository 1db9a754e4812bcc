package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/models"
)

func setupEventDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SessionEvent{}))
	require.NoError(t, db.Exec("DELETE FROM session_events").Error)
	return db
}

func TestSessionEventRepositoryListOrdersByCreation(t *testing.T) {
	db := setupEventDB(t)
	repo := NewSessionEventRepository(db)

	base := time.Now().Add(-time.Hour)
	first := models.SessionEvent{InterviewID: 1, CandidateID: "cand-1", Kind: models.SessionEventKindVoiceTurn, Payload: datatypes.JSON(`{"text":"hello"}`), CreatedAt: base}
	second := models.SessionEvent{InterviewID: 1, CandidateID: "cand-1", Kind: models.SessionEventKindCodeSubmission, Payload: datatypes.JSON(`{"code":"x=1"}`), CreatedAt: base.Add(time.Minute)}
	third := models.SessionEvent{InterviewID: 1, CandidateID: "cand-1", Kind: models.SessionEventKindVoiceTurn, Payload: datatypes.JSON(`{"text":"done"}`), CreatedAt: base.Add(2 * time.Minute)}

	// insert out of order on purpose
	require.NoError(t, repo.Append(context.Background(), &second))
	require.NoError(t, repo.Append(context.Background(), &third))
	require.NoError(t, repo.Append(context.Background(), &first))

	events, err := repo.List(context.Background(), 1, SessionEventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, models.SessionEventKindVoiceTurn, events[0].Kind)
	require.Equal(t, models.SessionEventKindCodeSubmission, events[1].Kind)
	require.True(t, events[0].CreatedAt.Before(events[1].CreatedAt))
	require.True(t, events[1].CreatedAt.Before(events[2].CreatedAt))
}

func TestSessionEventRepositoryFilters(t *testing.T) {
	db := setupEventDB(t)
	repo := NewSessionEventRepository(db)

	events := []models.SessionEvent{
		{InterviewID: 1, CandidateID: "cand-1", Kind: models.SessionEventKindHint, Payload: datatypes.JSON(`{"hint":"a","hintLevel":"nudge"}`)},
		{InterviewID: 1, CandidateID: "cand-2", Kind: models.SessionEventKindHint, Payload: datatypes.JSON(`{"hint":"b","hintLevel":"nudge"}`)},
		{InterviewID: 1, CandidateID: "cand-1", Kind: models.SessionEventKindVoiceTurn, Payload: datatypes.JSON(`{"text":"hi"}`)},
		{InterviewID: 2, CandidateID: "cand-1", Kind: models.SessionEventKindHint, Payload: datatypes.JSON(`{"hint":"c","hintLevel":"nudge"}`)},
	}
	for i := range events {
		require.NoError(t, repo.Append(context.Background(), &events[i]))
	}

	hints, err := repo.List(context.Background(), 1, SessionEventFilter{CandidateID: "cand-1", Kind: models.SessionEventKindHint})
	require.NoError(t, err)
	require.Len(t, hints, 1)

	count, err := repo.CountHints(context.Background(), 1, "cand-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "must not count another candidate's hints")

	count, err = repo.CountHints(context.Background(), 1, "cand-2")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
