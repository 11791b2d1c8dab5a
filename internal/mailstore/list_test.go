package mailstore

import (
	"context"
	"testing"
	"time"

	"firemail/mail-api/internal/fail"

	"github.com/stretchr/testify/require"
)

func seedInbox(t *testing.T, s *Store) {
	t.Helper()

	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	mails := []CreateMailRequest{
		{Subject: "Standup notes", Sender: "remy@example.com", Labels: []string{"work"}},
		{Subject: "Weekend plans", Sender: "juno@example.com", Labels: []string{"personal"}},
		{Subject: "Work review", Sender: "kai@example.com", Folder: "archive", Labels: []string{"work"}},
	}

	for i, req := range mails {
		received := base.Add(time.Duration(i) * time.Hour)
		req.ReceivedTime = &received

		_, err := s.Create(context.Background(), owner, req)
		require.NoError(t, err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	seedInbox(t, s)

	page, err := s.List(context.Background(), owner, ListMailRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Pagination.Total)
	require.Len(t, page.Results, 3)
	require.Equal(t, "Work review", page.Results[0].Subject)
	require.Equal(t, "Standup notes", page.Results[2].Subject)
}

func TestListFilters(t *testing.T) {
	s := newTestStore(t)
	seedInbox(t, s)
	ctx := context.Background()

	byFolder, err := s.List(ctx, owner, ListMailRequest{Folder: "archive"})
	require.NoError(t, err)
	require.Len(t, byFolder.Results, 1)
	require.Equal(t, "Work review", byFolder.Results[0].Subject)

	byLabel, err := s.List(ctx, owner, ListMailRequest{Label: "work"})
	require.NoError(t, err)
	require.Len(t, byLabel.Results, 2)

	bySearch, err := s.List(ctx, owner, ListMailRequest{Search: "juno"})
	require.NoError(t, err)
	require.Len(t, bySearch.Results, 1)
	require.Equal(t, "Weekend plans", bySearch.Results[0].Subject)

	combined, err := s.List(ctx, owner, ListMailRequest{Label: "work", Folder: "inbox"})
	require.NoError(t, err)
	require.Len(t, combined.Results, 1)
	require.Equal(t, "Standup notes", combined.Results[0].Subject)
}

func TestListPagination(t *testing.T) {
	s := newTestStore(t)
	seedInbox(t, s)
	ctx := context.Background()

	first, err := s.List(ctx, owner, ListMailRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Results, 2)
	require.Equal(t, int64(3), first.Pagination.Total)
	require.Equal(t, int64(2), first.Pagination.TotalPages)

	second, err := s.List(ctx, owner, ListMailRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, second.Results, 1)
	require.NotEqual(t, first.Results[0].EmailID, second.Results[0].EmailID)
}

func TestListEmptyPage(t *testing.T) {
	s := newTestStore(t)

	page, err := s.List(context.Background(), owner, ListMailRequest{})
	require.NoError(t, err)
	require.NotNil(t, page.Results)
	require.Empty(t, page.Results)
	require.Zero(t, page.Pagination.Total)
}

func TestStatusUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, CreateMailRequest{Subject: "Flags", Sender: "a@b.c"})
	require.NoError(t, err)

	starred := true
	upd, err := s.SetStatus(ctx, owner, rec.EmailID, StatusUpdate{IsStarred: &starred})
	require.NoError(t, err)
	require.True(t, upd.IsStarred)
	require.False(t, upd.IsRead)

	_, err = s.SetStatus(ctx, owner, rec.EmailID, StatusUpdate{})
	require.ErrorIs(t, err, fail.ErrInvalidInput)
}

func TestMove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, CreateMailRequest{Subject: "Nomad", Sender: "a@b.c"})
	require.NoError(t, err)

	moved, err := s.Move(ctx, owner, rec.EmailID, "archive")
	require.NoError(t, err)
	require.Equal(t, "archive", moved.Folder)

	_, err = s.Move(ctx, owner, rec.EmailID, "")
	require.ErrorIs(t, err, fail.ErrInvalidInput)
}

func TestLabelLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, CreateMailRequest{Subject: "Tagged", Sender: "a@b.c"})
	require.NoError(t, err)

	require.NoError(t, s.AddLabel(ctx, owner, rec.EmailID, "todo"))

	// Re-adding the same label is a no-op, not an error
	require.NoError(t, s.AddLabel(ctx, owner, rec.EmailID, "todo"))

	counts, err := s.Labels(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, []LabelCount{{Label: "todo", Count: 1}}, counts)

	require.NoError(t, s.RemoveLabel(ctx, owner, rec.EmailID, "todo"))

	counts, err = s.Labels(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, counts)
}
