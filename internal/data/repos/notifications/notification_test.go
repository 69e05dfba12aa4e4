package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/quitbridge-backend/internal/data/repos/query"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainnotif "github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

func TestNotificationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewNotificationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "notif@example.com")
	other := testutil.SeedUser(t, ctx, tx, "notif-other@example.com")

	first, err := repo.Create(dbc, &types.Notification{UserID: u.ID, Type: domainnotif.TypeMotivational, Title: "a", Message: "m"})
	require.NoError(t, err)
	require.NoError(t, repo.CreateMany(dbc, []*types.Notification{
		{UserID: u.ID, Type: domainnotif.TypeGoalReminder, Title: "b", Message: "m"},
		{UserID: u.ID, Type: domainnotif.TypeGoalReminder, Title: "c", Message: "m"},
		{UserID: other.ID, Type: domainnotif.TypeMotivational, Title: "d", Message: "m"},
	}))

	unread, err := repo.CountUnread(dbc, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, unread)

	n, err := repo.MarkRead(dbc, u.ID, first.ID, time.Now().UTC())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = repo.MarkRead(dbc, other.ID, first.ID, time.Now().UTC())
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	isRead := true
	read, total, err := repo.List(dbc, u.ID, NotificationFilter{IsRead: &isRead}, query.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, read, 1)

	reminders, total, err := repo.List(dbc, u.ID, NotificationFilter{Type: domainnotif.TypeGoalReminder}, query.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, reminders, 2)

	byType, err := repo.CountByType(dbc, u.ID)
	require.NoError(t, err)
	require.Len(t, byType, 2)

	n, err = repo.DeleteRead(dbc, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = repo.MarkAllRead(dbc, u.ID, time.Now().UTC())
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	n, err = repo.DeleteOlderThan(dbc, u.ID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	left, err := repo.CountByUser(dbc, other.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, left)
}
