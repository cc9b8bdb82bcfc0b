package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarajb-778/StockPilot/models"
	"github.com/swarajb-778/StockPilot/testutil"
)

type recordingBadge struct {
	mu     sync.Mutex
	counts []int64
}

func (b *recordingBadge) BroadcastUnreadCount(count int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts = append(b.counts, count)
}

func (b *recordingBadge) last() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.counts) == 0 {
		return -1
	}
	return b.counts[len(b.counts)-1]
}

// steppingClock returns a clock that advances one minute on every call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
}

func newNotificationService(t *testing.T) (*NotificationService, *recordingBadge) {
	t.Helper()
	badge := &recordingBadge{}
	svc := NewNotificationService(testutil.NewTestDB(t), badge)
	svc.SetClock(steppingClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)))
	return svc, badge
}

func createNotification(t *testing.T, svc *NotificationService, typ models.NotificationType, title string) *models.Notification {
	t.Helper()
	n, err := svc.Create(context.Background(), CreateNotificationInput{
		Type:    typ,
		Title:   title,
		Message: title + " message",
	})
	require.NoError(t, err)
	return n
}

func TestNotificationService_Create(t *testing.T) {
	svc, badge := newNotificationService(t)
	ctx := context.Background()

	user := models.User{UserID: "user-1", Name: "Ops", Email: "ops@example.com"}
	require.NoError(t, svc.db.Create(&user).Error)

	n, err := svc.Create(ctx, CreateNotificationInput{
		Type:    models.NotificationSystem,
		Title:   "  Maintenance  ",
		Message: "Scheduled downtime",
		UserID:  &user.UserID,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, n.NotificationID)
	assert.Equal(t, "Maintenance", n.Title)
	assert.False(t, n.IsRead)
	assert.False(t, n.CreatedAt.IsZero())
	require.NotNil(t, n.UserID)
	assert.Equal(t, "user-1", *n.UserID)
	assert.Equal(t, int64(1), badge.last())
}

func TestNotificationService_CreateValidation(t *testing.T) {
	svc, _ := newNotificationService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    CreateNotificationInput
		field string
	}{
		{"missing type", CreateNotificationInput{Title: "t", Message: "m"}, "type"},
		{"unknown type", CreateNotificationInput{Type: "promo", Title: "t", Message: "m"}, "type"},
		{"blank title", CreateNotificationInput{Type: models.NotificationSystem, Title: "   ", Message: "m"}, "title"},
		{"missing message", CreateNotificationInput{Type: models.NotificationSystem, Title: "t"}, "message"},
		{"unknown user", CreateNotificationInput{Type: models.NotificationSystem, Title: "t", Message: "m", UserID: ptr("ghost")}, "userId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationService_ListOrderingAndFilters(t *testing.T) {
	svc, _ := newNotificationService(t)
	ctx := context.Background()

	first := createNotification(t, svc, models.NotificationSystem, "first")
	second := createNotification(t, svc, models.NotificationStockAlert, "second")
	third := createNotification(t, svc, models.NotificationSystem, "third")
	_, err := svc.MarkRead(ctx, first.NotificationID)
	require.NoError(t, err)

	all, err := svc.List(ctx, NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.NotificationID, all[0].NotificationID)
	assert.Equal(t, second.NotificationID, all[1].NotificationID)
	assert.Equal(t, first.NotificationID, all[2].NotificationID)

	system, err := svc.List(ctx, NotificationFilter{Type: models.NotificationSystem})
	require.NoError(t, err)
	assert.Len(t, system, 2)

	unread := false
	unreadList, err := svc.List(ctx, NotificationFilter{IsRead: &unread})
	require.NoError(t, err)
	assert.Len(t, unreadList, 2)

	limited, err := svc.List(ctx, NotificationFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, third.NotificationID, limited[0].NotificationID)
}

func TestNotificationService_ListDefaultLimitAndEmpty(t *testing.T) {
	svc, _ := newNotificationService(t)
	ctx := context.Background()

	empty, err := svc.List(ctx, NotificationFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for i := 0; i < DefaultNotificationLimit+5; i++ {
		createNotification(t, svc, models.NotificationSystem, "bulk")
	}

	list, err := svc.List(ctx, NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, list, DefaultNotificationLimit)

	unbounded, err := svc.List(ctx, NotificationFilter{Limit: -1})
	require.NoError(t, err)
	assert.Len(t, unbounded, DefaultNotificationLimit+5)
}

func TestNotificationService_ListIncludesUser(t *testing.T) {
	svc, _ := newNotificationService(t)
	ctx := context.Background()

	user := models.User{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, svc.db.Create(&user).Error)

	_, err := svc.Create(ctx, CreateNotificationInput{
		Type:    models.NotificationUserActivity,
		Title:   "Signed in",
		Message: "Ada signed in",
		UserID:  &user.UserID,
	})
	require.NoError(t, err)
	createNotification(t, svc, models.NotificationSystem, "broadcast")

	list, err := svc.List(ctx, NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].User)
	require.NotNil(t, list[1].User)
	assert.Equal(t, "ada@example.com", list[1].User.Email)
}

func TestNotificationService_UnreadCountMatchesList(t *testing.T) {
	svc, _ := newNotificationService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 6; i++ {
		ids = append(ids, createNotification(t, svc, models.NotificationSystem, "n").NotificationID)
	}
	for _, id := range ids[:2] {
		_, err := svc.MarkRead(ctx, id)
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)

	unread := false
	list, err := svc.List(ctx, NotificationFilter{IsRead: &unread, Limit: -1})
	require.NoError(t, err)
	assert.Equal(t, int64(len(list)), count)
	assert.Equal(t, int64(4), count)
}

func TestNotificationService_MarkReadIdempotent(t *testing.T) {
	svc, badge := newNotificationService(t)
	ctx := context.Background()

	n := createNotification(t, svc, models.NotificationSystem, "once")

	first, err := svc.MarkRead(ctx, n.NotificationID)
	require.NoError(t, err)
	assert.True(t, first.IsRead)
	assert.Equal(t, int64(0), badge.last())

	second, err := svc.MarkRead(ctx, n.NotificationID)
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	assert.Equal(t, n.Title, second.Title)

	_, err = svc.MarkRead(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	svc, badge := newNotificationService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		createNotification(t, svc, models.NotificationSystem, "n")
	}

	n, err := svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, int64(0), badge.last())

	n, err = svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNotificationService_Delete(t *testing.T) {
	svc, _ := newNotificationService(t)
	ctx := context.Background()

	n := createNotification(t, svc, models.NotificationSystem, "gone")
	require.NoError(t, svc.Delete(ctx, n.NotificationID))

	err := svc.Delete(ctx, n.NotificationID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationService_DeleteAllRead(t *testing.T) {
	svc, _ := newNotificationService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, createNotification(t, svc, models.NotificationSystem, "n").NotificationID)
	}
	for _, id := range ids[:3] {
		_, err := svc.MarkRead(ctx, id)
		require.NoError(t, err)
	}

	deleted, err := svc.DeleteAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	remaining, err := svc.List(ctx, NotificationFilter{Limit: -1})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, n := range remaining {
		assert.False(t, n.IsRead)
	}
}
