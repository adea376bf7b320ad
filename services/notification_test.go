package services

import (
	"context"
	"math"
	"testing"
	"time"

	"projectdesk/apperror"
	"projectdesk/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPusher struct {
	pushed chan *model.Notification
}

func (p *recordingPusher) Name() string { return "recording" }

func (p *recordingPusher) Push(_ context.Context, n *model.Notification) error {
	p.pushed <- n
	return nil
}

func TestForUserMatchesEverySpelling(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "ann", model.RoleTeamMember)
	other := seedUser(t, db, "bob", model.RoleTeamMember)

	for _, tag := range model.KindUser.Tags() {
		require.NoError(t, db.Create(&model.Notification{
			Message: tag, Type: "legacy", NotifiableType: tag, NotifiableID: u.ID,
		}).Error)
	}
	require.NoError(t, db.Create(&model.Notification{
		Message: "not mine", Type: "legacy", NotifiableType: model.KindUser.Tag(), NotifiableID: other.ID,
	}).Error)
	require.NoError(t, db.Create(&model.Notification{
		Message: "wrong kind", Type: "legacy", NotifiableType: model.KindTask.Tag(), NotifiableID: u.ID,
	}).Error)

	svc := NewNotificationService(db)

	page, err := svc.Paginate(ctx, u.ID, 1, 15)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Data, 3)

	unread, err := svc.UnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	changed, err := svc.MarkAllAsRead(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, changed)

	unread, err = svc.UnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	otherUnread, err := svc.UnreadCount(ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, otherUnread, "other users are untouched")

	changed, err = svc.MarkAllAsRead(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, changed)
}

func TestCreateWritesCanonicalTag(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "ann", model.RoleTeamMember)
	svc := NewNotificationService(db)

	n, err := svc.Notify(ctx, nil, u.ID, "hello", model.NotificationTaskAssigned, map[string]interface{}{"task_id": 1})
	require.NoError(t, err)
	assert.Equal(t, `App\Models\User`, n.NotifiableType)

	var stored model.Notification
	require.NoError(t, db.First(&stored, n.ID).Error)
	assert.Equal(t, model.KindUser.Tag(), stored.NotifiableType)
	assert.EqualValues(t, 1, stored.Data["task_id"])

	_, err = svc.Notify(ctx, nil, 9999, "ghost", model.NotificationTaskAssigned, nil)
	assert.Error(t, err, "target must exist")
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "ann", model.RoleTeamMember)
	other := seedUser(t, db, "bob", model.RoleTeamMember)
	svc := NewNotificationService(db)

	n := &model.Notification{Message: "m", Type: "t", NotifiableType: "User", NotifiableID: u.ID}
	require.NoError(t, db.Create(n).Error)

	first, err := svc.MarkAsRead(ctx, u.ID, n.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)

	time.Sleep(10 * time.Millisecond)
	second, err := svc.MarkAsRead(ctx, u.ID, n.ID)
	require.NoError(t, err)
	require.NotNil(t, second.ReadAt)
	assert.True(t, first.ReadAt.Equal(*second.ReadAt), "read_at is not moved by a second call")

	_, err = svc.MarkAsRead(ctx, other.ID, n.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestPaginate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "ann", model.RoleTeamMember)
	svc := NewNotificationService(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&model.Notification{
			Message: "m", Type: "t", NotifiableType: model.KindUser.Tag(), NotifiableID: u.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	page, err := svc.Paginate(ctx, u.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.LastPage)
	assert.True(t, page.HasMore)
	require.Len(t, page.Data, 2)
	assert.True(t, page.Data[0].CreatedAt.After(page.Data[1].CreatedAt), "newest first")

	page, err = svc.Paginate(ctx, u.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.False(t, page.HasMore)

	page, err = svc.Paginate(ctx, u.ID, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, MaxPerPage, page.PerPage)

	page, err = svc.Paginate(ctx, u.ID, math.MaxInt, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Data, "no rows leak from a page past the end")
	assert.Equal(t, 4, page.CurrentPage)
	assert.Equal(t, 3, page.LastPage)
	assert.False(t, page.HasMore)
}

func TestClampPage(t *testing.T) {
	page, per := ClampPage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPerPage, per)

	_, per = ClampPage(2, 51)
	assert.Equal(t, MaxPerPage, per)

	empty := EmptyPage(-1, 10)
	assert.Equal(t, 1, empty.CurrentPage)
	assert.Equal(t, 2, EmptyPage(math.MaxInt, 10).CurrentPage)
	assert.NotNil(t, empty.Data)
	assert.Zero(t, empty.Total)
}

func TestDispatchPushes(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db, "ann", model.RoleTeamMember)
	p := &recordingPusher{pushed: make(chan *model.Notification, 1)}
	svc := NewNotificationService(db, p)

	n, err := svc.Notify(context.Background(), nil, u.ID, "hi", model.NotificationNewComment, nil)
	require.NoError(t, err)
	svc.Dispatch(context.Background(), n)

	select {
	case got := <-p.pushed:
		assert.Equal(t, n.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not pushed")
	}
}

func TestPushData(t *testing.T) {
	n := &model.Notification{ID: 4, Type: model.NotificationTaskCompleted, Data: map[string]interface{}{"task_id": 7}}
	data := pushData(n)
	assert.Equal(t, "4", data["notification_id"])
	assert.Equal(t, "7", data["task_id"])
	assert.Equal(t, "user-12", UserTopic(12))
	assert.Equal(t, "Task completed", notificationTitle(n.Type))
}
