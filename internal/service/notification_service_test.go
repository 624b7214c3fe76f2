package service

import (
	"context"
	"errors"
	"testing"

	"techorbit/internal/models"
	"techorbit/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifyPublisher struct {
	published map[int64][][]byte
	fail      bool
}

func (f *fakeNotifyPublisher) PublishNotification(_ context.Context, userID int64, payload []byte) error {
	if f.fail {
		return errors.New("redis down")
	}
	if f.published == nil {
		f.published = make(map[int64][][]byte)
	}
	f.published[userID] = append(f.published[userID], payload)
	return nil
}

func newNotificationFixture(t *testing.T) (*NotificationService, *store.Store, *fakeNotifyPublisher) {
	t.Helper()
	st, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	pub := &fakeNotifyPublisher{}
	return NewNotificationService(st, pub), st, pub
}

func seedNotifyUser(t *testing.T, st *store.Store, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "U", Email: email, PasswordHash: "x", Role: models.RoleSeller}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func TestNotifyStoresAndPublishes(t *testing.T) {
	svc, st, pub := newNotificationFixture(t)
	ctx := context.Background()
	user := seedNotifyUser(t, st, "a@example.com")

	n, err := svc.Notify(ctx, user.ID, "hello")
	require.NoError(t, err)
	assert.NotZero(t, n.ID)

	list, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hello", list[0].Message)

	require.Len(t, pub.published[user.ID], 1)
}

func TestNotifySurvivesPublishFailure(t *testing.T) {
	svc, st, pub := newNotificationFixture(t)
	ctx := context.Background()
	user := seedNotifyUser(t, st, "a@example.com")
	pub.fail = true

	// the stored row is the source of truth, a dead publisher is tolerated
	_, err := svc.Notify(ctx, user.ID, "hello")
	require.NoError(t, err)

	list, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNotifyOrderPlacedFansOutToSellers(t *testing.T) {
	svc, st, _ := newNotificationFixture(t)
	ctx := context.Background()
	a := seedNotifyUser(t, st, "a@example.com")
	b := seedNotifyUser(t, st, "b@example.com")

	event := &models.OrderPlacedEvent{
		OrderID:   12,
		Total:     150,
		SellerIDs: []int64{a.ID, b.ID},
	}
	require.NoError(t, svc.NotifyOrderPlaced(ctx, event))

	for _, seller := range []*models.User{a, b} {
		list, err := svc.List(ctx, seller.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "New order #12 placed for 150.00", list[0].Message)
	}
}

func TestNotifyStatusChangedMessage(t *testing.T) {
	svc, st, _ := newNotificationFixture(t)
	ctx := context.Background()
	buyer := seedNotifyUser(t, st, "buyer@example.com")

	require.NoError(t, svc.NotifyStatusChanged(ctx, &models.OrderStatusChangedEvent{
		OrderID:    12,
		UserID:     buyer.ID,
		NewStatus:  models.OrderStatusShipped,
		TrackingID: "TRK-xyz",
	}))
	require.NoError(t, svc.NotifyStatusChanged(ctx, &models.OrderStatusChangedEvent{
		OrderID:   12,
		UserID:    buyer.ID,
		NewStatus: models.OrderStatusDelivered,
	}))

	list, err := svc.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	messages := []string{list[0].Message, list[1].Message}
	assert.Contains(t, messages, "Order #12 is now Shipped (tracking TRK-xyz)")
	assert.Contains(t, messages, "Order #12 is now Delivered")
}

func TestMarkReadUnknownNotification(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)
	assert.ErrorIs(t, svc.MarkRead(context.Background(), 404, 1, models.RoleUser), store.ErrNotFound)
}

func TestMarkReadOwnershipEnforced(t *testing.T) {
	svc, st, _ := newNotificationFixture(t)
	ctx := context.Background()
	owner := seedNotifyUser(t, st, "owner@example.com")
	intruder := seedNotifyUser(t, st, "intruder@example.com")

	n, err := svc.Notify(ctx, owner.ID, "hello")
	require.NoError(t, err)

	// another user cannot mark it read
	err = svc.MarkRead(ctx, n.ID, intruder.ID, models.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsRead)

	// the owner can, and so can an admin
	require.NoError(t, svc.MarkRead(ctx, n.ID, owner.ID, models.RoleUser))

	second, err := svc.Notify(ctx, owner.ID, "again")
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(ctx, second.ID, intruder.ID, models.RoleAdmin))
}
