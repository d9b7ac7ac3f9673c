package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/metrics"
	"service-dispatch/internal/repository/memory"
	"service-dispatch/internal/service/locator"
	testlog "service-dispatch/internal/testutil"
)

func newCtrl(t *testing.T) *gomock.Controller {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return ctrl
}

func TestSideEffectFailuresDoNotRevertTransitions(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	ctx := context.Background()
	store := memory.New()
	logs := testlog.New()
	loc := locator.NewService(store, nil, nil, time.Second)

	notifier := NewMockNotifier(ctrl)
	publisher := NewMockPayoutPublisher(ctrl)
	sched := NewMockScheduler(ctrl)

	notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n domain.Notification) error {
			require.Equal(t, domain.NotifyOffer, n.Kind)
			require.Equal(t, "d1", n.DriverID)
			require.False(t, n.ExpiresAt.IsZero())
			return errors.New("broker unreachable")
		}).
		Times(1)
	sched.EXPECT().After(30*time.Second, gomock.Any()).Times(1)
	publisher.EXPECT().
		PublishPayout(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p domain.Payout) error {
			require.Equal(t, int64(750), p.TotalCents)
			return errors.New("kafka down")
		}).
		Times(1)

	svc := NewService(Deps{
		Store:     store,
		Locator:   loc,
		Notifier:  notifier,
		Publisher: publisher,
		Scheduler: sched,
		Metrics:   metrics.NewDispatch(),
		Logger:    logs.Logger(),
	}, DefaultConfig())
	svc.now = func() time.Time { return t0 }
	svc.spawn = inline

	require.NoError(t, loc.UpsertProfile(ctx, "d1", "Driver", 4.8))
	_, err := loc.UpdateLocation(ctx, "d1", domain.LocationSample{Point: kmNorth(pickupPoint, 1), RecordedAt: t0})
	require.NoError(t, err)
	require.NoError(t, loc.SetStatus(ctx, "d1", domain.DriverOnline))

	o, err := svc.CreateOrder(ctx, orderSpec())
	require.NoError(t, err)
	require.Equal(t, domain.OrderAssigned, o.Status)
	_, ok := logs.Find("warn", "notification failed")
	assert.True(t, ok)

	offers, err := store.ListAssignmentsByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)

	_, err = svc.Accept(ctx, offers[0].ID, "d1")
	require.NoError(t, err)
	_, err = svc.MarkPickedUp(ctx, o.ID, "d1")
	require.NoError(t, err)
	delivered, p, err := svc.MarkDelivered(ctx, o.ID, "d1", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, delivered.Status)
	assert.NotEmpty(t, p.ID)
	_, ok = logs.Find("warn", "payout publish failed")
	assert.True(t, ok)
}

func TestAutoAssign_StoreErrorsPropagate(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	st := NewMockstore(ctrl)
	loc := NewMockdriverLocator(ctrl)
	boom := errors.New("db down")

	st.EXPECT().GetOrder(gomock.Any(), "o1").Return(nil, boom)

	svc := NewService(Deps{Store: st, Locator: loc}, DefaultConfig())
	_, err := svc.AutoAssign(context.Background(), "o1")
	require.ErrorIs(t, err, boom)
}

func TestAutoAssign_LocatorErrorPropagates(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	st := NewMockstore(ctrl)
	loc := NewMockdriverLocator(ctrl)
	boom := errors.New("index unavailable")

	st.EXPECT().GetOrder(gomock.Any(), "o1").Return(&domain.DeliveryOrder{
		ID:     "o1",
		Status: domain.OrderPendingAssignment,
		Pickup: domain.Address{Coordinates: pickupPoint},
	}, nil)
	loc.EXPECT().FindNearby(gomock.Any(), pickupPoint, 5.0).Return(nil, boom)

	svc := NewService(Deps{Store: st, Locator: loc}, DefaultConfig())
	_, err := svc.AutoAssign(context.Background(), "o1")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, apperr.ErrNoCandidate)
}

func TestRetryDue_ListError(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	st := NewMockstore(ctrl)
	st.EXPECT().OrdersDueForRetry(gomock.Any(), gomock.Any(), 100).Return(nil, errors.New("timeout"))

	svc := NewService(Deps{Store: st}, DefaultConfig())
	n, err := svc.RetryDue(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
}
