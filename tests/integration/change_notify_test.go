package integration

import (
	"context"
	"testing"
	"time"

	appcatalog "github.com/jewelry/backend/internal/application/catalog"
	apptrade "github.com/jewelry/backend/internal/application/trade"
	"github.com/jewelry/backend/internal/infrastructure/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startListener runs a PgListener until the test ends. It returns once the
// listener has delivered a notification caused by nudge.
func startListener(t *testing.T, s *shop, nudge func()) *realtime.Subscription {
	t.Helper()

	hub := realtime.NewHub()
	sub := hub.Subscribe(realtime.TableProducts, realtime.TableOrders)
	t.Cleanup(hub.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = realtime.NewPgListener(s.db.DSN, "", hub, nil).Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// LISTEN is asynchronous; keep writing until the first event shows up
	require.Eventually(t, func() bool {
		nudge()
		select {
		case <-sub.C():
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 15*time.Second, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	pending(sub)
	return sub
}

// pending returns the events already queued on the subscription
func pending(sub *realtime.Subscription) []realtime.ChangeEvent {
	var events []realtime.ChangeEvent
	for {
		select {
		case evt := <-sub.C():
			events = append(events, evt)
		default:
			return events
		}
	}
}

func nextEvent(t *testing.T, sub *realtime.Subscription, match func(realtime.ChangeEvent) bool) realtime.ChangeEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case evt := <-sub.C():
			if match(evt) {
				return evt
			}
		case <-deadline:
			t.Fatal("no matching change event received")
			return realtime.ChangeEvent{}
		}
	}
}

// stockNudge writes a different stock value on every call
func stockNudge(s *shop, product appcatalog.ProductResponse) func() {
	stock := 100
	return func() {
		stock++
		_, _ = s.products.SetStock(context.Background(), product.ID, stock)
	}
}

func TestPgListener_ForwardsRowChanges(t *testing.T) {
	s := newShop(t)
	pendant := s.product("Emerald Pendant", 640, 3)

	sub := startListener(t, s, stockNudge(s, pendant))

	_, err := s.products.SetStock(context.Background(), pendant.ID, 7)
	require.NoError(t, err)

	evt := nextEvent(t, sub, func(e realtime.ChangeEvent) bool {
		return e.Table == realtime.TableProducts
	})
	assert.Equal(t, realtime.ActionUpdate, evt.Action)
	assert.Equal(t, pendant.ID.String(), evt.ID)
	assert.False(t, evt.At.IsZero())

	// categories are not subscribed
	require.NoError(t, s.db.DB.Exec(
		"INSERT INTO categories (id, name, slug) VALUES (gen_random_uuid(), 'Rings', 'rings')").Error)

	customer := s.customer(1)
	s.fillCart(customer, pendant, 1)
	_, err = s.placeOrder(customer)
	require.NoError(t, err)

	evt = nextEvent(t, sub, func(e realtime.ChangeEvent) bool {
		assert.NotEqual(t, realtime.TableCategories, e.Table)
		return e.Table == realtime.TableOrders
	})
	assert.Equal(t, realtime.ActionInsert, evt.Action)
	assert.Equal(t, "1", evt.ID)
}

func TestPgListener_ResequenceIsOneNotification(t *testing.T) {
	s := newShop(t)
	charm := s.product("Gold Charm", 120, 10)
	customer := s.customer(1)
	for range 3 {
		s.fillCart(customer, charm, 1)
		_, err := s.placeOrder(customer)
		require.NoError(t, err)
	}

	sub := startListener(t, s, stockNudge(s, charm))

	_, err := s.orders.Delete(context.Background(), 1, apptrade.OrderListQuery{})
	require.NoError(t, err)

	evt := nextEvent(t, sub, func(e realtime.ChangeEvent) bool {
		return e.Action == realtime.ActionResequence
	})
	assert.Equal(t, realtime.TableOrders, evt.Table)

	// the id moves themselves stay quiet
	time.Sleep(200 * time.Millisecond)
	for _, e := range pending(sub) {
		assert.NotEqual(t, realtime.ActionUpdate, e.Action, "unexpected row notification %+v", e)
	}
}
