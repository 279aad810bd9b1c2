package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaghia/restaurant/internal/db"
	"github.com/panaghia/restaurant/internal/events"
	"github.com/panaghia/restaurant/internal/models"
	"github.com/panaghia/restaurant/internal/notify"
	"github.com/panaghia/restaurant/internal/repo"
	"github.com/panaghia/restaurant/pkg/orderstatus"
	"github.com/panaghia/restaurant/pkg/transport"
)

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	gdb, err := db.OpenMemory(context.Background())
	require.NoError(t, err)
	return &repo.GormRepo{DB: gdb}
}

func ptr[T any](v T) *T { return &v }

func deliveryRequest() transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		Items: []transport.OrderItem{
			{MenuItemID: "a", Name: "Sarmale", Price: decimal.RequireFromString("32.50"), Quantity: 2},
			{MenuItemID: "b", Name: "Papanași", Price: decimal.NewFromInt(20), Quantity: 1},
		},
		Customer:      transport.CustomerInfo{Name: "Ana", Phone: "0740123456", Address: "Str. Mare 1"},
		OrderType:     transport.Delivery,
		PaymentMethod: transport.Cash,
	}
}

func TestOrderService_CreateOrder_RecomputesTotals(t *testing.T) {
	t.Parallel()

	rec := &events.Recorder{}
	note := &notify.Recorder{}
	svc := &OrderService{Repo: newRepo(t), Events: rec, Notifier: note}

	o, err := svc.CreateOrder(context.Background(), deliveryRequest())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{14}-[0-9A-F]{4}$`), o.OrderNumber)
	assert.Equal(t, orderstatus.Pending, o.Status)
	assert.True(t, decimal.NewFromInt(85).Equal(o.Subtotal), o.Subtotal.String())
	assert.True(t, decimal.NewFromInt(10).Equal(o.DeliveryFee))
	assert.True(t, decimal.NewFromInt(95).Equal(o.Total))
	assert.Len(t, o.Items, 2)

	got, err := svc.OrderByNumber(context.Background(), o.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	evs := rec.Events(events.TopicOrders)
	require.Len(t, evs, 1)
	assert.Equal(t, events.OrderCreated, evs[0].Event["type"])
	assert.Equal(t, o.ID, evs[0].Key)

	msgs := note.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notify.KindNewOrder, msgs[0].Kind)
}

func TestOrderService_CreateOrder_IdempotencyKeyReplays(t *testing.T) {
	t.Parallel()

	rec := &events.Recorder{}
	svc := &OrderService{Repo: newRepo(t), Events: rec}
	ctx := context.Background()

	req := deliveryRequest()
	req.IdempotencyKey = "attempt-1"
	first, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)

	again, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.OrderNumber, again.OrderNumber)
	assert.Len(t, rec.Events(events.TopicOrders), 1, "a replay publishes nothing")

	req.IdempotencyKey = "attempt-2"
	other, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	req.IdempotencyKey = ""
	_, err = svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	_, total, err := svc.Repo.ListOrders(ctx, repo.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total, "orders without a key never collide")

	req.IdempotencyKey = strings.Repeat("k", 65)
	_, err = svc.CreateOrder(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_CreateOrder_PickupDropsAddressAndFee(t *testing.T) {
	t.Parallel()

	svc := &OrderService{Repo: newRepo(t)}
	req := deliveryRequest()
	req.OrderType = transport.Pickup

	o, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, o.Customer.Address)
	assert.True(t, o.DeliveryFee.IsZero())
	assert.True(t, decimal.NewFromInt(85).Equal(o.Total))
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	t.Parallel()

	svc := &OrderService{Repo: newRepo(t)}

	tests := []struct {
		name   string
		mutate func(*transport.CreateOrderRequest)
	}{
		{name: "no items", mutate: func(r *transport.CreateOrderRequest) { r.Items = nil }},
		{name: "zero quantity", mutate: func(r *transport.CreateOrderRequest) { r.Items[0].Quantity = 0 }},
		{name: "negative price", mutate: func(r *transport.CreateOrderRequest) { r.Items[0].Price = decimal.NewFromInt(-1) }},
		{name: "missing phone", mutate: func(r *transport.CreateOrderRequest) { r.Customer.Phone = " " }},
		{name: "delivery without address", mutate: func(r *transport.CreateOrderRequest) { r.Customer.Address = "" }},
		{name: "bad order type", mutate: func(r *transport.CreateOrderRequest) { r.OrderType = "drone" }},
		{name: "bad payment", mutate: func(r *transport.CreateOrderRequest) { r.PaymentMethod = "crypto" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := deliveryRequest()
			tt.mutate(&req)
			_, err := svc.CreateOrder(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	t.Parallel()

	rec := &events.Recorder{}
	svc := &OrderService{Repo: newRepo(t), Events: rec}
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, deliveryRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, o.ID, orderstatus.Ready, "admin@panaghia.ro")
	require.NoError(t, err)
	assert.Equal(t, orderstatus.Ready, updated.Status)
	assert.Equal(t, "admin@panaghia.ro", updated.UpdatedBy)

	_, err = svc.UpdateStatus(ctx, o.ID, orderstatus.Ready, "")
	assert.ErrorIs(t, err, ErrConflict, "no-op change")

	_, err = svc.UpdateStatus(ctx, o.ID, "teleported", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(ctx, "missing", orderstatus.Ready, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Cancel(ctx, o.ID, "")
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, o.ID, "")
	assert.ErrorIs(t, err, ErrConflict, "already cancelled")
	_, err = svc.UpdateStatus(ctx, o.ID, orderstatus.Pending, "")
	assert.ErrorIs(t, err, ErrConflict, "terminal")

	evs := rec.Events(events.TopicOrders)
	require.Len(t, evs, 3)
	assert.Equal(t, "pending", evs[1].Event["previous_status"])
	assert.Equal(t, "ready", evs[1].Event["status"])
}

func TestOrderService_ListAndDeliveries(t *testing.T) {
	t.Parallel()

	svc := &OrderService{Repo: newRepo(t)}
	ctx := context.Background()

	d1, err := svc.CreateOrder(ctx, deliveryRequest())
	require.NoError(t, err)
	d2, err := svc.CreateOrder(ctx, deliveryRequest())
	require.NoError(t, err)
	pickup := deliveryRequest()
	pickup.OrderType = transport.Pickup
	_, err = svc.CreateOrder(ctx, pickup)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, d1.ID, orderstatus.Confirmed, "")
	require.NoError(t, err)

	list, err := svc.List(ctx, transport.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)
	assert.Equal(t, DefaultOrderLimit, list.Limit)

	list, err = svc.List(ctx, transport.OrderFilter{OrderType: transport.Delivery, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.Len(t, list.Orders, 1)

	_, err = svc.List(ctx, transport.OrderFilter{Limit: MaxOrderLimit + 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.List(ctx, transport.OrderFilter{DateFrom: "yesterday"})
	assert.ErrorIs(t, err, ErrValidation)

	today := time.Now().UTC().Format(time.DateOnly)
	list, err = svc.List(ctx, transport.OrderFilter{DateFrom: today, DateTo: today})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)

	active, err := svc.Deliveries(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 1, active.Total)
	assert.Equal(t, d1.ID, active.Deliveries[0].ID)

	pending, err := svc.Deliveries(ctx, orderstatus.Pending)
	require.NoError(t, err)
	require.Equal(t, 1, pending.Total)
	assert.Equal(t, d2.ID, pending.Deliveries[0].ID)

	require.NoError(t, svc.SetCoordinates(ctx, d1.ID, transport.Coordinates{Lat: 45.65, Lng: 25.6}))
	got, err := svc.Order(ctx, d1.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Coordinates)
	assert.InDelta(t, 45.65, got.Coordinates.Lat, 1e-9)

	assert.ErrorIs(t, svc.SetCoordinates(ctx, d1.ID, transport.Coordinates{Lat: 91}), ErrValidation)
	assert.ErrorIs(t, svc.SetCoordinates(ctx, "missing", transport.Coordinates{}), ErrNotFound)
}

type failingPublisher struct{}

func (failingPublisher) PublishEvent(context.Context, string, string, any) error {
	return errors.New("broker down")
}

func TestOrderService_EventFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()

	svc := &OrderService{Repo: newRepo(t), Events: failingPublisher{}}
	_, err := svc.CreateOrder(context.Background(), deliveryRequest())
	require.NoError(t, err)
}

type fakeIndex struct {
	indexed map[string]transport.MenuItem
	deleted []string
	err     error
}

func (f *fakeIndex) IndexItem(_ context.Context, item transport.MenuItem) error {
	if f.indexed == nil {
		f.indexed = map[string]transport.MenuItem{}
	}
	f.indexed[item.ID] = item
	return nil
}

func (f *fakeIndex) DeleteItem(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []transport.MenuItem, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	out := make([]transport.MenuItem, 0, len(f.indexed))
	for _, it := range f.indexed {
		out = append(out, it)
	}
	return int64(len(out)), out, nil
}

func TestMenuService_CRUD(t *testing.T) {
	t.Parallel()

	rec := &events.Recorder{}
	idx := &fakeIndex{}
	svc := &MenuService{Repo: newRepo(t), Events: rec, Index: idx}
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, transport.CategoryInput{Name: ptr("Ciorbe"), Slug: ptr("Ciorbe")})
	require.NoError(t, err)
	assert.Equal(t, "ciorbe", cat.Slug)
	assert.True(t, cat.IsActive)

	_, err = svc.CreateCategory(ctx, transport.CategoryInput{Name: ptr("Altă"), Slug: ptr("ciorbe")})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateItem(ctx, transport.MenuItemInput{Name: ptr("X"), CategoryID: ptr("nope"), Price: ptr(decimal.NewFromInt(1))})
	assert.ErrorIs(t, err, ErrValidation)

	item, err := svc.CreateItem(ctx, transport.MenuItemInput{
		Name:       ptr("Ciorbă de burtă"),
		CategoryID: ptr(cat.ID),
		Price:      ptr(decimal.RequireFromString("24.5")),
	})
	require.NoError(t, err)
	assert.True(t, item.IsAvailable)
	assert.Contains(t, idx.indexed, item.ID)

	item, err = svc.UpdateItem(ctx, item.ID, transport.MenuItemInput{IsPopular: ptr(true)})
	require.NoError(t, err)
	assert.True(t, item.IsPopular)
	assert.Equal(t, "Ciorbă de burtă", item.Name)

	popular, err := svc.Items(ctx, cat.ID, true, true)
	require.NoError(t, err)
	assert.Len(t, popular, 1)

	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	assert.Equal(t, []string{item.ID}, idx.deleted)
	_, err = svc.Item(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	types := []string{}
	for _, e := range rec.Events(events.TopicMenu) {
		types = append(types, e.Event["type"].(string))
	}
	assert.Equal(t, []string{events.MenuItemCreated, events.MenuItemUpdated, events.MenuItemDeleted}, types)
}

func TestMenuService_SearchFallsBackToDatabase(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	svc := &MenuService{Repo: r, Index: &fakeIndex{err: errors.New("es down")}}

	cat, err := svc.CreateCategory(ctx, transport.CategoryInput{Name: ptr("Feluri"), Slug: ptr("feluri")})
	require.NoError(t, err)
	// The failing index only fails searches; writes go through.
	_, err = svc.CreateItem(ctx, transport.MenuItemInput{Name: ptr("Mici"), CategoryID: ptr(cat.ID), Price: ptr(decimal.NewFromInt(6))})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, transport.MenuItemInput{Name: ptr("Sarmale"), Description: ptr("cu mămăligă"), CategoryID: ptr(cat.ID), Price: ptr(decimal.NewFromInt(30))})
	require.NoError(t, err)

	res, err := svc.Search(ctx, "MĂMĂLIGĂ", 0)
	require.NoError(t, err)
	assert.Equal(t, "MĂMĂLIGĂ", res.Query)

	res, err = svc.Search(ctx, "mic", 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	assert.Equal(t, "Mici", res.Items[0].Name)

	_, err = svc.Search(ctx, "  ", 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMenuService_DailyMenus(t *testing.T) {
	t.Parallel()

	svc := &MenuService{Repo: newRepo(t)}
	ctx := context.Background()

	d, err := svc.CreateDailyMenu(ctx, transport.DailyMenuInput{Day: ptr("Luni"), Soup: ptr("Ciorbă"), Main: ptr("Tocăniță")})
	require.NoError(t, err)
	assert.Equal(t, "luni", d.Day)

	got, err := svc.DailyMenuFor(ctx, "LUNI")
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	_, err = svc.UpdateDailyMenu(ctx, d.ID, transport.DailyMenuInput{IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = svc.DailyMenuFor(ctx, "luni")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.DailyMenus(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRestaurantService_ReviewsRefreshRating(t *testing.T) {
	t.Parallel()

	rec := &events.Recorder{}
	svc := &RestaurantService{Repo: newRepo(t), Events: rec}
	ctx := context.Background()

	info, err := svc.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRestaurantInfo().Name, info.Name)

	r1, err := svc.SubmitReview(ctx, transport.ReviewInput{Name: "Ion", Rating: 5, Text: "Excelent"})
	require.NoError(t, err)
	assert.True(t, r1.IsApproved)
	_, err = svc.SubmitReview(ctx, transport.ReviewInput{Name: "Maria", Rating: 4, Text: "Bun"})
	require.NoError(t, err)

	info, err = svc.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.ReviewCount)
	assert.InDelta(t, 4.5, info.Rating, 1e-9)

	require.NoError(t, svc.SetReviewApproved(ctx, r1.ID, false))
	info, err = svc.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, info.ReviewCount)
	assert.InDelta(t, 4.0, info.Rating, 1e-9)

	public, err := svc.Reviews(ctx, ptr(true))
	require.NoError(t, err)
	assert.Equal(t, 1, public.Total)

	_, err = svc.SubmitReview(ctx, transport.ReviewInput{Name: "X", Rating: 6, Text: "?"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, svc.DeleteReview(ctx, "missing"), ErrNotFound)
	assert.Len(t, rec.Events(events.TopicReviews), 2)
}

func TestRestaurantService_UpdateInfo(t *testing.T) {
	t.Parallel()

	svc := &RestaurantService{Repo: newRepo(t)}
	ctx := context.Background()

	out, err := svc.UpdateInfo(ctx, transport.RestaurantInfoInput{
		Phone:    ptr("+40 722 000 111"),
		Schedule: &transport.RestaurantSchedule{Weekdays: "09-21", Weekend: "closed"},
	})
	require.NoError(t, err)
	assert.Equal(t, "+40 722 000 111", out.Phone)
	assert.Equal(t, models.DefaultRestaurantInfo().Name, out.Name)

	info, err := svc.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "closed", info.Schedule.Weekend)

	_, err = svc.UpdateInfo(ctx, transport.RestaurantInfoInput{Name: ptr("")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDashboardService(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	mk := func(status orderstatus.Status, at time.Time, total int64, item string, qty int) {
		require.NoError(t, r.CreateOrder(ctx, &models.Order{
			OrderNumber:   NewOrderNumber(at),
			Customer:      models.Customer{Name: "A", Phone: "1"},
			Items:         []models.OrderItem{{Name: item, Price: decimal.NewFromInt(total), Quantity: qty}},
			Subtotal:      decimal.NewFromInt(total),
			DeliveryFee:   decimal.Zero,
			Total:         decimal.NewFromInt(total),
			Status:        string(status),
			OrderType:     string(transport.Pickup),
			PaymentMethod: string(transport.Cash),
			CreatedAt:     at,
		}))
	}
	mk(orderstatus.Pending, now.Add(-time.Hour), 50, "Sarmale", 2)
	mk(orderstatus.Delivered, now.AddDate(0, 0, -1), 30, "Mici", 5)
	mk(orderstatus.Cancelled, now.Add(-2*time.Hour), 100, "Mici", 10)
	mk(orderstatus.Delivered, now.AddDate(0, 0, -30), 20, "Ciorbă", 1)

	svc := &DashboardService{Repo: r, Now: func() time.Time { return now }}
	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 4, d.TotalOrders)
	assert.True(t, decimal.NewFromInt(100).Equal(d.TotalRevenue), d.TotalRevenue.String())
	assert.EqualValues(t, 2, d.OrdersToday)
	assert.True(t, decimal.NewFromInt(50).Equal(d.RevenueToday))
	assert.EqualValues(t, 1, d.PendingOrders)
	assert.EqualValues(t, 1, d.OrdersByStatus[orderstatus.Cancelled])
	assert.EqualValues(t, 0, d.OrdersByStatus[orderstatus.Ready])

	require.Len(t, d.PopularItems, 3)
	assert.Equal(t, transport.PopularItem{Name: "Mici", Quantity: 5}, d.PopularItems[0])

	require.Len(t, d.RevenueByDay, 7)
	assert.Equal(t, "2025-03-10", d.RevenueByDay[6].Date)
	assert.True(t, decimal.NewFromInt(50).Equal(d.RevenueByDay[6].Revenue))
	assert.Equal(t, 1, d.RevenueByDay[5].Orders)
}

func TestLoginLimiter(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(3, 15*time.Minute, 15*time.Minute)
	l.Now = func() time.Time { return now }

	assert.False(t, l.Fail("a@b.ro"))
	assert.False(t, l.Fail("A@B.ro"))
	ok, _ := l.Allowed("a@b.ro")
	assert.True(t, ok)

	assert.True(t, l.Fail("a@b.ro"))
	ok, wait := l.Allowed("a@b.ro")
	assert.False(t, ok)
	assert.Equal(t, 15*time.Minute, wait)

	now = now.Add(16 * time.Minute)
	ok, _ = l.Allowed("a@b.ro")
	assert.True(t, ok)

	// Failures outside the window do not accumulate.
	assert.False(t, l.Fail("c@d.ro"))
	now = now.Add(20 * time.Minute)
	assert.False(t, l.Fail("c@d.ro"))
	assert.False(t, l.Fail("c@d.ro"))
}
