package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/testenv"
	"github.com/panaghia/restaurant/pkg/apiclient"
	"github.com/panaghia/restaurant/pkg/cart"
	"github.com/panaghia/restaurant/pkg/checkout"
	"github.com/panaghia/restaurant/pkg/orderstatus"
	"github.com/panaghia/restaurant/pkg/session"
	"github.com/panaghia/restaurant/pkg/storage"
	"github.com/panaghia/restaurant/pkg/transport"
)

func newSession(t *testing.T, url string) (*apiclient.Client, *session.Manager, storage.Store) {
	t.Helper()
	kv := storage.NewMemory()
	api := apiclient.New(url)
	sess := session.NewManager(api, kv, logging.Discard())
	api.SetTokenSource(sess)
	return api, sess, kv
}

func TestClient_PublicEndpoints(t *testing.T) {
	env := testenv.New(t)
	api := apiclient.New(env.URL)
	ctx := context.Background()

	require.NoError(t, api.Health(ctx))

	info, err := api.RestaurantInfo(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, info.Name)

	_, err = api.MenuItem(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apiclient.StatusOf(err))
	assert.Equal(t, "Resursa nu a fost găsită.", apiclient.UserMessage(err))

	rv, err := api.SubmitReview(ctx, transport.ReviewInput{Name: "Ion", Rating: 4, Text: "Bun"})
	require.NoError(t, err)
	reviews, err := api.Reviews(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, reviews.Total)
	assert.Equal(t, rv.ID, reviews.Reviews[0].ID)
}

func TestClient_CheckoutAgainstServer(t *testing.T) {
	env := testenv.New(t)
	api := apiclient.New(env.URL)
	ctx := context.Background()

	c := cart.New()
	c.Add(cart.Item{ID: "i1", Name: "Mici", Price: decimal.NewFromInt(6)})
	c.Add(cart.Item{ID: "i1", Name: "Mici", Price: decimal.NewFromInt(6)})

	flow := checkout.NewFlow(api, c, logging.Discard())
	require.NoError(t, flow.SetCustomer(transport.CustomerInfo{Name: "Ana", Phone: "0740", Address: "Str. Mică 2"}))
	require.NoError(t, flow.SetOrderType(transport.Delivery))
	require.NoError(t, flow.SetPaymentMethod(transport.Cash))

	receipt, err := flow.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, checkout.Success, flow.Phase())
	assert.True(t, decimal.NewFromInt(22).Equal(receipt.Total), receipt.Total.String())
	assert.True(t, c.Snapshot().IsEmpty())

	order, err := api.OrderByNumber(ctx, receipt.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, receipt.OrderID, order.ID)

	wf := orderstatus.NewWorkflow(orderUpdater{api})
	next, err := wf.Advance(ctx, order.ID, order.Status)
	require.NoError(t, err)
	assert.Equal(t, orderstatus.Confirmed, next)

	require.NoError(t, api.CancelOrder(ctx, order.ID))
	err = api.CancelOrder(ctx, order.ID)
	assert.Equal(t, http.StatusConflict, apiclient.StatusOf(err))
}

// orderUpdater drives the public status route.
type orderUpdater struct{ api *apiclient.Client }

func (u orderUpdater) SetOrderStatus(ctx context.Context, id string, s orderstatus.Status) error {
	_, err := u.api.UpdateOrderStatus(ctx, id, s)
	return err
}

func TestClient_AdminWithoutSession(t *testing.T) {
	env := testenv.New(t)
	api, _, _ := newSession(t, env.URL)

	_, err := api.Dashboard(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrNotAuthenticated)
}

func TestClient_LoginAndAdminCalls(t *testing.T) {
	env := testenv.New(t)
	api, sess, _ := newSession(t, env.URL)
	ctx := context.Background()

	require.Error(t, sess.Login(ctx, testenv.AdminEmail, "wrong"))
	assert.Equal(t, session.Anonymous, sess.State())
	assert.NotEmpty(t, sess.LastError())

	require.NoError(t, sess.Login(ctx, testenv.AdminEmail, testenv.AdminPassword))
	require.True(t, sess.IsAuthenticated())

	me, err := api.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, testenv.AdminEmail, me.Email)

	name, slug := "Desert", "desert"
	cat, err := api.CreateCategory(ctx, transport.CategoryInput{Name: &name, Slug: &slug})
	require.NoError(t, err)
	price := decimal.RequireFromString("18.5")
	itemName := "Papanași"
	item, err := api.CreateMenuItem(ctx, transport.MenuItemInput{Name: &itemName, CategoryID: &cat.ID, Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(item.Price))

	res, err := api.SearchMenu(ctx, "papa", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	d, err := api.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, d.TotalOrders)

	require.NoError(t, sess.Logout(ctx))
	assert.Equal(t, session.Anonymous, sess.State())
	_, err = api.Dashboard(ctx)
	assert.ErrorIs(t, err, apiclient.ErrNotAuthenticated)
}

func TestClient_RefreshesOnUnauthorized(t *testing.T) {
	env := testenv.New(t)
	ctx := context.Background()

	// A real refresh token with a stale access token, as left by an older
	// process.
	tok, err := env.Auth.Login(ctx, testenv.AdminEmail, testenv.AdminPassword)
	require.NoError(t, err)
	user, err := json.Marshal(tok.User)
	require.NoError(t, err)

	api, sess, kv := newSession(t, env.URL)
	require.NoError(t, kv.Set(ctx, storage.KeyAccessToken, "stale-token"))
	require.NoError(t, kv.Set(ctx, storage.KeyRefreshToken, tok.RefreshToken))
	require.NoError(t, kv.Set(ctx, storage.KeyUser, string(user)))

	require.NoError(t, sess.Restore(ctx))
	require.Equal(t, session.Authenticated, sess.State())

	d, err := api.Dashboard(ctx)
	require.NoError(t, err)
	assert.NotNil(t, d)
	assert.NotEqual(t, "stale-token", sess.AccessToken())

	stored, err := kv.Get(ctx, storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tok.RefreshToken, stored, "rotated refresh token persisted")
}

func TestClient_ExpiredSessionLogsOut(t *testing.T) {
	// Every access token the server issues is already expired, so the retry
	// after refresh fails too.
	env := testenv.New(t, testenv.WithAccessTTL(-time.Minute))
	api, sess, kv := newSession(t, env.URL)
	ctx := context.Background()

	require.NoError(t, sess.Login(ctx, testenv.AdminEmail, testenv.AdminPassword))

	_, err := api.Dashboard(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrSessionExpired)
	assert.Equal(t, session.Anonymous, sess.State())

	_, err = kv.Get(ctx, storage.KeyAccessToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, "Sesiunea a expirat. Vă rugăm să vă autentificați din nou.", apiclient.UserMessage(err))
}

func TestClient_DecodesDetailErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail":"Comanda nu mai poate fi anulată"}`))
	}))
	t.Cleanup(srv.Close)

	err := apiclient.New(srv.URL).CancelOrder(context.Background(), "x")
	var apiErr *apiclient.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Comanda nu mai poate fi anulată", apiclient.UserMessage(err))
}

// abandoningAuth gives up on the caller's context as soon as a refresh
// response has arrived.
type abandoningAuth struct {
	*apiclient.Client
	cancel context.CancelFunc
}

func (a abandoningAuth) Refresh(ctx context.Context, refreshToken string) (*transport.TokenResponse, error) {
	defer a.cancel()
	return a.Client.Refresh(ctx, refreshToken)
}

func TestSession_AbandonedRefreshKeepsRotatedToken(t *testing.T) {
	env := testenv.New(t)
	ctx := context.Background()
	kv := storage.NewMemory()
	api := apiclient.New(env.URL)

	cctx, cancel := context.WithCancel(ctx)
	sess := session.NewManager(abandoningAuth{Client: api, cancel: cancel}, kv, logging.Discard())
	api.SetTokenSource(sess)
	require.NoError(t, sess.Login(ctx, testenv.AdminEmail, testenv.AdminPassword))

	assert.ErrorIs(t, sess.Refresh(cctx), context.Canceled)

	require.NoError(t, sess.Refresh(ctx), "the stored refresh token is the rotated one")
	assert.Equal(t, session.Authenticated, sess.State())
	_, err := api.Dashboard(ctx)
	require.NoError(t, err)
}
