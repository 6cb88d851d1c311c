package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/admin"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/auth"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/catalog"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/checkout"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/publisher"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/repository"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/service"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/session"
	"golang.org/x/crypto/bcrypt"
)

// switchableRepository fails inserts while down is set.
type switchableRepository struct {
	*repository.MemoryRepository
	mu   sync.Mutex
	down bool
}

func (s *switchableRepository) Insert(ctx context.Context, c *domain.Customer) error {
	s.mu.Lock()
	down := s.down
	s.mu.Unlock()
	if down {
		return errors.New("connection refused")
	}
	return s.MemoryRepository.Insert(ctx, c)
}

func (s *switchableRepository) setDown(v bool) {
	s.mu.Lock()
	s.down = v
	s.mu.Unlock()
}

type testEnv struct {
	server *httptest.Server
	repo   *switchableRepository
}

func newTestEnv(t *testing.T, loginBurst int) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cat, err := catalog.Load("")
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(auth.DemoAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	provider, err := auth.NewLocalProvider(auth.DemoAdminEmail, string(hash))
	require.NoError(t, err)

	repo := &switchableRepository{MemoryRepository: repository.NewMemoryRepository()}
	adminSvc := admin.NewService(repo, time.UTC)

	store := service.New(service.Deps{
		Catalog:   cat,
		Sessions:  session.NewMemoryStore(time.Hour),
		Checkout:  checkout.NewMaterializer(repo),
		Gate:      auth.NewGate(provider, logger),
		Customers: adminSvc,
		Publisher: publisher.NewLogPublisher(logger),
		Logger:    logger,
	})

	router := NewRouter(store, adminSvc, RouterConfig{
		RequestTimeout: 5 * time.Second,
		Tokens:         session.NewTokens("test-secret", time.Hour),
		LoginLimiter:   auth.NewLoginLimiter(0.001, loginBurst),
		Logger:         logger,
		Ready:          repo.Ping,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, repo: repo}
}

func (e *testEnv) client(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 5)
	resp := do(t, env.client(t), http.MethodGet, env.server.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListPlans(t *testing.T) {
	env := newTestEnv(t, 5)
	resp := do(t, env.client(t), http.MethodGet, env.server.URL+"/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	plans := decode[[]domain.Plan](t, resp)
	require.Len(t, plans, 3)
	assert.Equal(t, "69.90", plans[0].Price.String())
}

func TestGetPlan(t *testing.T) {
	env := newTestEnv(t, 5)
	c := env.client(t)

	resp := do(t, c, http.MethodGet, env.server.URL+"/api/v1/plans/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan := decode[domain.Plan](t, resp)
	assert.Equal(t, int64(3), plan.ID)

	resp = do(t, c, http.MethodGet, env.server.URL+"/api/v1/plans/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "plan_not_found", decode[ErrorResponse](t, resp).Code)

	resp = do(t, c, http.MethodGet, env.server.URL+"/api/v1/plans/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlanPix(t *testing.T) {
	env := newTestEnv(t, 5)
	c := env.client(t)

	resp := do(t, c, http.MethodGet, env.server.URL+"/api/v1/plans/1/pix", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "000201"))

	resp = do(t, c, http.MethodGet, env.server.URL+"/api/v1/plans/1/pix.png?size=200", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp = do(t, c, http.MethodGet, env.server.URL+"/api/v1/plans/1/pix.png?size=big", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t, 5)
	c := env.client(t)
	base := env.server.URL + "/api/v1"

	resp := do(t, c, http.MethodGet, base+"/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(SessionTokenHeader))
	cart := decode[CartResponse](t, resp)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.Total.String())

	resp = do(t, c, http.MethodPost, base+"/cart/items", AddItemRequestDTO{PlanID: 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cart = decode[CartResponse](t, resp)
	assert.Equal(t, "cart", string(cart.View))

	resp = do(t, c, http.MethodPost, base+"/cart/items", AddItemRequestDTO{PlanID: 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	q := 3
	resp = do(t, c, http.MethodPut, base+"/cart/items/1", UpdateQuantityRequestDTO{Quantity: &q})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart = decode[CartResponse](t, resp)
	assert.Equal(t, 4, cart.ItemCount)
	assert.Equal(t, "509.60", cart.Total.String())

	resp = do(t, c, http.MethodDelete, base+"/cart/items/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart = decode[CartResponse](t, resp)
	assert.Equal(t, 3, cart.ItemCount)

	zero := 0
	resp = do(t, c, http.MethodPut, base+"/cart/items/1", UpdateQuantityRequestDTO{Quantity: &zero})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart = decode[CartResponse](t, resp)
	assert.Empty(t, cart.Items)
}

func TestCart_Validation(t *testing.T) {
	env := newTestEnv(t, 5)
	c := env.client(t)
	base := env.server.URL + "/api/v1"

	resp := do(t, c, http.MethodPost, base+"/cart/items", AddItemRequestDTO{PlanID: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, c, http.MethodPost, base+"/cart/items", AddItemRequestDTO{PlanID: 42})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, c, http.MethodPut, base+"/cart/items/1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_quantity", decode[ErrorResponse](t, resp).Code)
}

func TestBearerTokenSession(t *testing.T) {
	env := newTestEnv(t, 5)
	base := env.server.URL + "/api/v1"

	plain := &http.Client{}
	resp := do(t, plain, http.MethodPost, base+"/cart/items", AddItemRequestDTO{PlanID: 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := resp.Header.Get(SessionTokenHeader)
	require.NotEmpty(t, token)

	req, err := http.NewRequest(http.MethodGet, base+"/cart", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = plain.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	cart := decode[CartResponse](t, resp)
	assert.Equal(t, 1, cart.ItemCount)
	assert.Empty(t, resp.Header.Get(SessionTokenHeader))
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t, 5)
	c := env.client(t)
	base := env.server.URL + "/api/v1"

	resp := do(t, c, http.MethodGet, base+"/checkout", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "empty_cart", decode[ErrorResponse](t, resp).Code)

	do(t, c, http.MethodPost, base+"/cart/items", AddItemRequestDTO{PlanID: 1})
	do(t, c, http.MethodPost, base+"/cart/items", AddItemRequestDTO{PlanID: 1})
	do(t, c, http.MethodPost, base+"/cart/items", AddItemRequestDTO{PlanID: 3})

	resp = do(t, c, http.MethodGet, base+"/checkout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[service.CheckoutView](t, resp)
	assert.Equal(t, "439.70", view.Total.String())
	assert.NotEmpty(t, view.PaymentReference)

	resp = do(t, c, http.MethodPost, base+"/checkout", CheckoutRequestDTO{Name: "Ana", Email: "bad", Phone: "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_customer_info", decode[ErrorResponse](t, resp).Code)

	resp = do(t, c, http.MethodPost, base+"/checkout", CheckoutRequestDTO{Name: "Ana", Email: "ana@example.com", Phone: "11999990000"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[domain.Order](t, resp)
	assert.Equal(t, "439.70", order.Total.String())
	assert.Len(t, order.Items, 2)

	resp = do(t, c, http.MethodGet, base+"/orders/last", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, order.ID, decode[domain.Order](t, resp).ID)

	resp = do(t, c, http.MethodGet, base+"/cart", nil)
	cart := decode[CartResponse](t, resp)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "confirmation", string(cart.View))
}

func TestCheckout_SaveFailureIsRetryable(t *testing.T) {
	env := newTestEnv(t, 5)
	c := env.client(t)
	base := env.server.URL + "/api/v1"

	do(t, c, http.MethodPost, base+"/cart/items", AddItemRequestDTO{PlanID: 2})
	env.repo.setDown(true)

	resp := do(t, c, http.MethodPost, base+"/checkout", CheckoutRequestDTO{Name: "Ana", Email: "ana@example.com", Phone: "11999990000"})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	errResp := decode[ErrorResponse](t, resp)
	assert.Equal(t, "save_failed", errResp.Code)
	assert.True(t, errResp.Retryable)

	resp = do(t, c, http.MethodGet, base+"/cart", nil)
	assert.Equal(t, 1, decode[CartResponse](t, resp).ItemCount)

	env.repo.setDown(false)
	resp = do(t, c, http.MethodPost, base+"/checkout", CheckoutRequestDTO{Name: "Ana", Email: "ana@example.com", Phone: "11999990000"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestLastOrder_None(t *testing.T) {
	env := newTestEnv(t, 5)
	resp := do(t, env.client(t), http.MethodGet, env.server.URL+"/api/v1/orders/last", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminFlow(t *testing.T) {
	env := newTestEnv(t, 5)
	base := env.server.URL + "/api/v1"

	for _, info := range []CheckoutRequestDTO{
		{Name: "Ana", Email: "ana@example.com", Phone: "111"},
		{Name: "Bruno", Email: "bruno@example.com", Phone: "222"},
	} {
		buyer := env.client(t)
		do(t, buyer, http.MethodPost, base+"/cart/items", AddItemRequestDTO{PlanID: 1})
		resp := do(t, buyer, http.MethodPost, base+"/checkout", info)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	c := env.client(t)

	resp := do(t, c, http.MethodGet, base+"/admin/customers", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", decode[ErrorResponse](t, resp).Code)

	resp = do(t, c, http.MethodPost, base+"/auth/login", LoginRequestDTO{Email: "admin@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", decode[ErrorResponse](t, resp).Code)

	resp = do(t, c, http.MethodPost, base+"/auth/login", LoginRequestDTO{Email: "admin@example.com", Password: "password"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[auth.Status](t, resp).Authenticated)

	resp = do(t, c, http.MethodGet, base+"/auth/session", nil)
	assert.True(t, decode[auth.Status](t, resp).Authenticated)

	resp = do(t, c, http.MethodGet, base+"/admin/customers?q=AN", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[CustomersResponse](t, resp)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Ana", list.Customers[0].Name)

	resp = do(t, c, http.MethodGet, base+"/admin/customers.csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "clientes_")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(string(body), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Nome,Email,Telefone"))

	resp = do(t, c, http.MethodPost, base+"/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, c, http.MethodGet, base+"/admin/customers.csv", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRateLimit(t *testing.T) {
	env := newTestEnv(t, 2)
	c := env.client(t)
	url := env.server.URL + "/api/v1/auth/login"

	for i := 0; i < 2; i++ {
		resp := do(t, c, http.MethodPost, url, LoginRequestDTO{Email: "admin@example.com", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := do(t, c, http.MethodPost, url, LoginRequestDTO{Email: "admin@example.com", Password: "password"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestNavigateView(t *testing.T) {
	env := newTestEnv(t, 5)
	c := env.client(t)
	base := env.server.URL + "/api/v1"

	resp := do(t, c, http.MethodPut, base+"/session/view", NavigateRequestDTO{View: "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "login", string(decode[CartResponse](t, resp).View))

	resp = do(t, c, http.MethodPut, base+"/session/view", NavigateRequestDTO{View: "nowhere"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
