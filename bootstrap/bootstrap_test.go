package bootstrap

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/cache"
	"storefront/config"
	"storefront/events"
	"storefront/models"
	"storefront/repositories/memstore"
	"storefront/services"
	"storefront/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   *string         `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t      *testing.T
	router *gin.Engine
	store  *memstore.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, CartCacheTTL: time.Minute}
	store := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(cfg, logger, Deps{
		Stores:    store,
		Cache:     cache.NewMemory(time.Minute),
		Publisher: events.NopPublisher{},
		Verifier:  services.TrustingVerifier{},
	})
	return &harness{t: t, router: router, store: store}
}

func (h *harness) do(method, path, token string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (h *harness) register(email string) string {
	h.t.Helper()
	w, env := h.do(http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "hunter22"})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())

	var res models.LoginResponse
	require.NoError(h.t, json.Unmarshal(env.Data, &res))
	return res.Token
}

func placeOrderBody(method string) gin.H {
	return gin.H{
		"shippingAddress": gin.H{"division": "Dhaka", "district": "Dhaka", "upazila": "Mirpur", "address": "Road 5"},
		"contactNumber":   "01711111111",
		"paymentMethod":   method,
	}
}

func TestCartToOrderFlow(t *testing.T) {
	h := newHarness(t)
	productID := h.store.SeedProduct(models.Product{
		Code: "P1", Name: "Mug", Price: decimal.RequireFromString("10.00"), Stock: 5,
		IsSaleable: true, IsDisplayable: true,
	})
	token := h.register("buyer@example.com")

	w, env := h.do(http.MethodPost, "/cart/add", token, gin.H{"productId": "P1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)

	var added models.AddItemResult
	require.NoError(t, json.Unmarshal(env.Data, &added))
	assert.NotEmpty(t, added.AccessToken)
	require.Len(t, added.Cart.Items, 1)
	assert.Equal(t, "20", added.Cart.Items[0].TotalPrice.String())

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "access_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, added.AccessToken, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	w, _ = h.do(http.MethodPost, "/cart/add", added.AccessToken, gin.H{"productId": "P1", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = h.do(http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cart models.Cart
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "30", cart.Items[0].TotalPrice.String())

	w, env = h.do(http.MethodPost, "/order/place", token, placeOrderBody("COD"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, models.OrderPending, order.OrderStatus)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, "30", order.TotalAmount.String())
	assert.Equal(t, 2, h.store.Product(productID).Stock)

	w, env = h.do(http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Empty(t, cart.Items)

	w, env = h.do(http.MethodPost, "/order/place", token, placeOrderBody("COD"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Cart is empty", env.Message)
	require.NotNil(t, env.Error)

	w, env = h.do(http.MethodGet, "/order/my", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []models.Order
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)
}

func TestAddToCartErrors(t *testing.T) {
	h := newHarness(t)
	h.store.SeedProduct(models.Product{
		Code: "P1", Name: "Mug", Price: decimal.RequireFromString("10.00"), Stock: 1,
		IsSaleable: true, IsDisplayable: true, Sizes: []string{"M"},
	})
	token := h.register("buyer@example.com")

	w, env := h.do(http.MethodPost, "/cart/add", "", gin.H{"productId": "P1", "quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, env = h.do(http.MethodPost, "/cart/add", token, gin.H{"productId": "P1", "quantity": 1, "userId": 999})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, env = h.do(http.MethodPost, "/cart/add", token, gin.H{"productId": "P1", "quantity": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient stock", env.Message)

	w, env = h.do(http.MethodPost, "/cart/add", token, gin.H{"productId": "P1", "quantity": 1, "size": "XL"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Size not available", env.Message)

	w, env = h.do(http.MethodPost, "/cart/add", token, gin.H{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var data struct {
		Errors map[string]interface{} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "is required", data.Errors["product_id"])
	assert.Equal(t, "is required", data.Errors["quantity"])
}

func TestAddToCartAcceptsCamelCaseBody(t *testing.T) {
	h := newHarness(t)
	h.store.SeedProduct(models.Product{
		Code: "P1", Name: "Tee", Price: decimal.RequireFromString("15.00"), Stock: 4,
		IsSaleable: true, IsDisplayable: true, Sizes: []string{"M", "L"}, Colors: []string{"Red"},
	})
	token := h.register("buyer@example.com")

	body := []byte(`{"productId":"P1","quantity":2,"size":"L","color":"Red","colorCode":"#ff0000"}`)
	req := httptest.NewRequest(http.MethodPost, "/cart/add", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var added models.AddItemResult
	require.NoError(t, json.Unmarshal(env.Data, &added))
	require.Len(t, added.Cart.Items, 1)

	line := added.Cart.Items[0]
	assert.Equal(t, "P1", line.ProductID)
	assert.Equal(t, 2, line.Quantity)
	require.NotNil(t, line.Size)
	assert.Equal(t, "L", *line.Size)
	require.NotNil(t, line.Color)
	assert.Equal(t, "Red", *line.Color)
	require.NotNil(t, line.ColorCode)
	assert.Equal(t, "#ff0000", *line.ColorCode)
	assert.Equal(t, "30", line.TotalPrice.String())
}

func TestPlaceOrderValidationTree(t *testing.T) {
	h := newHarness(t)
	token := h.register("buyer@example.com")

	w, env := h.do(http.MethodPost, "/order/place", token, gin.H{
		"shippingAddress": gin.H{"division": "Dhaka"},
		"contactNumber":   "1",
		"paymentMethod":   "Card",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", env.Message)

	var data struct {
		Errors map[string]interface{} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Contains(t, data.Errors, "contact_number")
	assert.Contains(t, data.Errors, "payment_method")
	shipping, ok := data.Errors["shipping_address"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "is required", shipping["district"])
}

func TestGuestCart(t *testing.T) {
	h := newHarness(t)
	h.store.SeedProduct(models.Product{
		Code: "P1", Name: "Mug", Price: decimal.RequireFromString("4.50"), Stock: 5,
		IsSaleable: true, IsDisplayable: true,
	})

	w, _ := h.do(http.MethodPost, "/cart/guest/add", "", gin.H{"productId": "P1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := w.Header().Get("X-Session-ID")
	require.NotEmpty(t, session)

	w, env := h.do(http.MethodGet, "/cart/guest", "", nil, "X-Session-ID", session)
	require.Equal(t, http.StatusOK, w.Code)
	var cart models.Cart
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "9", cart.Items[0].TotalPrice.String())

	w, _ = h.do(http.MethodGet, "/cart/guest", "", nil, "X-Session-ID", "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	h := newHarness(t)
	customer := h.register("buyer@example.com")

	tokens := utils.NewJWTIssuer("test-secret", time.Hour)
	adminID := h.store.SeedUser(models.User{Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true})
	admin, err := tokens.IssueAccessToken(utils.TokenSubject{ID: adminID, Role: models.RoleAdmin, Email: "admin@example.com"})
	require.NoError(t, err)

	product := gin.H{"productId": "NEW-1", "name": "Cap", "price": "12.5", "stock": 3, "isSaleable": true, "isDisplayable": true}

	w, _ := h.do(http.MethodPost, "/admin/products", customer, product)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := h.do(http.MethodPost, "/admin/products", admin, product)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Product
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "NEW-1", created.Code)

	w, env = h.do(http.MethodGet, "/products?page=1&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []models.Product       `json:"items"`
		Meta  models.PaginationMeta  `json:"meta"`
		Links models.PaginationLinks `json:"links"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Contains(t, page.Links.Self, "page=1")
	assert.Empty(t, page.Links.Next)

	w, _ = h.do(http.MethodPost, "/cart/add", customer, gin.H{"productId": "NEW-1", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w, env = h.do(http.MethodPost, "/order/place", customer, placeOrderBody("COD"))
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))

	w, env = h.do(http.MethodPatch, "/admin/orders/"+itoa(order.ID)+"/status", admin, gin.H{"status": "Shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "Cannot change order status")

	w, _ = h.do(http.MethodPatch, "/admin/orders/"+itoa(order.ID)+"/status", admin, gin.H{"status": "Processing"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(http.MethodGet, "/order/"+itoa(order.ID), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func itoa(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
