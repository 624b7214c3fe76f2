package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"techorbit/internal/auth"
	"techorbit/internal/models"
	"techorbit/internal/service"
	"techorbit/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopCache struct{}

func (noopCache) GetIdempotencyKey(context.Context, string) (string, error) {
	return "", nil
}

func (noopCache) SetIdempotencyKey(context.Context, string, interface{}, time.Duration) error {
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderPlaced(context.Context, *models.OrderPlacedEvent) error {
	return nil
}

func (noopPublisher) PublishOrderStatusChanged(context.Context, *models.OrderStatusChangedEvent) error {
	return nil
}

func (noopPublisher) PublishNotification(context.Context, int64, []byte) error {
	return nil
}

type apiFixture struct {
	router *gin.Engine
	store  *store.Store
	tokens *auth.Manager
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tokens := auth.NewManager("test-secret", time.Hour)
	pub := noopPublisher{}

	users := service.NewUserService(st, tokens)
	catalog := service.NewCatalogService(st)
	coupons := service.NewCouponService()
	payments := service.NewPaymentService(time.Millisecond, time.Millisecond, time.Millisecond)
	orders := service.NewOrderService(st, noopCache{}, pub, coupons, payments)
	reviews := service.NewReviewService(st)
	wishlist := service.NewWishlistService(st)
	notifications := service.NewNotificationService(st, pub)
	stats := service.NewStatsService(st)

	h := NewHandler(users, catalog, orders, reviews, wishlist, notifications,
		coupons, stats, nil, tokens)

	router := gin.New()
	h.SetupRoutes(router)

	return &apiFixture{router: router, store: st, tokens: tokens}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// signupAs registers an account and returns its token and user id.
func (f *apiFixture) signupAs(t *testing.T, email, role string) (string, int64) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/signup", "", gin.H{
		"name":     "Test " + role,
		"email":    email,
		"password": "secret123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID int64 `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.Token, resp.Data.User.ID
}

// adminToken seeds an admin account directly; admin accounts cannot be
// self-registered through the API.
func (f *apiFixture) adminToken(t *testing.T) string {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	admin := &models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: hash, Role: models.RoleAdmin}
	require.NoError(t, f.store.CreateUser(context.Background(), admin))

	token, err := f.tokens.IssueToken(admin.ID, models.RoleAdmin)
	require.NoError(t, err)
	return token
}

func (f *apiFixture) createProduct(t *testing.T, sellerToken string, title string, price float64, stock int) int64 {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/products", sellerToken, gin.H{
		"title":    title,
		"price":    price,
		"category": "Accessories",
		"stock":    stock,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestSignupAndLogin(t *testing.T) {
	f := newAPIFixture(t)

	token, _ := f.signupAs(t, "alice@example.com", "user")
	assert.NotEmpty(t, token)

	// duplicate email is rejected
	rec := f.do(t, http.MethodPost, "/api/signup", "", gin.H{
		"name": "Alice Again", "email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/login", "", gin.H{
		"email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// unknown email looks identical to a bad password
	rec = f.do(t, http.MethodPost, "/api/login", "", gin.H{
		"email": "nobody@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/orders", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/orders", "garbage-token", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductRoleGating(t *testing.T) {
	f := newAPIFixture(t)
	userToken, _ := f.signupAs(t, "user@example.com", "user")
	sellerToken, _ := f.signupAs(t, "seller@example.com", "seller")

	// a buyer cannot create products no matter what the body claims
	rec := f.do(t, http.MethodPost, "/api/products", userToken, gin.H{
		"title": "Mouse", "price": 25.0, "stock": 5,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	id := f.createProduct(t, sellerToken, "Mouse", 25, 5)
	assert.NotZero(t, id)

	// public listing needs no token
	rec = f.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductUpdateOwnership(t *testing.T) {
	f := newAPIFixture(t)
	sellerToken, _ := f.signupAs(t, "seller@example.com", "seller")
	otherToken, _ := f.signupAs(t, "other@example.com", "seller")

	id := f.createProduct(t, sellerToken, "Mouse", 25, 5)
	path := fmt.Sprintf("/api/products/%d", id)

	// another seller cannot edit it
	rec := f.do(t, http.MethodPut, path, otherToken, gin.H{"title": "Hijacked", "price": 1.0})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, path, sellerToken, gin.H{"title": "Mouse", "price": 30.0, "stock": 5})
	assert.Equal(t, http.StatusOK, rec.Code)

	// an admin can
	rec = f.do(t, http.MethodDelete, path, f.adminToken(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateCouponEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/validate-coupon", "", gin.H{
		"code": "SAVE10", "subtotal": 200.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Percent  int     `json:"percent"`
			Discount float64 `json:"discount"`
			Total    float64 `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.Data.Percent)
	assert.Equal(t, 20.0, resp.Data.Discount)
	assert.Equal(t, 180.0, resp.Data.Total)

	rec = f.do(t, http.MethodPost, "/api/validate-coupon", "", gin.H{
		"code": "BOGUS", "subtotal": 200.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	f := newAPIFixture(t)
	sellerToken, _ := f.signupAs(t, "seller@example.com", "seller")
	buyerToken, buyerID := f.signupAs(t, "buyer@example.com", "user")
	productID := f.createProduct(t, sellerToken, "Mouse", 25, 10)

	body := gin.H{
		"items":            []gin.H{{"product_id": productID, "quantity": 2}},
		"shipping_address": "1 Test Street",
		"payment_method":   models.PaymentMethodCard,
		"coupon_code":      "WELCOME20",
	}

	rec := f.do(t, http.MethodPost, "/api/orders", buyerToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data service.CheckoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.OrderStatusProcessing, resp.Data.Status)
	assert.Equal(t, 50.0, resp.Data.Subtotal)
	assert.Equal(t, 40.0, resp.Data.Total)

	// the buyer sees the order in their history
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", buyerID), buyerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// but not in anyone else's
	otherToken, _ := f.signupAs(t, "other@example.com", "user")
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", buyerID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCheckoutIdempotencyHeader(t *testing.T) {
	f := newAPIFixture(t)
	sellerToken, _ := f.signupAs(t, "seller@example.com", "seller")
	buyerToken, _ := f.signupAs(t, "buyer@example.com", "user")
	productID := f.createProduct(t, sellerToken, "Mouse", 25, 10)

	body := gin.H{
		"items":            []gin.H{{"product_id": productID, "quantity": 1}},
		"shipping_address": "1 Test Street",
		"payment_method":   models.PaymentMethodUPI,
	}

	send := func() int64 {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, "/api/orders", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+buyerToken)
		req.Header.Set("Idempotency-Key", "header-key-1")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Data service.CheckoutResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Data.OrderID
	}

	first := send()
	second := send()
	assert.Equal(t, first, second)
}

func TestCancelEnforcement(t *testing.T) {
	f := newAPIFixture(t)
	sellerToken, sellerID := f.signupAs(t, "seller@example.com", "seller")
	buyerToken, _ := f.signupAs(t, "buyer@example.com", "user")
	productID := f.createProduct(t, sellerToken, "Mouse", 25, 10)

	placeOrder := func() int64 {
		rec := f.do(t, http.MethodPost, "/api/orders", buyerToken, gin.H{
			"items":            []gin.H{{"product_id": productID, "quantity": 1}},
			"shipping_address": "1 Test Street",
			"payment_method":   models.PaymentMethodCOD,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp struct {
			Data service.CheckoutResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Data.OrderID
	}

	// a Processing order can be cancelled by its buyer
	orderID := placeOrder()
	rec := f.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d", orderID), buyerToken,
		gin.H{"status": models.OrderStatusCancelled})
	assert.Equal(t, http.StatusOK, rec.Code)

	// once shipped, cancellation is refused
	orderID = placeOrder()
	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d", orderID), sellerToken,
		gin.H{"status": models.OrderStatusShipped, "courier": "SpeedPost"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d", orderID), buyerToken,
		gin.H{"status": models.OrderStatusCancelled})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// the seller's order feed is visible to the seller only
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/orders/seller/%d", sellerID), buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/orders/seller/%d", sellerID), sellerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWishlistToggleEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	sellerToken, _ := f.signupAs(t, "seller@example.com", "seller")
	buyerToken, buyerID := f.signupAs(t, "buyer@example.com", "user")
	productID := f.createProduct(t, sellerToken, "Mouse", 25, 10)

	toggle := func() string {
		rec := f.do(t, http.MethodPost, "/api/wishlist", buyerToken, gin.H{"product_id": productID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Message
	}

	assert.Equal(t, "Added to wishlist", toggle())

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/wishlist/%d", buyerID), buyerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Removed from wishlist", toggle())
}

func TestReviewEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	sellerToken, _ := f.signupAs(t, "seller@example.com", "seller")
	buyerToken, _ := f.signupAs(t, "buyer@example.com", "user")
	productID := f.createProduct(t, sellerToken, "Mouse", 25, 10)

	rec := f.do(t, http.MethodPost, "/api/reviews", buyerToken, gin.H{
		"product_id": productID, "rating": 6, "comment": "too good",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/reviews", buyerToken, gin.H{
		"product_id": productID, "rating": 5, "comment": "great",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// reviews are publicly readable
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/reviews/%d", productID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	f := newAPIFixture(t)
	userToken, _ := f.signupAs(t, "user@example.com", "user")
	admin := f.adminToken(t)

	rec := f.do(t, http.MethodGet, "/api/stats", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/stats", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/users", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupCannotGrantAdmin(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/signup", "", gin.H{
		"name": "Sneaky", "email": "sneaky@example.com", "password": "secret123", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			User struct {
				Role string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleUser, resp.Data.User.Role)
}

func TestMarkNotificationReadOwnership(t *testing.T) {
	f := newAPIFixture(t)
	ownerToken, ownerID := f.signupAs(t, "owner@example.com", "user")
	attackerToken, _ := f.signupAs(t, "attacker@example.com", "user")

	n := &models.Notification{UserID: ownerID, Message: "Order #1 is now Shipped"}
	require.NoError(t, f.store.CreateNotification(context.Background(), n))
	path := fmt.Sprintf("/api/notifications/read/%d", n.ID)

	// someone else's token cannot flip it
	rec := f.do(t, http.MethodPatch, path, attackerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/notifications/%d", ownerID), ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []models.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.False(t, resp.Data[0].IsRead)

	// the owner can
	rec = f.do(t, http.MethodPatch, path, ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/api/notifications/read/%d", n.ID+100), ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
