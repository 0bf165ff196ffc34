package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubOrderService records the last PlaceOrder call and replays canned results
type stubOrderService struct {
	lastUserID uuid.UUID
	lastInput  service.PlaceOrderInput
	orders     map[uuid.UUID]*domain.Order
	userOrders []*domain.Order
	placeErr   error
}

func newStubOrderService() *stubOrderService {
	return &stubOrderService{orders: make(map[uuid.UUID]*domain.Order)}
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, input service.PlaceOrderInput) (*domain.Order, error) {
	s.lastUserID = userID
	s.lastInput = input
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	if len(input.Items) == 0 {
		return nil, service.ErrNoOrderItems
	}

	now := time.Now()
	order := &domain.Order{
		ID:     uuid.New(),
		UserID: userID,
		Items: func() []domain.OrderItem {
			items := make([]domain.OrderItem, 0, len(input.Items))
			for _, item := range input.Items {
				items = append(items, domain.OrderItem{
					ProductRef: item.ProductRef,
					Name:       item.Title,
					Image:      item.Image,
					Price:      item.Price,
					Quantity:   item.Quantity,
				})
			}
			return items
		}(),
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		ItemsPrice:      input.ItemsPrice,
		TaxPrice:        input.TaxPrice,
		ShippingPrice:   input.ShippingPrice,
		TotalPrice:      input.TotalPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *stubOrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.userOrders, nil
}

// testAuth injects a fixed authenticated user into the request context
func testAuth(userID uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID.String())
			ctx = context.WithValue(ctx, middleware.UserRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newOrderRouter(svc service.OrderService, userID uuid.UUID) chi.Router {
	r := chi.NewRouter()
	handler := NewOrderHandler(svc, zap.NewNop())
	handler.RegisterRoutes(r, testAuth(userID, "user"))
	return r
}

func TestCreateOrder_EmptyItemsRejected(t *testing.T) {
	svc := newStubOrderService()
	router := newOrderRouter(svc, uuid.New())

	body := `{"orderItems":[],"paymentMethod":"card","totalPrice":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders/", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no order items", resp["error"])
}

func TestCreateOrder_Success(t *testing.T) {
	svc := newStubOrderService()
	userID := uuid.New()
	router := newOrderRouter(svc, userID)

	productRef := uuid.New().String()
	body := map[string]any{
		"orderItems": []map[string]any{
			{"id": productRef, "title": "Laptop", "price": 999.5, "image": "laptop.jpg", "quantity": 2},
		},
		"shippingAddress": map[string]any{"city": "Mumbai", "pinCode": "400001"},
		"paymentMethod":   "card",
		"itemsPrice":      1999.0,
		"taxPrice":        360.0,
		"shippingPrice":   40.0,
		"totalPrice":      2399.0,
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/", bytes.NewBuffer(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	// The caller's identity comes from the auth context, not the payload
	assert.Equal(t, userID, svc.lastUserID)

	require.Len(t, svc.lastInput.Items, 1)
	assert.Equal(t, productRef, svc.lastInput.Items[0].ProductRef)
	assert.Equal(t, "Laptop", svc.lastInput.Items[0].Title)

	var resp domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.OrderStatusPending, resp.Status)
	assert.Equal(t, domain.PaymentStatusPending, resp.PaymentStatus)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 999.5, resp.Items[0].Price)
	assert.Equal(t, 2399.0, resp.TotalPrice)
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	svc := newStubOrderService()
	router := newOrderRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/orders/", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := newStubOrderService()
	router := newOrderRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrder_MalformedIDReadsAsNotFound(t *testing.T) {
	svc := newStubOrderService()
	router := newOrderRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/orders/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrder_Found(t *testing.T) {
	svc := newStubOrderService()
	userID := uuid.New()
	router := newOrderRouter(svc, userID)

	order := &domain.Order{ID: uuid.New(), UserID: userID, Status: domain.OrderStatusPending, PaymentStatus: domain.PaymentStatusPending}
	svc.orders[order.ID] = order

	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, order.ID, resp.ID)
}

func TestListMyOrders(t *testing.T) {
	svc := newStubOrderService()
	userID := uuid.New()
	router := newOrderRouter(svc, userID)

	svc.userOrders = []*domain.Order{
		{ID: uuid.New(), UserID: userID, Status: domain.OrderStatusPending, PaymentStatus: domain.PaymentStatusPending},
		{ID: uuid.New(), UserID: userID, Status: domain.OrderStatusDelivered, PaymentStatus: domain.PaymentStatusCompleted},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/orders/myorders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestOrderRoutes_RequireAuthentication(t *testing.T) {
	r := chi.NewRouter()
	handler := NewOrderHandler(newStubOrderService(), zap.NewNop())
	handler.RegisterRoutes(r, middleware.AuthMiddleware("secret", zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/api/orders/", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
