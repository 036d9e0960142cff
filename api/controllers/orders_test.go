package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisonaurelle/boutique-backend/api/middleware"
	ordersvc "github.com/maisonaurelle/boutique-backend/internal/orders"
	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	"github.com/maisonaurelle/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/pagination"
)

type fakeOrdersService struct {
	order       *models.Order
	list        *ordersvc.OrderList
	err         error
	trackEmails []string
	transitions []enums.OrderStatus
	listFilters []ordersvc.OrderFilters
	listedUsers []uuid.UUID
}

func (f *fakeOrdersService) Get(context.Context, uuid.UUID) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeOrdersService) Track(_ context.Context, _ uuid.UUID, email string) (*models.Order, error) {
	f.trackEmails = append(f.trackEmails, email)
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeOrdersService) List(_ context.Context, _ pagination.Params, filters ordersvc.OrderFilters) (*ordersvc.OrderList, error) {
	f.listFilters = append(f.listFilters, filters)
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeOrdersService) ListForUser(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	f.listedUsers = append(f.listedUsers, userID)
	if f.err != nil {
		return nil, f.err
	}
	if f.order == nil {
		return nil, nil
	}
	return []models.Order{*f.order}, nil
}

func (f *fakeOrdersService) Transition(_ context.Context, _ uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	f.transitions = append(f.transitions, next)
	if f.err != nil {
		return nil, f.err
	}
	f.order.Status = next
	return f.order, nil
}

func sampleOrder() *models.Order {
	variant := "Gold"
	return &models.Order{
		ID:         uuid.New(),
		Status:     enums.OrderStatusProcessing,
		TotalCents: 129000,
		Currency:   "USD",
		Email:      "client@example.com",
		Lines: []models.OrderLine{{
			ProductID:      uuid.NewString(),
			ProductName:    "Royal Chrono",
			VariantName:    &variant,
			UnitPriceCents: 129000,
			Quantity:       1,
		}},
	}
}

func TestListMyOrdersRequiresLogin(t *testing.T) {
	svc := &fakeOrdersService{}

	// A session-only shopper reaches the route but has no user identity.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = req.WithContext(middleware.WithSessionKey(req.Context(), "session-1"))
	resp := httptest.NewRecorder()
	ListMyOrders(svc, testLogger())(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Empty(t, svc.listedUsers)
}

func TestListMyOrdersReturnsHistory(t *testing.T) {
	order := sampleOrder()
	svc := &fakeOrdersService{order: order}
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	ListMyOrders(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, []uuid.UUID{userID}, svc.listedUsers)

	var envelope struct {
		Data []orderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, order.ID, envelope.Data[0].ID)
	assert.Equal(t, "Royal Chrono", envelope.Data[0].Lines[0].ProductName)
}

func TestTrackOrderRequiresBothParams(t *testing.T) {
	svc := &fakeOrdersService{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/track?order="+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	TrackOrder(svc, testLogger())(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, svc.trackEmails)
}

func TestTrackOrderReturnsOrder(t *testing.T) {
	order := sampleOrder()
	svc := &fakeOrdersService{order: order}

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/orders/track?order="+order.ID.String()+"&email=client%40example.com", nil)
	resp := httptest.NewRecorder()
	TrackOrder(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, []string{"client@example.com"}, svc.trackEmails)

	var envelope struct {
		Data orderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, order.ID, envelope.Data.ID)
	assert.Equal(t, "processing", envelope.Data.Status)
	require.Len(t, envelope.Data.Lines, 1)
	assert.Equal(t, "Royal Chrono", envelope.Data.Lines[0].ProductName)
}

func TestTrackOrderMismatchReadsAsNotFound(t *testing.T) {
	svc := &fakeOrdersService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/orders/track?order="+uuid.NewString()+"&email=wrong%40example.com", nil)
	resp := httptest.NewRecorder()
	TrackOrder(svc, testLogger())(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdminListOrdersParsesStatusFilter(t *testing.T) {
	svc := &fakeOrdersService{list: &ordersvc.OrderList{Orders: []models.Order{*sampleOrder()}, NextCursor: "abc"}}

	req := httptest.NewRequest(http.MethodGet, "/admin/orders?status=processing&email=client%40example.com", nil)
	resp := httptest.NewRecorder()
	AdminListOrders(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, svc.listFilters, 1)
	require.NotNil(t, svc.listFilters[0].Status)
	assert.Equal(t, enums.OrderStatusProcessing, *svc.listFilters[0].Status)
	assert.Equal(t, "client@example.com", svc.listFilters[0].Email)

	var envelope struct {
		Data orderListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Orders, 1)
	assert.Equal(t, "abc", envelope.Data.NextCursor)
}

func TestAdminListOrdersRejectsUnknownStatus(t *testing.T) {
	svc := &fakeOrdersService{}

	req := httptest.NewRequest(http.MethodGet, "/admin/orders?status=exploded", nil)
	resp := httptest.NewRecorder()
	AdminListOrders(svc, testLogger())(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, svc.listFilters)
}

func TestAdminTransitionOrder(t *testing.T) {
	order := sampleOrder()
	svc := &fakeOrdersService{order: order}

	req := newRouteRequest(http.MethodPost, "/admin/orders/"+order.ID.String()+"/status",
		strings.NewReader(`{"status":"shipped"}`), map[string]string{"orderID": order.ID.String()})
	resp := httptest.NewRecorder()
	AdminTransitionOrder(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, []enums.OrderStatus{enums.OrderStatusShipped}, svc.transitions)

	var envelope struct {
		Data orderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "shipped", envelope.Data.Status)
}

func TestAdminTransitionOrderInvalidStatus(t *testing.T) {
	svc := &fakeOrdersService{order: sampleOrder()}

	req := newRouteRequest(http.MethodPost, "/admin/orders/"+uuid.NewString()+"/status",
		strings.NewReader(`{"status":"teleported"}`), map[string]string{"orderID": uuid.NewString()})
	resp := httptest.NewRecorder()
	AdminTransitionOrder(svc, testLogger())(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, svc.transitions)
}
