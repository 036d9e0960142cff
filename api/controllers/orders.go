package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maisonaurelle/boutique-backend/api/middleware"
	"github.com/maisonaurelle/boutique-backend/api/responses"
	ordersvc "github.com/maisonaurelle/boutique-backend/internal/orders"
	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
	"github.com/maisonaurelle/boutique-backend/pkg/types"
)

type orderLineResponse struct {
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name"`
	VariantName    *string `json:"variant_name,omitempty"`
	UnitPriceCents int     `json:"unit_price_cents"`
	Quantity       int     `json:"quantity"`
}

type orderResponse struct {
	ID               uuid.UUID           `json:"id"`
	Status           string              `json:"status"`
	TotalCents       int                 `json:"total_cents"`
	Currency         string              `json:"currency"`
	Email            string              `json:"email"`
	ShippingAddress  *types.Address      `json:"shipping_address,omitempty"`
	PaymentReference *string             `json:"payment_reference,omitempty"`
	Lines            []orderLineResponse `json:"lines"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func toOrderResponse(order *models.Order) orderResponse {
	out := orderResponse{
		ID:               order.ID,
		Status:           order.Status.String(),
		TotalCents:       order.TotalCents,
		Currency:         order.Currency,
		Email:            order.Email,
		ShippingAddress:  order.ShippingAddress,
		PaymentReference: order.PaymentReference,
		Lines:            make([]orderLineResponse, 0, len(order.Lines)),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	for _, line := range order.Lines {
		out.Lines = append(out.Lines, orderLineResponse{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			VariantName:    line.VariantName,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		})
	}
	return out
}

// TrackOrder serves the public tracking page: order id plus the email on
// file, no login needed.
func TrackOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		rawID := strings.TrimSpace(r.URL.Query().Get("order"))
		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if rawID == "" || email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order and email query parameters are required"))
			return
		}

		orderID, err := uuid.Parse(rawID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.Track(r.Context(), orderID, email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// ListMyOrders returns the authenticated shopper's order history, newest
// first. Anonymous session shoppers have no history to list and get a 401.
func ListMyOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to list orders"))
			return
		}

		history, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(history))
		for i := range history {
			out = append(out, toOrderResponse(&history[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
