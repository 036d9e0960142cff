package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maisonaurelle/boutique-backend/api/middleware"
	"github.com/maisonaurelle/boutique-backend/api/responses"
	"github.com/maisonaurelle/boutique-backend/api/validators"
	"github.com/maisonaurelle/boutique-backend/internal/checkout"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
	"github.com/maisonaurelle/boutique-backend/pkg/types"
)

type placeOrderRequest struct {
	Email           string         `json:"email" validate:"required,email"`
	ShippingAddress *types.Address `json:"shipping_address,omitempty"`
}

type placeOrderResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	AmountCents int       `json:"amount_cents"`
	Currency    string    `json:"currency"`
}

// Either field settles the order: payment_reference points at a payment the
// hosted widget already captured, source_id asks the backend to create the
// charge itself. The service enforces that exactly one is present.
type confirmPaymentRequest struct {
	PaymentReference string `json:"payment_reference,omitempty"`
	SourceID         string `json:"source_id,omitempty"`
}

type confirmPaymentResponse struct {
	OrderID          uuid.UUID `json:"order_id"`
	Status           string    `json:"status"`
	PaymentReference string    `json:"payment_reference"`
}

// PlaceOrder converts the shopper's cart into a pending order and returns
// the amount the hosted payment widget should charge.
func PlaceOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		key, persistent, ok := cartOwner(r, logg, w)
		if !ok {
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.ShippingAddress != nil {
			if missing := payload.ShippingAddress.Validate(); missing != "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("shipping_address.%s is required", missing)))
				return
			}
		}

		input := checkout.PlaceOrderInput{
			OwnerKey:        key,
			Persistent:      persistent,
			Email:           payload.Email,
			ShippingAddress: payload.ShippingAddress,
		}
		if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
			if parsed, err := uuid.Parse(userID); err == nil {
				input.UserID = &parsed
			}
		}

		order, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, placeOrderResponse{
			OrderID:     order.ID,
			AmountCents: order.TotalCents,
			Currency:    order.Currency,
		})
	}
}

// ConfirmPayment is the gateway success callback: it verifies the payment
// and moves the order to processing.
func ConfirmPayment(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		key, persistent, ok := cartOwner(r, logg, w)
		if !ok {
			return
		}

		var payload confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmPayment(r.Context(), checkout.ConfirmPaymentInput{
			OrderID:    orderID,
			PaymentRef: payload.PaymentReference,
			SourceID:   payload.SourceID,
			OwnerKey:   key,
			Persistent: persistent,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ref := ""
		if order.PaymentReference != nil {
			ref = *order.PaymentReference
		}
		responses.WriteSuccess(w, confirmPaymentResponse{
			OrderID:          order.ID,
			Status:           order.Status.String(),
			PaymentReference: ref,
		})
	}
}
