package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maisonaurelle/boutique-backend/api/middleware"
	"github.com/maisonaurelle/boutique-backend/api/responses"
	"github.com/maisonaurelle/boutique-backend/api/validators"
	"github.com/maisonaurelle/boutique-backend/internal/cart"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
)

type cartResponse struct {
	Lines      []cart.Line `json:"lines"`
	TotalCents int         `json:"total_cents"`
	ItemCount  int         `json:"item_count"`
}

type addCartItemRequest struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name" validate:"required"`
	Variant        string `json:"variant,omitempty"`
	UnitPriceCents int    `json:"unit_price_cents" validate:"min=0"`
	Quantity       int    `json:"quantity" validate:"omitempty,min=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func cartOwner(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (string, bool, bool) {
	key, persistent := middleware.OwnerKeyFromContext(r.Context())
	if key == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Session-Id header or login required"))
		return "", false, false
	}
	return key, persistent, true
}

// GetCart returns the shopper's current selection.
func GetCart(svc *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, _, ok := cartOwner(r, logg, w)
		if !ok {
			return
		}
		lines, total, count := svc.Snapshot(key)
		responses.WriteSuccess(w, cartResponse{Lines: lines, TotalCents: total, ItemCount: count})
	}
}

// AddCartItem merges a product into the cart.
func AddCartItem(svc *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, persistent, ok := cartOwner(r, logg, w)
		if !ok {
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line := svc.AddItem(r.Context(), key, persistent, cart.AddInput{
			ProductID:      payload.ProductID,
			Name:           payload.Name,
			Variant:        payload.Variant,
			UnitPriceCents: payload.UnitPriceCents,
			Quantity:       payload.Quantity,
		})
		responses.WriteSuccessStatus(w, http.StatusCreated, line)
	}
}

// UpdateCartItem overwrites a line's quantity; zero or below removes it.
func UpdateCartItem(svc *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, persistent, ok := cartOwner(r, logg, w)
		if !ok {
			return
		}

		compositeID := chi.URLParam(r, "compositeID")
		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !svc.UpdateQuantity(r.Context(), key, persistent, compositeID, payload.Quantity) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found"))
			return
		}

		lines, total, count := svc.Snapshot(key)
		responses.WriteSuccess(w, cartResponse{Lines: lines, TotalCents: total, ItemCount: count})
	}
}

// RemoveCartItem deletes a line from the cart.
func RemoveCartItem(svc *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, persistent, ok := cartOwner(r, logg, w)
		if !ok {
			return
		}

		compositeID := chi.URLParam(r, "compositeID")
		if !svc.RemoveItem(r.Context(), key, persistent, compositeID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found"))
			return
		}

		lines, total, count := svc.Snapshot(key)
		responses.WriteSuccess(w, cartResponse{Lines: lines, TotalCents: total, ItemCount: count})
	}
}

// ClearCart empties the shopper's cart.
func ClearCart(svc *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, persistent, ok := cartOwner(r, logg, w)
		if !ok {
			return
		}
		svc.Clear(r.Context(), key, persistent)
		responses.WriteSuccess(w, cartResponse{Lines: []cart.Line{}})
	}
}
