package checkout

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/square/square-go-sdk"

	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/payments"
)

type paymentClient interface {
	GetPayment(ctx context.Context, paymentID string) (*sq.Payment, error)
	CreatePayment(ctx context.Context, params payments.PaymentCreateParams) (*sq.Payment, error)
}

// SquareGateway adapts the Square client to the PaymentGateway seam.
type SquareGateway struct {
	client paymentClient
}

// NewSquareGateway wraps the Square client.
func NewSquareGateway(client paymentClient) *SquareGateway {
	return &SquareGateway{client: client}
}

// Verify fetches the payment and reports whether it settled for the expected
// amount. A completed payment over a different total or currency does not
// count; otherwise any settled payment id could confirm any order.
func (g *SquareGateway) Verify(ctx context.Context, paymentRef string, amountCents int64, currency string) (bool, error) {
	payment, err := g.client.GetPayment(ctx, paymentRef)
	if err != nil {
		return false, err
	}
	if !payments.PaymentCompleted(payment) {
		return false, nil
	}
	return amountMatches(payment, amountCents, currency), nil
}

// Charge creates a server-side payment against the shopper's tokenized
// source for the order total and returns the gateway reference. The amount
// never comes from the client, so a charged payment needs no further
// amount verification.
func (g *SquareGateway) Charge(ctx context.Context, order *models.Order, sourceID string) (string, error) {
	payment, err := g.client.CreatePayment(ctx, payments.PaymentCreateParams{
		AmountCents: int64(order.TotalCents),
		Currency:    order.Currency,
		SourceID:    sourceID,
		ReferenceID: order.ID.String(),
		Note:        fmt.Sprintf("Maison Aurelle order %s", order.ID),
	})
	if err != nil {
		return "", err
	}
	if !payments.PaymentCompleted(payment) {
		return "", pkgerrors.New(pkgerrors.CodePayment, "payment did not complete")
	}
	id := payment.GetID()
	if id == nil || *id == "" {
		return "", pkgerrors.New(pkgerrors.CodePayment, "gateway returned no payment id")
	}
	return *id, nil
}

func amountMatches(payment *sq.Payment, amountCents int64, currency string) bool {
	money := payment.AmountMoney
	if money == nil || money.Amount == nil {
		return false
	}
	if *money.Amount != amountCents {
		return false
	}
	if money.Currency != nil && !strings.EqualFold(string(*money.Currency), currency) {
		return false
	}
	return true
}
