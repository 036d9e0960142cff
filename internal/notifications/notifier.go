package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	"github.com/maisonaurelle/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/mailer"
	"github.com/maisonaurelle/boutique-backend/pkg/money"
)

// Notifier raises operator alerts and sends customer email. Callers in the
// checkout pipeline treat every method as best-effort and swallow failures.
type Notifier struct {
	repo    Repository
	mail    mailer.Sender
	baseURL string
}

// NewNotifier wires the notifier. mail may be nil when the deployment runs
// without SMTP; customer email turns into a no-op error the caller logs.
func NewNotifier(repo Repository, mail mailer.Sender, baseURL string) (*Notifier, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &Notifier{
		repo:    repo,
		mail:    mail,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}, nil
}

// SendOrderAlert records an operator notification summarizing a new order.
func (n *Notifier) SendOrderAlert(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	related := order.ID.String()
	return n.repo.Create(ctx, &models.Notification{
		ID:        uuid.New(),
		Type:      enums.NotificationTypeOrder,
		Title:     "New order received",
		Message:   fmt.Sprintf("Order %s for %s placed by %s", order.ID, money.Format(int64(order.TotalCents), order.Currency), order.Email),
		RelatedID: &related,
	})
}

// SendLowStockAlert records an operator notification for a product whose
// remaining stock fell to or below the configured threshold.
func (n *Notifier) SendLowStockAlert(ctx context.Context, productRef, productName string, remaining int) error {
	ref := strings.TrimSpace(productRef)
	if ref == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product reference required")
	}
	return n.repo.Create(ctx, &models.Notification{
		ID:        uuid.New(),
		Type:      enums.NotificationTypeStock,
		Title:     "Low stock",
		Message:   fmt.Sprintf("%s is down to %d units", productName, remaining),
		RelatedID: &ref,
	})
}

// SendCustomerConfirmation emails the shopper their order summary with a
// tracking link.
func (n *Notifier) SendCustomerConfirmation(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if n.mail == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "mailer not configured")
	}
	return n.mail.Send(ctx, mailer.Message{
		To:       order.Email,
		Subject:  "Your Maison Aurelle order confirmation",
		HTMLBody: n.confirmationHTML(order),
		TextBody: n.confirmationText(order),
	})
}

// TrackingLink builds the public order tracking URL for the order.
func (n *Notifier) TrackingLink(orderID uuid.UUID) string {
	return fmt.Sprintf("%s/track-order?order=%s", n.baseURL, orderID)
}

func (n *Notifier) confirmationHTML(order *models.Order) string {
	var rows strings.Builder
	for _, line := range order.Lines {
		name := line.ProductName
		if line.VariantName != nil && *line.VariantName != "" {
			name = fmt.Sprintf("%s (%s)", name, *line.VariantName)
		}
		rows.WriteString(fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
			</tr>`,
			name, line.Quantity, money.Format(int64(line.UnitPriceCents), order.Currency)))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<body style="font-family: Georgia, serif; background-color: #faf8f5; padding: 24px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 24px;">
		<h2 style="color: #1a1a1a;">Thank you for your order</h2>
		<p>Your order has been confirmed.</p>
		<table style="width: 100%%; border-collapse: collapse; margin: 16px 0;">
			<thead>
				<tr style="background-color: #f0ede8;">
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Item</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Qty</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Price</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
			<tfoot>
				<tr>
					<td colspan="2" style="padding: 8px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 8px; font-weight: bold;">%s</td>
				</tr>
			</tfoot>
		</table>
		<p><a href="%s">Track your order</a></p>
		<p style="margin-top: 24px; color: #555;">Maison Aurelle</p>
	</div>
</body>
</html>`,
		rows.String(),
		money.Format(int64(order.TotalCents), order.Currency),
		n.TrackingLink(order.ID))
}

func (n *Notifier) confirmationText(order *models.Order) string {
	var b strings.Builder
	b.WriteString("Thank you for your order.\n\n")
	for _, line := range order.Lines {
		name := line.ProductName
		if line.VariantName != nil && *line.VariantName != "" {
			name = fmt.Sprintf("%s (%s)", name, *line.VariantName)
		}
		b.WriteString(fmt.Sprintf("%d x %s at %s\n", line.Quantity, name, money.Format(int64(line.UnitPriceCents), order.Currency)))
	}
	b.WriteString(fmt.Sprintf("\nTotal: %s\n", money.Format(int64(order.TotalCents), order.Currency)))
	b.WriteString(fmt.Sprintf("Track your order: %s\n", n.TrackingLink(order.ID)))
	return b.String()
}
