package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	"github.com/maisonaurelle/boutique-backend/pkg/enums"
	"github.com/maisonaurelle/boutique-backend/pkg/mailer"
)

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func sampleOrder() *models.Order {
	variant := "Gold"
	return &models.Order{
		ID:         uuid.New(),
		Status:     enums.OrderStatusProcessing,
		TotalCents: 2450000,
		Currency:   "USD",
		Email:      "shopper@example.com",
		Lines: []models.OrderLine{{
			ID:             uuid.New(),
			ProductID:      uuid.NewString(),
			ProductName:    "Royal Chrono",
			VariantName:    &variant,
			UnitPriceCents: 2450000,
			Quantity:       1,
		}},
	}
}

func TestSendOrderAlertPersistsNotification(t *testing.T) {
	db := setupNotificationsTestDB(t)
	notifier, err := NewNotifier(NewRepository(db), &fakeSender{}, "https://maisonaurelle.com")
	require.NoError(t, err)
	order := sampleOrder()

	require.NoError(t, notifier.SendOrderAlert(context.Background(), order))

	var stored models.Notification
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, enums.NotificationTypeOrder, stored.Type)
	require.NotNil(t, stored.RelatedID)
	assert.Equal(t, order.ID.String(), *stored.RelatedID)
	assert.Contains(t, stored.Message, "24500.00 USD")
}

func TestSendLowStockAlertReferencesProduct(t *testing.T) {
	db := setupNotificationsTestDB(t)
	notifier, err := NewNotifier(NewRepository(db), nil, "https://maisonaurelle.com")
	require.NoError(t, err)

	productID := uuid.NewString()
	require.NoError(t, notifier.SendLowStockAlert(context.Background(), productID, "Royal Chrono", 3))

	var stored models.Notification
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, enums.NotificationTypeStock, stored.Type)
	require.NotNil(t, stored.RelatedID)
	assert.Equal(t, productID, *stored.RelatedID)
	assert.Contains(t, stored.Message, "3 units")
}

func TestSendCustomerConfirmationIncludesTrackingLink(t *testing.T) {
	db := setupNotificationsTestDB(t)
	sender := &fakeSender{}
	notifier, err := NewNotifier(NewRepository(db), sender, "https://maisonaurelle.com/")
	require.NoError(t, err)
	order := sampleOrder()

	require.NoError(t, notifier.SendCustomerConfirmation(context.Background(), order))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "shopper@example.com", msg.To)
	assert.Contains(t, msg.HTMLBody, "Royal Chrono (Gold)")
	assert.Contains(t, msg.HTMLBody, "https://maisonaurelle.com/track-order?order="+order.ID.String())
	assert.Contains(t, msg.TextBody, "Total: 24500.00 USD")
}

func TestSendCustomerConfirmationWithoutMailer(t *testing.T) {
	db := setupNotificationsTestDB(t)
	notifier, err := NewNotifier(NewRepository(db), nil, "https://maisonaurelle.com")
	require.NoError(t, err)

	err = notifier.SendCustomerConfirmation(context.Background(), sampleOrder())
	require.Error(t, err)
}

func TestSendCustomerConfirmationPropagatesSendFailure(t *testing.T) {
	db := setupNotificationsTestDB(t)
	sender := &fakeSender{err: errors.New("smtp refused")}
	notifier, err := NewNotifier(NewRepository(db), sender, "https://maisonaurelle.com")
	require.NoError(t, err)

	err = notifier.SendCustomerConfirmation(context.Background(), sampleOrder())
	require.Error(t, err)
}
