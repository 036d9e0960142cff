package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/maisonaurelle/boutique-backend/pkg/enums"
	"github.com/maisonaurelle/boutique-backend/pkg/types"
)

// Order is the order header. Created as pending; the payment success
// callback moves it to processing and records the gateway reference.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalCents       int               `gorm:"column:total_cents;not null"`
	Currency         string            `gorm:"column:currency;not null;default:'USD'"`
	Email            string            `gorm:"column:email;not null;index"`
	ShippingAddress  *types.Address    `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentReference *string           `gorm:"column:payment_reference"`
	UserID           *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	Lines            []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
