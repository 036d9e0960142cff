package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLine snapshots one purchased product. ProductID is text rather than
// a uuid foreign key: it stores the resolved catalog identity, which falls
// back to the raw cart value when resolution fails, so it is not guaranteed
// to reference a products row.
type OrderLine struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      string    `gorm:"column:product_id;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	VariantName    *string   `gorm:"column:variant_name"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
