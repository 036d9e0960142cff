package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is the server-side mirror of one in-memory cart line. The mirror
// is best-effort replication; the in-memory cart stays authoritative.
// ProductID is text because cart producers may carry stale or malformed ids.
type CartLine struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerKey  string    `gorm:"column:owner_key;not null;uniqueIndex:idx_cart_owner_product_variant"`
	ProductID string    `gorm:"column:product_id;not null;uniqueIndex:idx_cart_owner_product_variant"`
	Variant   string    `gorm:"column:variant;not null;default:'';uniqueIndex:idx_cart_owner_product_variant"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
