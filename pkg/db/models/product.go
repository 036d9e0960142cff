package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is the canonical catalog listing. Quantity is the on-hand stock
// count the checkout pipeline decrements after payment.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string         `gorm:"column:name;not null;index"`
	Description *string        `gorm:"column:description"`
	PriceCents  int            `gorm:"column:price_cents;not null"`
	Quantity    int            `gorm:"column:quantity;not null;default:0"`
	Variants    pq.StringArray `gorm:"column:variants;type:text[]"`
	ImageKey    *string        `gorm:"column:image_key"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
