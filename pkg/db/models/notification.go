package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/maisonaurelle/boutique-backend/pkg/enums"
)

// Notification stores operator-facing alerts (new orders, low stock).
// RelatedID is text: stock alerts reference a product id, order alerts an
// order id.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type      enums.NotificationType `gorm:"type:text;not null"`
	Title     string                 `gorm:"type:text;not null"`
	Message   string                 `gorm:"type:text;not null"`
	RelatedID *string                `gorm:"type:text"`
	ReadAt    *time.Time             `gorm:"type:timestamptz"`
	CreatedAt time.Time              `gorm:"type:timestamptz;default:now()"`
}
