package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
)

// MirrorRepository persists the server-side copy of shopper carts. The
// mirror is replication only; reads serve cart recovery on a fresh session.
type MirrorRepository struct {
	db *gorm.DB
}

// NewMirrorRepository binds the repository to the provided DB handle.
func NewMirrorRepository(db *gorm.DB) *MirrorRepository {
	return &MirrorRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *MirrorRepository) WithTx(tx *gorm.DB) *MirrorRepository {
	if tx == nil {
		return r
	}
	return &MirrorRepository{db: tx}
}

// UpsertLine inserts or overwrites the quantity for (owner, product, variant).
func (r *MirrorRepository) UpsertLine(ctx context.Context, ownerKey, productID, variant string, quantity int) error {
	line := models.CartLine{
		ID:        uuid.New(),
		OwnerKey:  ownerKey,
		ProductID: productID,
		Variant:   variant,
		Quantity:  quantity,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_key"}, {Name: "product_id"}, {Name: "variant"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(&line).Error
}

// DeleteLine removes the (owner, product, variant) row if present.
func (r *MirrorRepository) DeleteLine(ctx context.Context, ownerKey, productID, variant string) error {
	return r.db.WithContext(ctx).
		Where("owner_key = ? AND product_id = ? AND variant = ?", ownerKey, productID, variant).
		Delete(&models.CartLine{}).Error
}

// DeleteAllLines clears every mirrored row for the owner.
func (r *MirrorRepository) DeleteAllLines(ctx context.Context, ownerKey string) error {
	return r.db.WithContext(ctx).
		Where("owner_key = ?", ownerKey).
		Delete(&models.CartLine{}).Error
}

// ListLines returns the owner's mirrored rows.
func (r *MirrorRepository) ListLines(ctx context.Context, ownerKey string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("owner_key = ?", ownerKey).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
