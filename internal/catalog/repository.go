package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/pagination"
)

// ProductList is one page of storefront products plus the cursor for the
// next page, empty on the last page.
type ProductList struct {
	Products   []models.Product
	NextCursor string
}

// ProductRepository defines the catalog reads and stock writes used by the
// storefront and the checkout pipeline.
type ProductRepository interface {
	FindByID(context.Context, uuid.UUID) (*models.Product, error)
	FindByName(context.Context, string) (*models.Product, error)
	ListActive(context.Context) ([]models.Product, error)
	ListActivePage(context.Context, pagination.Params) (*ProductList, error)
	CreateProduct(context.Context, *models.Product) (*models.Product, error)
	UpdateProduct(context.Context, *models.Product) (*models.Product, error)
	DecrementStock(context.Context, uuid.UUID, int) (bool, error)
	DecrementStockByName(context.Context, string, int) (bool, error)
	StockLevel(context.Context, string) (int, bool, error)
}

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a product by its catalog id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

// FindByName loads a product by its exact display name. When several rows
// share a name the oldest listing wins.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Product, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("name = ?", trimmed).
		Order("created_at ASC").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

// ListActive returns the storefront catalog ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListActivePage returns one storefront page ordered newest first, with a
// keyset cursor for the next page.
func (r *Repository) ListActivePage(ctx context.Context, params pagination.Params) (*ProductList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	err = query.
		Order("created_at DESC").Order("id DESC").
		Limit(limitWithBuffer).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(products) > normalizedLimit {
		products = products[:normalizedLimit]
		last := products[len(products)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return &ProductList{Products: products, NextCursor: nextCursor}, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DecrementStock subtracts quantity from the product matched by id. The
// update is a single atomic statement; it reports false when no row matched.
// Stock may go negative, oversell is reconciled by the low stock alerts.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementStockByName subtracts quantity from the product matched by exact
// name. Used as the fallback when the id match misses.
func (r *Repository) DecrementStockByName(ctx context.Context, name string, quantity int) (bool, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if quantity <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("name = ?", trimmed).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// StockLevel fetches the current quantity for the product referenced by id
// or, failing that, by name. The second return reports whether a row matched.
func (r *Repository) StockLevel(ctx context.Context, ref string) (int, bool, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return 0, false, pkgerrors.New(pkgerrors.CodeValidation, "product reference is required")
	}

	var product models.Product
	if id, err := uuid.Parse(trimmed); err == nil {
		err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
		if err == nil {
			return product.Quantity, true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, err
		}
	}

	err := r.db.WithContext(ctx).
		Where("name = ?", trimmed).
		Order("created_at ASC").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return product.Quantity, true, nil
}
