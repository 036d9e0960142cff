package checkout

import (
	"context"
	"regexp"
	"strings"

	"github.com/maisonaurelle/boutique-backend/internal/cart"
	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
)

var (
	uuidShapeRe    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	trailingAnnoRe = regexp.MustCompile(`\s*\(.*?\)\s*$`)
)

// ResolvedLine is a cart line plus the catalog identity recovered for it at
// checkout time. ResolvedProductID is always populated; when nothing
// resolves it carries the original raw value rather than blocking checkout.
type ResolvedLine struct {
	cart.Line
	ResolvedProductID string
}

// CleanName strips a trailing parenthesized variant annotation from a
// display name, e.g. "Ulania Watch (Gold)" becomes "Ulania Watch".
func CleanName(name string) string {
	return strings.TrimSpace(trailingAnnoRe.ReplaceAllString(name, ""))
}

// StripVariantAnnotation removes only the "(variant)" suffix the storefront
// appends for the selected variant. Unlike CleanName it leaves any other
// parenthesized part of the product's real name intact, so it is the right
// form to persist.
func StripVariantAnnotation(name, variant string) string {
	trimmed := strings.TrimSpace(name)
	if variant == "" {
		return trimmed
	}
	if stripped, ok := strings.CutSuffix(trimmed, "("+variant+")"); ok {
		return strings.TrimSpace(stripped)
	}
	return trimmed
}

// IsUUIDShaped reports whether the value matches the 8-4-4-4-12 hex layout.
func IsUUIDShaped(value string) bool {
	return uuidShapeRe.MatchString(value)
}

type nameLookup interface {
	FindByName(ctx context.Context, name string) (*models.Product, error)
}

type resolveLogger interface {
	WithField(ctx context.Context, key string, value any) context.Context
	Warn(ctx context.Context, msg string)
}

// Resolver recovers canonical catalog ids for cart lines whose own product
// id may be missing, stale, or malformed.
type Resolver struct {
	catalog nameLookup
	logger  resolveLogger
}

// NewResolver builds a resolver over the catalog lookup.
func NewResolver(catalog nameLookup, logg resolveLogger) *Resolver {
	return &Resolver{catalog: catalog, logger: logg}
}

// Resolve computes the catalog identity for one cart line. The steps run in
// order and short-circuit on first success:
//
//  1. accept the line's product id when it is UUID-shaped
//  2. strip the "-{variant}" suffix from the composite id and accept the
//     remainder when it is UUID-shaped
//  3. look the clean display name up in the catalog and accept that id
//  4. fall back to the raw product id, or failing that the composite id
//
// A catalog lookup failure in step 3 is logged and resolution continues to
// the fallback; resolution never returns an error.
func (r *Resolver) Resolve(ctx context.Context, line cart.Line) ResolvedLine {
	resolved := ResolvedLine{Line: line}

	if IsUUIDShaped(line.ProductID) {
		resolved.ResolvedProductID = line.ProductID
		return resolved
	}

	if line.SelectedVariant != "" {
		if stripped, ok := strings.CutSuffix(line.CompositeID, "-"+line.SelectedVariant); ok && IsUUIDShaped(stripped) {
			resolved.ResolvedProductID = stripped
			return resolved
		}
	}

	if clean := CleanName(line.Name); clean != "" {
		product, err := r.catalog.FindByName(ctx, clean)
		if err == nil && product != nil {
			resolved.ResolvedProductID = product.ID.String()
			return resolved
		}
		if err != nil && !isNotFound(err) && r.logger != nil {
			lctx := r.logger.WithField(ctx, "compositeId", line.CompositeID)
			lctx = r.logger.WithField(lctx, "cleanName", clean)
			lctx = r.logger.WithField(lctx, "error", err.Error())
			r.logger.Warn(lctx, "catalog name lookup failed during identity resolution")
		}
	}

	if line.ProductID != "" {
		resolved.ResolvedProductID = line.ProductID
		return resolved
	}
	resolved.ResolvedProductID = line.CompositeID
	return resolved
}

func isNotFound(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeNotFound
}

// ResolveAll resolves every line in order.
func (r *Resolver) ResolveAll(ctx context.Context, lines []cart.Line) []ResolvedLine {
	out := make([]ResolvedLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, r.Resolve(ctx, line))
	}
	return out
}
