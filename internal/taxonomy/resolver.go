package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type nodeRow struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
}

// Resolve finds the taxonomy node matching name, case-insensitively. The
// category namespace is searched first, so a category shadows a subcategory
// with the same name.
func Resolve(ctx context.Context, tx *gorm.DB, name string) (Placement, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Placement{}, ErrTaxonomyNotFound
	}

	var category nodeRow
	err := tx.WithContext(ctx).
		Table("categories").
		Select("id").
		Where("LOWER(name) = ?", needle).
		Order("created_at ASC, id ASC").
		Take(&category).Error
	switch {
	case err == nil:
		return InCategory(category.ID), nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Placement{}, fmt.Errorf("resolve category %q: %w", name, err)
	}

	var sub nodeRow
	err = tx.WithContext(ctx).
		Table("subcategories").
		Select("id, category_id").
		Where("LOWER(name) = ?", needle).
		Order("created_at ASC, id ASC").
		Take(&sub).Error
	switch {
	case err == nil:
		return InSubcategory(sub.ID, sub.CategoryID), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Placement{}, ErrTaxonomyNotFound
	default:
		return Placement{}, fmt.Errorf("resolve subcategory %q: %w", name, err)
	}
}

// PlacementOf rebuilds a placement from a product's stored columns, looking
// up the parent of a subcategory. A product with neither column set is
// returned as the zero placement. A subcategory that no longer exists is
// reported as ErrNodeMissing.
func PlacementOf(ctx context.Context, tx *gorm.DB, categoryID, subcategoryID *uuid.UUID) (Placement, error) {
	switch {
	case categoryID != nil && subcategoryID != nil:
		return Placement{}, ErrAmbiguousPlacement
	case categoryID != nil:
		return InCategory(*categoryID), nil
	case subcategoryID == nil:
		return Placement{}, nil
	}

	var sub nodeRow
	err := tx.WithContext(ctx).
		Table("subcategories").
		Select("id, category_id").
		Where("id = ?", *subcategoryID).
		Take(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Placement{}, fmt.Errorf("subcategory %s: %w", *subcategoryID, ErrNodeMissing)
	}
	if err != nil {
		return Placement{}, fmt.Errorf("load subcategory %s: %w", *subcategoryID, err)
	}
	return InSubcategory(sub.ID, sub.CategoryID), nil
}
