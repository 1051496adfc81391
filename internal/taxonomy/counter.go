package taxonomy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecomputeCategory rederives a category's total as its direct product count
// plus the sum of its subcategory counters, persists it, and returns it.
// Subcategory counters are read as stored and never recomputed here.
func RecomputeCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (int64, error) {
	db := tx.WithContext(ctx)

	var subSum int64
	if err := db.Raw(
		`SELECT COALESCE(SUM(product_count), 0) FROM subcategories WHERE category_id = ?`, categoryID,
	).Scan(&subSum).Error; err != nil {
		return 0, fmt.Errorf("sum subcategories of %s: %w", categoryID, err)
	}

	var direct int64
	if err := db.Raw(
		`SELECT COUNT(*) FROM products WHERE category_id = ?`, categoryID,
	).Scan(&direct).Error; err != nil {
		return 0, fmt.Errorf("count direct products of %s: %w", categoryID, err)
	}

	total := subSum + direct
	res := db.Exec(
		`UPDATE categories SET product_count = ?, updated_at = ? WHERE id = ?`, total, time.Now().UTC(), categoryID,
	)
	if res.Error != nil {
		return 0, fmt.Errorf("store count for category %s: %w", categoryID, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("category %s: %w", categoryID, ErrNodeMissing)
	}
	return total, nil
}

// IncrementSubcategory adds one to a subcategory counter.
func IncrementSubcategory(ctx context.Context, tx *gorm.DB, subcategoryID uuid.UUID) error {
	res := tx.WithContext(ctx).Exec(
		`UPDATE subcategories SET product_count = product_count + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), subcategoryID,
	)
	if res.Error != nil {
		return fmt.Errorf("increment subcategory %s: %w", subcategoryID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("subcategory %s: %w", subcategoryID, ErrNodeMissing)
	}
	return nil
}

// DecrementSubcategory subtracts one from a subcategory counter, clamping at
// zero. clamped is true when the stored value was already zero (or negative
// through an out-of-band write) so the decrement had nothing to remove.
func DecrementSubcategory(ctx context.Context, tx *gorm.DB, subcategoryID uuid.UUID) (clamped bool, err error) {
	db := tx.WithContext(ctx)

	var current int64
	err = db.Raw(`SELECT product_count FROM subcategories WHERE id = ?`, subcategoryID).Row().Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("subcategory %s: %w", subcategoryID, ErrNodeMissing)
	}
	if err != nil {
		return false, fmt.Errorf("read subcategory %s: %w", subcategoryID, err)
	}

	res := db.Exec(
		`UPDATE subcategories
		 SET product_count = CASE WHEN product_count > 0 THEN product_count - 1 ELSE 0 END,
		     updated_at = ?
		 WHERE id = ?`,
		time.Now().UTC(), subcategoryID,
	)
	if res.Error != nil {
		return false, fmt.Errorf("decrement subcategory %s: %w", subcategoryID, res.Error)
	}
	return current <= 0, nil
}

// RecountAll rederives every subcategory counter from live product rows and
// then every category total, returning how many nodes changed. It heals drift
// left by lost increments under weak isolation.
func RecountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := tx.WithContext(ctx)
	now := time.Now().UTC()

	subs := db.Exec(`
		UPDATE subcategories
		SET product_count = (SELECT COUNT(*) FROM products p WHERE p.subcategory_id = subcategories.id),
		    updated_at = ?
		WHERE product_count <> (SELECT COUNT(*) FROM products p WHERE p.subcategory_id = subcategories.id)`, now)
	if subs.Error != nil {
		return 0, fmt.Errorf("recount subcategories: %w", subs.Error)
	}

	cats := db.Exec(`
		UPDATE categories
		SET product_count = (SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id)
		                  + (SELECT COALESCE(SUM(s.product_count), 0) FROM subcategories s WHERE s.category_id = categories.id),
		    updated_at = ?
		WHERE product_count <> (SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id)
		                     + (SELECT COALESCE(SUM(s.product_count), 0) FROM subcategories s WHERE s.category_id = categories.id)`, now)
	if cats.Error != nil {
		return 0, fmt.Errorf("recount categories: %w", cats.Error)
	}

	return subs.RowsAffected + cats.RowsAffected, nil
}
