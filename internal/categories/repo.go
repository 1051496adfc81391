package categories

import (
	"context"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"gorm.io/gorm"
)

const (
	nameConstraint    = "categories_name_lower_key"
	subNameConstraint = "subcategories_category_name_lower_key"
)

// Repository persists categories and their subcategories.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// ListWithSubcategories returns every category with its children, both sorted
// by name.
func (r *Repository) ListWithSubcategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.DB(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC").Order("id ASC")
		}).
		Order("name ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// Create inserts the category and the subcategories attached to it.
func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	subs := category.Subcategories
	category.Subcategories = nil
	if err := r.DB(ctx).Create(category).Error; err != nil {
		return err
	}
	for i := range subs {
		subs[i].CategoryID = category.ID
		if err := r.DB(ctx).Create(&subs[i]).Error; err != nil {
			return err
		}
	}
	category.Subcategories = subs
	return nil
}
