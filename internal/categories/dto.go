package categories

import (
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
	"github.com/google/uuid"
)

// CreateSubcategoryRequest names one child of a new category.
type CreateSubcategoryRequest struct {
	Name  string  `json:"name" validate:"required,notblank,max=120"`
	Image *string `json:"image,omitempty" validate:"omitempty,url"`

	types.ServerCounters
}

// CreateRequest is the admin payload for a new category. Counters sent by
// the client are dropped and always start at zero.
type CreateRequest struct {
	Name          string                     `json:"name" validate:"required,notblank,max=120"`
	Icon          string                     `json:"icon" validate:"required"`
	Color         string                     `json:"color" validate:"required"`
	Image         string                     `json:"image" validate:"required"`
	Subcategories []CreateSubcategoryRequest `json:"subcategories" validate:"omitempty,dive"`

	types.ServerCounters
}

type SubcategoryDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Image        *string   `json:"image"`
	ProductCount int64     `json:"product_count"`
}

type CategoryDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Icon          string           `json:"icon"`
	Color         string           `json:"color"`
	Image         string           `json:"image"`
	ProductCount  int64            `json:"product_count"`
	Subcategories []SubcategoryDTO `json:"subcategories"`
}

func fromModel(c models.Category) CategoryDTO {
	dto := CategoryDTO{
		ID:            c.ID,
		Name:          c.Name,
		Icon:          c.Icon,
		Color:         c.Color,
		Image:         c.Image,
		ProductCount:  c.ProductCount,
		Subcategories: make([]SubcategoryDTO, 0, len(c.Subcategories)),
	}
	for _, s := range c.Subcategories {
		dto.Subcategories = append(dto.Subcategories, SubcategoryDTO{
			ID:           s.ID,
			Name:         s.Name,
			Image:        s.Image,
			ProductCount: s.ProductCount,
		})
	}
	return dto
}
