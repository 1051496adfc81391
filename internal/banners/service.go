// Package banners manages storefront event banners.
package banners

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateRequest is the admin payload for a banner.
type CreateRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	Images      []string `json:"images" validate:"required,min=1,dive,required,url"`
}

type BannerDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, banner *models.Banner) error {
	return r.DB(ctx).Create(banner).Error
}

// List returns banners newest first.
func (r *Repository) List(ctx context.Context) ([]models.Banner, error) {
	var rows []models.Banner
	err := r.DB(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*BannerDTO, error)
	List(ctx context.Context) ([]BannerDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("banner repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*BannerDTO, error) {
	banner := &models.Banner{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
	}
	for _, img := range req.Images {
		if img = strings.TrimSpace(img); img != "" {
			banner.Images = append(banner.Images, img)
		}
	}
	if banner.Title == "" || banner.Description == "" || len(banner.Images) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title, description and images are required")
	}
	if err := s.repo.Create(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create banner")
	}
	dto := toDTO(*banner)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list banners")
	}
	out := make([]BannerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func toDTO(b models.Banner) BannerDTO {
	images := []string(b.Images)
	if images == nil {
		images = []string{}
	}
	return BannerDTO{ID: b.ID, Title: b.Title, Description: b.Description, Images: images, CreatedAt: b.CreatedAt}
}
