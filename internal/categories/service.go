package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"gorm.io/gorm"
)

type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Create(ctx context.Context, req CreateRequest) (*CategoryDTO, error)
}

type service struct {
	repo *Repository
	db   *db.Client
	logg *logger.Logger
}

func NewService(repo *Repository, client *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil || client == nil {
		return nil, fmt.Errorf("categories repository and db client required")
	}
	return &service{repo: repo, db: client, logg: logg}, nil
}

// List returns the full taxonomy. An empty taxonomy is reported as not found.
func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListWithSubcategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no categories found")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*CategoryDTO, error) {
	category := models.Category{
		Name:  strings.TrimSpace(req.Name),
		Icon:  strings.TrimSpace(req.Icon),
		Color: strings.TrimSpace(req.Color),
		Image: strings.TrimSpace(req.Image),
	}
	if category.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	for _, sub := range req.Subcategories {
		name := strings.TrimSpace(sub.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "subcategory name is required")
		}
		category.Subcategories = append(category.Subcategories, models.Subcategory{Name: name, Image: sub.Image})
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, &category)
	})
	switch {
	case err == nil:
	case db.IsUniqueViolation(err, nameConstraint):
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
	case db.IsUniqueViolation(err, subNameConstraint):
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "duplicate subcategory name")
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "category", category.Name), "category.created")
	}
	dto := fromModel(category)
	return &dto, nil
}
