package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/internal/taxonomy"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes catalog and seller product operations.
type Service interface {
	CreateProduct(ctx context.Context, userID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, userID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID, viewer *uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListInput) (pagination.Page[ProductDTO], error)
	ListSellerProducts(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[ProductDTO], error)
	SetStock(ctx context.Context, userID, productID uuid.UUID, stock int) (*ProductDTO, error)
	ProductsByIDs(ctx context.Context, ids []uuid.UUID, viewer *uuid.UUID) ([]ProductDTO, error)
}

type sellerLookup interface {
	FindSellerProfile(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
}

// ServiceParams groups dependencies for the product service.
type ServiceParams struct {
	Repo    *Repository
	DB      *db.Client
	Engine  *taxonomy.Engine
	Sellers sellerLookup
	Logger  *logger.Logger
}

type service struct {
	repo    *Repository
	db      *db.Client
	engine  *taxonomy.Engine
	sellers sellerLookup
	logg    *logger.Logger
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("taxonomy engine required")
	}
	if params.Sellers == nil {
		return nil, fmt.Errorf("seller lookup required")
	}
	return &service{
		repo:    params.Repo,
		db:      params.DB,
		engine:  params.Engine,
		sellers: params.Sellers,
		logg:    params.Logger,
	}, nil
}

// CreateProduct inserts the product and counts it under its category or
// subcategory in the same transaction.
func (s *service) CreateProduct(ctx context.Context, userID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}

	seller, err := s.sellerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	placement, err := s.resolve(ctx, input.CategoryName)
	if err != nil {
		return nil, err
	}

	categoryID, subcategoryID := placement.Columns()
	product := &models.Product{
		SellerProfileID: seller.ID,
		Name:            name,
		Description:     input.Description,
		ImageURL:        input.ImageURL,
		SKU:             normalizeSKU(input.SKU),
		Price:           input.Price,
		Stock:           input.Stock,
		CategoryID:      categoryID,
		SubcategoryID:   subcategoryID,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		_, err := s.engine.Created(ctx, tx, placement)
		return err
	})
	if err != nil {
		return nil, mapWriteError(err, "create product")
	}

	s.info(ctx, product.ID, "product.created", placement)
	return s.GetProduct(ctx, product.ID, nil)
}

// UpdateProduct applies the provided fields. A new category name moves the
// product and rebalances the counters of both the old and the new node.
func (s *service) UpdateProduct(ctx context.Context, userID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	columns, err := updateColumns(input)
	if err != nil {
		return nil, err
	}

	seller, err := s.sellerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var next taxonomy.Placement
	if input.CategoryName != nil {
		if next, err = s.resolve(ctx, *input.CategoryName); err != nil {
			return nil, err
		}
	}

	var old taxonomy.Placement
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := s.ownedProduct(ctx, txRepo, seller.ID, productID)
		if err != nil {
			return err
		}
		if old, err = s.placementOf(ctx, tx, current); err != nil {
			return err
		}

		moving := !next.IsZero() && !next.SameNode(old)
		if moving {
			categoryID, subcategoryID := next.Columns()
			columns["category_id"] = categoryID
			columns["subcategory_id"] = subcategoryID
		}
		if err := txRepo.UpdateColumns(ctx, productID, columns); err != nil {
			return err
		}
		if !moving {
			return nil
		}
		_, err = s.engine.Moved(ctx, tx, old, next)
		return err
	})
	if err != nil {
		return nil, mapWriteError(err, "update product")
	}

	if !next.IsZero() && !next.SameNode(old) {
		ctx = s.withField(ctx, "from", old.String())
		s.info(ctx, productID, "product.moved", next)
	}
	return s.GetProduct(ctx, productID, nil)
}

// DeleteProduct removes the product, its likes, and its share of the counters.
func (s *service) DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error {
	seller, err := s.sellerProfile(ctx, userID)
	if err != nil {
		return err
	}

	var placement taxonomy.Placement
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := s.ownedProduct(ctx, txRepo, seller.ID, productID)
		if err != nil {
			return err
		}
		if placement, err = s.placementOf(ctx, tx, current); err != nil {
			return err
		}
		if err := txRepo.Delete(ctx, productID); err != nil {
			return err
		}
		_, err = s.engine.Deleted(ctx, tx, placement)
		return err
	})
	if err != nil {
		return mapWriteError(err, "delete product")
	}

	s.info(ctx, productID, "product.deleted", placement)
	return nil
}

// GetProduct loads one product. viewer, when set, fills the liked flag.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID, viewer *uuid.UUID) (*ProductDTO, error) {
	items, err := s.ProductsByIDs(ctx, []uuid.UUID{productID}, viewer)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &items[0], nil
}

// ProductsByIDs hydrates products in the order of ids, skipping missing rows.
func (s *service) ProductsByIDs(ctx context.Context, ids []uuid.UUID, viewer *uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.Details(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	return s.toDTOs(ctx, rows, viewer)
}

func (s *service) resolve(ctx context.Context, name string) (taxonomy.Placement, error) {
	if strings.TrimSpace(name) == "" {
		return taxonomy.Placement{}, pkgerrors.New(pkgerrors.CodeValidation, "category_name is required")
	}
	placement, err := taxonomy.Resolve(ctx, s.db.DB(), name)
	if err != nil {
		if errors.Is(err, taxonomy.ErrTaxonomyNotFound) {
			return taxonomy.Placement{}, taxonomy.ErrTaxonomyNotFound
		}
		return taxonomy.Placement{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve category")
	}
	return placement, nil
}

func (s *service) sellerProfile(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	seller, err := s.sellers.FindSellerProfile(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller profile required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	return seller, nil
}

func (s *service) ownedProduct(ctx context.Context, r *Repository, sellerID, productID uuid.UUID) (*models.Product, error) {
	product, err := r.FindByID(ctx, productID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	if product.SellerProfileID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to seller")
	}
	return product, nil
}

// placementOf reads the stored placement. A product whose subcategory has
// vanished is treated as unplaced so the write can still proceed.
func (s *service) placementOf(ctx context.Context, tx *gorm.DB, product *models.Product) (taxonomy.Placement, error) {
	placement, err := taxonomy.PlacementOf(ctx, tx, product.CategoryID, product.SubcategoryID)
	if errors.Is(err, taxonomy.ErrNodeMissing) {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithProductID(ctx, product.ID.String()), "product.placement_missing")
		}
		return taxonomy.Placement{}, nil
	}
	return placement, err
}

func (s *service) info(ctx context.Context, productID uuid.UUID, msg string, placement taxonomy.Placement) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithProductID(ctx, productID.String())
	s.logg.Info(s.logg.WithField(ctx, "placement", placement.String()), msg)
}

func (s *service) withField(ctx context.Context, key string, value any) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithField(ctx, key, value)
}

func updateColumns(input UpdateProductInput) (map[string]any, error) {
	columns := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		columns["name"] = name
	}
	if input.Description != nil {
		columns["description"] = *input.Description
	}
	if input.ImageURL != nil {
		columns["image_url"] = *input.ImageURL
	}
	if input.SKU != nil {
		columns["sku"] = normalizeSKU(input.SKU)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
		}
		columns["price"] = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
		}
		columns["stock"] = *input.Stock
	}
	return columns, nil
}

// normalizeSKU trims the value and maps blank to NULL so the unique index
// only applies to real SKUs.
func normalizeSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*sku)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapWriteError(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if db.IsUniqueViolation(err, skuConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
