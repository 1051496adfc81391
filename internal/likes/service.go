package likes

import (
	"context"
	"fmt"

	product "github.com/angelmondragon/bazaar-backend/internal/products"
	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productLoader interface {
	ProductsByIDs(ctx context.Context, ids []uuid.UUID, viewer *uuid.UUID) ([]product.ProductDTO, error)
}

// ServiceParams groups dependencies for the likes service.
type ServiceParams struct {
	Repo     *Repository
	DB       *db.Client
	Products productLoader
	Logger   *logger.Logger
}

// Service toggles product likes.
type Service interface {
	Like(ctx context.Context, userID, productID uuid.UUID) (State, error)
	Unlike(ctx context.Context, userID, productID uuid.UUID) (State, error)
	ListLiked(ctx context.Context, userID uuid.UUID, params pagination.Params) (LikedPage, error)
}

type service struct {
	repo     *Repository
	db       *db.Client
	products productLoader
	logg     *logger.Logger
}

// NewService builds a likes service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("likes repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: params.Repo, db: params.DB, products: params.Products, logg: params.Logger}, nil
}

// Like records the like once. Repeating it returns the current state.
func (s *service) Like(ctx context.Context, userID, productID uuid.UUID) (State, error) {
	return s.toggle(ctx, productID, func(r *Repository) (bool, error) {
		inserted, err := r.Insert(ctx, userID, productID)
		if err != nil || !inserted {
			return false, err
		}
		return false, r.Increment(ctx, productID)
	}, true)
}

// Unlike removes the like if present. The counter never drops below zero.
func (s *service) Unlike(ctx context.Context, userID, productID uuid.UUID) (State, error) {
	return s.toggle(ctx, productID, func(r *Repository) (bool, error) {
		removed, err := r.Remove(ctx, userID, productID)
		if err != nil || !removed {
			return false, err
		}
		return r.Decrement(ctx, productID)
	}, false)
}

func (s *service) toggle(ctx context.Context, productID uuid.UUID, mutate func(*Repository) (bool, error), liked bool) (State, error) {
	if productID == uuid.Nil {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	state := State{Liked: liked}
	var clamped bool
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.LikesCount(ctx, productID); err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}
		var err error
		if clamped, err = mutate(txRepo); err != nil {
			return err
		}
		state.LikesCount, err = txRepo.LikesCount(ctx, productID)
		return err
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return State{}, typed
		}
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update like")
	}

	if clamped && s.logg != nil {
		s.logg.Warn(s.logg.WithProductID(ctx, productID.String()), "likes.counter_underflow")
	}
	return state, nil
}

// ListLiked pages through the caller's likes, newest first.
func (s *service) ListLiked(ctx context.Context, userID uuid.UUID, params pagination.Params) (LikedPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return LikedPage{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByUser(ctx, userID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return LikedPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list likes")
	}
	page := pagination.Trim(rows, params.Limit, likeCursor)

	ids := make([]uuid.UUID, len(page.Items))
	for i, row := range page.Items {
		ids[i] = row.ProductID
	}
	items, err := s.products.ProductsByIDs(ctx, ids, &userID)
	if err != nil {
		return LikedPage{}, err
	}
	if items == nil {
		items = []product.ProductDTO{}
	}
	return LikedPage{Items: items, NextCursor: page.NextCursor}, nil
}

func likeCursor(row models.ProductLike) pagination.Cursor {
	return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
}
