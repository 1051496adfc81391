package product

import (
	"context"

	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListSellerProducts pages through the caller's own listings.
func (s *service) ListSellerProducts(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[ProductDTO], error) {
	seller, err := s.sellerProfile(ctx, userID)
	if err != nil {
		return pagination.Page[ProductDTO]{}, err
	}
	return s.list(ctx, listQuery{SellerProfileID: &seller.ID}, params, nil)
}

// SetStock overwrites the stock level. Placement and counters are untouched.
func (s *service) SetStock(ctx context.Context, userID, productID uuid.UUID, stock int) (*ProductDTO, error) {
	if stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}
	seller, err := s.sellerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := s.ownedProduct(ctx, txRepo, seller.ID, productID); err != nil {
			return err
		}
		return txRepo.UpdateColumns(ctx, productID, map[string]any{"stock": stock})
	})
	if err != nil {
		return nil, mapWriteError(err, "update stock")
	}
	return s.GetProduct(ctx, productID, nil)
}
