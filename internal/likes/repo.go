package likes

import (
	"context"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists product likes and the likes_count column they drive.
type Repository struct {
	repo.Base
}

// NewRepository constructs a likes repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// LikesCount reads the stored counter, returning gorm.ErrRecordNotFound for an
// unknown product.
func (r *Repository) LikesCount(ctx context.Context, productID uuid.UUID) (int64, error) {
	var row struct{ LikesCount int64 }
	res := r.DB(ctx).Model(&models.Product{}).Select("likes_count").Where("id = ?", productID).Limit(1).Scan(&row)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return row.LikesCount, nil
}

// Insert adds the like and reports whether a new row was written.
func (r *Repository) Insert(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	res := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&models.ProductLike{UserID: userID, ProductID: productID})
	return res.RowsAffected == 1, res.Error
}

// Remove deletes the like and reports whether a row existed.
func (r *Repository) Remove(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	res := r.DB(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.ProductLike{})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Increment(ctx context.Context, productID uuid.UUID) error {
	return r.DB(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
}

// Decrement lowers the counter by one, clamping at zero. clamped reports that
// the stored value was already zero.
func (r *Repository) Decrement(ctx context.Context, productID uuid.UUID) (clamped bool, err error) {
	res := r.DB(ctx).Model(&models.Product{}).
		Where("id = ? AND likes_count > 0", productID).
		UpdateColumn("likes_count", gorm.Expr("likes_count - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 0, nil
}

// ListByUser returns up to limit likes for userID, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.ProductLike, error) {
	var rows []models.ProductLike
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Scopes(pagination.Keyset(cursor, "")).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

const likeCountExpr = "(SELECT COUNT(*) FROM product_likes WHERE product_likes.product_id = products.id)"

// Reconcile rewrites likes_count from the like rows for every product whose
// counter has drifted and returns how many products changed.
func (r *Repository) Reconcile(ctx context.Context) (int64, error) {
	res := r.DB(ctx).Model(&models.Product{}).
		Where("likes_count <> "+likeCountExpr).
		UpdateColumn("likes_count", gorm.Expr(likeCountExpr))
	return res.RowsAffected, res.Error
}
