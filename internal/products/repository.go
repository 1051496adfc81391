package product

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/internal/taxonomy"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const skuConstraint = "products_sku_key"

var detailColumns = strings.Join([]string{
	"p.id",
	"p.seller_profile_id",
	"p.name",
	"p.description",
	"p.image_url",
	"p.sku",
	"p.price",
	"p.stock",
	"p.likes_count",
	"p.category_id",
	"p.subcategory_id",
	"p.created_at",
	"p.updated_at",
	"c.name AS category_name",
	"s.name AS subcategory_name",
	"s.category_id AS parent_category_id",
	"pc.name AS parent_category_name",
	"sp.shop_name AS shop_name",
}, ", ")

// productRecord is a product row joined with the names of its taxonomy nodes
// and seller shop.
type productRecord struct {
	ID                 uuid.UUID
	SellerProfileID    uuid.UUID
	Name               string
	Description        *string
	ImageURL           *string
	SKU                *string
	Price              decimal.Decimal
	Stock              int
	LikesCount         int64
	CategoryID         *uuid.UUID
	SubcategoryID      *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CategoryName       *string
	SubcategoryName    *string
	ParentCategoryID   *uuid.UUID
	ParentCategoryName *string
	ShopName           *string
}

func (r productRecord) cursor() pagination.Cursor {
	return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
}

// listQuery narrows a product listing. Zero values mean no filter.
type listQuery struct {
	Search          string
	Placement       taxonomy.Placement
	SellerProfileID *uuid.UUID
	Cursor          *pagination.Cursor
	Limit           int
}

// Repository persists products.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Create(product).Error
}

// FindByID loads the bare product row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateColumns writes only the given columns.
func (r *Repository) UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	res := r.DB(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the product and the likes pointing at it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.DB(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.ProductLike{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Details loads joined records for ids, preserving the order of ids.
func (r *Repository) Details(ctx context.Context, ids []uuid.UUID) ([]productRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []productRecord
	if err := r.detailQuery(ctx).Where("p.id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]productRecord, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]productRecord, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

// List returns up to q.Limit records, newest first.
func (r *Repository) List(ctx context.Context, q listQuery) ([]productRecord, error) {
	query := r.detailQuery(ctx)

	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		query = query.Where(
			`(LOWER(p.name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(p.description, '')) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}

	switch {
	case q.Placement.IsZero():
	case q.Placement.IsSubcategory():
		query = query.Where("p.subcategory_id = ?", q.Placement.ID())
	default:
		id := q.Placement.ID()
		query = query.Where("(p.category_id = ? OR s.category_id = ?)", id, id)
	}

	if q.SellerProfileID != nil {
		query = query.Where("p.seller_profile_id = ?", *q.SellerProfileID)
	}

	var rows []productRecord
	err := query.
		Scopes(pagination.Keyset(q.Cursor, "p.")).
		Limit(q.Limit).
		Scan(&rows).Error
	return rows, err
}

// LikedSet reports which of productIDs userID has liked.
func (r *Repository) LikedSet(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool, len(productIDs))
	if len(productIDs) == 0 {
		return liked, nil
	}
	var ids []uuid.UUID
	if err := r.DB(ctx).
		Model(&models.ProductLike{}).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *Repository) detailQuery(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Table("products AS p").
		Select(detailColumns).
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Joins("LEFT JOIN subcategories s ON s.id = p.subcategory_id").
		Joins("LEFT JOIN categories pc ON pc.id = s.category_id").
		Joins("LEFT JOIN seller_profiles sp ON sp.id = p.seller_profile_id")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
