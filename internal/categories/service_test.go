package categories

import (
	"context"
	"io"
	"testing"

	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/dbtest"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, Service) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), db.Wrap(conn), logger.New(logger.Options{ServiceName: "categories-test", Output: io.Discard}))
	require.NoError(t, err)
	return conn, svc
}

func TestListEmptyIsNotFound(t *testing.T) {
	_, svc := newTestService(t)

	_, err := svc.List(context.Background())

	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestListOrdersByName(t *testing.T) {
	conn, svc := newTestService(t)
	snacks := dbtest.MustCategory(t, conn, "Snacks")
	dbtest.MustCategory(t, conn, "Drinks")
	dbtest.MustSubcategory(t, conn, snacks.ID, "Pretzels")
	dbtest.MustSubcategory(t, conn, snacks.ID, "Chips")

	out, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Drinks", out[0].Name)
	assert.Empty(t, out[0].Subcategories)
	assert.Equal(t, "Snacks", out[1].Name)
	require.Len(t, out[1].Subcategories, 2)
	assert.Equal(t, "Chips", out[1].Subcategories[0].Name)
	assert.Equal(t, "Pretzels", out[1].Subcategories[1].Name)
}

func TestCreateWithSubcategoriesStartsAtZero(t *testing.T) {
	conn, svc := newTestService(t)

	dto, err := svc.Create(context.Background(), CreateRequest{
		Name: "Snacks", Icon: "cookie", Color: "#ff0", Image: "https://img.test/snacks.png",
		Subcategories: []CreateSubcategoryRequest{{Name: "Chips"}, {Name: "Nuts"}},
	})

	require.NoError(t, err)
	assert.Zero(t, dto.ProductCount)
	require.Len(t, dto.Subcategories, 2)
	for _, sub := range dto.Subcategories {
		assert.Zero(t, sub.ProductCount)
	}
	var subs int64
	require.NoError(t, conn.Model(&models.Subcategory{}).Where("category_id = ?", dto.ID).Count(&subs).Error)
	assert.EqualValues(t, 2, subs)
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	conn, svc := newTestService(t)
	dbtest.MustCategory(t, conn, "Snacks")

	_, err := svc.Create(context.Background(), CreateRequest{Name: "snacks", Icon: "i", Color: "c", Image: "img"})

	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestCreateDuplicateSubcategoryRollsBack(t *testing.T) {
	conn, svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		Name: "Snacks", Icon: "i", Color: "c", Image: "img",
		Subcategories: []CreateSubcategoryRequest{{Name: "Chips"}, {Name: "CHIPS"}},
	})

	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	var categories int64
	require.NoError(t, conn.Model(&models.Category{}).Count(&categories).Error)
	assert.Zero(t, categories)
}
