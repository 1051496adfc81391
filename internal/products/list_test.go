package product

import (
	"context"
	"testing"

	"github.com/angelmondragon/bazaar-backend/pkg/db/dbtest"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []ProductDTO) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func TestListProductsSearchIsCaseInsensitive(t *testing.T) {
	f := newServiceFixture(t)
	f.create(t, "Spicy Nachos", "Chips")
	f.create(t, "Lemonade", "Beverages")

	page, err := f.svc.ListProducts(context.Background(), ListInput{Search: "NACHO"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Spicy Nachos"}, names(page.Items))
	assert.Empty(t, page.NextCursor)
}

func TestListProductsSearchEscapesWildcards(t *testing.T) {
	f := newServiceFixture(t)
	f.create(t, "100% juice", "Beverages")
	f.create(t, "1000 chips", "Chips")

	page, err := f.svc.ListProducts(context.Background(), ListInput{Search: "100%"})

	require.NoError(t, err)
	assert.Equal(t, []string{"100% juice"}, names(page.Items))
}

func TestListProductsCategoryFilterIncludesSubcategories(t *testing.T) {
	f := newServiceFixture(t)
	f.create(t, "direct", "Snacks")
	f.create(t, "nested", "Chips")
	f.create(t, "elsewhere", "Beverages")

	page, err := f.svc.ListProducts(context.Background(), ListInput{Category: "snacks"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"direct", "nested"}, names(page.Items))

	page, err = f.svc.ListProducts(context.Background(), ListInput{Category: "Chips"})
	require.NoError(t, err)
	assert.Equal(t, []string{"nested"}, names(page.Items))
}

func TestListProductsUnknownCategoryIsEmpty(t *testing.T) {
	f := newServiceFixture(t)
	f.create(t, "nested", "Chips")

	page, err := f.svc.ListProducts(context.Background(), ListInput{Category: "Unknown"})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestListProductsPaginatesNewestFirst(t *testing.T) {
	f := newServiceFixture(t)
	for _, name := range []string{"one", "two", "three", "four", "five"} {
		f.create(t, name, "Chips")
	}

	var seen []string
	cursor := ""
	for pages := 0; pages < 5; pages++ {
		page, err := f.svc.ListProducts(context.Background(), ListInput{
			Pagination: pagination.Params{Limit: 2, Cursor: cursor},
		})
		require.NoError(t, err)
		seen = append(seen, names(page.Items)...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, []string{"five", "four", "three", "two", "one"}, seen)
}

func TestListProductsRejectsBadCursor(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.ListProducts(context.Background(), ListInput{Pagination: pagination.Params{Cursor: "%%%"}})

	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestListProductsLikedFlag(t *testing.T) {
	f := newServiceFixture(t)
	liked := f.create(t, "liked", "Chips")
	f.create(t, "plain", "Chips")
	buyer := dbtest.MustUser(t, f.db, enums.UserRoleBuyer)
	require.NoError(t, f.db.Create(&models.ProductLike{UserID: buyer.ID, ProductID: liked.ID}).Error)

	anonymous, err := f.svc.ListProducts(context.Background(), ListInput{})
	require.NoError(t, err)
	for _, item := range anonymous.Items {
		assert.Nil(t, item.Liked)
	}

	viewer := buyer.ID
	page, err := f.svc.ListProducts(context.Background(), ListInput{Viewer: &viewer})
	require.NoError(t, err)
	flags := map[string]bool{}
	for _, item := range page.Items {
		require.NotNil(t, item.Liked)
		flags[item.Name] = *item.Liked
	}
	assert.Equal(t, map[string]bool{"liked": true, "plain": false}, flags)

	one, err := f.svc.GetProduct(context.Background(), liked.ID, &viewer)
	require.NoError(t, err)
	assert.True(t, *one.Liked)
}

func TestProductsByIDsKeepsOrderAndSkipsMissing(t *testing.T) {
	f := newServiceFixture(t)
	a := f.create(t, "a", "Chips")
	b := f.create(t, "b", "Chips")

	items, err := f.svc.ProductsByIDs(context.Background(), []uuid.UUID{b.ID, uuid.New(), a.ID}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names(items))
}
