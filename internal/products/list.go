package product

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/bazaar-backend/internal/taxonomy"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
)

// ListInput filters the public catalog. Viewer is set when the caller is
// authenticated and drives the liked flag.
type ListInput struct {
	Search     string
	Category   string
	Viewer     *uuid.UUID
	Pagination pagination.Params
}

// ListProducts searches the catalog. An unknown category filter matches
// nothing rather than failing the request.
func (s *service) ListProducts(ctx context.Context, input ListInput) (pagination.Page[ProductDTO], error) {
	q := listQuery{Search: input.Search}

	if name := strings.TrimSpace(input.Category); name != "" {
		placement, err := taxonomy.Resolve(ctx, s.db.DB(), name)
		switch {
		case errors.Is(err, taxonomy.ErrTaxonomyNotFound):
			return pagination.Page[ProductDTO]{Items: []ProductDTO{}}, nil
		case err != nil:
			return pagination.Page[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve category filter")
		}
		q.Placement = placement
	}

	return s.list(ctx, q, input.Pagination, input.Viewer)
}

func (s *service) list(ctx context.Context, q listQuery, params pagination.Params, viewer *uuid.UUID) (pagination.Page[ProductDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	q.Cursor = cursor
	q.Limit = pagination.LimitWithBuffer(params.Limit)

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return pagination.Page[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	page := pagination.Trim(rows, params.Limit, productRecord.cursor)

	items, err := s.toDTOs(ctx, page.Items, viewer)
	if err != nil {
		return pagination.Page[ProductDTO]{}, err
	}
	return pagination.Page[ProductDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

func (s *service) toDTOs(ctx context.Context, rows []productRecord, viewer *uuid.UUID) ([]ProductDTO, error) {
	items := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, newProductDTO(row))
	}
	if viewer == nil || len(items) == 0 {
		return items, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	liked, err := s.repo.LikedSet(ctx, *viewer, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load likes")
	}
	for i := range items {
		flag := liked[items[i].ID]
		items[i].Liked = &flag
	}
	return items, nil
}
