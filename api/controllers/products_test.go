package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/api/middleware"
	"github.com/angelmondragon/bazaar-backend/internal/likes"
	productsvc "github.com/angelmondragon/bazaar-backend/internal/products"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
)

type stubProductService struct {
	product   *productsvc.ProductDTO
	page      pagination.Page[productsvc.ProductDTO]
	err       error
	created   *productsvc.CreateProductInput
	updated   *productsvc.UpdateProductInput
	listInput *productsvc.ListInput
	viewer    *uuid.UUID
	stock     *int
}

func (s *stubProductService) CreateProduct(ctx context.Context, userID uuid.UUID, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	s.created = &input
	return s.product, s.err
}

func (s *stubProductService) UpdateProduct(ctx context.Context, userID, productID uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	s.updated = &input
	return s.product, s.err
}

func (s *stubProductService) DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error {
	return s.err
}

func (s *stubProductService) GetProduct(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*productsvc.ProductDTO, error) {
	s.viewer = viewer
	return s.product, s.err
}

func (s *stubProductService) ListProducts(ctx context.Context, input productsvc.ListInput) (pagination.Page[productsvc.ProductDTO], error) {
	s.listInput = &input
	return s.page, s.err
}

func (s *stubProductService) ListSellerProducts(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[productsvc.ProductDTO], error) {
	return s.page, s.err
}

func (s *stubProductService) SetStock(ctx context.Context, userID, productID uuid.UUID, stock int) (*productsvc.ProductDTO, error) {
	s.stock = &stock
	return s.product, s.err
}

func (s *stubProductService) ProductsByIDs(ctx context.Context, ids []uuid.UUID, viewer *uuid.UUID) ([]productsvc.ProductDTO, error) {
	return nil, s.err
}

func productRouter(svc productsvc.Service, likeSvc likes.Service, userID *uuid.UUID) http.Handler {
	r := chi.NewRouter()
	if userID != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID.String())))
			})
		})
	}
	r.Post("/product", CreateProduct(svc, nil))
	r.Put("/product/{productId}", UpdateProduct(svc, nil))
	r.Delete("/product/{productId}", DeleteProduct(svc, nil))
	r.Get("/products", ListProducts(svc, nil))
	r.Get("/products/{productId}", GetProduct(svc, nil))
	r.Patch("/seller/products/{productId}/stock", SetProductStock(svc, nil))
	if likeSvc != nil {
		r.Post("/product/{productId}/like", LikeProduct(likeSvc, nil))
		r.Delete("/product/{productId}/like", UnlikeProduct(likeSvc, nil))
		r.Get("/user/likes", ListLikedProducts(likeSvc, nil))
	}
	return r
}

func TestCreateProductForwardsPayload(t *testing.T) {
	userID := uuid.New()
	svc := &stubProductService{product: &productsvc.ProductDTO{ID: uuid.New(), Name: "Chips"}}

	body := `{"name":"Chips","price":"2.50","stock":4,"category_name":"Snacks"}`
	req := httptest.NewRequest(http.MethodPost, "/product", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	productRouter(svc, nil, &userID).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.created == nil {
		t.Fatal("expected service call")
	}
	if !svc.created.Price.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected price %s", svc.created.Price)
	}
	if svc.created.Stock != 4 || svc.created.CategoryName != "Snacks" {
		t.Fatalf("unexpected input %+v", svc.created)
	}
}

func TestCreateProductAcceptsEchoedCounters(t *testing.T) {
	userID := uuid.New()
	svc := &stubProductService{product: &productsvc.ProductDTO{ID: uuid.New(), Name: "Chips"}}

	body := `{"name":"Chips","category_name":"Snacks","likes_count":12,"product_count":3}`
	req := httptest.NewRequest(http.MethodPost, "/product", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	productRouter(svc, nil, &userID).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.created == nil || svc.created.CategoryName != "Snacks" {
		t.Fatalf("unexpected input %+v", svc.created)
	}
}

func TestCreateProductRequiresCategory(t *testing.T) {
	userID := uuid.New()
	svc := &stubProductService{}

	req := httptest.NewRequest(http.MethodPost, "/product", bytes.NewReader([]byte(`{"name":"Chips"}`)))
	resp := httptest.NewRecorder()
	productRouter(svc, nil, &userID).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.created != nil {
		t.Fatal("service should not be called")
	}
}

func TestUpdateProductInvalidID(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/product/not-a-uuid", bytes.NewReader([]byte(`{"name":"x"}`)))
	resp := httptest.NewRecorder()
	productRouter(&stubProductService{}, nil, &userID).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateProductForwardsCategoryMove(t *testing.T) {
	userID := uuid.New()
	svc := &stubProductService{product: &productsvc.ProductDTO{ID: uuid.New()}}

	req := httptest.NewRequest(http.MethodPut, "/product/"+uuid.NewString(), bytes.NewReader([]byte(`{"category_name":"Beverages"}`)))
	resp := httptest.NewRecorder()
	productRouter(svc, nil, &userID).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.updated == nil || svc.updated.CategoryName == nil || *svc.updated.CategoryName != "Beverages" {
		t.Fatalf("expected category move forwarded, got %+v", svc.updated)
	}
	if svc.updated.Name != nil {
		t.Fatal("unsent fields must stay nil")
	}
}

func TestDeleteProductNotOwned(t *testing.T) {
	userID := uuid.New()
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}

	req := httptest.NewRequest(http.MethodDelete, "/product/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	productRouter(svc, nil, &userID).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestListProductsQueryAndCursor(t *testing.T) {
	svc := &stubProductService{page: pagination.Page[productsvc.ProductDTO]{
		Items:      []productsvc.ProductDTO{{ID: uuid.New(), Name: "Cola"}},
		NextCursor: "next",
	}}

	req := httptest.NewRequest(http.MethodGet, "/products?q=cola&category=Drinks&limit=10", nil)
	resp := httptest.NewRecorder()
	productRouter(svc, nil, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.listInput.Search != "cola" || svc.listInput.Category != "Drinks" || svc.listInput.Pagination.Limit != 10 {
		t.Fatalf("unexpected list input %+v", svc.listInput)
	}
	if svc.listInput.Viewer != nil {
		t.Fatal("anonymous request must have no viewer")
	}

	var envelope struct {
		Data       []productsvc.ProductDTO `json:"data"`
		Pagination struct {
			NextCursor string `json:"next_cursor"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Pagination.NextCursor != "next" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestGetProductPassesViewer(t *testing.T) {
	userID := uuid.New()
	svc := &stubProductService{product: &productsvc.ProductDTO{ID: uuid.New()}}

	req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	productRouter(svc, nil, &userID).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.viewer == nil || *svc.viewer != userID {
		t.Fatal("expected viewer to be forwarded")
	}
}

func TestSetProductStockRequiresValue(t *testing.T) {
	userID := uuid.New()
	svc := &stubProductService{product: &productsvc.ProductDTO{}}
	path := "/seller/products/" + uuid.NewString() + "/stock"

	resp := httptest.NewRecorder()
	productRouter(svc, nil, &userID).ServeHTTP(resp, httptest.NewRequest(http.MethodPatch, path, bytes.NewReader([]byte(`{}`))))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	productRouter(svc, nil, &userID).ServeHTTP(resp, httptest.NewRequest(http.MethodPatch, path, bytes.NewReader([]byte(`{"stock":0}`))))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.stock == nil || *svc.stock != 0 {
		t.Fatal("expected zero stock forwarded")
	}
}
