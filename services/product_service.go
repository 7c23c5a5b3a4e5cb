package services

import (
	"context"
	"errors"
	"math"

	"storefront/models"
	"storefront/repositories"
	"storefront/utils"
)

type ProductService struct {
	products repositories.ProductStore
}

func NewProductService(products repositories.ProductStore) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) List(ctx context.Context, page, limit int) (*models.PaginatedData, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	products, total, err := s.products.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, utils.NewInternal("Failed to load products", err)
	}

	return &models.PaginatedData{
		Items: products,
		Meta: models.PaginationMeta{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFound("Product not found")
	}
	if err != nil {
		return nil, utils.NewInternal("Failed to load product", err)
	}
	return product, nil
}

func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if req.Price.IsNegative() {
		return nil, utils.NewBadRequest("Price cannot be negative")
	}

	product := &models.Product{
		Code:          req.Code,
		Name:          req.Name,
		Price:         req.Price.Round(2),
		Stock:         req.Stock,
		IsSaleable:    req.IsSaleable,
		IsDisplayable: req.IsDisplayable,
		PrepaidOnly:   req.PrepaidOnly,
		Sizes:         req.Sizes,
		Colors:        req.Colors,
		Image:         req.Image,
	}

	err := s.products.Create(ctx, product)
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, utils.NewConflict("Product id already exists")
	}
	if err != nil {
		return nil, utils.NewInternal("Failed to create product", err)
	}
	return product, nil
}
