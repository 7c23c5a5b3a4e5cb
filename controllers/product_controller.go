package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/models"
	"storefront/services"
)

type ProductController struct {
	products *services.ProductService
	logger   *slog.Logger
}

func NewProductController(products *services.ProductService, logger *slog.Logger) *ProductController {
	return &ProductController{products: products, logger: logger}
}

// GetProducts godoc
// @Summary List products
// @Tags Products
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.Response{data=models.PaginatedData}
// @Router /products [get]
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	page, limit := paginationParams(c, 10)

	result, err := ctrl.products.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	result.Links = paginationLinks(c, result.Meta)

	respond(c, http.StatusOK, "Products retrieved successfully", result)
}

// GetProduct godoc
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 404 {object} models.Response
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "Invalid product ID", nil)
		return
	}

	product, err := ctrl.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusOK, "Product retrieved successfully", product)
}

// CreateProduct godoc
// @Summary Create product
// @Tags Admin - Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateProductRequest true "Product"
// @Success 201 {object} models.Response{data=models.Product}
// @Failure 400 {object} models.Response
// @Failure 409 {object} models.Response
// @Router /admin/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.products.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusCreated, "Product created successfully", product)
}
