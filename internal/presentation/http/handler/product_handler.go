package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/godi-api/internal/application/service"
	"github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/sangkips/godi-api/internal/presentation/http/dto/request"
	"github.com/sangkips/godi-api/internal/presentation/http/dto/response"
	"github.com/sangkips/godi-api/pkg/apperror"
	"github.com/sangkips/godi-api/pkg/validation"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	products, err := h.productService.ListProducts(c.Request.Context(), *userID, &repository.ProductFilterParams{
		Search:   filter.Search,
		Category: filter.Category,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, products)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req.ToInput(*userID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, product)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := parseIDParam(c, "id", "Product")
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), *userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, product)
}

// Update handles PUT and PATCH; both merge only the supplied fields
func (h *ProductHandler) Update(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := parseIDParam(c, "id", "Product")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), req.ToInput(*userID, id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := parseIDParam(c, "id", "Product")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), *userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "Product deleted successfully")
}

// AdjustStock handles manual stock corrections
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := parseIDParam(c, "id", "Product")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if req.Change == nil {
		response.Error(c, apperror.NewValidationError([]string{validation.Message("change", true)}))
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), *userID, id, *req.Change)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}
