package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/godi-api/internal/application/service"
	"github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/sangkips/godi-api/internal/presentation/http/dto/request"
	"github.com/sangkips/godi-api/internal/presentation/http/dto/response"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create handles recording a sale
func (h *SaleHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.saleService.RecordSale(c.Request.Context(), req.ToInput(*userID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// List handles listing sale line items within an optional date range
func (h *SaleHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var filter request.SaleFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	loc := GetLocation(c)
	from, err := parseDateBound("start_date", filter.StartDate, loc, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDateBound("end_date", filter.EndDate, loc, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	sales, err := h.saleService.ListSales(c.Request.Context(), *userID, &repository.SaleFilterParams{From: from, To: to})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, sales)
}

// GetTransaction handles getting one transaction with its line items
func (h *SaleHandler) GetTransaction(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := parseIDParam(c, "id", "Transaction")
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.saleService.GetTransaction(c.Request.Context(), *userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, txn)
}
