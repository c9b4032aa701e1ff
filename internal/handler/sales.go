package handler

import (
	"net/http"

	"tillengine/internal/apierror"
	"tillengine/internal/dto"
	"tillengine/internal/middleware"
	"tillengine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct {
	sales       service.SaleService
	creditNotes service.CreditNoteService
}

func NewSalesHandler(sales service.SaleService, creditNotes service.CreditNoteService) *SalesHandler {
	return &SalesHandler{sales: sales, creditNotes: creditNotes}
}

// Create godoc
// @Summary      Register a new sale order
// @Description  Registers a sale atomically: order + lines + tenders, stock deductions and treasury movements commit together.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Sale detail"
// @Success      201  {object} dto.SaleOrderResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/orders [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	cashierID, _ := uuid.Parse(claims.UserID)

	resp, err := h.sales.CreateSale(c.Request.Context(), claims.Role, cashierID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Reverse godoc
// @Summary      Reverse a sale with a credit note
// @Description  Issues a credit note: restocks reversed quantities, writes egress treasury movements, annuls the original on full reversal.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID of the sale"
// @Param        body body dto.CreateCreditNoteRequest true "Reversal detail"
// @Success      201  {object} dto.SaleOrderResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/orders/{id}/reverse [post]
func (h *SalesHandler) Reverse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CreateCreditNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	cashierID, _ := uuid.Parse(claims.UserID)

	resp, err := h.creditNotes.ReverseSale(c.Request.Context(), claims.Role, cashierID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get returns one order with lines and tenders.
func (h *SalesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.sales.GetOrder(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        date          query string false "YYYY-MM-DD (default: today)"
// @Param        document_type query string false "sale | credit_note | all"
// @Param        page          query int    false "Page (default 1)"
// @Param        limit         query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.OrderListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/orders [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.OrderFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.sales.ListOrders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list orders"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
