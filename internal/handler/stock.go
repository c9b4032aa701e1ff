package handler

import (
	"net/http"
	"strconv"

	"tillengine/internal/apierror"
	"tillengine/internal/dto"
	"tillengine/internal/middleware"
	"tillengine/internal/repository"
	"tillengine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// Adjust godoc
// @Summary Record a manual stock movement
// @Tags stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AdjustStockRequest true "Signed adjustment"
// @Success 201 {object} dto.StockMovementResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/stock/movements [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.RecordMovement(c.Request.Context(), claims.Role, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Movements godoc
// @Summary List the stock movement ledger
// @Tags stock
// @Produce json
// @Security BearerAuth
// @Param variant_id query string false "Filter by variant"
// @Param origin     query string false "sale | credit_note | manual_adjustment | stock_import"
// @Param page       query int    false "Page (default 1)"
// @Param limit      query int    false "Rows per page (default 100)"
// @Success 200 {object} dto.StockMovementListResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/stock/movements [get]
func (h *StockHandler) Movements(c *gin.Context) {
	filter := repository.StockMovementFilter{Origin: c.Query("origin")}
	if raw := c.Query("variant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid variant_id"))
			return
		}
		filter.VariantID = &id
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))

	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list stock movements"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
