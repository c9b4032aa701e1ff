package handler

import (
	"net/http"
	"strconv"

	"tillengine/internal/apierror"
	"tillengine/internal/dto"
	"tillengine/internal/middleware"
	"tillengine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TillHandler struct {
	svc     service.TillService
	reports service.ReconciliationService
}

func NewTillHandler(svc service.TillService, reports service.ReconciliationService) *TillHandler {
	return &TillHandler{svc: svc, reports: reports}
}

// Open godoc
// @Summary Open a till session
// @Tags till
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenTillRequest true "Opening data"
// @Success 201 {object} dto.TillSessionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/till/open [post]
func (h *TillHandler) Open(c *gin.Context) {
	var req dto.OpenTillRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	cashierID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Open(c.Request.Context(), claims.Role, cashierID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Close a till session
// @Tags till
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseTillRequest true "Closing data"
// @Success 200 {object} dto.TillSessionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/till/close [post]
func (h *TillHandler) Close(c *gin.Context) {
	var req dto.CloseTillRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.Close(c.Request.Context(), claims.Role, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary Reconciliation report for a till session
// @Tags till
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.ReconciliationReport
// @Failure 404 {object} apierror.APIError
// @Router /v1/till/{id}/report [get]
func (h *TillHandler) Report(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.reports.Reconcile(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movement godoc
// @Summary Register a manual treasury movement
// @Tags till
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ManualMovementRequest true "Manual movement"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Router /v1/till/movement [post]
func (h *TillHandler) Movement(c *gin.Context) {
	var req dto.ManualMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	if err := h.svc.RegisterManualMovement(c.Request.Context(), claims.Role, req); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Active returns the open till session for the authenticated cashier.
func (h *TillHandler) Active(c *gin.Context) {
	claims := middleware.GetClaims(c)
	cashierID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid user id"))
		return
	}
	resp, err := h.svc.GetActive(c.Request.Context(), cashierID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("no active till session"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns a paginated list of till sessions.
func (h *TillHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
