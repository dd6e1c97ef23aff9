package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/examcell/hall-allocation/internal/service"
)

// LabHandler exposes the lab allocation lifecycle.
type LabHandler struct {
	Svc *service.LabAllocationService
}

// NewLabHandler constructs a LabHandler.
func NewLabHandler(svc *service.LabAllocationService) *LabHandler {
	return &LabHandler{Svc: svc}
}

// Save handles POST /api/labs, single object or {"allocations": [...]}.
func (h *LabHandler) Save(c echo.Context) error {
	var body struct {
		service.LabAllocationInput
		Allocations []service.LabAllocationInput `json:"allocations"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	inputs := body.Allocations
	if len(inputs) == 0 {
		if body.Lab == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "no allocations in request"})
		}
		inputs = []service.LabAllocationInput{body.LabAllocationInput}
	}
	saved, err := h.Svc.SaveBatch(c.Request().Context(), inputs)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"items": saved})
}

// Allocate handles POST /api/labs/allocate: split rolls over labs and
// save the batch.
func (h *LabHandler) Allocate(c echo.Context) error {
	var req service.LabPackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.StartLab == "" || len(req.Labs) == 0 || len(req.Rolls) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "startLab, labs and rolls are required"})
	}
	saved, err := h.Svc.PackAndSave(c.Request().Context(), req)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"items": saved})
}

// Active handles GET /api/labs.
func (h *LabHandler) Active(c echo.Context) error {
	items, err := h.Svc.Active(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// ForStudent handles GET /api/labs/student/:rollNo.
func (h *LabHandler) ForStudent(c echo.Context) error {
	roll := strings.ToUpper(strings.TrimSpace(c.Param("rollNo")))
	if role, _ := c.Get("role").(string); role == RoleStudent {
		if sub, _ := c.Get("user_id").(string); !strings.EqualFold(sub, roll) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
	items, err := h.Svc.ForStudent(c.Request().Context(), roll)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// UpdateInvigilators handles PUT /api/labs/:id/invigilators.
func (h *LabHandler) UpdateInvigilators(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		Invigilators []string `json:"invigilators"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	updated, err := h.Svc.UpdateInvigilators(c.Request().Context(), id, body.Invigilators)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Update handles PUT /api/labs/:id.
func (h *LabHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var in service.LabAllocationInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	updated, err := h.Svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/labs/:id.
func (h *LabHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return writeAllocationError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
