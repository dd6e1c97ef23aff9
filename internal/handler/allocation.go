package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/examcell/hall-allocation/internal/allocator"
	"github.com/examcell/hall-allocation/internal/repository"
	"github.com/examcell/hall-allocation/internal/service"
	"github.com/examcell/hall-allocation/internal/validator"
)

// AllocationHandler exposes the hall allocation lifecycle.
type AllocationHandler struct {
	Svc *service.AllocationService
}

// NewAllocationHandler constructs an AllocationHandler.
func NewAllocationHandler(svc *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{Svc: svc}
}

// writeAllocationError maps the service error taxonomy onto HTTP
// statuses: constraint violations are 400 with the violation kind,
// duplicates 409, missing rows 404, packing problems 400.
func writeAllocationError(c echo.Context, err error) error {
	var v *validator.Violation
	if errors.As(err, &v) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": v.Message, "kind": v.Kind})
	}
	switch {
	case errors.Is(err, repository.ErrDuplicateAllocation):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrAllocationNotFound),
		errors.Is(err, repository.ErrLabAllocationNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, allocator.ErrStartRoomNotFound),
		errors.Is(err, allocator.ErrStartLabNotFound),
		errors.Is(err, allocator.ErrNotEnoughLabs):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// Save handles POST /api/allocations.  The body is either a single
// allocation object or {"allocations": [...]}; both forms run through
// the same validated batch path.
func (h *AllocationHandler) Save(c echo.Context) error {
	var body struct {
		service.AllocationInput
		Allocations []service.AllocationInput `json:"allocations"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	inputs := body.Allocations
	if len(inputs) == 0 {
		if body.Room == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "no allocations in request"})
		}
		inputs = []service.AllocationInput{body.AllocationInput}
	}

	saved, err := h.Svc.SaveBatch(c.Request().Context(), inputs)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"items": saved})
}

// Allocate handles POST /api/allocate: pack the requested rolls over
// the room catalog and save the resulting batch in one call.
func (h *AllocationHandler) Allocate(c echo.Context) error {
	var req service.PackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.StartRoom == "" || len(req.Sources) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "startRoom and sources are required"})
	}
	saved, leftover, err := h.Svc.PackAndSave(c.Request().Context(), req)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"items":       saved,
		"unallocated": leftover,
	})
}

// Active handles GET /api/allocations, listing non-expired
// allocations.
func (h *AllocationHandler) Active(c echo.Context) error {
	items, err := h.Svc.Active(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// ForStudent handles GET /api/allocations/student/:rollNo.  Students
// may only read their own seat; admins may read any.
func (h *AllocationHandler) ForStudent(c echo.Context) error {
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

// UpdateInvigilators handles PUT /api/allocations/:id/invigilators.
func (h *AllocationHandler) UpdateInvigilators(c echo.Context) error {
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

// Update handles PUT /api/allocations/:id.
func (h *AllocationHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var in service.AllocationInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	updated, err := h.Svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/allocations/:id.  Duty rows derived from
// the allocation are removed with it.
func (h *AllocationHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return writeAllocationError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
