package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/examcell/hall-allocation/internal/model"
	"github.com/examcell/hall-allocation/internal/repository"
)

// InvigilatorHandler manages the staff directory.
type InvigilatorHandler struct {
	Staff *repository.InvigilatorRepo
}

// NewInvigilatorHandler constructs an InvigilatorHandler.
func NewInvigilatorHandler(staff *repository.InvigilatorRepo) *InvigilatorHandler {
	return &InvigilatorHandler{Staff: staff}
}

// Create handles POST /api/invigilators.
func (h *InvigilatorHandler) Create(c echo.Context) error {
	var body struct {
		EmpID       string `json:"empId"`
		Name        string `json:"name"`
		Department  string `json:"department"`
		Designation string `json:"designation"`
		IsActive    *bool  `json:"isActive"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.EmpID) == "" || strings.TrimSpace(body.Name) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "empId and name are required"})
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}
	inv := &model.Invigilator{
		EmpID:       strings.ToUpper(strings.TrimSpace(body.EmpID)),
		Name:        strings.TrimSpace(body.Name),
		Department:  strings.TrimSpace(body.Department),
		Designation: strings.TrimSpace(body.Designation),
		IsActive:    active,
	}
	if err := h.Staff.Create(c.Request().Context(), inv); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create invigilator"})
	}
	return c.JSON(http.StatusCreated, inv)
}

// ListActive handles GET /api/invigilators, returning the active
// roster ordered by name.
func (h *InvigilatorHandler) ListActive(c echo.Context) error {
	roster, err := h.Staff.GetActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": roster})
}
