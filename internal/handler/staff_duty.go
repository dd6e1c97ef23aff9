package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/examcell/hall-allocation/internal/service"
)

// StaffDutyHandler exposes read-only views over derived duty rows.
// Duty rows are never written through the API; the synchronizer owns
// them.
type StaffDutyHandler struct {
	Svc *service.DutyReportService
}

// NewStaffDutyHandler constructs a StaffDutyHandler.
func NewStaffDutyHandler(svc *service.DutyReportService) *StaffDutyHandler {
	return &StaffDutyHandler{Svc: svc}
}

// List handles GET /api/duties.  An optional ?name= query filters by
// staff name fragment.
func (h *StaffDutyHandler) List(c echo.Context) error {
	if name := c.QueryParam("name"); name != "" {
		items, err := h.Svc.ByStaffName(c.Request().Context(), name)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return c.JSON(http.StatusOK, map[string]any{"items": items})
	}
	items, err := h.Svc.All(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// ByStaffID handles GET /api/duties/staff/:staffId.
func (h *StaffDutyHandler) ByStaffID(c echo.Context) error {
	items, err := h.Svc.ByStaffID(c.Request().Context(), c.Param("staffId"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Report handles GET /api/duties/report: per-invigilator workload
// totals, roster members with zero duties included.
func (h *StaffDutyHandler) Report(c echo.Context) error {
	report, err := h.Svc.Report(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": report})
}
