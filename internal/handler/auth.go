package handler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/examcell/hall-allocation/internal/config"
	"github.com/examcell/hall-allocation/internal/repository"
	"github.com/examcell/hall-allocation/internal/service"
	"github.com/examcell/hall-allocation/internal/utils"
)

// Roles carried in the JWT role claim.
const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

// SeatLookup serves the allocations a roll number appears in, so the
// student login response can carry the student's current seats.
type SeatLookup interface {
	ForStudent(ctx context.Context, roll string) ([]service.StudentAllocation, error)
}

// AuthHandler issues access tokens for the two account kinds: the
// exam cell admin (credentials from the environment) and students
// (matched against the student directory, date of birth as password).
type AuthHandler struct {
	Cfg      config.Config
	Students *repository.StudentRepo
	Seats    SeatLookup
}

// NewAuthHandler constructs an AuthHandler.  Seats may be nil; the
// student login then omits the allocation list.
func NewAuthHandler(cfg config.Config, students *repository.StudentRepo, seats SeatLookup) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Students: students, Seats: seats}
}

// AdminLogin handles POST /api/auth/admin/login.  The single admin
// account is configured via ADMIN_USER and ADMIN_PASS_HASH.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.Username != h.Cfg.AdminUser || !utils.VerifyPassword(h.Cfg.AdminPassHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, body.Username, RoleAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"access_token": tok.Token,
		"expires_at":   tok.Exp,
		"role":         RoleAdmin,
	})
}

// StudentLogin handles POST /api/auth/student/login.  A student
// authenticates with roll number, name, class, year and date of birth;
// every field must match the directory row.  Names and classes compare
// case-insensitively.
func (h *AuthHandler) StudentLogin(c echo.Context) error {
	var body struct {
		RollNo   string `json:"rollNo"`
		Name     string `json:"name"`
		Class    string `json:"class"`
		Year     string `json:"year"`
		Password string `json:"password"` // date of birth
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.RollNo) == "" || strings.TrimSpace(body.Password) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "rollNo and password are required"})
	}

	s, err := h.Students.GetByRoll(c.Request().Context(), body.RollNo)
	if err != nil {
		if err == repository.ErrStudentNotFound {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}

	if !strings.EqualFold(strings.TrimSpace(body.Name), s.Name) ||
		!strings.EqualFold(strings.TrimSpace(body.Class), s.ClassName) ||
		strings.TrimSpace(body.Year) != s.Year ||
		!utils.VerifyPassword(s.Password, strings.TrimSpace(body.Password)) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, s.RollNo, RoleStudent, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not issue token"})
	}

	// The login response carries the student's current seats so the
	// client needs no second round trip.  A lookup failure only drops
	// the list; the login itself stands.
	allocations := []service.StudentAllocation{}
	if h.Seats != nil {
		found, err := h.Seats.ForStudent(c.Request().Context(), s.RollNo)
		if err != nil {
			log.Printf("student-login: allocation lookup for %s failed: %v", s.RollNo, err)
		} else if found != nil {
			allocations = found
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"access_token": tok.Token,
		"expires_at":   tok.Exp,
		"role":         RoleStudent,
		"student": map[string]string{
			"rollNo": s.RollNo,
			"name":   s.Name,
			"class":  s.ClassName,
			"year":   s.Year,
		},
		"allocations": allocations,
	})
}
