package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/examcell/hall-allocation/internal/model"
	"github.com/examcell/hall-allocation/internal/repository"
	"github.com/examcell/hall-allocation/internal/utils"
)

// StudentHandler manages the student directory.  Passwords (dates of
// birth) are bcrypt-hashed before storage.
type StudentHandler struct {
	Students   *repository.StudentRepo
	BcryptCost int
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(students *repository.StudentRepo, bcryptCost int) *StudentHandler {
	return &StudentHandler{Students: students, BcryptCost: bcryptCost}
}

type studentBody struct {
	RollNo    string `json:"rollNo"`
	Name      string `json:"name"`
	ClassName string `json:"className"`
	Year      string `json:"year"`
	Password  string `json:"password"` // date of birth
}

func (b studentBody) toModel() (*model.Student, string) {
	if strings.TrimSpace(b.RollNo) == "" || strings.TrimSpace(b.Year) == "" {
		return nil, "rollNo and year are required"
	}
	return &model.Student{
		RollNo:    strings.TrimSpace(b.RollNo),
		Name:      strings.TrimSpace(b.Name),
		ClassName: strings.TrimSpace(b.ClassName),
		Year:      strings.TrimSpace(b.Year),
		Password:  strings.TrimSpace(b.Password),
	}, ""
}

// Create handles POST /api/students.
func (h *StudentHandler) Create(c echo.Context) error {
	var body studentBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	s, msg := body.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}
	if err := h.hashPassword(s); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not hash password"})
	}
	if err := h.Students.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create student"})
	}
	return c.JSON(http.StatusCreated, s)
}

// BulkCreate handles POST /api/students/bulk with {students: [...]}.
func (h *StudentHandler) BulkCreate(c echo.Context) error {
	var body struct {
		Students []studentBody `json:"students"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(body.Students) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "students list is empty"})
	}
	students := make([]model.Student, len(body.Students))
	for i, sb := range body.Students {
		s, msg := sb.toModel()
		if msg != "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
		}
		if err := h.hashPassword(s); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not hash password"})
		}
		students[i] = *s
	}
	if err := h.Students.CreateBulk(c.Request().Context(), students); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create students"})
	}
	return c.JSON(http.StatusCreated, map[string]any{"inserted": len(students)})
}

// ByClassYear handles GET /api/students?class=...&year=....
func (h *StudentHandler) ByClassYear(c echo.Context) error {
	class := c.QueryParam("class")
	year := c.QueryParam("year")
	if class == "" || year == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "class and year query parameters are required"})
	}
	students, err := h.Students.GetByClassYear(c.Request().Context(), class, year)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": students})
}

func (h *StudentHandler) hashPassword(s *model.Student) error {
	if s.Password == "" {
		return nil
	}
	hash, err := utils.HashPassword(s.Password, h.BcryptCost)
	if err != nil {
		return err
	}
	s.Password = hash
	return nil
}

// ByRoll handles GET /api/students/:rollNo.
func (h *StudentHandler) ByRoll(c echo.Context) error {
	s, err := h.Students.GetByRoll(c.Request().Context(), c.Param("rollNo"))
	if err != nil {
		if err == repository.ErrStudentNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, s)
}

// DeleteByRoll handles DELETE /api/students/:rollNo.
func (h *StudentHandler) DeleteByRoll(c echo.Context) error {
	if err := h.Students.DeleteByRoll(c.Request().Context(), c.Param("rollNo")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteByYear handles DELETE /api/students/year/:year, used when a
// cohort graduates.
func (h *StudentHandler) DeleteByYear(c echo.Context) error {
	n, err := h.Students.DeleteByYear(c.Request().Context(), c.Param("year"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": n})
}

// DeleteByClass handles DELETE /api/students/class/:className.
func (h *StudentHandler) DeleteByClass(c echo.Context) error {
	n, err := h.Students.DeleteByClass(c.Request().Context(), c.Param("className"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": n})
}
