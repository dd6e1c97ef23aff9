// Package router registers the HTTP routes of the exam cell API.
// Public routes carry only the health check and the two logins; every
// read behind /api requires a valid token, and mutating routes are
// restricted to the ADMIN role.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/examcell/hall-allocation/internal/handler"
	"github.com/examcell/hall-allocation/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler) {
	e.GET("/healthz", handler.Health)

	g := e.Group("/api/auth")
	g.POST("/admin/login", a.AdminLogin)
	g.POST("/student/login", a.StudentLogin)
}

// RegisterAllocations wires the hall and lab allocation routes.
// Students can read their own seat; everything else is admin-only.
func RegisterAllocations(e *echo.Echo, alloc *handler.AllocationHandler, lab *handler.LabHandler,
	jwtSecret string, cache echo.MiddlewareFunc) {
	api := e.Group("/api")
	api.Use(middleware.JWTAuth(jwtSecret))

	// Seat lookups are available to both roles; the handler enforces
	// that a student only reads their own roll number.
	read := api.Group("", middleware.RequireRole(handler.RoleAdmin, handler.RoleStudent))
	read.GET("/allocations/student/:rollNo", alloc.ForStudent, cache)
	read.GET("/labs/student/:rollNo", lab.ForStudent, cache)

	admin := api.Group("", middleware.RequireRole(handler.RoleAdmin))
	admin.GET("/allocations", alloc.Active, cache)
	admin.POST("/allocations", alloc.Save)
	admin.POST("/allocate", alloc.Allocate)
	admin.PUT("/allocations/:id", alloc.Update)
	admin.PUT("/allocations/:id/invigilators", alloc.UpdateInvigilators)
	admin.DELETE("/allocations/:id", alloc.Delete)

	admin.GET("/labs", lab.Active, cache)
	admin.POST("/labs", lab.Save)
	admin.POST("/labs/allocate", lab.Allocate)
	admin.PUT("/labs/:id", lab.Update)
	admin.PUT("/labs/:id/invigilators", lab.UpdateInvigilators)
	admin.DELETE("/labs/:id", lab.Delete)
}

// RegisterCatalog wires the room, student and invigilator directory
// routes, all admin-only.
func RegisterCatalog(e *echo.Echo, rooms *handler.RoomHandler, students *handler.StudentHandler,
	staff *handler.InvigilatorHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	admin := e.Group("/api")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(handler.RoleAdmin))

	admin.GET("/rooms", rooms.List, cache)
	admin.GET("/rooms/:roomNo", rooms.Get, cache)
	admin.POST("/rooms", rooms.Create)
	admin.PUT("/rooms/:id", rooms.Update)
	admin.DELETE("/rooms/:id", rooms.Delete)

	admin.GET("/students", students.ByClassYear, cache)
	admin.GET("/students/:rollNo", students.ByRoll, cache)
	admin.POST("/students", students.Create)
	admin.POST("/students/bulk", students.BulkCreate)
	admin.DELETE("/students/:rollNo", students.DeleteByRoll)
	admin.DELETE("/students/year/:year", students.DeleteByYear)
	admin.DELETE("/students/class/:className", students.DeleteByClass)

	admin.GET("/invigilators", staff.ListActive, cache)
	admin.POST("/invigilators", staff.Create)
}

// RegisterDuties wires the duty report routes, admin-only.
func RegisterDuties(e *echo.Echo, duties *handler.StaffDutyHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	admin := e.Group("/api/duties")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(handler.RoleAdmin))

	admin.GET("", duties.List, cache)
	admin.GET("/staff/:staffId", duties.ByStaffID, cache)
	admin.GET("/report", duties.Report, cache)
}
