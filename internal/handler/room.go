package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/examcell/hall-allocation/internal/model"
	"github.com/examcell/hall-allocation/internal/repository"
)

// RoomHandler manages the room catalog.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	return &RoomHandler{Rooms: rooms}
}

// roomBody is the create/update payload: a room number, a floor and
// the ordered per-column bench counts.
type roomBody struct {
	RoomNo  string `json:"roomNo"`
	Floor   string `json:"floor"`
	Columns []struct {
		ColNo int `json:"colNo"`
		Rows  int `json:"rows"`
	} `json:"columns"`
}

func (b roomBody) toModel() (*model.Room, string) {
	if strings.TrimSpace(b.RoomNo) == "" || len(b.Columns) == 0 {
		return nil, "roomNo and columns are required"
	}
	room := &model.Room{
		RoomNo: strings.TrimSpace(b.RoomNo),
		Floor:  strings.TrimSpace(b.Floor),
	}
	seen := make(map[int]bool, len(b.Columns))
	for _, col := range b.Columns {
		if col.ColNo <= 0 || col.Rows <= 0 {
			return nil, "colNo and rows must be greater than zero"
		}
		if seen[col.ColNo] {
			return nil, "duplicate colNo in columns"
		}
		seen[col.ColNo] = true
		room.Columns = append(room.Columns, model.Column{ColNo: col.ColNo, Rows: col.Rows})
	}
	return room, ""
}

// Create handles POST /api/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var body roomBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	room, msg := body.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		if err == repository.ErrRoomExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": "room already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create room"})
	}
	return c.JSON(http.StatusCreated, room)
}

// List handles GET /api/rooms, returning the catalog in packing order.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.Rooms.GetAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": rooms})
}

// Get handles GET /api/rooms/:roomNo.
func (h *RoomHandler) Get(c echo.Context) error {
	room, err := h.Rooms.GetByNo(c.Request().Context(), c.Param("roomNo"))
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, room)
}

// Update handles PUT /api/rooms/:id and rewrites the room's identity
// and column layout.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body roomBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	room, msg := body.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}
	if err := h.Rooms.Update(c.Request().Context(), id, room); err != nil {
		switch err {
		case repository.ErrRoomNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		case repository.ErrRoomExists:
			return c.JSON(http.StatusConflict, map[string]string{"error": "room number already taken"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	room.ID = id
	return c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /api/rooms/:id.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Rooms.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
