package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/model"
	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// RoomHandler exposes room browsing for everyone and room management
// for administrators.
type RoomHandler struct {
	Rooms *repository.RoomRepo
	Log   *logrus.Logger
}

func NewRoomHandler(rooms *repository.RoomRepo, log *logrus.Logger) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Log: log}
}

type roomReq struct {
	Name                 string  `json:"name"`
	Capacity             uint32  `json:"capacity"`
	EquipmentDescription *string `json:"equipment_description"`
	IsActive             *bool   `json:"is_active"`
}

type roomResp struct {
	ID                   uint64  `json:"id"`
	Name                 string  `json:"name"`
	Capacity             uint32  `json:"capacity"`
	EquipmentDescription *string `json:"equipment_description,omitempty"`
	IsActive             bool    `json:"is_active"`
}

func toRoomResp(r model.Room) roomResp {
	return roomResp{
		ID:                   r.ID,
		Name:                 r.Name,
		Capacity:             r.Capacity,
		EquipmentDescription: r.EquipmentDescription,
		IsActive:             r.IsActive,
	}
}

// List returns active rooms.  Administrators may pass ?all=true to
// include deactivated ones.
func (h *RoomHandler) List(c echo.Context) error {
	includeInactive := c.QueryParam("all") == "true" && isAdmin(c)
	rooms, err := h.Rooms.List(c.Request().Context(), includeInactive)
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}
	out := make([]roomResp, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one room.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toRoomResp(room))
}

// Create adds a room.  Admin only.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Capacity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and capacity >= 1 required"})
	}
	room := model.Room{
		Name:                 req.Name,
		Capacity:             req.Capacity,
		EquipmentDescription: req.EquipmentDescription,
	}
	if err := h.Rooms.Create(c.Request().Context(), &room); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toRoomResp(room))
}

// Update rewrites a room.  Admin only.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Capacity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and capacity >= 1 required"})
	}

	existing, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}
	existing.Name = req.Name
	existing.Capacity = req.Capacity
	existing.EquipmentDescription = req.EquipmentDescription
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if err := h.Rooms.Update(c.Request().Context(), &existing); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toRoomResp(existing))
}

// Deactivate soft-deletes a room so its reservation history survives.
// Admin only.
func (h *RoomHandler) Deactivate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Rooms.Deactivate(c.Request().Context(), id); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
