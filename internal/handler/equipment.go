package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/model"
	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// EquipmentHandler exposes the equipment catalogue and its admin
// management endpoints.
type EquipmentHandler struct {
	Equipment *repository.EquipmentRepo
	Log       *logrus.Logger
}

func NewEquipmentHandler(eq *repository.EquipmentRepo, log *logrus.Logger) *EquipmentHandler {
	return &EquipmentHandler{Equipment: eq, Log: log}
}

type equipmentReq struct {
	Name   string `json:"name"`
	RoomID uint64 `json:"room_id"`
}

type equipmentResp struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	RoomID uint64 `json:"room_id"`
}

// List returns every equipment item.
func (h *EquipmentHandler) List(c echo.Context) error {
	items, err := h.Equipment.List(c.Request().Context())
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}
	out := make([]equipmentResp, 0, len(items))
	for _, e := range items {
		out = append(out, equipmentResp{ID: e.ID, Name: e.Name, RoomID: e.RoomID})
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one equipment item.
func (h *EquipmentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	e, err := h.Equipment.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, equipmentResp{ID: e.ID, Name: e.Name, RoomID: e.RoomID})
}

// Create adds an equipment item to a room.  Admin only.
func (h *EquipmentHandler) Create(c echo.Context) error {
	var req equipmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and room_id required"})
	}
	e := model.Equipment{Name: req.Name, RoomID: req.RoomID}
	if err := h.Equipment.Create(c.Request().Context(), &e); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, equipmentResp{ID: e.ID, Name: e.Name, RoomID: e.RoomID})
}

// Update rewrites an equipment item.  Admin only.
func (h *EquipmentHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req equipmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and room_id required"})
	}
	e := model.Equipment{ID: id, Name: req.Name, RoomID: req.RoomID}
	if err := h.Equipment.Update(c.Request().Context(), &e); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, equipmentResp{ID: e.ID, Name: e.Name, RoomID: e.RoomID})
}

// Delete removes an equipment item.  Items referenced by reservations
// are protected by the schema and surface as 422.  Admin only.
func (h *EquipmentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Equipment.Delete(c.Request().Context(), id); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
