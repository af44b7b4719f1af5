package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/model"
	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// ReviewHandler lets users review rooms they have actually used.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
	Log     *logrus.Logger
}

func NewReviewHandler(reviews *repository.ReviewRepo, log *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Log: log}
}

type reviewReq struct {
	Rating  uint8   `json:"rating"`
	Comment *string `json:"comment"`
}

// ListForRoom returns a room's reviews, newest first.
func (h *ReviewHandler) ListForRoom(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	reviews, err := h.Reviews.ListForRoom(c.Request().Context(), roomID, currentUserID(c))
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// Create posts a review.  The caller must have a completed, non-
// cancelled reservation of the room and may review each room once.
func (h *ReviewHandler) Create(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be 1 to 5"})
	}

	userID := currentUserID(c)
	eligible, err := h.Reviews.HasCompletedStay(c.Request().Context(), roomID, userID, time.Now().UTC())
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}
	if !eligible {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no completed reservation for this room"})
	}

	rv := model.Review{
		RoomID:    roomID,
		UserID:    userID,
		Rating:    req.Rating,
		CreatedAt: time.Now().UTC(),
	}
	if req.Comment != nil {
		if comment := strings.TrimSpace(*req.Comment); comment != "" {
			rv.Comment = &comment
		}
	}
	if err := h.Reviews.Create(c.Request().Context(), &rv); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": rv.ID})
}

// Update edits the caller's own review.
func (h *ReviewHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be 1 to 5"})
	}
	var comment *string
	if req.Comment != nil {
		if trimmed := strings.TrimSpace(*req.Comment); trimmed != "" {
			comment = &trimmed
		}
	}
	if err := h.Reviews.Update(c.Request().Context(), id, currentUserID(c), req.Rating, comment); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
