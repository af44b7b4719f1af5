// Package router wires every HTTP route to its handler and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-equipment-booking/internal/handler"
	"github.com/iliyamo/room-equipment-booking/internal/middleware"
	"github.com/iliyamo/room-equipment-booking/internal/model"
)

// Handlers groups everything RegisterRoutes needs.
type Handlers struct {
	Auth         *handler.AuthHandler
	Reservations *handler.ReservationHandler
	Availability *handler.AvailabilityHandler
	Rooms        *handler.RoomHandler
	Equipment    *handler.EquipmentHandler
	Maintenance  *handler.MaintenanceHandler
	Reviews      *handler.ReviewHandler
	Stats        *handler.StatsHandler
	Calendar     *handler.CalendarHandler
}

// RegisterRoutes sets up the route tree:
//
//	/healthz            liveness, no auth
//	/v1/auth/*          register, login, token handling
//	/v1/*               authenticated user endpoints
//	/v1/admin/*         ADMIN-only management endpoints
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/healthz", handler.Health)

	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))

	v1.GET("/me", h.Auth.Me)

	v1.GET("/availability", h.Availability.Check)

	v1.POST("/reservations", h.Reservations.Create)
	v1.GET("/reservations/mine", h.Reservations.ListMine)
	v1.GET("/reservations/:id", h.Reservations.Get)
	v1.POST("/reservations/:id/cancel", h.Reservations.Cancel)

	v1.GET("/rooms", h.Rooms.List)
	v1.GET("/rooms/:id", h.Rooms.Get)
	v1.GET("/rooms/:id/reservations", h.Reservations.ListForRoom)
	v1.GET("/rooms/:id/maintenance", h.Maintenance.ListForRoom)
	v1.GET("/rooms/:id/reviews", h.Reviews.ListForRoom)
	v1.POST("/rooms/:id/reviews", h.Reviews.Create)
	v1.PUT("/reviews/:id", h.Reviews.Update)

	v1.GET("/equipment", h.Equipment.List)
	v1.GET("/equipment/:id", h.Equipment.Get)
	v1.GET("/equipment/:id/reservations", h.Reservations.ListForEquipment)

	v1.POST("/calendar/link", h.Calendar.Link)
	v1.DELETE("/calendar/link", h.Calendar.Unlink)
	v1.GET("/calendar/status", h.Calendar.Status)

	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	admin.POST("/reservations/:id/approve", h.Reservations.Approve)
	admin.POST("/reservations/:id/reject", h.Reservations.Reject)
	admin.GET("/reservations/:id/audit", h.Reservations.AuditTrail)

	admin.POST("/rooms", h.Rooms.Create)
	admin.PUT("/rooms/:id", h.Rooms.Update)
	admin.DELETE("/rooms/:id", h.Rooms.Deactivate)
	admin.POST("/rooms/:id/maintenance", h.Maintenance.Create)
	admin.DELETE("/maintenance/:id", h.Maintenance.Deactivate)

	admin.POST("/equipment", h.Equipment.Create)
	admin.PUT("/equipment/:id", h.Equipment.Update)
	admin.DELETE("/equipment/:id", h.Equipment.Delete)

	admin.GET("/stats/rooms", h.Stats.MonthlyRoomStats)
}
