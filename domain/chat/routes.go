package chat

import (
	"github.com/labstack/echo/v4"

	"github.com/mesa-hq/mesa-server/pkg/auth"
)

// RegisterRoutes registers chat routes with the Echo router
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/chat")
	g.Use(authMiddleware.RequireAuth())

	// Streaming endpoint
	g.POST("/stream", h.StreamChat)

	// Conversation CRUD
	g.GET("/conversations", h.ListConversations)
	g.POST("/conversations", h.CreateConversation)
	g.GET("/conversations/:id", h.GetConversation)
	g.PATCH("/conversations/:id", h.UpdateConversation)
	g.DELETE("/conversations/:id", h.DeleteConversation)
}
