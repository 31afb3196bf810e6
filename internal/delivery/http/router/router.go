// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"dispatch/internal/delivery/http/middleware"
	"dispatch/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	IdentityHandler     *handler.IdentityHandler
	RequestHandler      *handler.RequestHandler
	ChatHandler         *handler.ChatHandler
	NotificationHandler *handler.NotificationHandler
	AdminHandler        *handler.AdminHandler
	EventHandler        *handler.EventHandler
	AdminMiddleware     *middleware.AdminMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	identityHandler     *handler.IdentityHandler
	requestHandler      *handler.RequestHandler
	chatHandler         *handler.ChatHandler
	notificationHandler *handler.NotificationHandler
	adminHandler        *handler.AdminHandler
	eventHandler        *handler.EventHandler
	adminMiddleware     *middleware.AdminMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		identityHandler:     params.IdentityHandler,
		requestHandler:      params.RequestHandler,
		chatHandler:         params.ChatHandler,
		notificationHandler: params.NotificationHandler,
		adminHandler:        params.AdminHandler,
		eventHandler:        params.EventHandler,
		adminMiddleware:     params.AdminMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Change feed for browsers (server-sent events)
	e.GET("/events", r.eventHandler.Stream)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register/user", r.identityHandler.RegisterUser)
		authGroup.POST("/register/worker", r.identityHandler.RegisterWorker)
		authGroup.POST("/login/user", r.identityHandler.LoginUser)
		authGroup.POST("/login/worker", r.identityHandler.LoginWorker)
	}

	// User routes
	userGroup := e.Group("/users")
	{
		userGroup.GET("/:id", r.identityHandler.GetUser)
		userGroup.GET("/:id/requests", r.requestHandler.ListForUser)
		userGroup.GET("/:id/notifications", r.notificationHandler.ListForUser)
		userGroup.POST("/:id/notifications/:notificationId/read", r.notificationHandler.MarkUserRead)
	}

	// Worker routes
	workerGroup := e.Group("/workers")
	{
		workerGroup.GET("", r.identityHandler.ListWorkers)
		workerGroup.GET("/:id", r.identityHandler.GetWorker)
		workerGroup.PUT("/:id", r.identityHandler.UpdateWorker)
		workerGroup.GET("/:id/requests", r.requestHandler.ListForWorker)
		workerGroup.GET("/:id/notifications", r.notificationHandler.ListForWorker)
		workerGroup.POST("/:id/notifications/:notificationId/read", r.notificationHandler.MarkWorkerRead)
	}

	// Request lifecycle and conversations
	requestGroup := e.Group("/requests")
	{
		requestGroup.POST("", r.requestHandler.Create)
		requestGroup.GET("/:id", r.requestHandler.Get)
		requestGroup.PUT("/:id/status", r.requestHandler.UpdateStatus)
		requestGroup.DELETE("/:id", r.requestHandler.Cancel)
		requestGroup.GET("/:id/messages", r.chatHandler.List)
		requestGroup.POST("/:id/messages", r.chatHandler.Send)
		requestGroup.GET("/:id/unread/:participantId", r.chatHandler.Unread)
		requestGroup.POST("/:id/read/:participantId", r.chatHandler.MarkRead)
	}

	// Maintenance surface: login is open (rate limited), the rest requires
	// the admin token.
	adminGroup := e.Group("/admin")
	adminGroup.POST("/login", r.adminHandler.Login)
	guarded := adminGroup.Group("")
	guarded.Use(r.adminMiddleware.RequireAdmin)
	{
		guarded.POST("/reset", r.adminHandler.Reset)
		guarded.POST("/prune", r.adminHandler.Prune)
	}
}
