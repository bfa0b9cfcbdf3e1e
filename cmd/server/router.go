package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/converselab/converse-api/internal/api"
	apiMiddleware "github.com/converselab/converse-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService)
	conversationHandler := api.NewConversationHandler(app.conversationService)
	messageHandler := api.NewMessageHandler(app.messageService)
	taskHandler := api.NewTaskHandler(app.messageService)
	feedbackHandler := api.NewFeedbackHandler(app.feedbackService)
	attachmentHandler := api.NewAttachmentHandler(app.attachmentService, app.config.Upload.MaxFileSize)
	adminHandler := api.NewAdminHandler(app.adminService)
	healthHandler := api.NewHealthHandler(app.healthChecker)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/health", healthHandler.Check)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Post("/conversations", conversationHandler.Create)
			r.Get("/conversations", conversationHandler.List)
			r.Get("/conversations/{conversationID}", conversationHandler.Get)
			r.Delete("/conversations/{conversationID}", conversationHandler.Delete)

			r.Post("/conversations/{conversationID}/messages", messageHandler.Send)
			r.Get("/tasks/{taskID}", taskHandler.GetStatus)

			r.Post("/feedback", feedbackHandler.Create)
			r.Get("/feedback", feedbackHandler.List)
			r.Get("/feedback/{feedbackID}", feedbackHandler.Get)

			r.Post("/attachments/upload", attachmentHandler.Upload)
			r.Get("/attachments", attachmentHandler.List)
			r.Get("/attachments/{attachmentID}", attachmentHandler.Get)
			r.Patch("/attachments/{attachmentID}", attachmentHandler.Update)
			r.Get("/attachments/{attachmentID}/download", attachmentHandler.Download)
			r.Delete("/attachments/{attachmentID}", attachmentHandler.Delete)

			r.Get("/admin/attachments", adminHandler.ListAttachments)
			r.Get("/admin/stats", adminHandler.GetStats)
		})
	})

	return r
}
