package routes

import (
	"campus-rms/internal/adapters/http/handlers"
	"campus-rms/internal/adapters/http/middleware"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/config"
	"campus-rms/internal/core/graph"
	"campus-rms/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, svc *services.Services, store repositories.Store, graphStore graph.Store, cfg *config.Config) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.AppMode, store, graphStore)
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Users)
	userHandler := handlers.NewUserHandler(svc.Users, svc.Requests, svc.Events)
	equipmentHandler := handlers.NewEquipmentHandler(svc.Equipment, svc.Requests)
	departmentHandler := handlers.NewDepartmentHandler(svc.Departments, svc.Requests)
	requestHandler := handlers.NewRequestHandler(svc.Requests)
	eventHandler := handlers.NewEventHandler(svc.Events)
	adminHandler := handlers.NewAdminHandler(svc.Drift)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthMiddleware(svc.Auth)

	// API Info
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public except /me)
	setupAuthRoutes(apiV1.Group("/auth"), authHandler, auth, cfg)

	userRoutes := apiV1.Group("/users", auth)
	setupUserRoutes(userRoutes, userHandler)

	equipmentRoutes := apiV1.Group("/equipment", auth)
	setupEquipmentRoutes(equipmentRoutes, equipmentHandler)

	departmentRoutes := apiV1.Group("/departments", auth)
	setupDepartmentRoutes(departmentRoutes, departmentHandler)

	requestRoutes := apiV1.Group("/requests", auth)
	setupRequestRoutes(requestRoutes, requestHandler)

	eventRoutes := apiV1.Group("/events", auth)
	setupEventRoutes(eventRoutes, eventHandler)

	eventRequestRoutes := apiV1.Group("/event-requests", auth, middleware.HODOnly())
	eventRequestRoutes.Put("/:id/approve", eventHandler.ApproveEventRequest)
	eventRequestRoutes.Put("/:id/reject", eventHandler.RejectEventRequest)

	// Admin routes (STAFF only)
	adminRoutes := apiV1.Group("/admin", auth, middleware.StaffOnly())
	adminRoutes.Get("/consistency", adminHandler.Consistency)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, auth fiber.Handler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(cfg.AuthRateLimit), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(cfg.AuthRateLimit), handler.Login)

	// Protected routes
	router.Get("/me", auth, handler.Me)
}

// setupUserRoutes configures user routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", middleware.StaffOnly(), handler.DeleteUser)
	router.Get("/:id/requests", handler.ListUserRequests)
	router.Get("/:id/event-requests", handler.ListUserEventRequests)
}

// setupEquipmentRoutes configures equipment routes
func setupEquipmentRoutes(router fiber.Router, handler *handlers.EquipmentHandler) {
	router.Get("/", handler.ListEquipment)
	router.Get("/:id", handler.GetEquipment)
	router.Get("/:id/requests", handler.ListEquipmentRequests)

	// Inventory management (STAFF or HOD)
	router.Post("/", middleware.StaffOrHOD(), handler.CreateEquipment)
	router.Put("/:id", middleware.StaffOrHOD(), handler.UpdateEquipment)
	router.Put("/:id/status", middleware.StaffOrHOD(), handler.ChangeStatus)
	router.Delete("/:id", middleware.StaffOrHOD(), handler.DeleteEquipment)
}

// setupDepartmentRoutes configures department routes
func setupDepartmentRoutes(router fiber.Router, handler *handlers.DepartmentHandler) {
	router.Get("/", handler.ListDepartments)
	router.Get("/:name", handler.GetDepartment)
	router.Get("/:name/requests", handler.ListDepartmentRequests)

	router.Post("/", middleware.StaffOrHOD(), handler.CreateDepartment)
	router.Put("/:name", middleware.StaffOrHOD(), handler.UpdateDepartment)
}

// setupRequestRoutes configures equipment request routes
func setupRequestRoutes(router fiber.Router, handler *handlers.RequestHandler) {
	router.Post("/", middleware.StudentOnly(), handler.CreateRequest)
	router.Get("/:id", handler.GetRequest)

	// Review (HOD of the equipment's department, checked by the service)
	router.Put("/:id/approve", middleware.HODOnly(), handler.ApproveRequest)
	router.Put("/:id/reject", middleware.HODOnly(), handler.RejectRequest)

	router.Put("/:id/complete", middleware.StaffOrHOD(), handler.CompleteRequest)
	router.Put("/:id/cancel", handler.CancelRequest)
}

// setupEventRoutes configures event routes
func setupEventRoutes(router fiber.Router, handler *handlers.EventHandler) {
	router.Get("/", handler.ListEvents)
	router.Post("/", handler.CreateEvent)
	router.Get("/:id", handler.GetEvent)
	router.Put("/:id/status", middleware.HODOnly(), handler.UpdateEventStatus)
	router.Delete("/:id", middleware.StaffOrHOD(), handler.DeleteEvent)

	router.Get("/:id/requests", handler.ListEventRequests)
	router.Post("/:id/requests", handler.CreateEventRequest)
}
