package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/openbloc/chainfeed/internal/handlers"
	"github.com/openbloc/chainfeed/internal/ledger"
	"github.com/openbloc/chainfeed/internal/middleware"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all ledger node routes and injects dependencies.
// Everything under /api/v1 lives behind bearer-token authentication; only
// the health check is open. events may be nil when no journal is attached;
// the audit feed route is then not registered.
func SetupRoutes(e *echo.Echo, store ledger.Store, jwtSecret string, events handlers.EventSource) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api/v1")
	api.Use(middleware.ActorAuthMiddleware(jwtSecret))
	log.Println("Actor authentication middleware applied to /api/v1 group.")

	postHandler := handlers.NewPostHandler(store)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(store)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	likeHandler := handlers.NewLikeHandler(store)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Like routes configured.")

	if events != nil {
		eventHandler := handlers.NewEventHandler(events)
		eventHandler.RegisterEventRoutes(api)
		log.Println("Event routes configured.")
	}

	log.Println("All routes configured.")
}
