// router.go - Builds the Gin engine with middleware and routes

package handlers // Declares the package name

import ( // Import required packages
	"email-login-backend/config"     // Project config (CORS, service name)
	"email-login-backend/database"   // Session provider
	"email-login-backend/middleware" // CORS middleware

	"github.com/gin-gonic/gin"                                                    // Gin web framework
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin" // Request spans
)

// SetupRouter wires middleware and routes. main and the handler tests share it.
func SetupRouter(cfg *config.Config, provider database.Provider) *gin.Engine {
	r := gin.New()                             // Create a new Gin router
	r.Use(gin.Logger(), gin.Recovery())        // Access log + panic to 500
	r.Use(otelgin.Middleware(cfg.ServiceName)) // One server span per request
	r.Use(middleware.CORS(cfg))                // All origins unless narrowed

	login := NewLoginHandler(provider)

	r.POST("/login", login.Login) // Public route: email login
	r.GET("/health", Health)      // Liveness check
	return r
}
