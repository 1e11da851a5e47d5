// cors.go - CORS middleware for browser clients
//
// By default every origin is allowed, which is what the login page relies on
// when it is served from a different host. CORS_ALLOWED_ORIGINS narrows it.

package middleware // Declares the package name

import ( // Import required packages
	"time" // Preflight cache duration

	"email-login-backend/config" // Allowed origins

	"github.com/gin-contrib/cors" // CORS handling for Gin
	"github.com/gin-gonic/gin"    // Gin web framework
)

// CORS returns a Gin middleware that answers preflight requests and sets CORS headers.
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if cfg.AllowsAllOrigins() {
		corsCfg.AllowAllOrigins = true // Any origin may call the API
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins // Only the listed origins
	}
	return cors.New(corsCfg)
}
