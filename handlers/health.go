// health.go - Liveness check

package handlers // Declares the package name

import ( // Import required packages
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// Health reports that the process is serving. It does not touch the database,
// since opening a connection per check would defeat the per-request model.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"}) // Always 200 while the process serves
}
