package bootstrap

import "github.com/gin-gonic/gin"

// SetGinMode picks the gin mode for APP_ENV. Anything other than
// production or test keeps gin's debug mode.
func SetGinMode(env string) {
	switch env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
}
