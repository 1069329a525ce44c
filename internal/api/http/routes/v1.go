package routes

import (
	"github.com/gin-gonic/gin"

	projecthttp "github.com/wastewatch/foodwaste-backend/internal/projects/http"
	"github.com/wastewatch/foodwaste-backend/internal/projects/service"
)

type V1Deps struct {
	Lifecycle *service.LifecycleService
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	projectsGroup := api.Group("/projects")
	projecthttp.New(dep.Lifecycle).Register(projectsGroup)
}
