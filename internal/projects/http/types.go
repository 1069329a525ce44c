package http

import (
	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
	"github.com/wastewatch/foodwaste-backend/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc *service.LifecycleService
}

func New(svc *service.LifecycleService) *Handler {
	return &Handler{svc: svc}
}

type createReq struct {
	ParentProjectID    *string                    `json:"parent_project_id"`
	Name               string                     `json:"name"`
	Status             domain.Status              `json:"status"`
	Duration           domain.Duration            `json:"duration"`
	Actions            []domain.Action            `json:"actions"`
	RegistrationPoints []domain.RegistrationPoint `json:"registration_points"`
}

type registrationReq struct {
	Date string `json:"date"` // YYYY-MM-DD; empty means today on the service clock
}
