package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
)

// writeError maps lifecycle errors to a status code and a reason the
// frontend can act on.
func writeError(c *gin.Context, err error) {
	var rejected *domain.FollowUpRejectedError
	if errors.As(err, &rejected) {
		c.JSON(http.StatusConflict, gin.H{
			"ok":            false,
			"error":         err.Error(),
			"reason":        rejected.Reason(),
			"parent_id":     rejected.ParentID,
			"parent_status": rejected.ParentStatus,
			"allowed":       rejected.Allowed,
		})
		return
	}

	var cascade *domain.CascadeError
	switch {
	case errors.As(err, &cascade):
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":         false,
			"error":      err.Error(),
			"reason":     cascade.Reason(),
			"step":       cascade.Step,
			"project_id": cascade.ProjectID,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error(), "reason": domain.ReasonNotFound})
	case errors.Is(err, domain.ErrPatchConflict):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error(), "reason": domain.ReasonPatchConflict})
	case errors.Is(err, domain.ErrInvalidPatch),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidDuration):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error(), "reason": domain.ReasonInvalidRequest})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error(), "reason": domain.ReasonPersistence})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg, "reason": domain.ReasonInvalidRequest})
}
