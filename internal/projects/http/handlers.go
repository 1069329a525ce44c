package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wastewatch/foodwaste-backend/internal/api/http/middleware"
	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
	"github.com/wastewatch/foodwaste-backend/internal/projects/lifecycle"
)

func access(c *gin.Context) lifecycle.Access {
	return lifecycle.Access{RequestID: middleware.GetRequestID(c.Request.Context())}
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if req.Status != "" && !req.Status.IsValid() {
		badRequest(c, "invalid status")
		return
	}

	if req.ParentProjectID != nil {
		if id := strings.TrimSpace(*req.ParentProjectID); id != "" {
			req.ParentProjectID = &id
		} else {
			req.ParentProjectID = nil
		}
	}

	p, err := h.svc.Create(c.Request.Context(), domain.Project{
		ParentProjectID:    req.ParentProjectID,
		Name:               strings.TrimSpace(req.Name),
		Status:             req.Status,
		Duration:           req.Duration,
		Actions:            req.Actions,
		RegistrationPoints: req.RegistrationPoints,
	}, access(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) find(c *gin.Context) {
	var q domain.Query
	if parent := strings.TrimSpace(c.Query("parent_project_id")); parent != "" {
		q.ParentProjectID = &parent
	}
	q.RootsOnly = c.Query("roots") == "true"
	for _, raw := range c.QueryArray("status") {
		for _, v := range strings.Split(raw, ",") {
			st, err := domain.ParseStatus(strings.TrimSpace(v))
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			q.Statuses = append(q.Statuses, st)
		}
	}
	var ok bool
	if q.Limit, ok = intQuery(c, "limit"); !ok {
		return
	}
	if q.Offset, ok = intQuery(c, "offset"); !ok {
		return
	}

	items, err := h.svc.Find(c.Request.Context(), q, access(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"), access(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) patch(c *gin.Context) {
	var ops []domain.PatchOp
	if err := c.ShouldBindJSON(&ops); err != nil || len(ops) == 0 {
		badRequest(c, "body must be a non-empty JSON Patch array")
		return
	}

	p, err := h.svc.Patch(c.Request.Context(), c.Param("id"), ops, access(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) activeFollowUp(c *gin.Context) {
	view, err := h.svc.FollowUps(c.Request.Context(), c.Param("id"), access(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":               true,
		"project":          view.Parent,
		"active_follow_up": view.Active,
		"next_start":       view.NextStart,
	})
}

func (h *Handler) registration(c *gin.Context) {
	var req registrationReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body")
			return
		}
	}

	var date time.Time
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}

	p, err := h.svc.NotifyRegistration(c.Request.Context(), c.Param("id"), date, access(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, key+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
