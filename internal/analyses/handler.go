package analyses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"caseflow-backend/internal/cases"
	"caseflow-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cases/:id/analyze", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	report, err := h.Svc.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, cases.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "case not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", nil)
		}
		return
	}
	respond.OK(c, report)
}
