package cases

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"caseflow-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the cases service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches case routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cases", h.createCase)
	rg.GET("/cases", h.listCases)
	rg.GET("/cases/:id", h.getCase)
	rg.POST("/cases/:id/score", h.computeScore)
	rg.POST("/cases/:id/transition", h.transition)
}

type createCaseRequest struct {
	SubjectName    string `json:"subjectName"`
	SubjectAddress string `json:"subjectAddress"`
	Category       string `json:"category" binding:"required"`
	RawText        string `json:"rawText"`
	RawTextKey     string `json:"rawTextKey"`
}

func (h *Handler) createCase(c *gin.Context) {
	var req createCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "category is required", nil)
		return
	}
	if req.RawText == "" && req.RawTextKey == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "rawText or rawTextKey is required", nil)
		return
	}

	created, err := h.Svc.Create(c.Request.Context(), CreateInput{
		SubjectName:    req.SubjectName,
		SubjectAddress: req.SubjectAddress,
		Category:       req.Category,
		RawText:        req.RawText,
		RawTextKey:     req.RawTextKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownCategory):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown case category", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create case", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, created)
}

func (h *Handler) getCase(c *gin.Context) {
	found, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "case not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch case", nil)
		}
		return
	}
	respond.OK(c, found)
}

func (h *Handler) listCases(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list cases", nil)
		return
	}
	respond.OK(c, gin.H{"cases": list})
}

func (h *Handler) computeScore(c *gin.Context) {
	score, err := h.Svc.EvaluateScore(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "case not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute score", nil)
		}
		return
	}
	respond.OK(c, gin.H{"caseId": c.Param("id"), "score": score})
}

type transitionRequest struct {
	Target     string `json:"target" binding:"required"`
	ResolvedBy string `json:"resolvedBy"`
	Notes      string `json:"notes"`
}

func (h *Handler) transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "target status is required", nil)
		return
	}
	target, ok := ParseStatus(req.Target)
	if !ok {
		respond.Error(c, http.StatusUnprocessableEntity, "invalid_transition", "unknown target status", []map[string]string{
			{"field": "target", "issue": "unknown_status"},
		})
		return
	}

	var resolution *Resolution
	if target == StatusResolved {
		resolution = &Resolution{
			ResolvedBy: req.ResolvedBy,
			Notes:      req.Notes,
			ResolvedAt: time.Now().UTC(),
		}
	}

	updated, err := h.Svc.Transition(c.Request.Context(), c.Param("id"), target, resolution)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "case not found", nil)
		case IsInvalidTransition(err), errors.Is(err, ErrMissingResolution):
			respond.Error(c, http.StatusUnprocessableEntity, "invalid_transition", err.Error(), nil)
		case errors.Is(err, ErrStatusConflict):
			respond.Error(c, http.StatusConflict, "conflict", "case status changed concurrently, retry", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to transition case", nil)
		}
		return
	}
	respond.OK(c, updated)
}
