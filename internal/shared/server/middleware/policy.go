package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"caseflow-backend/internal/shared/policy"
	"caseflow-backend/internal/shared/server/respond"
)

const (
	actorIDKey   = "actorId"
	actorRoleKey = "actorRole"
)

// Policy resolves the acting principal from request headers and checks the
// central policy table before any handler runs. In dev, requests without an
// identity act as the system principal so local tooling keeps working.
func Policy(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		actor := policy.Actor{
			ID:   strings.TrimSpace(c.GetHeader("X-Actor-Id")),
			Role: strings.ToLower(strings.TrimSpace(c.GetHeader("X-Actor-Role"))),
		}
		if actor.Role == "" {
			if env != "dev" && env != "local" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing identity", nil)
				return
			}
			actor = policy.Actor{ID: "local", Role: policy.RoleSystem}
		}

		if !policy.Evaluate(actor, actionFor(c), policy.ResourceCase) {
			respond.Error(c, http.StatusForbidden, "forbidden", "action not permitted for role", nil)
			return
		}

		c.Set(actorIDKey, actor.ID)
		c.Set(actorRoleKey, actor.Role)
		c.Next()
	}
}

// actionFor maps the request shape onto a policy action.
func actionFor(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case c.Request.Method == http.MethodGet:
		return policy.ActionRead
	case strings.HasSuffix(path, "/analyze"):
		return policy.ActionAnalyze
	case strings.HasSuffix(path, "/score"):
		return policy.ActionScore
	case strings.HasSuffix(path, "/transition"):
		return policy.ActionTransition
	default:
		return policy.ActionCreate
	}
}

// ActorIDFromContext fetches the actor ID set by the policy middleware.
func ActorIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(actorIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// ActorRoleFromContext fetches the actor role set by the policy middleware.
func ActorRoleFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(actorRoleKey)
	if role, ok := val.(string); ok {
		return role
	}
	return ""
}
