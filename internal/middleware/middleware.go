package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
)

const (
	RequestIDHeader = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxClaims    = "claims"
)

// abort writes the failure envelope shared with the v1 handlers.
func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// RequestID tags the request with the caller's X-Request-ID or a fresh UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// ClaimsFrom returns the authenticated caller, or nil on public routes.
func ClaimsFrom(c *gin.Context) *domain.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*domain.Claims)
	return claims
}

// ActorFrom describes the caller for auditing.
func ActorFrom(c *gin.Context) service.Actor {
	actor := service.Actor{
		IPAddress: c.ClientIP(),
		RequestID: GetRequestID(c),
	}
	if claims := ClaimsFrom(c); claims != nil {
		actor.Role = claims.Role
		if claims.UserID != uuid.Nil {
			id := claims.UserID
			actor.UserID = &id
		}
	}
	return actor
}

// NotFound answers unknown routes with the failure envelope.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abort(c, http.StatusNotFound, "route not found")
	}
}

func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		abort(c, http.StatusMethodNotAllowed, "method not allowed")
	}
}
