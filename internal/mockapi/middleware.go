package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const ctxUserKey = "user"

// ZapLogger logs one line per request.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if id := c.GetHeader("X-Request-ID"); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// BearerAuth validates the access token and puts the user in the context.
func (s *Server) BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := otel.Tracer("mockapi").Start(c.Request.Context(), "bearer_auth",
			trace.WithAttributes(attribute.String("middleware", "bearer_auth")))

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			span.SetAttributes(attribute.Bool("authenticated", false))
			span.End()
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			abortDetail(c, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}

		claims, err := s.issuer.parse(strings.TrimPrefix(auth, "Bearer "), tokenTypeAccess)
		var user *User
		if err == nil {
			user, _ = s.users.get(claims.Subject)
		}
		if user == nil {
			span.SetAttributes(attribute.Bool("authenticated", false))
			span.End()
			abortTokenNotValid(c, msgTokenNotValid)
			return
		}

		span.SetAttributes(attribute.Bool("authenticated", true), attribute.Int("user_id", user.ID))
		span.End()

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *User {
	v, _ := c.Get(ctxUserKey)
	u, _ := v.(*User)
	return u
}
