package mockapi

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const seededServiceRequests = 60

// Server is an in-process stand-in for the workshop backend.
type Server struct {
	cfg          *config.Config
	log          *zap.Logger
	users        *userStore
	data         *dataset
	issuer       *issuer
	blacklist    Blacklist
	loginLimiter *ipLimiter
	now          func() time.Time
	demo         []DemoUser
}

type Option func(*Server)

func WithBlacklist(b Blacklist) Option {
	return func(s *Server) { s.blacklist = b }
}

// WithClock fixes the time used for token issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithUsers replaces the seeded demo accounts.
func WithUsers(users ...DemoUser) Option {
	return func(s *Server) { s.demo = users }
}

func New(cfg *config.Config, log *zap.Logger, opts ...Option) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:          cfg,
		log:          log,
		users:        newUserStore(),
		loginLimiter: newIPLimiter(cfg.Mock.LoginPerMinute),
		now:          time.Now,
		demo:         defaultDemoUsers(cfg.Smoke.Email, cfg.Smoke.Password),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.blacklist == nil {
		s.blacklist = NewMemoryBlacklist()
	}
	s.issuer = &issuer{
		secret:     []byte(cfg.Mock.JWTSecret),
		accessTTL:  time.Duration(cfg.Mock.AccessTTLSec) * time.Second,
		refreshTTL: time.Duration(cfg.Mock.RefreshTTLSec) * time.Second,
		now:        s.now,
	}
	s.data = seedDataset(seededServiceRequests, s.now())

	for i, d := range s.demo {
		hash, err := HashPassword(d.Password, cfg.Mock.PasswordPepper)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", d.Email, err)
		}
		s.users.add(&User{
			ID:             i + 1,
			Email:          d.Email,
			PasswordHash:   hash,
			SiteID:         d.SiteID,
			CanSeeAllSites: d.SiteID == nil,
			IsSuperuser:    d.IsSuperuser,
		})
	}
	return s, nil
}

// Router builds the gin engine without CORS.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if s.cfg.Telemetry.Enabled && s.cfg.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(s.cfg.App.Name + "-mock"))
		r.Use(telemetry.TraceIDMiddleware())
	}
	r.Use(ZapLogger(s.log))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	auth := r.Group("/auth")
	{
		auth.POST("/login/", s.Login)
		auth.POST("/refresh/", s.Refresh)
		auth.POST("/logout/", s.Logout)
	}

	v1 := r.Group(s.cfg.API.Prefix)
	{
		v1.Use(s.BearerAuth())

		v1.GET("/me/", s.Me)

		v1.GET("/service_request/", s.ListServiceRequests)
		v1.GET("/service_request/:id/", s.GetServiceRequest)
		v1.POST("/service_request/:id/complete/", s.CompleteServiceRequest)

		v1.GET("/customers/", s.ListCustomers)
		v1.GET("/customers/:id/", s.GetCustomer)

		v1.GET("/invoices/", s.ListInvoices)
		v1.GET("/invoices/:id/pdf/", s.InvoicePDF)

		v1.GET("/dashboard/", s.Dashboard)
		v1.GET("/dashboard/site/", s.SiteDashboard)
		v1.GET("/dashboard/reports/", s.Reports)
		v1.GET("/dashboard/export/", s.Export)
	}

	r.NoRoute(s.spaShell)
	return r
}

// Handler wraps the router with CORS for the frontend dev server.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   s.cfg.Mock.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Cache-Control", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Trace-Id"},
		AllowCredentials: true,
	}).Handler(s.Router())
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Mock.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("mock api listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("mock api stopped")
	return nil
}

const spaHTML = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Workshop</title></head>
<body><div id="root" data-route="%s"></div></body>
</html>
`

// spaShell answers browser navigations with the frontend's index page and everything else
// with a DRF 404.
func (s *Server) spaShell(c *gin.Context) {
	path := c.Request.URL.Path
	if c.Request.Method != http.MethodGet || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/auth/") {
		abortDetail(c, http.StatusNotFound, msgNotFound)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(spaHTML, html.EscapeString(path))))
}
