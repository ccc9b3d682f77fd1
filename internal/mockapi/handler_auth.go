package mockapi

import (
	"net/http"

	"github.com/DataRockMyWorld/workshopctl/internal/telemetry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Login handles POST /auth/login/, throttled per client IP.
func (s *Server) Login(c *gin.Context) {
	ctx := c.Request.Context()
	if !s.loginLimiter.allow(c.ClientIP()) {
		telemetry.RecordLogin(ctx, "throttled")
		abortThrottled(c, 60)
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.RecordLogin(ctx, "invalid")
		abortBind(c, err)
		return
	}

	user, ok := s.users.get(req.Email)
	if !ok {
		telemetry.RecordLogin(ctx, "rejected")
		abortDetail(c, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	pass, err := VerifyPassword(req.Password, s.cfg.Mock.PasswordPepper, user.PasswordHash)
	if err != nil || !pass {
		telemetry.RecordLogin(ctx, "rejected")
		abortDetail(c, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	pair, err := s.issuer.issue(user)
	if err != nil {
		s.log.Error("issue tokens", zap.Error(err))
		_ = c.Error(err)
		abortDetail(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}
	telemetry.RecordLogin(ctx, "ok")
	c.JSON(http.StatusOK, pair)
}

// Refresh rotates the refresh token and blacklists the old one.
func (s *Server) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	claims, user, ok := s.validRefresh(c, req.Refresh)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.remaining(s.now())); err != nil {
		s.log.Error("blacklist refresh token", zap.Error(err))
		abortDetail(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}
	pair, err := s.issuer.issue(user)
	if err != nil {
		s.log.Error("issue tokens", zap.Error(err))
		abortDetail(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Logout blacklists the given refresh token.
func (s *Server) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	claims, _, ok := s.validRefresh(c, req.Refresh)
	if !ok {
		return
	}
	if err := s.blacklist.Revoke(c.Request.Context(), claims.ID, claims.remaining(s.now())); err != nil {
		s.log.Error("blacklist refresh token", zap.Error(err))
		abortDetail(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) validRefresh(c *gin.Context, raw string) (*Claims, *User, bool) {
	claims, err := s.issuer.parse(raw, tokenTypeRefresh)
	if err != nil {
		abortTokenNotValid(c, msgRefreshInvalid)
		return nil, nil, false
	}
	revoked, err := s.blacklist.Revoked(c.Request.Context(), claims.ID)
	if err != nil {
		s.log.Error("check blacklist", zap.Error(err))
		abortDetail(c, http.StatusInternalServerError, "A server error occurred.")
		return nil, nil, false
	}
	if revoked {
		abortTokenNotValid(c, msgBlacklisted)
		return nil, nil, false
	}
	user, ok := s.users.get(claims.Subject)
	if !ok {
		abortTokenNotValid(c, msgRefreshInvalid)
		return nil, nil, false
	}
	return claims, user, true
}

func (s *Server) Me(c *gin.Context) {
	u := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"email":             u.Email,
		"can_write":         u.CanWrite(),
		"can_see_all_sites": u.CanSeeAllSites,
		"site_id":           u.SiteID,
		"is_superuser":      u.IsSuperuser,
	})
}
