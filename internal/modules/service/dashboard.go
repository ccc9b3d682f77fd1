package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
)

type DashboardService interface {
	// Get is the HQ dashboard; site-scoped users get a 403.
	Get(ctx context.Context, periodDays int, siteID *int) (*model.Dashboard, error)
	Activities(ctx context.Context, limit int, siteID *int) ([]model.Activity, error)
	Site(ctx context.Context) (*model.SiteMetrics, error)
}

type dashboardService struct {
	api API
}

func NewDashboardService(api API) DashboardService {
	return &dashboardService{api: api}
}

func (s *dashboardService) Get(ctx context.Context, periodDays int, siteID *int) (*model.Dashboard, error) {
	if periodDays <= 0 {
		periodDays = 30
	}
	params := apiclient.BuildParams(map[string]any{"period": periodDays, "site_id": siteID})
	return doDecode[model.Dashboard](ctx, s.api, apiclient.WithParams("dashboard/", params))
}

func (s *dashboardService) Activities(ctx context.Context, limit int, siteID *int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = 5
	}
	params := apiclient.BuildParams(map[string]any{"limit": limit, "site_id": siteID})
	return listAll[model.Activity](ctx, s.api, apiclient.WithParams("dashboard/activities/", params))
}

func (s *dashboardService) Site(ctx context.Context) (*model.SiteMetrics, error) {
	return doDecode[model.SiteMetrics](ctx, s.api, "dashboard/site/",
		apiclient.WithHeader("Cache-Control", "no-store"))
}

// DirectoryService groups the small read-only endpoints.
type DirectoryService interface {
	Me(ctx context.Context) (*model.Me, error)
	Search(ctx context.Context, q string, limit int) (*model.SearchResults, error)
	Audit(ctx context.Context) ([]model.AuditEntry, error)
	ActivePromotions(ctx context.Context) ([]model.Promotion, error)
	ServiceCategories(ctx context.Context) ([]model.ServiceCategory, error)
}

type directoryService struct {
	api API
}

func NewDirectoryService(api API) DirectoryService {
	return &directoryService{api: api}
}

func (s *directoryService) Me(ctx context.Context) (*model.Me, error) {
	return doDecode[model.Me](ctx, s.api, "me/")
}

func (s *directoryService) Search(ctx context.Context, q string, limit int) (*model.SearchResults, error) {
	if limit <= 0 {
		limit = 10
	}
	values := url.Values{}
	values.Set("q", q)
	values.Set("limit", strconv.Itoa(limit))
	return doDecode[model.SearchResults](ctx, s.api, apiclient.WithParams("search/", values))
}

func (s *directoryService) Audit(ctx context.Context) ([]model.AuditEntry, error) {
	return listAll[model.AuditEntry](ctx, s.api, "audit/")
}

func (s *directoryService) ActivePromotions(ctx context.Context) ([]model.Promotion, error) {
	return listAll[model.Promotion](ctx, s.api, "promotions/active/")
}

func (s *directoryService) ServiceCategories(ctx context.Context) ([]model.ServiceCategory, error) {
	return listAll[model.ServiceCategory](ctx, s.api, "service-categories/")
}
