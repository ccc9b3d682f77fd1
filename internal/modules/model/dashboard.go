package model

type DashboardSummary struct {
	TotalSites           int    `json:"total_sites"`
	TotalServiceRequests int    `json:"total_service_requests"`
	Pending              int    `json:"pending"`
	InProgress           int    `json:"in_progress"`
	Completed            int    `json:"completed"`
	TotalRevenue         string `json:"total_revenue"`
	TotalCustomers       int    `json:"total_customers"`
	TotalMechanics       int    `json:"total_mechanics"`
	TotalVehicles        int    `json:"total_vehicles"`
	LowStockCount        int    `json:"low_stock_count"`
}

type SiteSummary struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Location        string `json:"location"`
	ServiceRequests int    `json:"service_requests"`
	Completed       int    `json:"completed"`
	Pending         int    `json:"pending"`
	InProgress      int    `json:"in_progress"`
	Revenue         string `json:"revenue"`
	MechanicsCount  int    `json:"mechanics_count"`
}

type Dashboard struct {
	Summary    DashboardSummary `json:"summary"`
	BySite     []SiteSummary    `json:"by_site"`
	PeriodDays int              `json:"period_days"`
}

// SiteMetrics is the site-scoped sales view of dashboard/site/.
type SiteMetrics struct {
	RevenueToday    string `json:"revenue_today"`
	RevenueWeek     string `json:"revenue_week"`
	SalesCountToday int    `json:"sales_count_today"`
	SalesCountWeek  int    `json:"sales_count_week"`
	PaidToday       string `json:"paid_today"`
	UnpaidToday     string `json:"unpaid_today"`
}

type ActivityLink struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

type Activity struct {
	Type        string        `json:"type"`
	SiteID      int           `json:"site_id"`
	SiteName    string        `json:"site_name"`
	Description string        `json:"description"`
	CreatedAt   string        `json:"created_at"`
	Link        *ActivityLink `json:"link,omitempty"`
}

type AuditEntry struct {
	ID         int    `json:"id"`
	Action     string `json:"action"`
	ModelLabel string `json:"model_label"`
	ObjectID   string `json:"object_id"`
	ObjectRepr string `json:"object_repr"`
	Changes    string `json:"changes"`
	User       string `json:"user"`
	CreatedAt  string `json:"created_at"`
}

type SearchResults struct {
	ServiceRequests []ServiceRequest `json:"service_requests"`
	Customers       []Customer       `json:"customers"`
	Vehicles        []Vehicle        `json:"vehicles"`
}
