package mockapi

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
)

// dataset is the fixture data behind the mock endpoints.
type dataset struct {
	mu              sync.RWMutex
	sites           []model.Site
	customers       []model.Customer
	serviceRequests []model.ServiceRequest
	invoices        []model.Invoice
}

var srStatuses = []string{model.StatusPending, model.StatusInProgress, model.StatusCompleted, model.StatusDraft}

func seedDataset(serviceRequests int, now time.Time) *dataset {
	d := &dataset{
		sites: []model.Site{
			{ID: 1, Name: "Accra Central", Location: "Accra"},
			{ID: 2, Name: "Kumasi North", Location: "Kumasi"},
		},
		customers: []model.Customer{
			{ID: 1, FirstName: "Walk-in", PhoneNumber: "0000000000"},
			{ID: 2, FirstName: "Ama", LastName: "Mensah", PhoneNumber: "0244000001", ReceiveServiceReminders: true},
			{ID: 3, FirstName: "Kofi", LastName: "Boateng", PhoneNumber: "0244000002"},
		},
	}

	for i := 1; i <= serviceRequests; i++ {
		sr := model.ServiceRequest{
			ID:              i,
			TransactionType: "service",
			Customer:        2 + i%2,
			Site:            1 + i%2,
			Description:     fmt.Sprintf("Job %d", i),
			Status:          srStatuses[i%len(srStatuses)],
			LaborCost:       fmt.Sprintf("%d.00", 50+i*10),
			CreatedAt:       now.Add(-time.Duration(i) * time.Hour).UTC().Format(time.RFC3339),
		}
		if i%5 == 0 {
			sr.TransactionType = "sale"
			sr.Customer = 1
		} else {
			vehicle := sr.Customer
			sr.Vehicle = &vehicle
			mechanic := 1 + i%3
			sr.AssignedMechanic = &mechanic
		}
		prefix := "SR"
		if sr.TransactionType == "sale" {
			prefix = "SALE"
		}
		sr.DisplayNumber = fmt.Sprintf("%s-%d-%04d", prefix, now.Year(), i)
		d.serviceRequests = append(d.serviceRequests, sr)

		if sr.Status == model.StatusCompleted {
			d.invoices = append(d.invoices, model.Invoice{
				ID:             len(d.invoices) + 1,
				ServiceRequest: sr.ID,
				TotalCost:      sr.LaborCost,
				Paid:           i%2 == 0,
				CreatedAt:      sr.CreatedAt,
				UpdatedAt:      sr.CreatedAt,
			})
		}
	}
	return d
}

type srQuery struct {
	siteID     *int
	customerID *int
	vehicleID  *int
	mechanicID *int
	partsOnly  bool
}

func (d *dataset) listServiceRequests(q srQuery) []model.ServiceRequest {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []model.ServiceRequest{}
	for _, sr := range d.serviceRequests {
		if q.siteID != nil && sr.Site != *q.siteID {
			continue
		}
		if q.customerID != nil && sr.Customer != *q.customerID {
			continue
		}
		if q.vehicleID != nil && (sr.Vehicle == nil || *sr.Vehicle != *q.vehicleID) {
			continue
		}
		if q.mechanicID != nil && (sr.AssignedMechanic == nil || *sr.AssignedMechanic != *q.mechanicID) {
			continue
		}
		if q.partsOnly && sr.Vehicle != nil {
			continue
		}
		out = append(out, sr)
	}
	// newest first
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (d *dataset) serviceRequest(id int, siteID *int) (model.ServiceRequest, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, sr := range d.serviceRequests {
		if sr.ID == id && (siteID == nil || sr.Site == *siteID) {
			return sr, true
		}
	}
	return model.ServiceRequest{}, false
}

var errAlreadyCompleted = errors.New("service request is already completed")

func (d *dataset) completeServiceRequest(id int, siteID *int) (model.ServiceRequest, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.serviceRequests {
		sr := &d.serviceRequests[i]
		if sr.ID != id || (siteID != nil && sr.Site != *siteID) {
			continue
		}
		if sr.Status == model.StatusCompleted {
			return *sr, true, errAlreadyCompleted
		}
		sr.Status = model.StatusCompleted
		return *sr, true, nil
	}
	return model.ServiceRequest{}, false, nil
}

func (d *dataset) listCustomers() []model.Customer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Customer(nil), d.customers...)
}

func (d *dataset) customer(id int) (model.Customer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.customers {
		if c.ID == id {
			return c, true
		}
	}
	return model.Customer{}, false
}

func (d *dataset) listInvoices() []model.Invoice {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Invoice(nil), d.invoices...)
}

func (d *dataset) invoice(id int) (model.Invoice, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, inv := range d.invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return model.Invoice{}, false
}

func (d *dataset) dashboard(periodDays int) model.Dashboard {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := model.Dashboard{PeriodDays: periodDays}
	out.Summary.TotalSites = len(d.sites)
	out.Summary.TotalCustomers = len(d.customers)
	out.Summary.TotalServiceRequests = len(d.serviceRequests)

	bySite := map[int]*model.SiteSummary{}
	for _, s := range d.sites {
		bySite[s.ID] = &model.SiteSummary{ID: s.ID, Name: s.Name, Location: s.Location, Revenue: "0.00"}
	}
	revenue := 0.0
	siteRevenue := map[int]float64{}
	for _, sr := range d.serviceRequests {
		ss := bySite[sr.Site]
		if ss != nil {
			ss.ServiceRequests++
		}
		switch sr.Status {
		case model.StatusPending:
			out.Summary.Pending++
			if ss != nil {
				ss.Pending++
			}
		case model.StatusInProgress:
			out.Summary.InProgress++
			if ss != nil {
				ss.InProgress++
			}
		case model.StatusCompleted:
			out.Summary.Completed++
			if ss != nil {
				ss.Completed++
			}
			var cost float64
			_, _ = fmt.Sscanf(sr.LaborCost, "%f", &cost)
			revenue += cost
			siteRevenue[sr.Site] += cost
		}
	}
	out.Summary.TotalRevenue = fmt.Sprintf("%.2f", revenue)
	for _, s := range d.sites {
		ss := bySite[s.ID]
		ss.Revenue = fmt.Sprintf("%.2f", siteRevenue[s.ID])
		out.BySite = append(out.BySite, *ss)
	}
	return out
}

// siteMetrics sums completed jobs for one site over the last day and week.
func (d *dataset) siteMetrics(siteID int, now time.Time) model.SiteMetrics {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var today, week, paid float64
	out := model.SiteMetrics{}
	for _, sr := range d.serviceRequests {
		if sr.Site != siteID || sr.Status != model.StatusCompleted {
			continue
		}
		created, err := time.Parse(time.RFC3339, sr.CreatedAt)
		if err != nil {
			continue
		}
		var cost float64
		_, _ = fmt.Sscanf(sr.LaborCost, "%f", &cost)
		if now.Sub(created) <= 7*24*time.Hour {
			week += cost
			out.SalesCountWeek++
		}
		if now.Sub(created) <= 24*time.Hour {
			today += cost
			out.SalesCountToday++
			for _, inv := range d.invoices {
				if inv.ServiceRequest == sr.ID && inv.Paid {
					paid += cost
				}
			}
		}
	}
	out.RevenueToday = fmt.Sprintf("%.2f", today)
	out.RevenueWeek = fmt.Sprintf("%.2f", week)
	out.PaidToday = fmt.Sprintf("%.2f", paid)
	out.UnpaidToday = fmt.Sprintf("%.2f", today-paid)
	return out
}

// report counts jobs created within the period by status and transaction type.
func (d *dataset) report(periodDays int, siteID *int, now time.Time) map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	since := now.AddDate(0, 0, -periodDays)
	byStatus := map[string]int{}
	byType := map[string]int{}
	total, revenue := 0, 0.0
	for _, sr := range d.serviceRequests {
		if siteID != nil && sr.Site != *siteID {
			continue
		}
		created, err := time.Parse(time.RFC3339, sr.CreatedAt)
		if err != nil || created.Before(since) {
			continue
		}
		total++
		byStatus[sr.Status]++
		byType[sr.TransactionType]++
		if sr.Status == model.StatusCompleted {
			var cost float64
			_, _ = fmt.Sscanf(sr.LaborCost, "%f", &cost)
			revenue += cost
		}
	}
	return map[string]any{
		"period_days":         periodDays,
		"service_requests":    total,
		"by_status":           byStatus,
		"by_transaction_type": byType,
		"revenue":             fmt.Sprintf("%.2f", revenue),
	}
}
