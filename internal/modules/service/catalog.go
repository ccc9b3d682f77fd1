package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
)

func NewVehicleService(api API) *Resource[model.Vehicle] {
	return NewResource[model.Vehicle](api, "vehicle/")
}

func NewMechanicService(api API) *Resource[model.Mechanic] {
	return NewResource[model.Mechanic](api, "mechanic/")
}

func NewSiteService(api API) *Resource[model.Site] {
	return NewResource[model.Site](api, "sites/")
}

type AppointmentService struct {
	*Resource[model.Appointment]
}

func NewAppointmentService(api API) *AppointmentService {
	return &AppointmentService{Resource: NewResource[model.Appointment](api, "appointments/")}
}

// Availability returns the mechanic's free slots on date (YYYY-MM-DD) at a site. The payload
// shape is left to the caller.
func (s *AppointmentService) Availability(ctx context.Context, mechanicID int, date string, siteID int) (any, error) {
	values := url.Values{}
	values.Set("mechanic_id", strconv.Itoa(mechanicID))
	values.Set("date", date)
	values.Set("site_id", strconv.Itoa(siteID))
	resp, err := s.api.Do(ctx, apiclient.WithParams(s.base+"availability/", values))
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type InventoryService struct {
	*Resource[model.InventoryItem]
}

func NewInventoryService(api API) *InventoryService {
	return &InventoryService{Resource: NewResource[model.InventoryItem](api, "inventory/")}
}

func (s *InventoryService) LowStock(ctx context.Context) ([]model.InventoryItem, error) {
	return listAll[model.InventoryItem](ctx, s.api, s.base+"low-stock/")
}

type ProductService struct {
	*Resource[model.Product]
}

func NewProductService(api API) *ProductService {
	return &ProductService{Resource: NewResource[model.Product](api, "products/")}
}

type ProductSearch struct {
	Limit   int
	Vehicle string
	SiteID  string
}

func (s *ProductService) Search(ctx context.Context, q string, opts ProductSearch) ([]model.Product, error) {
	if opts.Limit <= 0 {
		opts.Limit = 15
	}
	values := url.Values{}
	values.Set("q", q)
	values.Set("limit", strconv.Itoa(opts.Limit))
	if opts.Vehicle != "" {
		values.Set("vehicle", opts.Vehicle)
	}
	if opts.SiteID != "" {
		values.Set("site_id", opts.SiteID)
	}
	return listAll[model.Product](ctx, s.api, apiclient.WithParams(s.base+"search/", values))
}

// ImportExcel uploads a spreadsheet as multipart form data under the "file" field.
func (s *ProductService) ImportExcel(ctx context.Context, body []byte, contentType string) (any, error) {
	resp, err := s.api.Do(ctx, s.base+"import-excel/",
		apiclient.WithMethod(http.MethodPost),
		apiclient.WithBody(body, contentType))
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}
