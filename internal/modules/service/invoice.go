package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
)

type InvoiceService interface {
	List(ctx context.Context, page int) (*model.Page[model.Invoice], error)
	Get(ctx context.Context, id int) (*model.Invoice, error)
	Update(ctx context.Context, id int, body any) (*model.Invoice, error)
	// DownloadPDF saves invoice-<id>.pdf into dir and returns its path.
	DownloadPDF(ctx context.Context, id int, dir string) (string, error)
}

type invoiceService struct {
	*Resource[model.Invoice]
}

func NewInvoiceService(api API) InvoiceService {
	return &invoiceService{Resource: NewResource[model.Invoice](api, "invoices/")}
}

func (s *invoiceService) DownloadPDF(ctx context.Context, id int, dir string) (string, error) {
	return s.api.Download(ctx, fmt.Sprintf("%s%d/pdf/", s.base, id), fmt.Sprintf("invoice-%d.pdf", id), dir)
}

type ReportService interface {
	Get(ctx context.Context, periodDays int) (any, error)
	// ExportCSV saves <resource>.csv into dir and returns its path.
	ExportCSV(ctx context.Context, resource, dir string) (string, error)
}

type reportService struct {
	api API
}

func NewReportService(api API) ReportService {
	return &reportService{api: api}
}

func (s *reportService) Get(ctx context.Context, periodDays int) (any, error) {
	if periodDays <= 0 {
		periodDays = 30
	}
	resp, err := s.api.Do(ctx, "dashboard/reports/?period="+strconv.Itoa(periodDays))
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (s *reportService) ExportCSV(ctx context.Context, resource, dir string) (string, error) {
	if resource == "" {
		return "", fmt.Errorf("export: resource is empty")
	}
	path := apiclient.WithParams("dashboard/export/", url.Values{"resource": {resource}})
	return s.api.Download(ctx, path, resource+".csv", dir)
}
