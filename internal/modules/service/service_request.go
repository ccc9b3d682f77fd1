package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
)

type ServiceRequestService interface {
	List(ctx context.Context, f model.ServiceRequestFilter) (*model.Page[model.ServiceRequest], error)
	Get(ctx context.Context, id int) (*model.ServiceRequest, error)
	Create(ctx context.Context, body any) (*model.ServiceRequest, error)
	Update(ctx context.Context, id int, body any) (*model.ServiceRequest, error)
	// Complete marks the job done. body may be nil; an empty body is not sent.
	Complete(ctx context.Context, id int, body map[string]any) (*model.ServiceRequest, error)
	Delete(ctx context.Context, id int) error
}

type serviceRequestService struct {
	*Resource[model.ServiceRequest]
}

func NewServiceRequestService(api API) ServiceRequestService {
	return &serviceRequestService{Resource: NewResource[model.ServiceRequest](api, "service_request/")}
}

func (s *serviceRequestService) List(ctx context.Context, f model.ServiceRequestFilter) (*model.Page[model.ServiceRequest], error) {
	params := map[string]any{
		"customer_id": f.CustomerID,
		"vehicle_id":  f.VehicleID,
		"mechanic_id": f.MechanicID,
	}
	if f.PartsOnly {
		params["parts_only"] = true
	}
	if f.Page > 0 {
		params["page"] = f.Page
	}
	return listPage[model.ServiceRequest](ctx, s.api, apiclient.WithParams(s.base, apiclient.BuildParams(params)))
}

func (s *serviceRequestService) Complete(ctx context.Context, id int, body map[string]any) (*model.ServiceRequest, error) {
	opts := []apiclient.RequestOption{apiclient.WithMethod(http.MethodPost)}
	if len(body) > 0 {
		opts = append(opts, apiclient.WithJSON(body))
	}
	return doDecode[model.ServiceRequest](ctx, s.api, fmt.Sprintf("%s%d/complete/", s.base, id), opts...)
}
