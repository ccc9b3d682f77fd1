package service

import (
	"context"

	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
)

type CustomerService interface {
	List(ctx context.Context, page int) (*model.Page[model.Customer], error)
	Get(ctx context.Context, id int) (*model.Customer, error)
	Create(ctx context.Context, body any) (*model.Customer, error)
	Update(ctx context.Context, id int, body any) (*model.Customer, error)
	Delete(ctx context.Context, id int) error
	// WalkIn returns the shared walk-in customer used for counter sales.
	WalkIn(ctx context.Context) (*model.Customer, error)
}

type customerService struct {
	*Resource[model.Customer]
}

func NewCustomerService(api API) CustomerService {
	return &customerService{Resource: NewResource[model.Customer](api, "customers/")}
}

func (s *customerService) WalkIn(ctx context.Context) (*model.Customer, error) {
	return doDecode[model.Customer](ctx, s.api, s.base+"walkin/")
}
