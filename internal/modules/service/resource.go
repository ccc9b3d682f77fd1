package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
)

// Resource is the list/get/create/update/delete surface shared by the CRUD endpoints.
// base is the collection path with a trailing slash, e.g. "customers/".
type Resource[T any] struct {
	api  API
	base string
}

func NewResource[T any](api API, base string) *Resource[T] {
	return &Resource[T]{api: api, base: base}
}

// List fetches one page; page <= 0 asks for the server default.
func (r *Resource[T]) List(ctx context.Context, page int) (*model.Page[T], error) {
	values := url.Values{}
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
	return listPage[T](ctx, r.api, apiclient.WithParams(r.base, values))
}

func (r *Resource[T]) Get(ctx context.Context, id int) (*T, error) {
	return doDecode[T](ctx, r.api, r.item(id))
}

func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	return doDecode[T](ctx, r.api, r.base, apiclient.WithMethod(http.MethodPost), apiclient.WithJSON(body))
}

// Update sends a partial update (PATCH).
func (r *Resource[T]) Update(ctx context.Context, id int, body any) (*T, error) {
	return doDecode[T](ctx, r.api, r.item(id), apiclient.WithMethod(http.MethodPatch), apiclient.WithJSON(body))
}

func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	_, err := r.api.Do(ctx, r.item(id), apiclient.WithMethod(http.MethodDelete))
	return err
}

func (r *Resource[T]) item(id int) string {
	return fmt.Sprintf("%s%d/", r.base, id)
}

func listPage[T any](ctx context.Context, api API, path string) (*model.Page[T], error) {
	resp, err := api.Do(ctx, path)
	if err != nil {
		return nil, err
	}
	items, count, err := apiclient.DecodeList[T](resp)
	if err != nil {
		return nil, err
	}
	return &model.Page[T]{Results: items, Count: count}, nil
}

func listAll[T any](ctx context.Context, api API, path string) ([]T, error) {
	page, err := listPage[T](ctx, api, path)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func doDecode[T any](ctx context.Context, api API, path string, opts ...apiclient.RequestOption) (*T, error) {
	resp, err := api.Do(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	var out T
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
