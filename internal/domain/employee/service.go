package employee

import "context"

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Response, error)
	Get(ctx context.Context, id int64) (Response, error)
	List(ctx context.Context) ([]Response, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (Response, error)
}
