package user

import "context"

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Response, error)
	List(ctx context.Context) ([]Response, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (Response, error)
	Delete(ctx context.Context, id int64) error
}
