package services

import "context"

type Stores struct{ api API }

func (s *Stores) List(ctx context.Context) ([]Store, error) {
	var out []Store
	err := s.api.Get(ctx, "/stores", &out)
	return out, err
}

func (s *Stores) Get(ctx context.Context, id string) (Store, error) {
	var out Store
	err := s.api.Get(ctx, "/stores/"+seg(id), &out)
	return out, err
}

func (s *Stores) Create(ctx context.Context, in StoreInput) (Store, error) {
	var out Store
	err := s.api.Post(ctx, "/stores", in, &out)
	return out, err
}

func (s *Stores) Update(ctx context.Context, id string, in StoreInput) (Store, error) {
	var out Store
	err := s.api.Patch(ctx, "/stores/"+seg(id), in, &out)
	return out, err
}

func (s *Stores) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, "/stores/"+seg(id))
}
