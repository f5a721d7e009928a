package services

import (
	"context"

	"github.com/storesight/console/internal/client/roster"
)

type Employees struct{ api API }

func (e *Employees) List(ctx context.Context, storeID string) ([]Employee, error) {
	var out []Employee
	err := e.api.Get(ctx, "/stores/"+seg(storeID)+"/employees", &out)
	return out, err
}

type bulkEmployees struct {
	Employees []roster.Entry `json:"employees"`
}

// BulkCreate shapes drafts with roster.BuildPayload and submits them.
func (e *Employees) BulkCreate(ctx context.Context, storeID string, drafts []roster.Draft) (BulkResult, error) {
	var out BulkResult
	payload := bulkEmployees{Employees: roster.BuildPayload(drafts)}
	err := e.api.Post(ctx, "/stores/"+seg(storeID)+"/employees/bulk", payload, &out)
	return out, err
}

func (e *Employees) Delete(ctx context.Context, id string) error {
	return e.api.Delete(ctx, "/employees/"+seg(id))
}
