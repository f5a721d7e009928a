package services

import (
	"context"

	"github.com/storesight/console/internal/roi"
)

type Cameras struct{ api API }

func (c *Cameras) ListByStore(ctx context.Context, storeID string) ([]Camera, error) {
	var out []Camera
	err := c.api.Get(ctx, "/stores/"+seg(storeID)+"/cameras", &out)
	return out, err
}

func (c *Cameras) Get(ctx context.Context, id string) (Camera, error) {
	var out Camera
	err := c.api.Get(ctx, "/cameras/"+seg(id), &out)
	return out, err
}

func (c *Cameras) Create(ctx context.Context, in CameraInput) (Camera, error) {
	var out Camera
	err := c.api.Post(ctx, "/cameras", in, &out)
	return out, err
}

func (c *Cameras) Update(ctx context.Context, id string, in CameraInput) (Camera, error) {
	var out Camera
	err := c.api.Patch(ctx, "/cameras/"+seg(id), in, &out)
	return out, err
}

func (c *Cameras) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/cameras/"+seg(id))
}

func (c *Cameras) Health(ctx context.Context, id string) (CameraHealth, error) {
	var out CameraHealth
	err := c.api.Get(ctx, "/cameras/"+seg(id)+"/health", &out)
	return out, err
}

// LoadROI fetches the stored ROI configuration of a camera.
func (c *Cameras) LoadROI(ctx context.Context, cameraID string) (roi.Config, error) {
	var out roi.Config
	err := c.api.Get(ctx, "/cameras/"+seg(cameraID)+"/roi", &out)
	return out, err
}

// SaveROI replaces the camera's whole zone collection.
func (c *Cameras) SaveROI(ctx context.Context, cameraID string, req roi.SaveRequest) (roi.SaveResponse, error) {
	var out roi.SaveResponse
	err := c.api.Put(ctx, "/cameras/"+seg(cameraID)+"/roi", req, &out)
	return out, err
}
