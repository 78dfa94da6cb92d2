package hcloud

import (
	"context"
	"fmt"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// GetServerType returns the server type with the given name, or nil.
func (c *RealClient) GetServerType(ctx context.Context, name string) (st *hcloud.ServerType, err error) {
	defer c.observe("get_server_type", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ImageLookup)
	defer cancel()

	st, _, err = c.client.ServerType.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get server type: %w", err)
	}
	return st, nil
}

// GetImage returns the image with the given name or ID built for arch, or nil.
func (c *RealClient) GetImage(ctx context.Context, name string, arch hcloud.Architecture) (img *hcloud.Image, err error) {
	defer c.observe("get_image", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ImageLookup)
	defer cancel()

	img, _, err = c.client.Image.GetForArchitecture(ctx, name, arch)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return img, nil
}

// GetLocation returns the location with the given name, or nil.
func (c *RealClient) GetLocation(ctx context.Context, name string) (loc *hcloud.Location, err error) {
	defer c.observe("get_location", time.Now(), &err)

	loc, _, err = c.client.Location.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get location %s: %w", name, err)
	}
	return loc, nil
}
