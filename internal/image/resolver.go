// Package image picks the disk image and server type details for a launch.
package image

import (
	"context"
	"strconv"

	hcloudgo "github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/platform/hcloud"
)

// Selection is what a launch needs to know about the chosen hardware.
type Selection struct {
	// ImageID is the numeric image ID, usable wherever a name is.
	ImageID      string
	ImageName    string
	Architecture hcloudgo.Architecture
	// MemoryGB is the RAM of the server type.
	MemoryGB float32
}

// Resolver looks images up in the provider catalog.
type Resolver struct {
	catalog hcloud.Catalog
}

// NewResolver returns a Resolver backed by catalog.
func NewResolver(catalog hcloud.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve checks that location and serverType exist and finds imageName
// built for the server type's architecture.
func (r *Resolver) Resolve(ctx context.Context, location, serverType, imageName string) (*Selection, error) {
	loc, err := r.catalog.GetLocation(ctx, location)
	if err != nil {
		return nil, errs.Wrap(errs.ProviderError, err, "look up location %s", location)
	}
	if loc == nil {
		return nil, errs.New(errs.ProvisionError, "unknown location %q", location)
	}

	st, err := r.catalog.GetServerType(ctx, serverType)
	if err != nil {
		return nil, errs.Wrap(errs.ProviderError, err, "look up server type %s", serverType)
	}
	if st == nil {
		return nil, errs.New(errs.ProvisionError, "unknown server type %q", serverType)
	}
	arch := st.Architecture
	if arch == "" {
		arch = hcloud.DetectArchitecture(serverType)
	}

	img, err := r.catalog.GetImage(ctx, imageName, arch)
	if err != nil {
		return nil, errs.Wrap(errs.ProviderError, err, "look up image %s", imageName)
	}
	if img == nil {
		return nil, errs.New(errs.ProvisionError, "no %s image named %q", arch, imageName)
	}

	sel := &Selection{
		ImageID:      imageName,
		ImageName:    img.Name,
		Architecture: arch,
		MemoryGB:     st.Memory,
	}
	if img.ID != 0 {
		sel.ImageID = strconv.FormatInt(img.ID, 10)
	}
	return sel, nil
}
