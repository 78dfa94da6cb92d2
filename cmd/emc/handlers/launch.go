package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/emc/internal/image"
	"github.com/imamik/emc/internal/lifecycle"
	"github.com/imamik/emc/internal/payload"
	"github.com/imamik/emc/internal/platform/hcloud"
	"github.com/imamik/emc/internal/pricing"
)

// LaunchOptions are the launch command flags. Empty fields fall back to
// the configuration file.
type LaunchOptions struct {
	Name         string
	Region       string
	InstanceType string
	Image        string
	DDNS         string
	Memory       string
	MOTD         string
	Icon         string
	Ops          []string
	Yes          bool
}

// newImageResolver is replaced in tests.
var newImageResolver = func(catalog hcloud.Catalog) imageResolver {
	return image.NewResolver(catalog)
}

type imageResolver interface {
	Resolve(ctx context.Context, location, serverType, imageName string) (*image.Selection, error)
}

// Launch prices the server, asks for confirmation and creates it.
func Launch(ctx context.Context, g Globals, opts LaunchOptions) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.requireToken(); err != nil {
		return err
	}
	if err := s.manager.CheckCreate(ctx, opts.Name, opts.DDNS); err != nil {
		return err
	}

	region := firstNonEmpty(opts.Region, s.cfg.Region)
	serverType := firstNonEmpty(opts.InstanceType, s.cfg.ServerType)
	imageName := firstNonEmpty(opts.Image, s.cfg.Image)

	sel := &image.Selection{ImageID: imageName, ImageName: imageName}
	if !g.DryRun {
		sel, err = newImageResolver(s.clients.ForRegion(region)).Resolve(ctx, region, serverType, imageName)
		if err != nil {
			return err
		}
	}

	memory := opts.Memory
	if memory == "" && sel.MemoryGB > 0 {
		memory = payload.JVMMemory(sel.MemoryGB)
	}
	boot, err := payload.Generate(payload.Options{
		ContainerImage: s.cfg.Game.ContainerImage,
		Memory:         firstNonEmpty(memory, s.cfg.Game.Memory),
		MOTD:           firstNonEmpty(opts.MOTD, s.cfg.Game.MOTD, payload.DefaultMOTD(Version)),
		Icon:           firstNonEmpty(opts.Icon, s.cfg.Game.Icon),
		Ops:            firstNonEmptySlice(opts.Ops, s.cfg.Game.Ops),
		Port:           s.cfg.Game.Port,
	})
	if err != nil {
		return err
	}

	est, live, err := estimate(ctx, s.cfg.HCloudToken, serverType, region)
	if err != nil {
		s.log.Warnw("no price available", "server_type", serverType, "error", err)
	} else {
		s.log.Debugw("cost estimate", "estimate", est.String(), "live", live)
		if isInteractive() {
			fmt.Fprint(stdout, renderCost(opts.Name, est, live))
		} else {
			fmt.Fprint(stdout, pricing.NewFormatter().Format(est))
		}
	}
	if err := confirmLaunch(ctx, opts.Name, opts.Yes || g.DryRun); err != nil {
		return err
	}

	s.log.Infow("launching server", "name", opts.Name, "region", region, "server_type", serverType, "image", sel.ImageName)
	res, err := s.manager.Create(ctx, lifecycle.CreateRequest{
		Name:         opts.Name,
		Region:       region,
		InstanceType: serverType,
		ImageID:      sel.ImageID,
		Ports:        s.cfg.Ports,
		BootPayload:  boot,
		DDNSDomain:   opts.DDNS,
	})
	if err != nil {
		return err
	}
	s.reportWarnings(res)

	fmt.Fprintf(stdout, "launched %s (server %s)\n", res.Name, res.Record.InstanceHandle)
	if addr := res.Record.LastKnownAddress; addr != nil {
		fmt.Fprintf(stdout, "address: %s\n", *addr)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptySlice(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}
