package hcloud

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/emc/internal/util/retry"
)

// CreateServer creates a server and waits for the create action.
func (c *RealClient) CreateServer(ctx context.Context, opts ServerCreateOpts) (id string, err error) {
	defer c.observe("create_server", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ServerCreate)
	defer cancel()

	createOpts, err := c.buildServerCreateOpts(ctx, opts)
	if err != nil {
		return "", err
	}

	result, err := c.createServerWithRetry(ctx, createOpts)
	if err != nil {
		return "", err
	}
	if result.Server == nil {
		return "", fmt.Errorf("create server %s: API returned no server", opts.Name)
	}

	return strconv.FormatInt(result.Server.ID, 10), nil
}

// buildServerCreateOpts resolves all dependencies and builds server creation options.
func (c *RealClient) buildServerCreateOpts(ctx context.Context, opts ServerCreateOpts) (hcloud.ServerCreateOpts, error) {
	serverType, err := c.GetServerType(ctx, opts.ServerType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}
	if serverType == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("server type not found: %s", opts.ServerType)
	}

	image, err := c.GetImage(ctx, opts.Image, serverType.Architecture)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}
	if image == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("image not found: %s (%s)", opts.Image, serverType.Architecture)
	}

	sshKeys, err := c.resolveSSHKeys(ctx, opts.SSHKeys)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	location, err := c.resolveLocation(ctx, opts.Location)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	return hcloud.ServerCreateOpts{
		Name:       opts.Name,
		ServerType: serverType,
		Image:      image,
		SSHKeys:    sshKeys,
		Location:   location,
		UserData:   opts.UserData,
		Labels:     opts.Labels,
		Firewalls:  resolveFirewalls(opts.Firewalls),
	}, nil
}

// createServerWithRetry creates a server with exponential backoff retry logic.
func (c *RealClient) createServerWithRetry(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, error) {
	var result hcloud.ServerCreateResult

	err := retry.WithExponentialBackoff(ctx, func() error {
		res, _, err := c.client.Server.Create(ctx, opts)
		if err != nil {
			if isInvalidParameter(err) {
				return retry.Fatal(err)
			}
			return err
		}
		result = res
		return nil
	},
		retry.WithMaxRetries(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay),
		retry.WithOnRetry(func(attempt int, delay time.Duration, err error) {
			c.log.Warnw("server create failed, retrying", "name", opts.Name, "attempt", attempt, "delay", delay, "error", err)
		}))
	if err != nil {
		return result, fmt.Errorf("failed to create server: %w", err)
	}

	if result.Action != nil {
		if err := c.client.Action.WaitFor(ctx, result.Action); err != nil {
			return result, fmt.Errorf("failed to wait for server creation: %w", err)
		}
	}

	return result, nil
}

// DeleteServer deletes the server with the given ID or name.
func (c *RealClient) DeleteServer(ctx context.Context, idOrName string) (err error) {
	defer c.observe("delete_server", time.Now(), &err)

	return (&DeleteOperation[*hcloud.Server]{
		Name:         idOrName,
		ResourceType: "server",
		Get:          c.getServer,
		Delete: func(ctx context.Context, server *hcloud.Server) (*hcloud.Response, error) {
			_, resp, err := c.client.Server.DeleteWithResult(ctx, server)
			return resp, err
		},
	}).Execute(ctx, c)
}

// GetServer returns the server with the given ID or name, or nil if absent.
func (c *RealClient) GetServer(ctx context.Context, idOrName string) (server *hcloud.Server, err error) {
	defer c.observe("get_server", time.Now(), &err)

	server, _, err = c.getServer(ctx, idOrName)
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}
	return server, nil
}

// getServer looks numeric handles up by ID only, without the name
// fallback of Server.Get.
func (c *RealClient) getServer(ctx context.Context, idOrName string) (*hcloud.Server, *hcloud.Response, error) {
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		return c.client.Server.GetByID(ctx, id)
	}
	return c.client.Server.GetByName(ctx, idOrName)
}
