package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/projecteru2/waifuadmin/types"
	"github.com/projecteru2/waifuadmin/utils"
)

// Create submits a new instance request and returns the created instance.
func (c *Client) Create(ctx context.Context, ni *types.NewInstance) (*types.Instance, error) {
	var inst types.Instance
	if err := c.do(ctx, http.MethodPost, "/api/v1/instances", ni, &inst); err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	return &inst, nil
}

// Act applies a lifecycle action to instance id. ActionDelete is routed to
// Delete; every other action is a body-less POST to its endpoint.
func (c *Client) Act(ctx context.Context, id string, action types.Action) error {
	if action.IsZero() {
		return types.ErrUnknownAction
	}
	if action == types.ActionDelete {
		return c.Delete(ctx, id)
	}
	norm, err := instanceID(id)
	if err != nil {
		return err
	}
	if err := c.do(ctx, action.Method(), action.Path(norm), nil, nil); err != nil {
		return fmt.Errorf("%s instance %s: %w", action, norm, err)
	}
	return nil
}

// Delete destroys instance id.
func (c *Client) Delete(ctx context.Context, id string) error {
	norm, err := instanceID(id)
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, types.ActionDelete.Path(norm), nil, nil); err != nil {
		return fmt.Errorf("delete instance %s: %w", norm, err)
	}
	return nil
}

// List fetches every instance known to waifud.
func (c *Client) List(ctx context.Context) ([]types.Instance, error) {
	var insts []types.Instance
	if err := c.do(ctx, http.MethodGet, "/api/v1/instances", nil, &insts); err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	return insts, nil
}

// Get fetches instance id.
func (c *Client) Get(ctx context.Context, id string) (*types.Instance, error) {
	norm, err := instanceID(id)
	if err != nil {
		return nil, err
	}
	var inst types.Instance
	if err := c.do(ctx, http.MethodGet, "/api/v1/instances/"+norm, nil, &inst); err != nil {
		return nil, fmt.Errorf("get instance %s: %w", norm, err)
	}
	return &inst, nil
}

// GetByName fetches the instance called name.
func (c *Client) GetByName(ctx context.Context, name string) (*types.Instance, error) {
	var inst types.Instance
	if err := c.do(ctx, http.MethodGet, "/api/v1/instances/name/"+url.PathEscape(name), nil, &inst); err != nil {
		return nil, fmt.Errorf("get instance %s: %w", name, err)
	}
	return &inst, nil
}

// Resolve accepts either a UUID or an instance name.
func (c *Client) Resolve(ctx context.Context, ref string) (*types.Instance, error) {
	if _, err := instanceID(ref); err == nil {
		return c.Get(ctx, ref)
	}
	return c.GetByName(ctx, ref)
}

// Machine fetches the libvirt view of instance id.
func (c *Client) Machine(ctx context.Context, id string) (*types.Machine, error) {
	norm, err := instanceID(id)
	if err != nil {
		return nil, err
	}
	var m types.Machine
	if err := c.do(ctx, http.MethodGet, "/api/v1/instances/"+norm+"/machine", nil, &m); err != nil {
		return nil, fmt.Errorf("get machine %s: %w", norm, err)
	}
	return &m, nil
}

// WaitStatus polls instance id every interval until its status is want,
// a request fails, or timeout expires. onPoll, if non-nil, sees every
// fetched instance.
func (c *Client) WaitStatus(ctx context.Context, id, want string, timeout, interval time.Duration, onPoll func(*types.Instance)) (*types.Instance, error) {
	var last *types.Instance
	err := utils.WaitFor(ctx, timeout, interval, func(ctx context.Context) (bool, error) {
		inst, err := c.Get(ctx, id)
		if err != nil {
			return false, err
		}
		last = inst
		if onPoll != nil {
			onPoll(inst)
		}
		return inst.Status == want, nil
	})
	switch {
	case errors.Is(err, utils.ErrWaitTimeout) && last != nil:
		return nil, fmt.Errorf("wait for %s to be %s: %w (last status %s)", id, want, err, last.Status)
	case err != nil:
		return nil, fmt.Errorf("wait for %s to be %s: %w", id, want, err)
	}
	return last, nil
}
