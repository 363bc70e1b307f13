package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/projecteru2/waifuadmin/types"
)

// ListDistros fetches the installable OS images, in server order.
func (c *Client) ListDistros(ctx context.Context) ([]types.Distro, error) {
	var distros []types.Distro
	if err := c.do(ctx, http.MethodGet, "/api/v1/distros", nil, &distros); err != nil {
		return nil, fmt.Errorf("list distros: %w", err)
	}
	return distros, nil
}

// GetDistro fetches a single distro by name.
func (c *Client) GetDistro(ctx context.Context, name string) (*types.Distro, error) {
	var d types.Distro
	if err := c.do(ctx, http.MethodGet, "/api/v1/distros/"+url.PathEscape(name), nil, &d); err != nil {
		return nil, fmt.Errorf("get distro %s: %w", name, err)
	}
	return &d, nil
}

// CreateDistro adds d to the catalog.
func (c *Client) CreateDistro(ctx context.Context, d *types.Distro) (*types.Distro, error) {
	var out types.Distro
	if err := c.do(ctx, http.MethodPost, "/api/v1/distros", d, &out); err != nil {
		return nil, fmt.Errorf("create distro %s: %w", d.Name, err)
	}
	return &out, nil
}

// UpdateDistro replaces the catalog entry named d.Name.
func (c *Client) UpdateDistro(ctx context.Context, d *types.Distro) (*types.Distro, error) {
	var out types.Distro
	if err := c.do(ctx, http.MethodPost, "/api/v1/distros/"+url.PathEscape(d.Name), d, &out); err != nil {
		return nil, fmt.Errorf("update distro %s: %w", d.Name, err)
	}
	return &out, nil
}

// DeleteDistro removes a distro from the catalog.
func (c *Client) DeleteDistro(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/v1/distros/"+url.PathEscape(name), nil, nil); err != nil {
		return fmt.Errorf("delete distro %s: %w", name, err)
	}
	return nil
}
