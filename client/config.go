package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/projecteru2/waifuadmin/types"
)

// GetConfig fetches the deployment-wide waifud configuration.
func (c *Client) GetConfig(ctx context.Context) (*types.Config, error) {
	var cfg types.Config
	if err := c.do(ctx, http.MethodGet, "/admin/api/config", nil, &cfg); err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	return &cfg, nil
}

// AuditLogs fetches the full waifud audit log.
func (c *Client) AuditLogs(ctx context.Context) ([]types.AuditEvent, error) {
	var events []types.AuditEvent
	if err := c.do(ctx, http.MethodGet, "/api/v1/auditlogs", nil, &events); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return events, nil
}
