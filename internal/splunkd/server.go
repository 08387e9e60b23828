package splunkd

import (
	"context"
	"net/url"

	"dashpub/internal/services"
)

// ServerInfo describes the splunkd instance.
type ServerInfo struct {
	ServerName string
	Version    string
}

// ServerInfo reads services/server/info. It doubles as a credentials check.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	const operation = "server info"
	target := c.endpoint("services", "server", "info") + "?" + url.Values{"output_mode": {"json"}}.Encode()

	var payload struct {
		Entry []struct {
			Content struct {
				ServerName string `json:"serverName"`
				Version    string `json:"version"`
			} `json:"content"`
		} `json:"entry"`
	}
	if err := c.getJSON(ctx, operation, target, &payload); err != nil {
		return nil, err
	}
	if len(payload.Entry) == 0 {
		return nil, services.Wrap(services.ErrFetch, component, operation, "empty response", nil)
	}
	content := payload.Entry[0].Content
	return &ServerInfo{ServerName: content.ServerName, Version: content.Version}, nil
}
