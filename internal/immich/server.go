package immich

import "context"

// ServerAbout returns server information. Used as a connectivity and API key check.
func (c *Client) ServerAbout(ctx context.Context) (*ServerAbout, error) {
	return doGetJSON[ServerAbout](ctx, c, "server/about", nil)
}
