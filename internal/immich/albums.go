package immich

import (
	"context"
	"errors"
)

// CreateAlbum creates an album containing the given assets and returns its ID.
func (c *Client) CreateAlbum(ctx context.Context, assetIDs []string, name, description string) (string, error) {
	if assetIDs == nil {
		assetIDs = []string{}
	}
	input := CreateAlbumRequest{
		AlbumName:   name,
		AssetIDs:    assetIDs,
		Description: description,
	}

	album, err := doPostJSON[Album](ctx, c, "albums", input)
	if err != nil {
		return "", err
	}
	if album.ID == "" {
		return "", errors.New("album created but response has no id")
	}
	return album.ID, nil
}

// GetAlbum retrieves a single album including its assets.
func (c *Client) GetAlbum(ctx context.Context, albumID string) (*Album, error) {
	return doGetJSON[Album](ctx, c, "albums/"+albumID, nil)
}

// GetAssetsFromAlbum returns the IDs of all assets in the album.
func (c *Client) GetAssetsFromAlbum(ctx context.Context, albumID string) ([]string, error) {
	album, err := c.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(album.Assets))
	for _, a := range album.Assets {
		ids = append(ids, a.ID)
	}
	return ids, nil
}
