package immich

import (
	"context"
	"fmt"
	"net/http"
)

// UpdateAssetDescription sets the description of an asset.
func (c *Client) UpdateAssetDescription(ctx context.Context, assetID, description string) error {
	input := UpdateAssetRequest{Description: &description}
	_, err := doRequestRaw(ctx, c, http.MethodPut, "assets/"+assetID, nil, input)
	return err
}

// SearchAssetsByPerson returns the first asset in which the person appears.
func (c *Client) SearchAssetsByPerson(ctx context.Context, personID string) (*Asset, error) {
	input := MetadataSearchRequest{PersonIDs: []string{personID}}
	result, err := doPostJSON[SearchResponse](ctx, c, "search/metadata", input)
	if err != nil {
		return nil, err
	}
	if len(result.Assets.Items) == 0 {
		return nil, fmt.Errorf("assets of person %s: %w", personID, ErrNotFound)
	}
	return &result.Assets.Items[0], nil
}
