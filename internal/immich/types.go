package immich

// ServerAbout is the response of GET /api/server/about
type ServerAbout struct {
	Version    string `json:"version"`
	VersionURL string `json:"versionUrl"`
	Licensed   bool   `json:"licensed"`
	Build      string `json:"build,omitempty"`
}

// Album represents an Immich album
type Album struct {
	ID          string  `json:"id"`
	AlbumName   string  `json:"albumName"`
	Description string  `json:"description"`
	AssetCount  int     `json:"assetCount"`
	Assets      []Asset `json:"assets"`
	OwnerID     string  `json:"ownerId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// Asset represents an Immich asset (photo or video)
type Asset struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	OriginalFileName string `json:"originalFileName"`
	OwnerID          string `json:"ownerId"`
	IsArchived       bool   `json:"isArchived"`
}

// Person represents a recognized person in Immich
type Person struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsHidden      bool   `json:"isHidden"`
	ThumbnailPath string `json:"thumbnailPath"`
	BirthDate     string `json:"birthDate,omitempty"`
}

// CreateAlbumRequest is the body of POST /api/albums
type CreateAlbumRequest struct {
	AlbumName   string   `json:"albumName"`
	AssetIDs    []string `json:"assetIds"`
	Description string   `json:"description"`
}

// MergePersonRequest is the body of POST /api/people/{id}/merge
type MergePersonRequest struct {
	IDs []string `json:"ids"`
}

// BulkIDResponse is one entry of the bulk responses returned by merge and people updates
type BulkIDResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// UpdateAssetRequest is the body of PUT /api/assets/{id}
type UpdateAssetRequest struct {
	Description *string `json:"description,omitempty"`
}

// PeopleResponse is the response of GET /api/people
type PeopleResponse struct {
	People []Person `json:"people"`
	Total  int      `json:"total"`
	Hidden int      `json:"hidden"`
}

// MetadataSearchRequest is the body of POST /api/search/metadata
type MetadataSearchRequest struct {
	PersonIDs []string `json:"personIds"`
}

// SearchResponse is the response of POST /api/search/metadata
type SearchResponse struct {
	Assets SearchAssetResult `json:"assets"`
}

type SearchAssetResult struct {
	Items    []Asset `json:"items"`
	Total    int     `json:"total"`
	Count    int     `json:"count"`
	NextPage *string `json:"nextPage"`
}

// PeopleUpdateRequest is the body of PUT /api/people
type PeopleUpdateRequest struct {
	People []PersonUpdate `json:"people"`
}

// PersonUpdate represents fields that can be updated on a person
type PersonUpdate struct {
	ID       string  `json:"id"`
	IsHidden *bool   `json:"isHidden,omitempty"`
	Name     *string `json:"name,omitempty"`
}
