package database

// DefaultSimilarityLimit caps the number of persons ranked by a similarity search.
const DefaultSimilarityLimit = 1000

// Immich table and column names. Columns are camelCase and must be quoted in SQL.
const (
	TablePerson      = "person"
	TableAssetFaces  = "asset_faces"
	TableAlbumAssets = "albums_assets_assets"
)
