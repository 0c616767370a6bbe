package database

import "context"

// SimilarityReader ranks persons by the cosine similarity of their face embeddings.
type SimilarityReader interface {
	// TargetEmbedding returns the face embedding of the first person with exactly this name.
	// Returns ErrNoEmbedding if there is none.
	TargetEmbedding(ctx context.Context, name string) (*TargetFace, error)
	// FindSimilarPersons ranks every other visible person by similarity to the embedding.
	// The target is excluded by name and by ID. Results are ordered by similarity, descending.
	FindSimilarPersons(ctx context.Context, targetName string, embedding []float32, limit int) ([]SimilarPerson, error)
	// PersonAssets fills AssetIDs of every person. Persons without assets are dropped.
	PersonAssets(ctx context.Context, persons []SimilarPerson) ([]SimilarPerson, error)
}

// VisibilityReader answers questions about unnamed faces on assets.
type VisibilityReader interface {
	// AssetsWithUnnamedFaces returns assets with at least minCount visible faces
	// whose person has an empty name. The order is unspecified.
	AssetsWithUnnamedFaces(ctx context.Context, minCount int) ([]AssetFaceCount, error)
	// AlbumAssetIDs returns the IDs of all assets in an album.
	AlbumAssetIDs(ctx context.Context, albumID string) ([]string, error)
	// AssetFaces returns every face on an asset that has a person.
	AssetFaces(ctx context.Context, assetID string) ([]AssetFace, error)
}
