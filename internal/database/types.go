package database

import (
	"errors"
	"strings"
)

// ErrNoEmbedding is returned when no face embedding exists for a person name.
var ErrNoEmbedding = errors.New("no face embedding found")

// TargetFace is the stored face of the person similarity searches start from.
type TargetFace struct {
	PersonID  string
	FaceID    string
	Embedding []float32
}

// SimilarPerson is a person ranked by cosine similarity to a target face.
// It is computed on every run and never stored in the database.
type SimilarPerson struct {
	PersonID         string   `json:"person_id" yaml:"person_id"`
	PersonName       string   `json:"person_name" yaml:"person_name"`
	ThumbnailPath    string   `json:"thumbnail_path" yaml:"thumbnail_path"`
	CosineSimilarity float64  `json:"cosine_similarity" yaml:"cosine_similarity"`
	AssetIDs         []string `json:"asset_ids" yaml:"asset_ids"`
}

// AssetFaceCount holds the unnamed face counts of a single asset.
type AssetFaceCount struct {
	AssetID     string
	FaceCount   int // unnamed faces, hidden or not
	HiddenCount int
}

// Unhidden returns the number of unnamed faces that are still visible.
func (c AssetFaceCount) Unhidden() int {
	return c.FaceCount - c.HiddenCount
}

// AssetFace is one face on an asset together with the name of its person.
type AssetFace struct {
	AssetID    string
	PersonID   string
	PersonName string
	IsHidden   bool
}

// IsNamed reports whether the face belongs to a person with a non-blank name.
func (f AssetFace) IsNamed() bool {
	return strings.TrimSpace(f.PersonName) != ""
}
