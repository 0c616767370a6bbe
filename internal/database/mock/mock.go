// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kozaktomas/immich-tools/internal/database"
)

// Person is a person row together with the embedding of its thumbnail face.
type Person struct {
	ID            string
	Name          string
	IsHidden      bool
	ThumbnailPath string
	FaceID        string
	Embedding     []float32
}

// store holds the rows shared by the mock readers.
type store struct {
	mu          sync.RWMutex
	persons     []Person
	faces       map[string][]string // assetID -> personIDs
	albumAssets map[string][]string // albumID -> assetIDs
}

// AddPerson adds a person to the mock store
func (s *store) AddPerson(p Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persons = append(s.persons, p)
}

// AddFace assigns a face on assetID to personID
func (s *store) AddFace(assetID, personID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faces[assetID] = append(s.faces[assetID], personID)
}

// AddAlbumAsset adds an asset to an album
func (s *store) AddAlbumAsset(albumID, assetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.albumAssets[albumID] = append(s.albumAssets[albumID], assetID)
}

func (s *store) person(id string) (Person, bool) {
	for _, p := range s.persons {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}

// MockSimilarityReader is a mock implementation of database.SimilarityReader.
// Similarities are computed in memory with database.CosineSimilarity.
type MockSimilarityReader struct {
	store

	// Error injection
	TargetEmbeddingError    error
	FindSimilarPersonsError error
	PersonAssetsError       error
}

// NewMockSimilarityReader creates a new mock similarity reader
func NewMockSimilarityReader() *MockSimilarityReader {
	return &MockSimilarityReader{store: store{
		faces:       make(map[string][]string),
		albumAssets: make(map[string][]string),
	}}
}

// TargetEmbedding returns the embedding of the first person with the given name
func (m *MockSimilarityReader) TargetEmbedding(ctx context.Context, name string) (*database.TargetFace, error) {
	if m.TargetEmbeddingError != nil {
		return nil, m.TargetEmbeddingError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.persons {
		if p.Name == name && len(p.Embedding) > 0 {
			return &database.TargetFace{PersonID: p.ID, FaceID: p.FaceID, Embedding: p.Embedding}, nil
		}
	}
	return nil, fmt.Errorf("%w for %s", database.ErrNoEmbedding, name)
}

// FindSimilarPersons ranks visible persons other than the target
func (m *MockSimilarityReader) FindSimilarPersons(ctx context.Context, targetName string, embedding []float32, limit int) ([]database.SimilarPerson, error) {
	if m.FindSimilarPersonsError != nil {
		return nil, m.FindSimilarPersonsError
	}
	if limit <= 0 {
		limit = database.DefaultSimilarityLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	targetID := ""
	for _, p := range m.persons {
		if p.Name == targetName {
			targetID = p.ID
			break
		}
	}

	var results []database.SimilarPerson
	for _, p := range m.persons {
		if p.Name == targetName || p.ID == targetID || p.IsHidden || len(p.Embedding) == 0 {
			continue
		}
		results = append(results, database.SimilarPerson{
			PersonID:         p.ID,
			PersonName:       p.Name,
			ThumbnailPath:    p.ThumbnailPath,
			CosineSimilarity: database.CosineSimilarity(p.Embedding, embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CosineSimilarity > results[j].CosineSimilarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// PersonAssets fills asset IDs and drops persons without assets
func (m *MockSimilarityReader) PersonAssets(ctx context.Context, persons []database.SimilarPerson) ([]database.SimilarPerson, error) {
	if m.PersonAssetsError != nil {
		return nil, m.PersonAssetsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	assetIDs := make([]string, 0, len(m.faces))
	for assetID := range m.faces {
		assetIDs = append(assetIDs, assetID)
	}
	sort.Strings(assetIDs)

	var results []database.SimilarPerson
	for _, p := range persons {
		p.AssetIDs = nil
		for _, assetID := range assetIDs {
			for _, personID := range m.faces[assetID] {
				if personID == p.PersonID {
					p.AssetIDs = append(p.AssetIDs, assetID)
				}
			}
		}
		if len(p.AssetIDs) > 0 {
			results = append(results, p)
		}
	}
	return results, nil
}

// MockVisibilityReader is a mock implementation of database.VisibilityReader
type MockVisibilityReader struct {
	store

	// Error injection
	UnnamedFacesError error
	AlbumAssetsError  error
	AssetFacesError   error
}

// NewMockVisibilityReader creates a new mock visibility reader
func NewMockVisibilityReader() *MockVisibilityReader {
	return &MockVisibilityReader{store: store{
		faces:       make(map[string][]string),
		albumAssets: make(map[string][]string),
	}}
}

// AssetsWithUnnamedFaces counts faces of persons with an exactly empty name
func (m *MockVisibilityReader) AssetsWithUnnamedFaces(ctx context.Context, minCount int) ([]database.AssetFaceCount, error) {
	if m.UnnamedFacesError != nil {
		return nil, m.UnnamedFacesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []database.AssetFaceCount
	for assetID, personIDs := range m.faces {
		c := database.AssetFaceCount{AssetID: assetID}
		for _, id := range personIDs {
			p, ok := m.person(id)
			if !ok || p.Name != "" {
				continue
			}
			c.FaceCount++
			if p.IsHidden {
				c.HiddenCount++
			}
		}
		if c.FaceCount > 0 && c.Unhidden() >= minCount {
			results = append(results, c)
		}
	}
	return results, nil
}

// AlbumAssetIDs returns the assets of an album
func (m *MockVisibilityReader) AlbumAssetIDs(ctx context.Context, albumID string) ([]string, error) {
	if m.AlbumAssetsError != nil {
		return nil, m.AlbumAssetsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.albumAssets[albumID]...), nil
}

// AssetFaces returns the faces on an asset that belong to a known person
func (m *MockVisibilityReader) AssetFaces(ctx context.Context, assetID string) ([]database.AssetFace, error) {
	if m.AssetFacesError != nil {
		return nil, m.AssetFacesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var faces []database.AssetFace
	for _, id := range m.faces[assetID] {
		p, ok := m.person(id)
		if !ok {
			continue
		}
		faces = append(faces, database.AssetFace{
			AssetID:    assetID,
			PersonID:   p.ID,
			PersonName: p.Name,
			IsHidden:   p.IsHidden,
		})
	}
	return faces, nil
}

var (
	_ database.SimilarityReader = (*MockSimilarityReader)(nil)
	_ database.VisibilityReader = (*MockVisibilityReader)(nil)
)
