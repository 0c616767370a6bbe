// Package sidecar persists the asset to face mapping written when a similar faces
// album is created and read back when the faces are named.
package sidecar

import (
	"encoding/json"
	"fmt"
	"os"
)

// CurrentVersion is the schema version written by Write.
const CurrentVersion = 2

// Asset links an album asset to the face that was matched on it.
type Asset struct {
	AssetID string `json:"assetId"`
	FaceID  string `json:"faceId"`
}

// File is the content of a sidecar file.
type File struct {
	Version   int     `json:"version"`
	AlbumID   string  `json:"albumId"`
	AlbumName string  `json:"albumName,omitempty"`
	Name      string  `json:"name"`
	FaceID    string  `json:"faceId"`
	Assets    []Asset `json:"assets"`
}

// SimilarFacesPath is the sidecar written by the similar-album command.
func SimilarFacesPath(name string) string {
	return fmt.Sprintf("similar_faces_%s.json", name)
}

// SimilarPicturesPath is the sidecar written by the similar command.
func SimilarPicturesPath(name string) string {
	return fmt.Sprintf("%s_similar_faces.json", name)
}

// Write stores f at path, stamping the current version.
func Write(path string, f *File) error {
	f.Version = CurrentVersion
	if f.Assets == nil {
		f.Assets = []Asset{}
	}

	data, err := json.MarshalIndent(f, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write sidecar %s: %w", path, err)
	}
	return nil
}

// Read loads a sidecar. Files written before versioning are read as version 1.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sidecar %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sidecar %s: %w", path, err)
	}
	if f.Version == 0 {
		f.Version = 1
	}
	if f.Version > CurrentVersion {
		return nil, fmt.Errorf("sidecar %s has version %d, newest supported is %d", path, f.Version, CurrentVersion)
	}
	return &f, nil
}

// Reconcile splits the saved assets into those still in the album and those
// removed since the sidecar was written. Order follows the sidecar.
func Reconcile(f *File, albumAssets []string) (matched, missing []Asset) {
	inAlbum := make(map[string]struct{}, len(albumAssets))
	for _, id := range albumAssets {
		inAlbum[id] = struct{}{}
	}

	for _, a := range f.Assets {
		if _, ok := inAlbum[a.AssetID]; ok {
			matched = append(matched, a)
		} else {
			missing = append(missing, a)
		}
	}
	return matched, missing
}
