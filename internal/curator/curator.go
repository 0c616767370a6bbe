// Package curator runs the face maintenance pipelines: it combines database
// queries with Immich API calls and prints what it did.
package curator

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kozaktomas/immich-tools/internal/config"
	"github.com/kozaktomas/immich-tools/internal/immich"
	"github.com/schollz/progressbar/v3"
)

// API is the subset of the Immich client the pipelines call.
type API interface {
	CreateAlbum(ctx context.Context, assetIDs []string, name, description string) (string, error)
	GetAssetsFromAlbum(ctx context.Context, albumID string) ([]string, error)
	GetPersonID(ctx context.Context, name string) (string, error)
	GetSimilarFaces(ctx context.Context, personID string) ([]immich.Person, error)
	SearchAssetsByPerson(ctx context.Context, personID string) (*immich.Asset, error)
	MergePerson(ctx context.Context, mainID, duplicateID string) error
	UpdateAssetDescription(ctx context.Context, assetID, description string) error
	HidePerson(ctx context.Context, personID string) error
}

// Curator holds what every pipeline needs. It keeps no state between runs.
type Curator struct {
	api      API
	immich   *config.ImmichConfig
	out      io.Writer
	progress io.Writer
	dir      string
	now      func() time.Time
}

// Option configures a Curator.
type Option func(*Curator)

// WithOutput sets where result lines and summaries are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Curator) { c.out = w }
}

// WithProgressOutput sets where progress bars are drawn. Defaults to stderr.
func WithProgressOutput(w io.Writer) Option {
	return func(c *Curator) { c.progress = w }
}

// WithDir sets the directory for sidecar and failure report files.
func WithDir(dir string) Option {
	return func(c *Curator) { c.dir = dir }
}

// WithClock replaces time.Now, used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Curator) { c.now = now }
}

// New creates a Curator calling api. cfg is used to build person links.
func New(api API, cfg *config.ImmichConfig, opts ...Option) *Curator {
	c := &Curator{
		api:      api,
		immich:   cfg,
		out:      os.Stdout,
		progress: os.Stderr,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Curator) path(name string) string {
	if c.dir == "" {
		return name
	}
	return filepath.Join(c.dir, name)
}

func (c *Curator) newBar(total int, description, unit string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(unit),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}
