//go:build integration

package postgres

import (
	"context"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/kozaktomas/immich-tools/internal/config"
	"github.com/kozaktomas/immich-tools/internal/database"
	"github.com/pgvector/pgvector-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// id returns a deterministic UUID for test fixtures.
func id(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

var (
	alice    = id(1)
	bob      = id(2)
	carol    = id(3)
	dave     = id(4) // hidden
	erin     = id(5) // no assets
	unnamed1 = id(6)
	unnamed2 = id(7)
	unnamed3 = id(8) // hidden
	blank    = id(9) // whitespace-only name

	assetAlice = id(101)
	assetA1    = id(102)
	assetA2    = id(103)
	assetDave  = id(104)
	assetCrowd = id(105)

	albumX = id(201)
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "immich",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	pool, err := NewPool(ctx, &config.DatabaseConfig{
		Host:     net.JoinHostPort(host, port.Port()),
		Username: "test",
		Password: "test",
		Name:     "immich",
		SSLMode:  "disable",
	})
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := seed(ctx, pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to seed database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

// unit returns a unit vector at the given cosine to [1, 0, 0].
func unit(cos float64) []float32 {
	return []float32{float32(cos), float32(math.Sqrt(1 - cos*cos)), 0}
}

func seed(ctx context.Context, pool *Pool) error {
	schema, err := os.ReadFile(filepath.Join("testdata", "immich_schema.sql"))
	if err != nil {
		return err
	}
	if _, err := pool.DB().ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	type person struct {
		id, name string
		hidden   bool
		face     int
		asset    string
		vec      []float32
	}
	persons := []person{
		{alice, "Alice", false, 1001, assetAlice, unit(1)},
		{bob, "Bob", false, 1002, assetA1, unit(0.92)},
		{carol, "Carol", false, 1003, assetA2, unit(0.40)},
		{dave, "Dave", true, 1004, assetDave, unit(0.99)},
		{erin, "Erin", false, 1005, "", unit(0.6)},
		{unnamed1, "", false, 1006, assetCrowd, unit(0.1)},
		{unnamed2, "", false, 1007, assetCrowd, unit(0.2)},
		{unnamed3, "", true, 1008, assetCrowd, unit(0.3)},
		{blank, "   ", false, 1009, assetCrowd, unit(0.05)},
	}

	for _, p := range persons {
		if _, err := pool.DB().ExecContext(ctx,
			`INSERT INTO person (id, name, "isHidden", "thumbnailPath") VALUES ($1, $2, $3, $4)`,
			p.id, p.name, p.hidden, "/thumbs/"+p.id+".jpeg"); err != nil {
			return fmt.Errorf("insert person: %w", err)
		}

		// A person without assets keeps a face record that is not linked back to it.
		var personRef any = p.id
		assetID := p.asset
		if assetID == "" {
			personRef = nil
			assetID = id(199)
		}
		if _, err := pool.DB().ExecContext(ctx,
			`INSERT INTO asset_faces (id, "assetId", "personId") VALUES ($1, $2, $3)`,
			id(p.face), assetID, personRef); err != nil {
			return fmt.Errorf("insert face: %w", err)
		}
		if _, err := pool.DB().ExecContext(ctx,
			`INSERT INTO face_search ("faceId", embedding) VALUES ($1, $2)`,
			id(p.face), pgvector.NewVector(p.vec)); err != nil {
			return fmt.Errorf("insert embedding: %w", err)
		}
		if _, err := pool.DB().ExecContext(ctx,
			`UPDATE person SET "faceAssetId" = $1 WHERE id = $2`, id(p.face), p.id); err != nil {
			return fmt.Errorf("link thumbnail face: %w", err)
		}
	}

	// Bob also appears on the crowded asset.
	if _, err := pool.DB().ExecContext(ctx,
		`INSERT INTO asset_faces (id, "assetId", "personId") VALUES ($1, $2, $3)`,
		id(1010), assetCrowd, bob); err != nil {
		return fmt.Errorf("insert extra face: %w", err)
	}

	for _, asset := range []string{assetCrowd, assetA1} {
		if _, err := pool.DB().ExecContext(ctx,
			`INSERT INTO albums_assets_assets ("albumsId", "assetsId") VALUES ($1, $2)`,
			albumX, asset); err != nil {
			return fmt.Errorf("insert album asset: %w", err)
		}
	}

	return nil
}

func TestSimilarityRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewSimilarityRepository(pool)

	target, err := repo.TargetEmbedding(ctx, "Alice")
	if err != nil {
		t.Fatalf("TargetEmbedding failed: %v", err)
	}
	if target.PersonID != alice {
		t.Errorf("Expected target person %s, got %s", alice, target.PersonID)
	}
	if target.FaceID != id(1001) {
		t.Errorf("Expected target face %s, got %s", id(1001), target.FaceID)
	}
	if len(target.Embedding) != 3 {
		t.Fatalf("Expected 3 dimensions, got %d", len(target.Embedding))
	}

	t.Run("MissingTarget", func(t *testing.T) {
		_, err := repo.TargetEmbedding(ctx, "Nobody")
		if err == nil {
			t.Fatal("Expected error for unknown name")
		}
	})

	ranked, err := repo.FindSimilarPersons(ctx, "Alice", target.Embedding, database.DefaultSimilarityLimit)
	if err != nil {
		t.Fatalf("FindSimilarPersons failed: %v", err)
	}

	t.Run("ExcludesTargetAndHidden", func(t *testing.T) {
		for _, p := range ranked {
			if p.PersonID == alice || p.PersonName == "Alice" {
				t.Errorf("Target person must not be in its own results")
			}
			if p.PersonID == dave {
				t.Errorf("Hidden person must not be ranked")
			}
		}
	})

	t.Run("ScoresBoundedAndSorted", func(t *testing.T) {
		for i, p := range ranked {
			if p.CosineSimilarity < -1 || p.CosineSimilarity > 1 {
				t.Errorf("Similarity %f out of [-1, 1]", p.CosineSimilarity)
			}
			if i > 0 && ranked[i-1].CosineSimilarity < p.CosineSimilarity {
				t.Errorf("Results not sorted descending at %d", i)
			}
		}
		if ranked[0].PersonID != bob {
			t.Errorf("Expected Bob first, got %s", ranked[0].PersonName)
		}
		if math.Abs(ranked[0].CosineSimilarity-0.92) > 1e-4 {
			t.Errorf("Expected Bob similarity 0.92, got %f", ranked[0].CosineSimilarity)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		limited, err := repo.FindSimilarPersons(ctx, "Alice", target.Embedding, 2)
		if err != nil {
			t.Fatalf("FindSimilarPersons failed: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("Expected 2 results, got %d", len(limited))
		}
	})

	t.Run("PersonAssetsDropsPersonsWithoutAssets", func(t *testing.T) {
		withAssets, err := repo.PersonAssets(ctx, ranked)
		if err != nil {
			t.Fatalf("PersonAssets failed: %v", err)
		}
		for _, p := range withAssets {
			if p.PersonID == erin {
				t.Errorf("Erin has no assets and should be dropped")
			}
			if p.PersonID == bob {
				sort.Strings(p.AssetIDs)
				if len(p.AssetIDs) != 2 || p.AssetIDs[0] != assetA1 || p.AssetIDs[1] != assetCrowd {
					t.Errorf("Unexpected Bob assets %v", p.AssetIDs)
				}
			}
		}
		if len(withAssets) != len(ranked)-1 {
			t.Errorf("Expected exactly one person dropped, got %d of %d", len(withAssets), len(ranked))
		}
	})

	t.Run("ScenarioMinSimilarity", func(t *testing.T) {
		withAssets, err := repo.PersonAssets(ctx, ranked)
		if err != nil {
			t.Fatalf("PersonAssets failed: %v", err)
		}
		filtered := database.FilterBySimilarity(withAssets, 0.5)
		for _, p := range filtered {
			if p.PersonID == carol {
				t.Errorf("Carol (0.40) should be filtered out at 0.5")
			}
		}
		if len(filtered) == 0 || filtered[0].PersonID != bob {
			t.Errorf("Expected Bob to remain first")
		}
	})
}

func TestVisibilityRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	gdb, err := pool.Gorm(nil)
	if err != nil {
		t.Fatalf("Gorm failed: %v", err)
	}
	repo := NewVisibilityRepository(gdb)

	t.Run("AssetsWithUnnamedFaces", func(t *testing.T) {
		counts, err := repo.AssetsWithUnnamedFaces(ctx, 2)
		if err != nil {
			t.Fatalf("AssetsWithUnnamedFaces failed: %v", err)
		}
		if len(counts) != 1 {
			t.Fatalf("Expected 1 asset, got %d", len(counts))
		}
		c := counts[0]
		if c.AssetID != assetCrowd {
			t.Errorf("Expected crowd asset, got %s", c.AssetID)
		}
		// Only exactly empty names count: the whitespace name and Bob are not unnamed.
		if c.FaceCount != 3 || c.HiddenCount != 1 || c.Unhidden() != 2 {
			t.Errorf("Unexpected counts %+v", c)
		}
	})

	t.Run("WhitespaceNameIsNotUnnamed", func(t *testing.T) {
		counts, err := repo.AssetsWithUnnamedFaces(ctx, 3)
		if err != nil {
			t.Fatalf("AssetsWithUnnamedFaces failed: %v", err)
		}
		if len(counts) != 0 {
			t.Errorf("Expected no assets with 3 visible unnamed faces, got %d", len(counts))
		}
	})

	t.Run("AlbumAssetIDs", func(t *testing.T) {
		ids, err := repo.AlbumAssetIDs(ctx, albumX)
		if err != nil {
			t.Fatalf("AlbumAssetIDs failed: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("Expected 2 assets, got %d", len(ids))
		}
	})

	t.Run("AssetFaces", func(t *testing.T) {
		faces, err := repo.AssetFaces(ctx, assetCrowd)
		if err != nil {
			t.Fatalf("AssetFaces failed: %v", err)
		}
		if len(faces) != 5 {
			t.Fatalf("Expected 5 faces, got %d", len(faces))
		}
		named := 0
		for _, f := range faces {
			if f.IsNamed() {
				named++
			}
		}
		if named != 1 {
			t.Errorf("Expected only Bob to be named, got %d named faces", named)
		}
	})
}
