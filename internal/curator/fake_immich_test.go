package curator

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/immich-tools/internal/config"
	"github.com/kozaktomas/immich-tools/internal/immich"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

// fakeImmich is an in-memory Immich server recording every mutating call.
type fakeImmich struct {
	mu sync.Mutex

	searchPerson map[string][]immich.Person
	closest      map[string][]immich.Person
	personAssets map[string][]immich.Asset
	albums       map[string][]string

	created      []immich.CreateAlbumRequest
	descriptions map[string]string
	hidden       []string
	merges       [][2]string

	failDescribe map[string]bool
	failHide     map[string]string
	failAlbum    bool
}

func newFakeImmich() *fakeImmich {
	return &fakeImmich{
		searchPerson: make(map[string][]immich.Person),
		closest:      make(map[string][]immich.Person),
		personAssets: make(map[string][]immich.Asset),
		albums:       make(map[string][]string),
		descriptions: make(map[string]string),
		failDescribe: make(map[string]bool),
		failHide:     make(map[string]string),
	}
}

func requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != testAPIKey {
			http.Error(w, `{"message":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func decode(t *testing.T, body io.Reader, v any) {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		t.Errorf("decode request body: %v", err)
	}
}

func (f *fakeImmich) router(t *testing.T) http.Handler {
	r := chi.NewRouter()
	r.Use(requireAPIKey)

	r.Get("/api/search/person", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		people := f.searchPerson[r.URL.Query().Get("name")]
		if people == nil {
			people = []immich.Person{}
		}
		writeJSON(w, people)
	})

	r.Get("/api/people", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("withHidden") != "false" {
			http.Error(w, `{"message":"withHidden must be false"}`, http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		people := f.closest[r.URL.Query().Get("closestPersonId")]
		writeJSON(w, immich.PeopleResponse{People: people, Total: len(people)})
	})

	r.Put("/api/people", func(w http.ResponseWriter, r *http.Request) {
		var req immich.PeopleUpdateRequest
		decode(t, r.Body, &req)
		f.mu.Lock()
		defer f.mu.Unlock()
		var resp []immich.BulkIDResponse
		for _, p := range req.People {
			if msg, ok := f.failHide[p.ID]; ok {
				resp = append(resp, immich.BulkIDResponse{ID: p.ID, Error: msg})
				continue
			}
			if p.IsHidden != nil && *p.IsHidden {
				f.hidden = append(f.hidden, p.ID)
			}
			resp = append(resp, immich.BulkIDResponse{ID: p.ID, Success: true})
		}
		writeJSON(w, resp)
	})

	r.Post("/api/people/{id}/merge", func(w http.ResponseWriter, r *http.Request) {
		var req immich.MergePersonRequest
		decode(t, r.Body, &req)
		f.mu.Lock()
		defer f.mu.Unlock()
		mainID := chi.URLParam(r, "id")
		var resp []immich.BulkIDResponse
		for _, id := range req.IDs {
			f.merges = append(f.merges, [2]string{mainID, id})
			resp = append(resp, immich.BulkIDResponse{ID: id, Success: true})
		}
		writeJSON(w, resp)
	})

	r.Post("/api/search/metadata", func(w http.ResponseWriter, r *http.Request) {
		var req immich.MetadataSearchRequest
		decode(t, r.Body, &req)
		f.mu.Lock()
		defer f.mu.Unlock()
		var items []immich.Asset
		if len(req.PersonIDs) > 0 {
			items = f.personAssets[req.PersonIDs[0]]
		}
		if items == nil {
			items = []immich.Asset{}
		}
		writeJSON(w, immich.SearchResponse{Assets: immich.SearchAssetResult{Items: items, Count: len(items)}})
	})

	r.Post("/api/albums", func(w http.ResponseWriter, r *http.Request) {
		var req immich.CreateAlbumRequest
		decode(t, r.Body, &req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failAlbum {
			http.Error(w, `{"message":"Internal server error"}`, http.StatusInternalServerError)
			return
		}
		f.created = append(f.created, req)
		id := fmt.Sprintf("album-%d", len(f.created))
		f.albums[id] = req.AssetIDs
		writeJSON(w, immich.Album{ID: id, AlbumName: req.AlbumName, Description: req.Description})
	})

	r.Get("/api/albums/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		assetIDs, ok := f.albums[chi.URLParam(r, "id")]
		if !ok {
			http.Error(w, `{"message":"Album not found"}`, http.StatusNotFound)
			return
		}
		album := immich.Album{ID: chi.URLParam(r, "id")}
		for _, id := range assetIDs {
			album.Assets = append(album.Assets, immich.Asset{ID: id})
		}
		writeJSON(w, album)
	})

	r.Put("/api/assets/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req immich.UpdateAssetRequest
		decode(t, r.Body, &req)
		f.mu.Lock()
		defer f.mu.Unlock()
		id := chi.URLParam(r, "id")
		if f.failDescribe[id] {
			http.Error(w, `{"message":"Asset not found"}`, http.StatusBadRequest)
			return
		}
		if req.Description != nil {
			f.descriptions[id] = *req.Description
		}
		writeJSON(w, immich.Asset{ID: id})
	})

	return r
}

var testTime = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	fake    *fakeImmich
	curator *Curator
	out     *safeBuffer
	dir     string
}

// safeBuffer collects printed output.
type safeBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := newFakeImmich()
	server := httptest.NewServer(fake.router(t))
	t.Cleanup(server.Close)

	client, err := immich.New(server.URL, testAPIKey, immich.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	out := &safeBuffer{}
	dir := t.TempDir()
	cfg := &config.ImmichConfig{ServerAddress: server.URL, PublicURL: "https://photos.example.com"}

	c := New(client, cfg,
		WithOutput(out),
		WithProgressOutput(io.Discard),
		WithDir(dir),
		WithClock(func() time.Time { return testTime }),
	)
	return &testEnv{fake: fake, curator: c, out: out, dir: dir}
}
