package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newCatalogServer serves /data/<category>.json from the given bodies. A
// category missing from bodies answers 500.
func newCatalogServer(t *testing.T, bodies map[Category]string, contentType string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/data/"), ".json")
		body, ok := bodies[Category(name)]
		if !ok {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadIsolatesFailedCategory(t *testing.T) {
	bodies := map[Category]string{
		Legendaries: `[{"name":"Fire Ball","value_min":10,"value_max":20,"demand":"High demand"},{"name":"Ice Ball","value_min":1,"value_max":1}]`,
		Omegas:      `[{"name":"Omega Ball","value_min":"O/C","value_max":5}]`,
	}
	srv := newCatalogServer(t, bodies, "application/json; charset=utf-8")

	source := NewHTTPSource(srv.URL, "data", 5*time.Second)
	loader, err := NewLoader(source, []Category{Legendaries, Mythics, Omegas})
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	cat := loader.Load(context.Background())
	if cat.Len() != 3 {
		t.Fatalf("Expected 3 items, got %d", cat.Len())
	}

	items := cat.Items()
	wantOrder := []string{"omegas-omegaball", "legendaries-fireball", "legendaries-iceball"}
	for i, id := range wantOrder {
		if items[i].ID != id {
			t.Errorf("items[%d].ID = %q, want %q", i, items[i].ID, id)
		}
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].ValueAvg < items[i].ValueAvg {
			t.Errorf("Catalog not sorted descending at %d: %v < %v", i, items[i-1].ValueAvg, items[i].ValueAvg)
		}
	}

	if source.FetchCount() != 3 {
		t.Errorf("Expected 3 fetches, got %d", source.FetchCount())
	}
}

func TestLoadNormalizesRecords(t *testing.T) {
	bodies := map[Category]string{
		Mythics: `[
			{"name":"Sun Ball!","value_min":100,"value_max":300,"demand":"  Great demand","status":"Rising fast","image":"img/sun.png"},
			{"name":"Unknown","value_min":1,"value_max":2},
			{"value_min":1,"value_max":2},
			{"name":"","value_min":1},
			{"name":"Bad Ball","value_min":-5,"value_max":2},
			{"name":"Odd Ball","value_min":"N/A","value_max":4},
			{"name":42},
			{"name":"Off Ball","value_min":1,"value_max":"O/C"}
		]`,
	}
	srv := newCatalogServer(t, bodies, "application/json")

	loader, err := NewLoader(NewHTTPSource(srv.URL, "data", time.Second), []Category{Mythics})
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	cat := loader.Load(context.Background())

	if cat.Len() != 3 {
		t.Fatalf("Expected 3 items, got %d: %+v", cat.Len(), cat.Items())
	}

	sun, ok := cat.Lookup("mythics-sunball")
	if !ok {
		t.Fatal("Expected mythics-sunball in catalog")
	}
	if sun.ValueAvg != 200 {
		t.Errorf("ValueAvg = %v, want 200", sun.ValueAvg)
	}
	if sun.Demand != "Great" {
		t.Errorf("Demand = %q, want %q", sun.Demand, "Great")
	}
	if sun.Status != "Rising" {
		t.Errorf("Status = %q, want %q", sun.Status, "Rising")
	}
	if sun.Category != Mythics {
		t.Errorf("Category = %q, want %q", sun.Category, Mythics)
	}
	if sun.Image != "img/sun.png" {
		t.Errorf("Image = %q, want %q", sun.Image, "img/sun.png")
	}

	odd, ok := cat.Lookup("mythics-oddball")
	if !ok {
		t.Fatal("Expected mythics-oddball in catalog")
	}
	if odd.ValueAvg != 0 {
		t.Errorf("Odd Ball ValueAvg = %v, want 0", odd.ValueAvg)
	}

	off, ok := cat.Lookup("mythics-offball")
	if !ok {
		t.Fatal("Expected mythics-offball in catalog")
	}
	if off.ValueAvg != OffCatalogValue {
		t.Errorf("Off Ball ValueAvg = %v, want %v", off.ValueAvg, float64(OffCatalogValue))
	}
	if cat.Items()[0].ID != "mythics-offball" {
		t.Errorf("Expected off-catalog item first, got %q", cat.Items()[0].ID)
	}
}

func TestLoadKeepsAveragesFiniteNearFloatLimit(t *testing.T) {
	bodies := map[Category]string{
		Omegas: `[{"name":"Huge","value_min":1.7e308,"value_max":1.7e308},{"name":"Wide","value_min":1,"value_max":1.7e308}]`,
	}
	srv := newCatalogServer(t, bodies, "application/json")

	loader, err := NewLoader(NewHTTPSource(srv.URL, "data", time.Second), []Category{Omegas})
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	cat := loader.Load(context.Background())
	if cat.Len() != 2 {
		t.Fatalf("Expected 2 items, got %d", cat.Len())
	}

	huge, _ := cat.Lookup("omegas-huge")
	if huge.ValueAvg != 1.7e308 {
		t.Errorf("Huge ValueAvg = %v, want 1.7e308", huge.ValueAvg)
	}
	wide, _ := cat.Lookup("omegas-wide")
	if math.IsInf(wide.ValueAvg, 0) || wide.ValueAvg != 0.5+0.85e308 {
		t.Errorf("Wide ValueAvg = %v, want %v", wide.ValueAvg, 0.5+0.85e308)
	}
	if _, err := json.Marshal(cat.Items()); err != nil {
		t.Errorf("Marshal catalog: %v", err)
	}
}

func TestLoadRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"wrong content type", `[{"name":"A","value_min":1,"value_max":1}]`, "text/html"},
		{"object payload", `{"name":"A"}`, "application/json"},
		{"invalid json", `[{"name":`, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCatalogServer(t, map[Category]string{
				Page:      tt.body,
				ShinyPage: `[{"name":"Page Ball","value_min":2,"value_max":4}]`,
			}, tt.contentType)

			loader, err := NewLoader(NewHTTPSource(srv.URL, "data", time.Second), []Category{Page, ShinyPage})
			if err != nil {
				t.Fatalf("NewLoader failed: %v", err)
			}
			cat := loader.Load(context.Background())

			if tt.contentType == "text/html" {
				if cat.Len() != 0 {
					t.Errorf("Expected empty catalog when every response has the wrong content type, got %d", cat.Len())
				}
				return
			}
			if cat.Len() != 1 {
				t.Fatalf("Expected 1 item, got %d", cat.Len())
			}
			if _, ok := cat.Lookup("shinypage-pageball"); !ok {
				t.Error("Expected shinypage-pageball to survive a broken sibling category")
			}
		})
	}
}

func TestHTTPSourceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/legendaries.json":
			http.NotFound(w, r)
		case "/data/mythics.json":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("[]"))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	source := NewHTTPSource(srv.URL, "data", time.Second)

	tests := []struct {
		category   Category
		wantKind   string
		wantStatus int
	}{
		{Legendaries, KindNotFound, http.StatusNotFound},
		{Mythics, KindContentType, http.StatusOK},
		{Omegas, KindServer, http.StatusBadGateway},
	}
	for _, tt := range tests {
		_, err := source.Fetch(context.Background(), tt.category)
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("Fetch(%s) error = %v, want *FetchError", tt.category, err)
		}
		if fetchErr.Kind != tt.wantKind {
			t.Errorf("Fetch(%s) kind = %q, want %q", tt.category, fetchErr.Kind, tt.wantKind)
		}
		if fetchErr.StatusCode != tt.wantStatus {
			t.Errorf("Fetch(%s) status = %d, want %d", tt.category, fetchErr.StatusCode, tt.wantStatus)
		}
	}

	source.ResetFetchCount()
	if source.FetchCount() != 0 {
		t.Errorf("Expected fetch count reset to 0, got %d", source.FetchCount())
	}
}

func TestHTTPSourceNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPSource(url, "data", time.Second).Fetch(context.Background(), Page)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Kind != KindNetwork {
		t.Errorf("Expected network FetchError, got %v", err)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	body := `[{"name":"Disk Ball","value_min":3,"value_max":5}]`
	if err := os.WriteFile(filepath.Join(dir, "omegas.json"), []byte(body), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	loader, err := NewLoader(NewDirSource(dir), []Category{Omegas, ShinyOmegas})
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	cat := loader.Load(context.Background())
	if cat.Len() != 1 {
		t.Fatalf("Expected 1 item, got %d", cat.Len())
	}
	item, _ := cat.Lookup("omegas-diskball")
	if item.ValueAvg != 4 {
		t.Errorf("ValueAvg = %v, want 4", item.ValueAvg)
	}

	_, err = NewDirSource(dir).Fetch(context.Background(), ShinyOmegas)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Kind != KindNotFound {
		t.Errorf("Expected not_found FetchError, got %v", err)
	}
}

type panicSource struct{}

func (panicSource) Fetch(context.Context, Category) ([]byte, error) {
	panic("source exploded")
}

func TestLoadRecoversFromPanic(t *testing.T) {
	loader, err := NewLoader(panicSource{}, []Category{Page})
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	if cat := loader.Load(context.Background()); cat.Len() != 0 {
		t.Errorf("Expected empty catalog after panic, got %d items", cat.Len())
	}
}

func TestNewLoaderDefaultsToAllCategories(t *testing.T) {
	loader, err := NewLoader(NewDirSource(t.TempDir()), nil)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	if len(loader.categories) != len(AllCategories) {
		t.Errorf("Expected %d categories, got %d", len(AllCategories), len(loader.categories))
	}
	if cat := loader.Load(context.Background()); cat.Len() != 0 {
		t.Errorf("Expected empty catalog from empty dir, got %d", cat.Len())
	}
}
