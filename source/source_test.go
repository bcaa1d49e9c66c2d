// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/danielhkuo/my-vote/db"
	"github.com/danielhkuo/my-vote/models"
	"github.com/danielhkuo/my-vote/testutil"
)

var testKeys = Keys{House: "house.json", Senate: "senate.json"}

func TestFS(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "house.json"), []byte(testutil.HouseJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := FS{Dir: dir, Keys: testKeys}

	data, err := loader.Load(context.Background(), models.ChamberHouse)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != testutil.HouseJSON {
		t.Error("unexpected dataset content")
	}

	if _, err := loader.Load(context.Background(), models.ChamberSenate); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing file, got %v", err)
	}
	if _, err := loader.Load(context.Background(), "assembly"); err == nil {
		t.Error("expected error for unknown chamber")
	}
}

func TestMemory(t *testing.T) {
	loader := Memory{models.ChamberHouse: []byte(`[]`)}
	if _, err := loader.Load(context.Background(), models.ChamberHouse); err != nil {
		t.Errorf("Load() error = %v", err)
	}
	if _, err := loader.Load(context.Background(), models.ChamberSenate); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecords(t *testing.T) {
	records, err := Records(models.ChamberHouse, []byte(testutil.HouseJSON))
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 3 || records[0].Key != "Testville" || records[2].Key != "Close" {
		t.Errorf("unexpected records %+v", records)
	}

	records, err = Records(models.ChamberSenate, []byte(testutil.SenateJSON))
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 || records[0].Key != "TST" {
		t.Errorf("unexpected records %+v", records)
	}

	tests := []struct {
		name    string
		chamber string
		data    string
	}{
		{"bad json", models.ChamberHouse, `[{`},
		{"unknown event", models.ChamberSenate, `[{"state":"X","events":[{"type":"recount"}]}]`},
		{"unnamed record", models.ChamberHouse, `[{"method":{"type":"fullCount"}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Records(tt.chamber, []byte(tt.data)); !errors.Is(err, models.ErrDataIntegrity) {
				t.Errorf("expected ErrDataIntegrity, got %v", err)
			}
		})
	}
}

func TestDB(t *testing.T) {
	ctx := context.Background()
	store := db.NewStore(testutil.SetupTestDB(t))
	loader := DB{Store: store}

	if _, err := loader.Load(ctx, models.ChamberHouse); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before import, got %v", err)
	}

	records, err := Records(models.ChamberHouse, []byte(testutil.HouseJSON))
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if _, err := store.Import(ctx, models.ChamberHouse, records); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	catalog := NewCatalog(loader, nil)
	names, err := catalog.Divisions(ctx)
	if err != nil {
		t.Fatalf("Divisions() error = %v", err)
	}
	if strings.Join(names, ",") != "Close,Majority,Testville" {
		t.Errorf("unexpected divisions %v", names)
	}
}

// fakeS3 serves GetObject from a map of path-style keys.
type fakeS3 struct {
	objects map[string]string
	status  int
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.status != 0 {
		return &http.Response{StatusCode: f.status, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	// /<bucket>/<key>
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	if req.Method == http.MethodGet && len(parts) == 2 {
		if body, ok := f.objects[parts[1]]; ok {
			return &http.Response{
				StatusCode:    http.StatusOK,
				Body:          io.NopCloser(strings.NewReader(body)),
				ContentLength: int64(len(body)),
				Header:        http.Header{"Content-Type": {"application/json"}},
			}, nil
		}
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)),
		Header:     http.Header{"Content-Type": {"application/xml"}},
	}, nil
}

func newTestS3(t *testing.T, rt http.RoundTripper) *S3 {
	t.Helper()
	loader, err := NewS3(context.Background(),
		S3Config{Bucket: "results", Endpoint: "https://s3.test.local", PathStyle: true},
		testKeys,
		config.WithHTTPClient(&http.Client{Transport: rt}),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
		config.WithRetryMaxAttempts(1),
	)
	if err != nil {
		t.Fatalf("NewS3() error = %v", err)
	}
	return loader
}

func TestS3(t *testing.T) {
	loader := newTestS3(t, &fakeS3{objects: map[string]string{"senate.json": testutil.SenateJSON}})

	data, err := loader.Load(context.Background(), models.ChamberSenate)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != testutil.SenateJSON {
		t.Error("unexpected dataset content")
	}

	if _, err := loader.Load(context.Background(), models.ChamberHouse); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing object, got %v", err)
	}
}

func TestS3ServerError(t *testing.T) {
	loader := newTestS3(t, &fakeS3{status: http.StatusForbidden})
	_, err := loader.Load(context.Background(), models.ChamberSenate)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected a fetch error, got %v", err)
	}
}

func TestNewS3RequiresBucket(t *testing.T) {
	if _, err := NewS3(context.Background(), S3Config{}, testKeys); err == nil {
		t.Error("expected error without bucket")
	}
}

// countingLoader counts loads and fails while fail is set.
type countingLoader struct {
	Memory
	loads atomic.Int32
	fail  atomic.Bool
}

func (c *countingLoader) Load(ctx context.Context, chamber string) ([]byte, error) {
	c.loads.Add(1)
	if c.fail.Load() {
		return nil, errors.New("connection reset")
	}
	return c.Memory.Load(ctx, chamber)
}

func newCounting() *countingLoader {
	return &countingLoader{Memory: Memory{
		models.ChamberHouse:  []byte(testutil.HouseJSON),
		models.ChamberSenate: []byte(testutil.SenateJSON),
	}}
}

func TestCatalogCaches(t *testing.T) {
	ctx := context.Background()
	loader := newCounting()
	catalog := NewCatalog(loader, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := catalog.Division(ctx, "Testville"); err != nil {
				t.Errorf("Division() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := loader.loads.Load(); got != 1 {
		t.Errorf("expected one house load, got %d", got)
	}

	if _, err := catalog.State(ctx, "tst"); err != nil {
		t.Errorf("State() should match case-insensitively: %v", err)
	}
	if got := loader.loads.Load(); got != 2 {
		t.Errorf("expected a separate senate load, got %d loads", got)
	}

	catalog.Invalidate(models.ChamberHouse)
	if _, err := catalog.Divisions(ctx); err != nil {
		t.Fatalf("Divisions() error = %v", err)
	}
	if got := loader.loads.Load(); got != 3 {
		t.Errorf("expected reload after invalidate, got %d loads", got)
	}
}

func TestCatalogFailureNotCached(t *testing.T) {
	ctx := context.Background()
	loader := newCounting()
	loader.fail.Store(true)
	catalog := NewCatalog(loader, nil)

	if _, err := catalog.Divisions(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	loader.fail.Store(false)
	names, err := catalog.Divisions(ctx)
	if err != nil {
		t.Fatalf("Divisions() after recovery error = %v", err)
	}
	if len(names) != 3 {
		t.Errorf("expected 3 divisions, got %v", names)
	}
	if got := loader.loads.Load(); got != 2 {
		t.Errorf("expected the failed load to be retried, got %d loads", got)
	}
}

func TestCatalogNotFound(t *testing.T) {
	catalog := NewCatalog(newCounting(), nil)
	if _, err := catalog.Division(context.Background(), "Nowhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := catalog.State(context.Background(), "XYZ"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogBadDataset(t *testing.T) {
	catalog := NewCatalog(Memory{models.ChamberHouse: []byte(`[{"division":"X","method":{"type":"coinToss"}}]`)}, nil)
	_, err := catalog.Divisions(context.Background())
	if !errors.Is(err, models.ErrDataIntegrity) {
		t.Errorf("expected ErrDataIntegrity, got %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("a dataset that fails to decode is not a fetch failure")
	}
}
