package testsupport

import (
	"context"
	"testing"

	"clipper/internal/config"
	"clipper/internal/library"
)

// MustOpenCatalog opens a library.Catalog for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *library.Catalog {
	t.Helper()

	catalog, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		catalog.Close()
	})
	return catalog
}

// RegisterUpload stores a new upload row for tests using the provided catalog.
func RegisterUpload(t testing.TB, catalog *library.Catalog, originalName, path string) *library.Upload {
	t.Helper()

	upload, err := catalog.Register(context.Background(), library.NewUpload(originalName, path, 0))
	if err != nil {
		t.Fatalf("catalog.Register: %v", err)
	}
	return upload
}
