// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/my-vote/auth"
	"github.com/danielhkuo/my-vote/cliparse"
	"github.com/danielhkuo/my-vote/db"
	"github.com/danielhkuo/my-vote/models"
	"github.com/danielhkuo/my-vote/source"
	"github.com/danielhkuo/my-vote/testutil"
)

// setupImport wires a catalog that reads back what the handler imports
func setupImport(t *testing.T) (*DatasetHandler, *source.Catalog, cliparse.Config) {
	t.Helper()
	cfg := testutil.GetTestConfig()
	store := db.NewStore(testutil.SetupTestDB(t))
	catalog := source.NewCatalog(source.DB{Store: store}, nil)
	return NewDatasetHandler(catalog, store, cfg), catalog, cfg
}

func importRequest(chamber, body, key string) *http.Request {
	req := testutil.MakeRequest("POST", "/datasets/"+chamber, body, map[string]string{"X-Admin-Key": key})
	req.SetPathValue("chamber", chamber)
	return req
}

func TestImportDataset(t *testing.T) {
	h, catalog, cfg := setupImport(t)
	ctx := t.Context()

	// Nothing imported yet
	if _, err := catalog.Divisions(ctx); err == nil {
		t.Fatal("Expected an error before import")
	}

	w := httptest.NewRecorder()
	h.Import(w, importRequest(models.ChamberHouse, testutil.HouseJSON, auth.GenerateAdminKey(models.ChamberHouse, cfg.AdminKeySalt)))

	testutil.AssertStatus(t, w, http.StatusCreated)
	var resp models.ImportResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.ImportID == "" || resp.Chamber != models.ChamberHouse || resp.Records != 3 {
		t.Errorf("Unexpected import response %+v", resp)
	}

	names, err := catalog.Divisions(ctx)
	if err != nil {
		t.Fatalf("Expected divisions after import: %v", err)
	}
	if len(names) != 3 {
		t.Errorf("Expected 3 divisions, got %v", names)
	}

	// Status reports the import
	req := testutil.MakeRequest("GET", "/datasets/house", nil, nil)
	req.SetPathValue("chamber", models.ChamberHouse)
	w = httptest.NewRecorder()
	h.Status(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var status models.DatasetStatus
	testutil.AssertJSON(t, w, &status)
	if status.ImportID != resp.ImportID || status.Driver != source.DriverDB {
		t.Errorf("Unexpected status %+v", status)
	}
}

func TestImportDataset_ReplacesChamber(t *testing.T) {
	h, catalog, cfg := setupImport(t)
	key := auth.GenerateAdminKey(models.ChamberHouse, cfg.AdminKeySalt)

	w := httptest.NewRecorder()
	h.Import(w, importRequest(models.ChamberHouse, testutil.HouseJSON, key))
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Warm the cache, then replace the dataset
	if _, err := catalog.Division(t.Context(), "Testville"); err != nil {
		t.Fatal(err)
	}
	one := `[{"division":"Solo","candidates":[],"method":{"type":"fullCount"},"events":[]}]`
	w = httptest.NewRecorder()
	h.Import(w, importRequest(models.ChamberHouse, one, key))
	testutil.AssertStatus(t, w, http.StatusCreated)

	names, err := catalog.Divisions(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "Solo" {
		t.Errorf("Expected the new dataset to be served, got %v", names)
	}
}

func TestImportDataset_Errors(t *testing.T) {
	cfg := testutil.GetTestConfig()
	houseKey := auth.GenerateAdminKey(models.ChamberHouse, cfg.AdminKeySalt)

	tests := []struct {
		name       string
		chamber    string
		body       string
		key        string
		wantStatus int
	}{
		{"unknown chamber", "assembly", testutil.HouseJSON, houseKey, http.StatusNotFound},
		{"missing key", models.ChamberHouse, testutil.HouseJSON, "", http.StatusUnauthorized},
		{"other chamber key", models.ChamberSenate, testutil.SenateJSON, houseKey, http.StatusUnauthorized},
		{"not a dataset", models.ChamberHouse, `{"division":"Testville"}`, houseKey, http.StatusBadRequest},
		{"bad event", models.ChamberHouse, `[{"division":"X","events":[{"type":"recount"}]}]`, houseKey, http.StatusBadRequest},
		{"empty dataset", models.ChamberHouse, `[]`, houseKey, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := setupImport(t)
			w := httptest.NewRecorder()

			h.Import(w, importRequest(tt.chamber, tt.body, tt.key))

			testutil.AssertStatus(t, w, tt.wantStatus)
		})
	}
}

func TestImportDataset_NoDatabase(t *testing.T) {
	cfg := testutil.GetTestConfig()
	h := NewDatasetHandler(newTestCatalog(nil), nil, cfg)

	w := httptest.NewRecorder()
	h.Import(w, importRequest(models.ChamberSenate, testutil.SenateJSON, auth.GenerateAdminKey(models.ChamberSenate, cfg.AdminKeySalt)))
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)

	// Status still answers, without an import
	req := testutil.MakeRequest("GET", "/datasets/senate", nil, nil)
	req.SetPathValue("chamber", models.ChamberSenate)
	w = httptest.NewRecorder()
	h.Status(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var status models.DatasetStatus
	testutil.AssertJSON(t, w, &status)
	if status.Driver != source.DriverMemory || status.ImportID != "" {
		t.Errorf("Unexpected status %+v", status)
	}
}
