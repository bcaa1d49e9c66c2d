// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/my-vote/auth"
	"github.com/danielhkuo/my-vote/db"
	"github.com/danielhkuo/my-vote/metrics"
	"github.com/danielhkuo/my-vote/models"
	"github.com/danielhkuo/my-vote/source"
	"github.com/danielhkuo/my-vote/testutil"
)

// TestFullImportWorkflow tests the complete end-to-end workflow:
// 1. Import the House and Senate datasets
// 2. List divisions and states
// 3. Fetch one result of each chamber
// 4. Narrate a ballot in each chamber
func TestFullImportWorkflow(t *testing.T) {
	cfg := testutil.GetTestConfig()
	store := db.NewStore(testutil.SetupTestDB(t))
	m := metrics.New()
	catalog := source.NewCatalog(source.DB{Store: store}, m)

	datasetHandler := NewDatasetHandler(catalog, store, cfg)
	houseHandler := NewHouseHandler(catalog, m)
	senateHandler := NewSenateHandler(catalog, m)

	// Step 1: Import both chambers
	for chamber, data := range map[string]string{
		models.ChamberHouse:  testutil.HouseJSON,
		models.ChamberSenate: testutil.SenateJSON,
	} {
		w := httptest.NewRecorder()
		datasetHandler.Import(w, importRequest(chamber, data, auth.GenerateAdminKey(chamber, cfg.AdminKeySalt)))
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 1 - Import %s failed: %d - %s", chamber, w.Code, w.Body.String())
		}
		var resp models.ImportResponse
		testutil.AssertJSON(t, w, &resp)
		t.Logf("Step 1 - Imported %s: %s (%d records)", chamber, resp.ImportID, resp.Records)
	}

	// Step 2: List divisions and states
	w := httptest.NewRecorder()
	houseHandler.ListDivisions(w, testutil.MakeRequest("GET", "/house/divisions", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var divisions []string
	testutil.AssertJSON(t, w, &divisions)
	if len(divisions) != 3 {
		t.Fatalf("Step 2 - Expected 3 divisions, got %v", divisions)
	}

	w = httptest.NewRecorder()
	senateHandler.ListStates(w, testutil.MakeRequest("GET", "/senate/states", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var states []string
	testutil.AssertJSON(t, w, &states)
	if len(states) != 1 {
		t.Fatalf("Step 2 - Expected 1 state, got %v", states)
	}
	t.Logf("Step 2 - Listed %v and %v", divisions, states)

	// Step 3: Fetch results
	req := testutil.MakeRequest("GET", "/house/divisions/Close", nil, nil)
	req.SetPathValue("division", "Close")
	w = httptest.NewRecorder()
	houseHandler.GetDivision(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	var division models.HouseResult
	testutil.AssertJSON(t, w, &division)
	if division.Method.Type != models.MethodTwoCandidatePreferred || len(division.Method.Candidates) != 2 {
		t.Fatalf("Step 3 - Method did not survive the import: %+v", division.Method)
	}

	req = testutil.MakeRequest("GET", "/senate/states/TST", nil, nil)
	req.SetPathValue("state", "TST")
	w = httptest.NewRecorder()
	senateHandler.GetState(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	t.Log("Step 3 - Fetched Close and TST")

	// Step 4: Narrate ballots
	req = testutil.MakeRequest("POST", "/house/divisions/Close/narrative",
		houseBallot(map[string]string{"21": "1", "22": "2", "23": "3"}), nil)
	req.SetPathValue("division", "Close")
	w = httptest.NewRecorder()
	houseHandler.Narrate(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	var houseResp models.NarrativeResponse
	testutil.AssertJSON(t, w, &houseResp)
	if !houseResp.Valid || houseResp.House == nil {
		t.Fatalf("Step 4 - Expected a House narrative, got %+v", houseResp)
	}
	last := houseResp.House.Lines[len(houseResp.House.Lines)-1]
	if last.Kind != models.LineElected || last.Candidate != "Q, Quinn" {
		t.Errorf("Step 4 - Expected Q elected, got %+v", last)
	}

	req = testutil.MakeRequest("POST", "/senate/states/TST/narrative", atlBallot("A", "B", "C", "D", "E", "F"), nil)
	req.SetPathValue("state", "TST")
	w = httptest.NewRecorder()
	senateHandler.Narrate(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	var senateResp models.NarrativeResponse
	testutil.AssertJSON(t, w, &senateResp)
	if !senateResp.Valid || senateResp.Senate == nil || senateResp.Senate.ExhaustedPercent != "25.00%" {
		t.Fatalf("Step 4 - Unexpected Senate narrative %+v", senateResp)
	}
	t.Log("Step 4 - Narrated both ballots")
}
