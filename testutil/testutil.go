// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielhkuo/my-vote/cliparse"
	"github.com/danielhkuo/my-vote/db"
)

// HouseJSON is a small House dataset with one division per method:
// Testville (fullCount), Majority (firstPreferences) and Close
// (twoCandidatePreferred).
const HouseJSON = `[
{"division":"Testville",
 "candidates":[
  {"id":1,"name":"Ann Alpha","displayName":"ALPHA, Ann (Red)","party":"Red","position":1},
  {"id":2,"name":"Ben Beta","displayName":"BETA, Ben (Blue)","party":"Blue","position":2},
  {"id":3,"name":"Cat Gamma","displayName":"GAMMA, Cat","position":3}],
 "elected":{"id":1,"name":"Ann Alpha","displayName":"ALPHA, Ann (Red)","party":"Red","position":1,"preferencesTotal":5200,"preferencesPercentage":52.0},
 "method":{"type":"fullCount"},
 "events":[
  {"type":"count","count":0,"candidates":[
   {"id":1,"name":"Ann Alpha","displayName":"ALPHA, Ann (Red)","position":1,"preferencesTotal":4000,"preferencesPercentage":40.0},
   {"id":2,"name":"Ben Beta","displayName":"BETA, Ben (Blue)","position":2,"preferencesTotal":3500,"preferencesPercentage":35.0},
   {"id":3,"name":"Cat Gamma","displayName":"GAMMA, Cat","position":3,"preferencesTotal":2500,"preferencesPercentage":25.0}]},
  {"type":"transfer","from":{"id":3,"name":"Cat Gamma","displayName":"GAMMA, Cat","position":3},"candidates":[
   {"id":1,"name":"Ann Alpha","displayName":"ALPHA, Ann (Red)","position":1,"transferredTotal":1200,"transferredPercentage":48.0},
   {"id":2,"name":"Ben Beta","displayName":"BETA, Ben (Blue)","position":2,"transferredTotal":1300,"transferredPercentage":52.0}]},
  {"type":"count","count":1,"candidates":[
   {"id":1,"name":"Ann Alpha","displayName":"ALPHA, Ann (Red)","position":1,"preferencesTotal":5200,"preferencesPercentage":52.0},
   {"id":2,"name":"Ben Beta","displayName":"BETA, Ben (Blue)","position":2,"preferencesTotal":4800,"preferencesPercentage":48.0}]},
  {"type":"elected","elected":{"id":1,"name":"Ann Alpha","displayName":"ALPHA, Ann (Red)","party":"Red","position":1,"preferencesTotal":5200,"preferencesPercentage":52.0}}]},
{"division":"Majority",
 "candidates":[
  {"id":11,"name":"Xia X","displayName":"X, Xia","position":1},
  {"id":12,"name":"Yan Y","displayName":"Y, Yan","position":2}],
 "elected":{"id":11,"name":"Xia X","displayName":"X, Xia","position":1,"preferencesTotal":6000,"preferencesPercentage":60.0},
 "method":{"type":"firstPreferences","elected":{"id":11,"name":"Xia X","displayName":"X, Xia","position":1,"preferencesTotal":6000,"preferencesPercentage":60.0}},
 "events":[]},
{"division":"Close",
 "candidates":[
  {"id":21,"name":"Pat P","displayName":"P, Pat","position":1},
  {"id":22,"name":"Quinn Q","displayName":"Q, Quinn","position":2},
  {"id":23,"name":"Rae R","displayName":"R, Rae","position":3}],
 "elected":{"id":22,"name":"Quinn Q","displayName":"Q, Quinn","position":2,"preferencesTotal":5100,"preferencesPercentage":51.0},
 "method":{"type":"twoCandidatePreferred","candidates":[
  {"id":21,"name":"Pat P","displayName":"P, Pat","position":1,"preferencesTotal":4500,"preferencesPercentage":45.0},
  {"id":22,"name":"Quinn Q","displayName":"Q, Quinn","position":2,"preferencesTotal":4000,"preferencesPercentage":40.0}]},
 "events":[]}
]`

// SenateJSON is a one-vacancy Senate dataset for the state TST with six
// tickets A-F of two candidates each (positions 1-12). A1 is elected on
// the last count with a transfer value of 0.25.
const SenateJSON = `[
{"state":"TST","vacancies":1,"papers":1000,"quota":501,
 "tickets":[
  {"id":"A","ticket":"Alpha","candidates":[{"name":"A1","displayName":"A1","ticket":"Alpha","position":1},{"name":"A2","displayName":"A2","ticket":"Alpha","position":2}]},
  {"id":"B","ticket":"Beta","candidates":[{"name":"B1","displayName":"B1","ticket":"Beta","position":3},{"name":"B2","displayName":"B2","ticket":"Beta","position":4}]},
  {"id":"C","ticket":"Gamma","candidates":[{"name":"C1","displayName":"C1","ticket":"Gamma","position":5},{"name":"C2","displayName":"C2","ticket":"Gamma","position":6}]},
  {"id":"D","ticket":"Delta","candidates":[{"name":"D1","displayName":"D1","ticket":"Delta","position":7},{"name":"D2","displayName":"D2","ticket":"Delta","position":8}]},
  {"id":"E","ticket":"Epsilon","candidates":[{"name":"E1","displayName":"E1","ticket":"Epsilon","position":9},{"name":"E2","displayName":"E2","ticket":"Epsilon","position":10}]},
  {"id":"F","ticket":"Zeta","candidates":[{"name":"F1","displayName":"F1","ticket":"Zeta","position":11},{"name":"F2","displayName":"F2","ticket":"Zeta","position":12}]}],
 "events":[
  {"type":"count","count":1,"votes":[{"ticket":"A","candidates":[]}]},
  {"type":"excluded","name":"F2","displayName":"F2","ticket":"Zeta","position":12,"papers":10,"votes":10},
  {"type":"excluded","name":"F1","displayName":"F1","ticket":"Zeta","position":11,"papers":12,"votes":12},
  {"type":"count","count":2},
  {"type":"elected","name":"A1","displayName":"A1","ticket":"Alpha","position":1,"order":1,"papers":396,"votes":600,"quota":501,"surplus":99,"transferValue":0.25}]}
]`

// SetupTestDB creates a fresh sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseType: db.TypeSQLite,
		AdminKeySalt: "test-admin-salt",
		DataDriver:   "memory",
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, strings.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	default:
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a form-encoded HTTP test request
func MakeFormRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
