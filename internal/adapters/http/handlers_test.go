package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"

	handler "github.com/samirrijal/geostore/internal/adapters/http"
	"github.com/samirrijal/geostore/internal/core/domain"
	"github.com/samirrijal/geostore/internal/core/ewkb"
	"github.com/samirrijal/geostore/internal/core/ports"
	"github.com/samirrijal/geostore/internal/core/usecases"
)

// ---- Mock repository ----

type mockFeatureRepo struct {
	insertFn  func(ctx context.Context, f *domain.Feature, data []byte) error
	getByIDFn func(ctx context.Context, id string) (*domain.Feature, []byte, error)
	nearestFn func(ctx context.Context, lon, lat float64, srid uint32, limit int) ([]ports.FeatureRow, error)
	listFn    func(ctx context.Context, offset, limit int) ([]ports.FeatureRow, int, error)
	deleteFn  func(ctx context.Context, id string) error
	pingFn    func(ctx context.Context) error
}

func (m *mockFeatureRepo) Insert(ctx context.Context, f *domain.Feature, data []byte) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, f, data)
	}
	f.ID = featureID
	return nil
}

func (m *mockFeatureRepo) GetByID(ctx context.Context, id string) (*domain.Feature, []byte, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil, ports.ErrNotFound
}

func (m *mockFeatureRepo) Nearest(ctx context.Context, lon, lat float64, srid uint32, limit int) ([]ports.FeatureRow, error) {
	if m.nearestFn != nil {
		return m.nearestFn(ctx, lon, lat, srid, limit)
	}
	return nil, nil
}

func (m *mockFeatureRepo) List(ctx context.Context, offset, limit int) ([]ports.FeatureRow, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockFeatureRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockFeatureRepo) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// ---- Test helpers ----

const (
	featureID = "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	pointHex  = "0101000020E6100000000000000000F03F0000000000000040" // POINT(1 2), SRID 4326
)

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Features: usecases.NewFeatureService(&mockFeatureRepo{}, nil, nil, usecases.FeatureServiceConfig{}),
		Codec:    usecases.NewCodecService(domain.SRIDWGS84),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func withRepo(repo *mockFeatureRepo) func(*handler.Dependencies) {
	return func(d *handler.Dependencies) {
		d.Features = usecases.NewFeatureService(repo, nil, nil, usecases.FeatureServiceConfig{})
	}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := ewkb.DecodeHex(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func storedPoint(t *testing.T) func(ctx context.Context, id string) (*domain.Feature, []byte, error) {
	return func(ctx context.Context, id string) (*domain.Feature, []byte, error) {
		return &domain.Feature{
			ID:        id,
			Name:      "Abando",
			SRID:      domain.SRIDWGS84,
			CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}, mustHex(t, pointHex), nil
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *httptestResponse {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	return &httptestResponse{Status: resp.StatusCode, Header: resp.Header, Body: readBody(t, resp.Body)}
}

type httptestResponse struct {
	Status int
	Header map[string][]string
	Body   []byte
}

func (r *httptestResponse) header(key string) string {
	for k, v := range r.Header {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func decodeAPIError(t *testing.T, body []byte) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return apiErr
}

// ---- Create ----

func TestCreateFeature_GeoJSON(t *testing.T) {
	var stored []byte
	deps := makeDeps(withRepo(&mockFeatureRepo{
		insertFn: func(ctx context.Context, f *domain.Feature, data []byte) error {
			stored = data
			f.ID = featureID
			return nil
		},
	}))
	app := setupApp(deps)

	resp := doJSON(t, app, "POST", "/v1/features", `{
		"name": "Abando",
		"geometry": {"type": "Point", "coordinates": [1, 2]},
		"properties": {"kind": "station"}
	}`)
	if resp.Status != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Status, resp.Body)
	}
	if loc := resp.header("Location"); loc != "/v1/features/"+featureID {
		t.Errorf("unexpected Location %q", loc)
	}
	if got := ewkb.EncodeHex(stored); got != pointHex {
		t.Errorf("stored EWKB = %s, want %s", got, pointHex)
	}

	var f handler.FeatureResponse
	if err := json.Unmarshal(resp.Body, &f); err != nil {
		t.Fatal(err)
	}
	if f.ID != featureID || f.SRID != 4326 || f.Type != "Point" || f.EWKB != pointHex {
		t.Errorf("unexpected feature %+v", f)
	}
	if f.Properties["kind"] != "station" {
		t.Errorf("expected properties to round trip, got %v", f.Properties)
	}
}

func TestCreateFeature_EWKB_BigEndianNormalised(t *testing.T) {
	app := setupApp(makeDeps())

	resp := doJSON(t, app, "POST", "/v1/features",
		`{"name":"be","ewkb":"0020000001000010E63FF00000000000004000000000000000"}`)
	if resp.Status != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Status, resp.Body)
	}
	var f handler.FeatureResponse
	json.Unmarshal(resp.Body, &f)
	if f.EWKB != pointHex {
		t.Errorf("expected little-endian %s, got %s", pointHex, f.EWKB)
	}
}

func TestCreateFeature_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"srid mismatch", `{"name":"x","srid":3857,"ewkb":"` + pointHex + `"}`, 422, "srid_mismatch"},
		{"invalid hex", `{"name":"x","ewkb":"zz"}`, 400, "invalid_ewkb"},
		{"truncated", `{"name":"x","ewkb":"0101000020E6100000"}`, 400, "invalid_ewkb"},
		{"bad byte order", `{"name":"x","ewkb":"0201000000"}`, 400, "invalid_ewkb"},
		{"missing name", `{"geometry":{"type":"Point","coordinates":[1,2]}}`, 400, "bad_request"},
		{"no geometry", `{"name":"x"}`, 400, "bad_request"},
		{"invalid geojson", `{"name":"x","geometry":{"type":"Nope"}}`, 400, "invalid_geojson"},
		{"malformed body", `{"name":`, 400, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(makeDeps())
			resp := doJSON(t, app, "POST", "/v1/features", tt.body)
			if resp.Status != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, resp.Status, resp.Body)
			}
			if apiErr := decodeAPIError(t, resp.Body); apiErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s (%s)", tt.wantCode, apiErr.Code, apiErr.Message)
			}
		})
	}
}

func TestCreateFeature_SRIDMismatchMessage(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "POST", "/v1/features", `{"name":"x","srid":3857,"ewkb":"`+pointHex+`"}`)
	apiErr := decodeAPIError(t, resp.Body)
	if apiErr.Message != "Wrong SRID in database: Some(4326), Expected: 3857" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestCreateFeature_RepoFailureIsInternal(t *testing.T) {
	deps := makeDeps(withRepo(&mockFeatureRepo{
		insertFn: func(ctx context.Context, f *domain.Feature, data []byte) error {
			return errors.New("connection reset by peer")
		},
	}))
	app := setupApp(deps)

	resp := doJSON(t, app, "POST", "/v1/features", `{"name":"x","ewkb":"`+pointHex+`"}`)
	if resp.Status != 500 {
		t.Fatalf("expected 500, got %d", resp.Status)
	}
	if apiErr := decodeAPIError(t, resp.Body); strings.Contains(apiErr.Message, "connection") {
		t.Errorf("internal error leaked detail: %q", apiErr.Message)
	}
}

// ---- Get / Delete ----

func TestGetFeature_Success(t *testing.T) {
	app := setupApp(makeDeps(withRepo(&mockFeatureRepo{getByIDFn: storedPoint(t)})))

	resp := doJSON(t, app, "GET", "/v1/features/"+featureID, "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}

	var f struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		EWKB     string `json:"ewkb"`
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal(resp.Body, &f); err != nil {
		t.Fatal(err)
	}
	if f.ID != featureID || f.Name != "Abando" || f.EWKB != pointHex {
		t.Errorf("unexpected feature %+v", f)
	}
	if f.Geometry.Type != "Point" {
		t.Errorf("expected Point geometry, got %s", f.Geometry.Type)
	}
	if diff := cmp.Diff([]float64{1, 2}, f.Geometry.Coordinates); diff != "" {
		t.Errorf("coordinates mismatch (-want +got):\n%s", diff)
	}
	if cc := resp.header("Cache-Control"); cc != "public, max-age=600" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
}

func TestGetFeature_InvalidID(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "GET", "/v1/features/not-a-uuid", "")
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
}

func TestGetFeature_NotFound(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "GET", "/v1/features/"+featureID, "")
	if resp.Status != 404 {
		t.Fatalf("expected 404, got %d", resp.Status)
	}
	if apiErr := decodeAPIError(t, resp.Body); apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %s", apiErr.Code)
	}
}

func TestGetFeature_StoredSRIDMismatch(t *testing.T) {
	app := setupApp(makeDeps(withRepo(&mockFeatureRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Feature, []byte, error) {
			return &domain.Feature{ID: id, SRID: domain.SRIDWebMercator}, mustHex(t, pointHex), nil
		},
	})))
	resp := doJSON(t, app, "GET", "/v1/features/"+featureID, "")
	if resp.Status != 422 {
		t.Fatalf("expected 422, got %d", resp.Status)
	}
	if apiErr := decodeAPIError(t, resp.Body); apiErr.Code != "srid_mismatch" {
		t.Errorf("expected srid_mismatch, got %s", apiErr.Code)
	}
}

func TestGetFeatureEWKB(t *testing.T) {
	app := setupApp(makeDeps(withRepo(&mockFeatureRepo{getByIDFn: storedPoint(t)})))
	resp := doJSON(t, app, "GET", "/v1/features/"+featureID+"/ewkb", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if ct := resp.header("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("unexpected Content-Type %q", ct)
	}
	if !bytes.Equal(resp.Body, mustHex(t, pointHex)) {
		t.Errorf("unexpected body %x", resp.Body)
	}
}

func TestGetFeature_ETagNotModified(t *testing.T) {
	app := setupApp(makeDeps(withRepo(&mockFeatureRepo{getByIDFn: storedPoint(t)})))

	first := doJSON(t, app, "GET", "/v1/features/"+featureID, "")
	etag := first.header("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak ETag, got %q", etag)
	}

	req := httptest.NewRequest("GET", "/v1/features/"+featureID, nil)
	req.Header.Set("If-None-Match", `"other", `+etag)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}
}

func TestDeleteFeature(t *testing.T) {
	var deleted string
	app := setupApp(makeDeps(withRepo(&mockFeatureRepo{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	})))
	resp := doJSON(t, app, "DELETE", "/v1/features/"+featureID, "")
	if resp.Status != 204 {
		t.Fatalf("expected 204, got %d", resp.Status)
	}
	if deleted != featureID {
		t.Errorf("expected delete of %s, got %q", featureID, deleted)
	}
}

func TestDeleteFeature_NotFound(t *testing.T) {
	app := setupApp(makeDeps(withRepo(&mockFeatureRepo{
		deleteFn: func(ctx context.Context, id string) error { return ports.ErrNotFound },
	})))
	resp := doJSON(t, app, "DELETE", "/v1/features/"+featureID, "")
	if resp.Status != 404 {
		t.Fatalf("expected 404, got %d", resp.Status)
	}
}

// ---- List / Nearest ----

func TestListFeatures_Pagination(t *testing.T) {
	app := setupApp(makeDeps(withRepo(&mockFeatureRepo{
		listFn: func(ctx context.Context, offset, limit int) ([]ports.FeatureRow, int, error) {
			if offset != 3 || limit != 3 {
				t.Errorf("expected offset 3 limit 3, got %d %d", offset, limit)
			}
			rows := make([]ports.FeatureRow, 3)
			for i := range rows {
				rows[i] = ports.FeatureRow{
					Feature: domain.Feature{ID: featureID, SRID: domain.SRIDWGS84},
					EWKB:    mustHex(t, pointHex),
				}
			}
			return rows, 10, nil
		},
	})))

	resp := doJSON(t, app, "GET", "/v1/features?offset=3&limit=3", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}

	var result struct {
		Data       []handler.FeatureResponse `json:"data"`
		Pagination handler.Pagination        `json:"pagination"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(handler.Pagination{Offset: 3, Limit: 3, Total: 10}, result.Pagination); diff != "" {
		t.Errorf("pagination mismatch (-want +got):\n%s", diff)
	}
	if len(result.Data) != 3 {
		t.Errorf("expected 3 features, got %d", len(result.Data))
	}

	link := resp.header("Link")
	for _, want := range []string{
		`offset=0&limit=3>; rel="first"`,
		`offset=0&limit=3>; rel="prev"`,
		`offset=6&limit=3>; rel="next"`,
		`offset=9&limit=3>; rel="last"`,
	} {
		if !strings.Contains(link, want) {
			t.Errorf("expected %q in Link header, got %s", want, link)
		}
	}
}

func TestNearestFeatures_Success(t *testing.T) {
	dist := 12.5
	app := setupApp(makeDeps(withRepo(&mockFeatureRepo{
		nearestFn: func(ctx context.Context, lon, lat float64, srid uint32, limit int) ([]ports.FeatureRow, error) {
			if lon != -2.93 || lat != 43.26 || srid != 4326 || limit != 5 {
				t.Errorf("unexpected args lon=%v lat=%v srid=%d limit=%d", lon, lat, srid, limit)
			}
			return []ports.FeatureRow{{
				Feature: domain.Feature{ID: featureID, SRID: 4326, Distance: &dist},
				EWKB:    mustHex(t, pointHex),
			}}, nil
		},
	})))

	resp := doJSON(t, app, "GET", "/v1/features/nearest?lon=-2.93&lat=43.26&limit=5", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}
	var features []handler.FeatureResponse
	if err := json.Unmarshal(resp.Body, &features); err != nil {
		t.Fatal(err)
	}
	if len(features) != 1 || features[0].Distance == nil || *features[0].Distance != 12.5 {
		t.Errorf("unexpected features %+v", features)
	}
	if cc := resp.header("Cache-Control"); cc != "public, max-age=30" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
}

func TestNearestFeatures_BadParams(t *testing.T) {
	app := setupApp(makeDeps())
	for _, path := range []string{
		"/v1/features/nearest",
		"/v1/features/nearest?lon=1",
		"/v1/features/nearest?lon=abc&lat=1",
		"/v1/features/nearest?lon=1&lat=95",
		"/v1/features/nearest?lon=1&lat=1&srid=-1",
	} {
		resp := doJSON(t, app, "GET", path, "")
		if resp.Status != 400 {
			t.Errorf("%s: expected 400, got %d", path, resp.Status)
		}
	}
}

func TestNearestFeatures_ProjectedSRIDSkipsRangeCheck(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "GET", "/v1/features/nearest?lon=-326000&lat=5350000&srid=3857", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}
}

func TestNearbyAlias_Deprecated(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "GET", "/v1/features/nearby?lon=1&lat=2", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if resp.header("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if link := resp.header("Link"); !strings.Contains(link, "/v1/features/nearest") {
		t.Errorf("expected successor link, got %q", link)
	}
	if resp.header("Sunset") == "" {
		t.Error("expected Sunset header")
	}
}

// ---- Codec ----

func TestInspect(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "POST", "/v1/ewkb/inspect", `{"hex":"\\x`+strings.ToLower(pointHex)+`"}`)
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}

	var got struct {
		ByteOrder string          `json:"byte_order"`
		Type      string          `json:"type"`
		Dimension string          `json:"dimension"`
		SRID      *uint32         `json:"srid"`
		Elements  int             `json:"elements"`
		Bytes     int             `json:"bytes"`
		Geometry  json.RawMessage `json:"geometry"`
	}
	if err := json.Unmarshal(resp.Body, &got); err != nil {
		t.Fatal(err)
	}
	if got.ByteOrder != "little" || got.Type != "Point" || got.Elements != 1 || got.Bytes != 25 {
		t.Errorf("unexpected inspection %+v", got)
	}
	if got.SRID == nil || *got.SRID != 4326 {
		t.Errorf("expected SRID 4326, got %v", got.SRID)
	}
	if !strings.Contains(string(got.Geometry), `"Point"`) {
		t.Errorf("expected GeoJSON point, got %s", got.Geometry)
	}
}

func TestInspect_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing hex", `{}`, 400},
		{"unknown type", `{"hex":"0109000000"}`, 400},
		{"srid mismatch", `{"hex":"` + pointHex + `","srid":3857}`, 422},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(makeDeps())
			resp := doJSON(t, app, "POST", "/v1/ewkb/inspect", tt.body)
			if resp.Status != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, resp.Status, resp.Body)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "POST", "/v1/ewkb/encode", `{"geometry":{"type":"Point","coordinates":[1,2]},"srid":4326}`)
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}
	var got map[string]string
	json.Unmarshal(resp.Body, &got)
	if got["ewkb"] != pointHex || got["type"] != "Point" {
		t.Errorf("unexpected encode result %v", got)
	}
}

func TestEncode_MissingGeometry(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "POST", "/v1/ewkb/encode", `{"srid":4326}`)
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
}

// ---- GraphQL ----

func TestGraphQL_Feature(t *testing.T) {
	app := setupApp(makeDeps(withRepo(&mockFeatureRepo{getByIDFn: storedPoint(t)})))
	body, _ := json.Marshal(map[string]any{
		"query":     `query($id: String!) { feature(id: $id) { id name srid type ewkb } }`,
		"variables": map[string]any{"id": featureID},
	})
	resp := doJSON(t, app, "POST", "/graphql", string(body))
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}

	var result struct {
		Data struct {
			Feature struct {
				ID   string `json:"id"`
				Name string `json:"name"`
				SRID int    `json:"srid"`
				Type string `json:"type"`
				EWKB string `json:"ewkb"`
			} `json:"feature"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if f := result.Data.Feature; f.ID != featureID || f.SRID != 4326 || f.Type != "Point" || f.EWKB != pointHex {
		t.Errorf("unexpected feature %+v", f)
	}
}

func TestGraphQL_Inspect(t *testing.T) {
	app := setupApp(makeDeps())
	body, _ := json.Marshal(map[string]any{
		"query": `{ inspect(hex: "` + pointHex + `") { byte_order type srid elements } }`,
	})
	resp := doJSON(t, app, "POST", "/graphql", string(body))

	var result struct {
		Data struct {
			Inspect map[string]any `json:"inspect"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"byte_order": "little", "type": "Point", "srid": 4326.0, "elements": 1.0}
	if diff := cmp.Diff(want, result.Data.Inspect); diff != "" {
		t.Errorf("inspect mismatch (-want +got):\n%s", diff)
	}
}

func TestGraphQL_BadRequest(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "POST", "/graphql", `{}`)
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
}

// ---- Health ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "GET", "/v1/health", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	var result map[string]any
	json.Unmarshal(resp.Body, &result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		deps   *handler.Dependencies
		status int
	}{
		{"repository reachable", makeDeps(), 200},
		{"repository down", makeDeps(withRepo(&mockFeatureRepo{
			pingFn: func(ctx context.Context) error { return errors.New("down") },
		})), 503},
		{"nothing configured", &handler.Dependencies{}, 503},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, setupApp(tt.deps), "GET", "/v1/ready", "")
			if resp.Status != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, resp.Status, resp.Body)
			}
		})
	}
}

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps())
	resp := doJSON(t, app, "GET", "/v1/health", "")
	if v := resp.header("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
	if resp.header("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

// TestAccessLogMiddleware verifies structured access logging passes through.
func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(handler.AccessLogMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	resp := doJSON(t, app, "GET", "/test", "")
	if resp.Status != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.Status)
	}
	if !strings.Contains(string(resp.Body), "ok") {
		t.Errorf("expected response body to contain 'ok', got %s", resp.Body)
	}
}
