package web

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vizcli/viz/pkg/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(pipeline.NewRunner(nil, nil, logger), logger)
}

// uploadRequest builds a multipart POST with a data file plus form fields.
func uploadRequest(t *testing.T, url, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// multipartRequest builds a multipart POST with named file parts plus form
// fields, for forms taking more than one upload.
func multipartRequest(t *testing.T, url string, files map[string][]string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, file := range files {
		fw, err := mw.CreateFormFile(field, file[0])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(file[1])); err != nil {
			t.Fatal(err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, action := range []string{"/chart", "/network", "/compare"} {
		if !strings.Contains(body, action) {
			t.Errorf("index should contain the %s form", action)
		}
	}
	if !strings.Contains(body, "unpivot_ids") {
		t.Error("index should expose the transform fields")
	}
	if !strings.Contains(body, "histogram") {
		t.Error("index should list chart types")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestChartUpload(t *testing.T) {
	s := newTestServer(t)
	req := uploadRequest(t, "/chart", "sales.csv",
		"region,units\nnorth,10\nsouth,7\n",
		map[string]string{"type": "bar", "x": "region", "y": "units"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, "/artifact/") {
		t.Fatal("result page should link the artifact")
	}

	// Follow the artifact link and check the embedded figure.
	start := strings.Index(body, "/artifact/")
	end := start
	for end < len(body) && body[end] != '"' {
		end++
	}
	artifactURL := body[start:end]

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, artifactURL, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("artifact status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Plotly.newPlot") {
		t.Error("artifact should be an interactive figure")
	}
}

func TestNetworkUpload(t *testing.T) {
	s := newTestServer(t)
	req := uploadRequest(t, "/network", "edges.csv",
		"a,b\nx,y\ny,z\n",
		map[string]string{"source": "a", "target": "b", "layout": "circular"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestChartUploadWithUnpivot(t *testing.T) {
	s := newTestServer(t)
	req := uploadRequest(t, "/chart", "wide.csv",
		"country,2021,2022\nDE,1,2\nFR,3,4\n",
		map[string]string{
			"type": "line", "x": "year", "y": "value", "color": "country",
			"unpivot_ids": "country", "var_name": "year", "value_name": "value",
		})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	// Two countries across two years reshape into four long rows.
	if !strings.Contains(rec.Body.String(), "4 rows") {
		t.Errorf("result should report the unpivoted row count: %s", rec.Body.String())
	}
}

func TestChartUploadWithFilter(t *testing.T) {
	s := newTestServer(t)
	req := uploadRequest(t, "/chart", "sales.csv",
		"region,units\nnorth,10\nsouth,7\neast,3\n",
		map[string]string{
			"type": "bar", "x": "region", "y": "units",
			"filter": "region:north,south",
		})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "2 rows") {
		t.Errorf("result should report the filtered row count: %s", rec.Body.String())
	}
}

func TestChartUploadWithLookup(t *testing.T) {
	s := newTestServer(t)
	req := multipartRequest(t, "/chart",
		map[string][]string{
			"file":        {"sales.csv", "code,units\nN,10\nS,7\n"},
			"lookup_file": {"regions.csv", "code,name\nN,North\nS,South\n"},
		},
		map[string]string{
			"type": "bar", "x": "code", "y": "units",
			"lookup_source": "code", "lookup_code": "code", "lookup_label": "name",
		})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestChartUploadBadSelector(t *testing.T) {
	s := newTestServer(t)
	req := uploadRequest(t, "/chart", "sales.csv",
		"region,units\nnorth,10\n",
		map[string]string{"type": "bar", "x": "region", "y": "units", "filter": "bogus"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_INPUT") {
		t.Error("error page should show the error code")
	}
}

func TestCompareUpload(t *testing.T) {
	s := newTestServer(t)
	req := multipartRequest(t, "/compare",
		map[string][]string{
			"file_a": {"before.csv", "region,units\nnorth,10\nsouth,7\n"},
			"file_b": {"after.csv", "region,units\nnorth,4\n"},
		},
		map[string]string{"on": "region"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, "units_diff") {
		t.Error("compare page should show the difference column")
	}
	if !strings.Contains(body, "<td>6</td>") {
		t.Errorf("north diff should be 10-4=6: %s", body)
	}
	if !strings.Contains(body, "2 rows") {
		t.Errorf("compare page should report the joined row count: %s", body)
	}
}

func TestCompareUploadBadKey(t *testing.T) {
	s := newTestServer(t)
	req := multipartRequest(t, "/compare",
		map[string][]string{
			"file_a": {"a.csv", "region,units\nnorth,10\n"},
			"file_b": {"b.csv", "region,units\nnorth,4\n"},
		},
		map[string]string{"on": "nope"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "COLUMN_NOT_FOUND") {
		t.Error("error page should show the error code")
	}
}

func TestCompareUploadMissingFile(t *testing.T) {
	s := newTestServer(t)
	req := multipartRequest(t, "/compare",
		map[string][]string{
			"file_a": {"a.csv", "region,units\nnorth,10\n"},
		},
		map[string]string{"on": "region"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChartUploadBadColumn(t *testing.T) {
	s := newTestServer(t)
	req := uploadRequest(t, "/chart", "sales.csv",
		"region,units\nnorth,10\n",
		map[string]string{"type": "bar", "x": "nope", "y": "units"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "COLUMN_NOT_FOUND") {
		t.Error("error page should show the error code")
	}
}

func TestMissingFile(t *testing.T) {
	s := newTestServer(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("type", "bar")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/chart", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestArtifactExpiry(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/artifact/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
