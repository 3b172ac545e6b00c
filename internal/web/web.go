// Package web serves the upload-and-render UI. A data file posted through
// the form runs the same pipeline as the CLI; the rendered figure is held in
// a short-lived in-memory store and embedded in the result page.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/vizcli/viz/internal/web/templates"
	"github.com/vizcli/viz/pkg/chart"
	vizerrors "github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/netgraph"
	"github.com/vizcli/viz/pkg/pipeline"
	"github.com/vizcli/viz/pkg/table"
	"github.com/vizcli/viz/pkg/transform"
)

const (
	// maxUploadBytes bounds one uploaded file.
	maxUploadBytes = 64 << 20

	// artifactTTL is how long a rendered figure stays downloadable.
	artifactTTL = 15 * time.Minute
)

// Server handles the web UI and its artifact store.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger

	mu        sync.Mutex
	artifacts map[string]artifact
}

// artifact is one rendered figure held for embedding and download.
type artifact struct {
	data    []byte
	name    string
	expires time.Time
}

// New creates a server around the shared pipeline runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:    runner,
		logger:    logger,
		artifacts: make(map[string]artifact),
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/chart", s.handleChart)
	r.Post("/network", s.handleNetwork)
	r.Post("/compare", s.handleCompare)
	r.Get("/artifact/{id}", s.handleArtifact)
	r.Get("/healthz", s.handleHealth)

	return r
}

// Listen serves until the context is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, templates.IndexPage{
		ChartTypes: chart.Types(),
		Layouts:    netgraph.LayoutAlgorithms(),
	})
}

// handleChart renders an uploaded file as a chart and shows the result page.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	data, name, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	opts := pipeline.Options{
		InputBytes: data,
		InputName:  name,
		Chart: &chart.Options{
			Type:   chart.Type(r.FormValue("type")),
			X:      r.FormValue("x"),
			Y:      splitList(r.FormValue("y")),
			Color:  r.FormValue("color"),
			Facets: splitList(r.FormValue("facets")),
			Title:  r.FormValue("title"),
		},
		Logger: s.logger,
	}
	if err := s.parseTransforms(r, &opts); err != nil {
		s.renderError(w, err)
		return
	}
	s.execute(w, r, opts)
}

// handleNetwork renders an uploaded edge list as a network graph.
func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	data, name, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	seed, _ := strconv.ParseUint(r.FormValue("seed"), 10, 64)
	opts := pipeline.Options{
		InputBytes: data,
		InputName:  name,
		Network: &pipeline.NetworkOptions{
			SourceColumn: r.FormValue("source"),
			TargetColumn: r.FormValue("target"),
			WeightColumn: r.FormValue("weight"),
			WeightPolicy: r.FormValue("weight_policy"),
			Layout:       r.FormValue("layout"),
			Seed:         seed,
			Title:        r.FormValue("title"),
		},
		Logger: s.logger,
	}
	if err := s.parseTransforms(r, &opts); err != nil {
		s.renderError(w, err)
		return
	}
	s.execute(w, r, opts)
}

// handleCompare joins two uploaded files on a key column and shows the
// combined table with per-column differences.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, vizerrors.New(vizerrors.ErrCodeInvalidInput, "invalid upload: %v", err))
		return
	}

	aData, aName, err := s.formFile(r, "file_a")
	if err == nil && aData == nil {
		err = vizerrors.New(vizerrors.ErrCodeInvalidInput, "two data files are required")
	}
	if err != nil {
		s.renderError(w, err)
		return
	}
	bData, bName, err := s.formFile(r, "file_b")
	if err == nil && bData == nil {
		err = vizerrors.New(vizerrors.ErrCodeInvalidInput, "two data files are required")
	}
	if err != nil {
		s.renderError(w, err)
		return
	}

	key := r.FormValue("on")
	if key == "" {
		s.renderError(w, vizerrors.New(vizerrors.ErrCodeInvalidInput, "a key column is required"))
		return
	}

	a, err := table.LoadReader(bytes.NewReader(aData), aName)
	if err != nil {
		s.renderError(w, err)
		return
	}
	b, err := table.LoadReader(bytes.NewReader(bData), bName)
	if err != nil {
		s.renderError(w, err)
		return
	}

	result, err := transform.Compare(a, b, key)
	if err != nil {
		s.renderError(w, err)
		return
	}
	s.renderPage(w, comparePage(result))
}

// execute runs the pipeline, stores the artifact, and shows the result page.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.logger.Error("pipeline failed", "err", err)
		s.renderError(w, err)
		return
	}

	id := s.store(result.Artifact, opts.InputName)
	s.renderPage(w, templates.ResultPage{
		ArtifactURL: "/artifact/" + id,
		Rows:        result.Stats.Rows,
		Columns:     result.Stats.Columns,
		CacheHit:    result.CacheHit,
	})
}

// handleArtifact serves a stored figure.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	a, ok := s.artifacts[id]
	s.mu.Unlock()
	if !ok || time.Now().After(a.expires) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(a.data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

// =============================================================================
// Helpers
// =============================================================================

// readUpload extracts the uploaded data file. On failure it writes the error
// page and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, vizerrors.New(vizerrors.ErrCodeInvalidInput, "invalid upload: %v", err))
		return nil, "", false
	}
	data, name, err := s.formFile(r, "file")
	if err != nil {
		s.renderError(w, err)
		return nil, "", false
	}
	if data == nil {
		s.renderError(w, vizerrors.New(vizerrors.ErrCodeInvalidInput, "a data file is required"))
		return nil, "", false
	}
	return data, name, true
}

// formFile reads one uploaded file. A missing field yields nil data without
// an error, so optional uploads stay optional.
func (s *Server) formFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", vizerrors.Wrap(vizerrors.ErrCodeInvalidInput, err, "read %s upload", field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", vizerrors.Wrap(vizerrors.ErrCodeInvalidInput, err, "read %s upload", field)
	}
	return data, header.Filename, nil
}

// parseTransforms reads the shared transform fields into opts. The lookup
// table arrives as a second upload; everything else is plain form values.
func (s *Server) parseTransforms(r *http.Request, opts *pipeline.Options) error {
	var err error
	if opts.Unpivot, err = parseUnpivot(r); err != nil {
		return err
	}

	lookupData, lookupName, err := s.formFile(r, "lookup_file")
	if err != nil {
		return err
	}
	if lookupData != nil {
		opts.Lookup = &pipeline.LookupOptions{
			Path:         lookupName,
			SourceColumn: r.FormValue("lookup_source"),
			CodeColumn:   r.FormValue("lookup_code"),
			LabelColumn:  r.FormValue("lookup_label"),
			Bytes:        lookupData,
		}
	}

	if opts.Filters, err = parseSelectors(r.FormValue("filter")); err != nil {
		return err
	}
	if opts.Excludes, err = parseSelectors(r.FormValue("exclude")); err != nil {
		return err
	}
	opts.DropColumns = splitList(r.FormValue("drop"))
	return nil
}

// parseUnpivot builds the unpivot options, or nil when every field is blank.
func parseUnpivot(r *http.Request) (*transform.UnpivotOptions, error) {
	ids := splitList(r.FormValue("unpivot_ids"))
	start, err := formInt(r, "value_start")
	if err != nil {
		return nil, err
	}
	end, err := formInt(r, "value_end")
	if err != nil {
		return nil, err
	}
	varName := r.FormValue("var_name")
	valueName := r.FormValue("value_name")

	if len(ids) == 0 && start == nil && end == nil && varName == "" && valueName == "" {
		return nil, nil
	}
	return &transform.UnpivotOptions{
		IDColumns:    ids,
		ValueStart:   start,
		ValueEnd:     end,
		VariableName: varName,
		ValueName:    valueName,
	}, nil
}

// formInt parses an optional integer form field.
func formInt(r *http.Request, field string) (*int, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, vizerrors.New(vizerrors.ErrCodeInvalidInput, "%s must be an integer, got %q", field, v)
	}
	return &n, nil
}

// parseSelectors parses "COLUMN:V1,V2; COLUMN2:V3" into value selectors
// (used by the filter and exclude fields).
func parseSelectors(expr string) ([]pipeline.ValueSelector, error) {
	var out []pipeline.ValueSelector
	for _, part := range strings.Split(expr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		column, list, ok := strings.Cut(part, ":")
		column = strings.TrimSpace(column)
		values := splitList(list)
		if !ok || column == "" || len(values) == 0 {
			return nil, vizerrors.New(vizerrors.ErrCodeInvalidInput,
				"invalid selector %q (expected COLUMN:VALUE1,VALUE2)", part)
		}
		out = append(out, pipeline.ValueSelector{Column: column, Values: values})
	}
	return out, nil
}

// compareRowCap bounds the rows shown on the compare result page.
const compareRowCap = 50

// comparePage flattens a comparison result for the template.
func comparePage(t *table.Table) templates.ComparePage {
	shown := min(t.NumRows(), compareRowCap)
	rows := make([][]string, shown)
	for r := range shown {
		row := make([]string, t.NumCols())
		for i := range t.NumCols() {
			row[i] = t.ColumnAt(i).Value(r).String()
		}
		rows[r] = row
	}
	return templates.ComparePage{
		Headers:   t.Names(),
		Rows:      rows,
		TotalRows: t.NumRows(),
	}
}

// store keeps an artifact for download and prunes expired ones.
func (s *Server) store(data []byte, name string) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for key, a := range s.artifacts {
		if now.After(a.expires) {
			delete(s.artifacts, key)
		}
	}
	s.artifacts[id] = artifact{data: data, name: name, expires: now.Add(artifactTTL)}
	return id
}

func (s *Server) renderPage(w http.ResponseWriter, page any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Render(w, page); err != nil {
		s.logger.Error("template render failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusFor(err))
	renderErr := templates.Render(w, templates.ErrorPage{
		Code:    string(vizerrors.GetCode(err)),
		Message: vizerrors.UserMessage(err),
	})
	if renderErr != nil {
		fmt.Fprintln(w, "internal error")
	}
}

// statusFor maps error codes onto HTTP statuses. User mistakes are 400s;
// everything else is a 500.
func statusFor(err error) int {
	switch vizerrors.GetCode(err) {
	case vizerrors.ErrCodeInternal:
		return http.StatusInternalServerError
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// splitList splits a comma-separated form value.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
