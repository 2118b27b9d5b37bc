package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgallion1/docsections/internal/config"
	"github.com/dgallion1/docsections/internal/doctree"
	"github.com/dgallion1/docsections/internal/extract"
	"github.com/dgallion1/docsections/internal/parser/parsertest"
	"github.com/dgallion1/docsections/internal/pipeline"
)

type fixedCompleter struct {
	answer string
	calls  int
}

func (c *fixedCompleter) Complete(_ context.Context, _ string) (string, error) {
	c.calls++
	return c.answer, nil
}

func newTestServer(t *testing.T, c extract.Completer, cfg config.Config) *Server {
	t.Helper()
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 1 << 20
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := pipeline.New(extract.NewSectionParser(c, log), log)
	srv, err := NewServer(p, pipeline.NewResultStore(0), nil, log, cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func uploadRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fixedCompleter{}, config.Config{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestIndex_RendersUsage(t *testing.T) {
	srv := newTestServer(t, &fixedCompleter{}, config.Config{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`enctype="multipart/form-data"`, `accept=".pdf,.docx,.txt"`, "<h2>How it works</h2>", "<strong>PDF</strong>"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected index to contain %q", want)
		}
	}
}

func TestParseAPI_TextFileThenDownload(t *testing.T) {
	c := &fixedCompleter{answer: `[{"subject_title":"Memo","section_type":"Header","starting_page_no":1,"ending_page_no":1,"entities":[{"sender":"Zoë"}],"subsections":[]}]`}
	srv := newTestServer(t, c, config.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/parse", "memo.txt", []byte("Memo from Zoë")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID          string            `json:"id"`
		Filename    string            `json:"filename"`
		Pages       int               `json:"pages"`
		ContentHash string            `json:"content_hash"`
		Warnings    []extract.Warning `json:"warnings"`
		Sections    []doctree.Record  `json:"sections"`
		DownloadURL string            `json:"download_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Filename != "memo.txt" || resp.Pages != 1 || len(resp.Sections) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if want := pipeline.ContentHashHex([]byte("Memo from Zoë")); resp.ContentHash != want {
		t.Errorf("expected content_hash %s, got %s", want, resp.ContentHash)
	}
	if resp.Warnings == nil {
		t.Error("expected warnings to be an empty list, not null")
	}
	if c.calls != 1 {
		t.Errorf("expected 1 model call, got %d", c.calls)
	}

	dl := httptest.NewRecorder()
	srv.ServeHTTP(dl, httptest.NewRequest(http.MethodGet, resp.DownloadURL, nil))
	if dl.Code != http.StatusOK {
		t.Fatalf("expected 200 on download, got %d", dl.Code)
	}
	if cd := dl.Header().Get("Content-Disposition"); cd != `attachment; filename="parsed_document.json"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if ct := dl.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("unexpected Content-Type %q", ct)
	}
	body := dl.Body.String()
	if !strings.HasPrefix(body, "[\n  {\n") {
		t.Errorf("expected 2-space indented array, got:\n%s", body)
	}
	if !strings.Contains(body, "Zoë") {
		t.Errorf("expected unescaped non-ASCII text, got:\n%s", body)
	}
}

func TestParseAPI_UnsupportedType(t *testing.T) {
	c := &fixedCompleter{}
	srv := newTestServer(t, c, config.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/parse", "slides.pptx", []byte("x")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unsupported file type: .pptx") {
		t.Errorf("expected extension in error, got %s", rec.Body.String())
	}
	if c.calls != 0 {
		t.Errorf("expected no model calls, got %d", c.calls)
	}
}

func TestParseAPI_CorruptPDFIsFileFatal(t *testing.T) {
	srv := newTestServer(t, &fixedCompleter{}, config.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/parse", "broken.pdf", []byte("garbage")))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestParseAPI_TooLarge(t *testing.T) {
	srv := newTestServer(t, &fixedCompleter{}, config.Config{MaxUploadBytes: 8})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/parse", "big.txt", []byte("more than eight bytes")))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestParseAPI_RequiresBearerWhenConfigured(t *testing.T) {
	srv := newTestServer(t, &fixedCompleter{answer: "[]"}, config.Config{APIKey: "secret"})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/parse", "a.txt", []byte("hi")))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := uploadRequest(t, "/api/parse", "a.txt", []byte("hi"))
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestResults_APIRouteRequiresBearerDownloadDoesNot(t *testing.T) {
	srv := newTestServer(t, &fixedCompleter{answer: `[{"a":1}]`}, config.Config{APIKey: "secret"})

	req := uploadRequest(t, "/api/parse", "a.txt", []byte("hi"))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.ID == "" {
		t.Fatalf("expected a result id, got %s (%v)", rec.Body.String(), err)
	}
	id := resp.ID

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/"+id, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 on the api route without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/results/"+id, nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 on the api route with token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/"+id+"/download", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected the browser download link to stay open, got %d", rec.Code)
	}
}

func TestParseAPI_InvalidUTF8TextIsFileFatal(t *testing.T) {
	c := &fixedCompleter{}
	srv := newTestServer(t, c, config.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/parse", "latin1.txt", []byte("caf\xe9")))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "not valid UTF-8") {
		t.Errorf("expected utf-8 error, got %s", rec.Body.String())
	}
	if c.calls != 0 {
		t.Errorf("expected no model calls, got %d", c.calls)
	}
}

func TestParsePage_PDFRendersResult(t *testing.T) {
	c := &fixedCompleter{answer: `[{"subject_title":"Introduction","section_type":"Heading","starting_page_no":1,"ending_page_no":1,"entities":[],"subsections":[]}]`}
	srv := newTestServer(t, c, config.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/parse", "intro.pdf", parsertest.PDF("Introduction", "")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Extracted text from 2 page(s)", "No Content: 1", "SHA-256 of extracted text", "Download JSON", "/results/"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected result page to contain %q", want)
		}
	}
	if c.calls != 1 {
		t.Errorf("expected 1 model call for the non-blank page, got %d", c.calls)
	}
}

func TestParsePage_ErrorIsBlocking(t *testing.T) {
	srv := newTestServer(t, &fixedCompleter{}, config.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/parse", "notes.rtf", []byte("x")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to extract text") {
		t.Errorf("expected blocking error message, got %s", rec.Body.String())
	}
}

func TestDownload_NotFound(t *testing.T) {
	srv := newTestServer(t, &fixedCompleter{}, config.Config{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/nope/download", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLLMStats_UnavailableWithoutClient(t *testing.T) {
	srv := newTestServer(t, &fixedCompleter{}, config.Config{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd.txt", "passwd.txt"},
		{`C:\Users\me\notes.docx`, "notes.docx"},
		{"", "unnamed"},
		{"..", "_"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
