package entrypoint

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/yusing/envinject/internal/config"
	"github.com/yusing/envinject/internal/inject"
	expect "github.com/yusing/envinject/internal/utils/testing"
)

const testPage = `<!DOCTYPE html>
<html>
<head>
	<!-- SUPABASE CONFIGURATION -->
	<title>App</title>
</head>
<body></body>
</html>`

var testInject = inject.Config{URL: "https://abc.supabase.co", AnonKey: "xyz123"}

func newTestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Inject = testInject
	cfg.StatsPath = "/stats"
	return cfg
}

func get(t *testing.T, h http.Handler, path string) *http.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Result()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	expect.NoError(t, err)
	return string(data)
}

func TestUpstreamMode(t *testing.T) {
	var gotAcceptEncoding string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAcceptEncoding = r.Header.Get("Accept-Encoding")
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, testPage)
		default:
			w.Header().Set("Content-Type", "text/css")
			_, _ = io.WriteString(w, "head{} /* SUPABASE CONFIGURATION </head> */")
		}
	}))
	defer upstream.Close()

	cfg := newTestConfig()
	cfg.Upstream = upstream.URL
	ep, err := NewEntrypoint(cfg)
	expect.NoError(t, err)

	resp := get(t, ep, "/")
	body := readBody(t, resp)
	expect.Equal(t, resp.StatusCode, http.StatusOK)
	expect.Equal(t, gotAcceptEncoding, "identity")
	expect.Count(t, body, inject.Script(testInject)+"</head>", 1)
	expect.Equal(t, resp.Header.Get("Content-Length"), strconv.Itoa(len(body)))

	resp = get(t, ep, "/style.css")
	expect.Equal(t, readBody(t, resp), "head{} /* SUPABASE CONFIGURATION </head> */")
}

func TestUpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	upstreamURL := upstream.URL
	upstream.Close()

	cfg := newTestConfig()
	cfg.Upstream = upstreamURL
	ep, err := NewEntrypoint(cfg)
	expect.NoError(t, err)

	resp := get(t, ep, "/")
	resp.Body.Close()
	expect.Equal(t, resp.StatusCode, http.StatusBadGateway)
}

func TestRootMode(t *testing.T) {
	root := t.TempDir()
	expect.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte(testPage), 0o644))
	expect.NoError(t, os.WriteFile(filepath.Join(root, "plain.html"), []byte("<html><head></head></html>"), 0o644))
	expect.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte("// SUPABASE CONFIGURATION </head>"), 0o644))

	cfg := newTestConfig()
	cfg.Root = root
	ep, err := NewEntrypoint(cfg)
	expect.NoError(t, err)

	resp := get(t, ep, "/")
	body := readBody(t, resp)
	expect.Equal(t, resp.StatusCode, http.StatusOK)
	expect.Count(t, body, inject.Script(testInject)+"</head>", 1)
	expect.Equal(t, resp.Header.Get("Content-Length"), strconv.Itoa(len(body)))

	expect.Equal(t, readBody(t, get(t, ep, "/plain.html")), "<html><head></head></html>")
	expect.Equal(t, readBody(t, get(t, ep, "/app.js")), "// SUPABASE CONFIGURATION </head>")

	resp = get(t, ep, "/missing.html")
	resp.Body.Close()
	expect.Equal(t, resp.StatusCode, http.StatusNotFound)
}

func TestHealthAndStats(t *testing.T) {
	cfg := newTestConfig()
	cfg.Root = t.TempDir()
	expect.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "index.html"), []byte(testPage), 0o644))
	ep, err := NewEntrypoint(cfg)
	expect.NoError(t, err)

	expect.Equal(t, readBody(t, get(t, ep, "/healthz")), "ok")

	readBody(t, get(t, ep, "/"))

	resp := get(t, ep, "/stats")
	expect.Equal(t, resp.Header.Get("Content-Type"), "application/json")
	var snapshot inject.StatsSnapshot
	expect.NoError(t, sonic.Unmarshal([]byte(readBody(t, resp)), &snapshot))
	expect.Equal(t, snapshot.Total, int64(1))
	expect.Equal(t, snapshot.Injected, int64(1))
	expect.Equal(t, ep.Injector().Stats().Total(), int64(1))
}

func TestRender(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, testPage)
	}))
	defer origin.Close()

	inj := inject.New(testInject)
	var out bytes.Buffer
	err := Render(context.Background(), origin.Client(), inj, origin.URL, &out)
	expect.NoError(t, err)
	expect.Count(t, out.String(), inject.Script(testInject), 1)

	out.Reset()
	err = Render(context.Background(), origin.Client(), inj, origin.URL+"/missing", &out)
	expect.HasError(t, err)
	expect.True(t, strings.Contains(err.Error(), "404"))
}
