package entrypoint

import (
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/yusing/envinject/internal/config"
	"github.com/yusing/envinject/internal/gperr"
	"github.com/yusing/envinject/internal/inject"
	"github.com/yusing/envinject/internal/net/gphttp"
	"github.com/yusing/goutils/http/reverseproxy"
)

// Entrypoint routes every request to the backend with the injector
// applied, plus the health and stats endpoints.
type Entrypoint struct {
	injector *inject.Injector
	router   chi.Router
}

func NewEntrypoint(cfg *config.Config) (*Entrypoint, gperr.Error) {
	ep := &Entrypoint{injector: inject.New(cfg.Inject)}

	var backend http.Handler
	switch cfg.Mode() {
	case "upstream":
		target, err := url.Parse(cfg.Upstream)
		if err != nil {
			return nil, gperr.Wrap(err).Subject("upstream")
		}
		backend = newReverseProxy(target, ep.injector)
	default:
		backend = ep.injector.Middleware(http.FileServer(http.Dir(cfg.Root)))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, accessLog)
	if cfg.HealthPath != "" {
		r.Get(cfg.HealthPath, health)
	}
	if cfg.StatsPath != "" {
		r.Get(cfg.StatsPath, ep.serveStats)
	}
	r.Handle("/*", backend)
	ep.router = r

	log.Debug().Str("mode", cfg.Mode()).Msg("entrypoint created")
	return ep, nil
}

func (ep *Entrypoint) Injector() *inject.Injector {
	return ep.injector
}

func (ep *Entrypoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ep.router.ServeHTTP(w, r)
}

func newReverseProxy(target *url.URL, inj *inject.Injector) *reverseproxy.ReverseProxy {
	trans := http.DefaultTransport.(*http.Transport).Clone()
	trans.DisableCompression = true

	rp := reverseproxy.NewReverseProxy("upstream", target, trans)
	rp.ModifyResponse = inj.ModifyResponse

	next := rp.HandlerFunc
	rp.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		// bodies must arrive uncompressed to be spliced
		r.Header.Set("Accept-Encoding", "identity")
		next(w, r)
	}
	return rp
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", string(gphttp.ContentTypeTextPlain)+"; charset=utf-8")
	gphttp.WriteBody(w, []byte("ok"))
}

func (ep *Entrypoint) serveStats(w http.ResponseWriter, r *http.Request) {
	data, err := sonic.Marshal(ep.injector.Stats().Snapshot())
	if err != nil {
		gphttp.ServerError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", string(gphttp.ContentTypeJSON))
	gphttp.WriteBody(w, data)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("url", gphttp.FullURL(r)).
			Int("status", ww.Status()).
			Int("size", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
