package inject

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/yusing/envinject/internal/gperr"
	"github.com/yusing/envinject/internal/net/gphttp"
)

// Next produces the downstream response of a filter chain.
type Next func(ctx context.Context) (*http.Response, error)

var ErrNoResponse = gperr.New("next returned no response")

// Injector rewrites HTML responses carrying the marker so the page gets
// the configured values as window globals.
//
// Every failure is handled by serving the original response.
type Injector struct {
	cfg   Config
	stats Stats
}

func New(cfg Config) *Injector {
	return &Injector{cfg: cfg}
}

func (inj *Injector) Config() Config {
	return inj.cfg
}

func (inj *Injector) Stats() *Stats {
	return &inj.stats
}

// check decides from the status line and headers alone whether a
// response is worth reading.
func (inj *Injector) check(method string, status int, h http.Header) (Reason, bool) {
	inj.stats.total.Inc()
	if !gphttp.BodyAllowed(method, status) || status == http.StatusPartialContent {
		inj.stats.add(ReasonNoBody)
		return ReasonNoBody, false
	}
	if reason, ok := checkHeaders(h); !ok {
		inj.stats.add(reason)
		return reason, false
	}
	return ReasonInjected, true
}

func requestMethod(req *http.Request) string {
	if req == nil {
		return http.MethodGet
	}
	return req.Method
}

// ModifyResponse rewrites resp in place. It never returns an error,
// which makes it safe as a reverse proxy ModifyResponse hook.
func (inj *Injector) ModifyResponse(resp *http.Response) error {
	if _, ok := inj.check(requestMethod(resp.Request), resp.StatusCode, resp.Header); !ok {
		return nil
	}
	inj.rewrite(resp)
	return nil
}

// Handle runs next and rewrites its response.
func (inj *Injector) Handle(ctx context.Context, next Next) (*http.Response, error) {
	resp, err := next(ctx)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrNoResponse
	}
	_ = inj.ModifyResponse(resp)
	return resp, nil
}

// Middleware rewrites responses of next. Responses that cannot be
// rewritten are streamed without buffering.
func (inj *Injector) Middleware(next http.Handler) http.Handler {
	shouldModify := func(r *http.Request, status int, h http.Header) bool {
		_, ok := inj.check(r.Method, status, h)
		return ok
	}
	modify := func(resp *http.Response) error {
		inj.rewrite(resp)
		return nil
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := gphttp.NewModifyResponseWriter(w, r, shouldModify, modify, inj.cfg.MaxBodySize)
		next.ServeHTTP(mw, r)
		if mw.Overflowed() {
			log.Debug().Str("url", gphttp.FullURL(r)).Int64("limit", inj.cfg.MaxBodySize).Msg("body too large, skipped")
			inj.stats.add(ReasonTooLarge)
		}
		if err := mw.Finish(); err != nil {
			log.Err(err).Str("url", gphttp.FullURL(r)).Msg("failed to write response")
		}
	})
}

// rewrite reads the body of a response that passed check.
func (inj *Injector) rewrite(resp *http.Response) {
	buf, err := gphttp.ReadAllBody(resp.Body, inj.cfg.MaxBodySize)
	if err != nil {
		if errors.Is(err, gphttp.ErrBodyTooLarge) {
			log.Debug().Str("url", gphttp.FullURL(resp.Request)).Int64("limit", inj.cfg.MaxBodySize).Msg("body too large, skipped")
			resp.Body = gphttp.NewReplayBody(buf, resp.Body)
			inj.stats.add(ReasonTooLarge)
			return
		}
		log.Err(err).Str("url", gphttp.FullURL(resp.Request)).Msg("failed to read response body")
		resp.Body.Close()
		resp.Body = gphttp.NewErrorBody(buf, err)
		inj.stats.add(ReasonReadError)
		return
	}
	resp.Body.Close()

	result := Transform(resp.Header, buf.B, inj.cfg)
	inj.stats.add(result.Reason)
	if result.Outcome == Unchanged {
		resp.Body = gphttp.NewBufferBody(buf)
		return
	}
	gphttp.ReleaseBuffer(buf)

	gphttp.ReplaceBody(resp, result.Body)
	// validators describe the original bytes
	resp.Header.Del("ETag")
	resp.Header.Del("Content-MD5")
	log.Debug().Str("url", gphttp.FullURL(resp.Request)).Msg("config injected")
}
