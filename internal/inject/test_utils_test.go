package inject

import (
	"bytes"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/yusing/goutils/http/reverseproxy"
)

var testUpstreamURL = &url.URL{Scheme: "http", Host: "10.0.0.1:3000"}

type requestRecorder struct {
	args *testArgs
}

func (rt *requestRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp := &http.Response{
		Status:        http.StatusText(rt.args.respStatus),
		StatusCode:    rt.args.respStatus,
		Header:        http.Header{},
		Body:          io.NopCloser(bytes.NewReader(rt.args.respBody)),
		ContentLength: int64(len(rt.args.respBody)),
		Request:       req,
	}
	maps.Copy(resp.Header, rt.args.respHeaders)
	return resp, nil
}

type TestResult struct {
	ResponseHeaders http.Header
	ResponseStatus  int
	Data            []byte
}

type testArgs struct {
	reqMethod string

	respHeaders http.Header
	respBody    []byte
	respStatus  int
}

func (args *testArgs) setDefaults() {
	if args.reqMethod == "" {
		args.reqMethod = http.MethodGet
	}
	if args.respHeaders == nil {
		args.respHeaders = http.Header{}
	}
	if args.respBody == nil {
		args.respBody = []byte("OK")
	}
	if args.respStatus == 0 {
		args.respStatus = http.StatusOK
	}
}

// newProxyTest runs a request through a reverse proxy patched with inj.
func newProxyTest(inj *Injector, args *testArgs) (*TestResult, error) {
	args.setDefaults()

	rp := reverseproxy.NewReverseProxy("test", testUpstreamURL, &requestRecorder{args: args})
	rp.ModifyResponse = inj.ModifyResponse

	req := httptest.NewRequest(args.reqMethod, "https://example.com/", nil)
	w := httptest.NewRecorder()
	rp.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &TestResult{
		ResponseHeaders: resp.Header,
		ResponseStatus:  resp.StatusCode,
		Data:            data,
	}, nil
}
