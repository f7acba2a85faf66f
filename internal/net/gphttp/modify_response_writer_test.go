package gphttp

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	expect "github.com/yusing/envinject/internal/utils/testing"
)

func onlyHTML(_ *http.Request, _ int, h http.Header) bool {
	return IsHTML(h)
}

func upperBody(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	ReplaceBody(resp, []byte(strings.ToUpper(string(data))))
	return nil
}

func serve(t *testing.T, h http.HandlerFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	return serveLimited(t, 0, h)
}

func serveLimited(t *testing.T, maxBuffer int64, h http.HandlerFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	w := NewModifyResponseWriter(rec, req, onlyHTML, upperBody, maxBuffer)
	h(w, req)
	expect.NoError(t, w.Finish())
	return rec, w.Buffering()
}

func TestModifyResponseWriterBuffersHTML(t *testing.T) {
	rec, buffering := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Length", "11")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello "))
		_, _ = w.Write([]byte("world"))
	})
	expect.True(t, buffering)
	expect.Equal(t, rec.Code, http.StatusCreated)
	expect.Equal(t, rec.Body.String(), "HELLO WORLD")
	expect.Equal(t, rec.Header().Get("Content-Length"), "11")
}

func TestModifyResponseWriterStreamsOthers(t *testing.T) {
	rec, buffering := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"a":1}`))
		expect.True(t, w.(*ModifyResponseWriter).decided)
		// already on the wire
		expect.Equal(t, w.(*ModifyResponseWriter).Unwrap().(*httptest.ResponseRecorder).Body.String(), `{"a":1}`)
	})
	expect.False(t, buffering)
	expect.Equal(t, rec.Code, http.StatusOK)
	expect.Equal(t, rec.Body.String(), `{"a":1}`)
}

func TestModifyResponseWriterSniffsContentType(t *testing.T) {
	rec, buffering := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><head></head></html>"))
	})
	expect.True(t, buffering)
	expect.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	expect.Equal(t, rec.Body.String(), "<!DOCTYPE HTML><HTML><HEAD></HEAD></HTML>")
}

func TestModifyResponseWriterEmptyHandler(t *testing.T) {
	rec, buffering := serve(t, func(http.ResponseWriter, *http.Request) {})
	expect.False(t, buffering)
	expect.Equal(t, rec.Code, http.StatusOK)
	expect.Equal(t, rec.Body.Len(), 0)
}

func TestModifyResponseWriterOverflowStreams(t *testing.T) {
	chunk := strings.Repeat("a", 512)
	rec, buffering := serveLimited(t, 1024, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		mw := w.(*ModifyResponseWriter)
		out := mw.Unwrap().(*httptest.ResponseRecorder)

		_, _ = w.Write([]byte(chunk))
		_, _ = w.Write([]byte(chunk))
		expect.True(t, mw.Buffering())
		expect.Equal(t, out.Body.Len(), 0)

		for range 16 {
			_, _ = w.Write([]byte(chunk))
		}
		// released while the handler is still writing
		expect.False(t, mw.Buffering())
		expect.True(t, mw.Overflowed())
		expect.Equal(t, out.Code, http.StatusOK)
		expect.Equal(t, out.Body.Len(), 18*len(chunk))
	})
	expect.False(t, buffering)
	expect.Equal(t, rec.Body.String(), strings.Repeat(chunk, 18), "overflowed body must not be modified")
}

func TestModifyResponseWriterAtLimitBuffers(t *testing.T) {
	rec, buffering := serveLimited(t, 5, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("hello"))
	})
	expect.True(t, buffering)
	expect.Equal(t, rec.Body.String(), "HELLO")
}
