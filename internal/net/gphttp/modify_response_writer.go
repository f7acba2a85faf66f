package gphttp

import (
	"io"
	"net/http"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

type (
	// ShouldModifyFunc decides, once headers are known, whether the
	// response needs to be buffered for modification.
	ShouldModifyFunc func(r *http.Request, status int, h http.Header) bool
	ModifyResponseFunc func(resp *http.Response) error
)

// ModifyResponseWriter lets a [ModifyResponseFunc] rewrite responses
// produced by a plain http.Handler.
//
// Responses rejected by shouldModify are streamed to the underlying writer
// as they are written, the rest are buffered until [ModifyResponseWriter.Finish].
// A buffered response growing past maxBuffer bytes (when > 0) is released
// as is and the rest of it is streamed.
type ModifyResponseWriter struct {
	w http.ResponseWriter
	r *http.Request

	shouldModify ShouldModifyFunc
	modify       ModifyResponseFunc
	maxBuffer    int64

	decided    bool
	buffering  bool
	overflowed bool
	status     int
	buf        *bytebufferpool.ByteBuffer
}

func NewModifyResponseWriter(w http.ResponseWriter, r *http.Request, shouldModify ShouldModifyFunc, modify ModifyResponseFunc, maxBuffer int64) *ModifyResponseWriter {
	return &ModifyResponseWriter{
		w:            w,
		r:            r,
		shouldModify: shouldModify,
		modify:       modify,
		maxBuffer:    maxBuffer,
	}
}

func (w *ModifyResponseWriter) Header() http.Header {
	return w.w.Header()
}

func (w *ModifyResponseWriter) WriteHeader(code int) {
	if w.decided {
		return
	}
	// informational headers are forwarded, the final one comes later
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		w.w.WriteHeader(code)
		return
	}
	w.decided = true
	w.status = code
	if w.shouldModify(w.r, code, w.w.Header()) {
		w.buffering = true
		w.buf = bytebufferpool.Get()
		return
	}
	w.w.WriteHeader(code)
}

func (w *ModifyResponseWriter) Write(b []byte) (int, error) {
	if !w.decided {
		h := w.w.Header()
		if _, hasType := h["Content-Type"]; !hasType && len(b) > 0 {
			h.Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.buffering {
		if w.maxBuffer <= 0 || int64(w.buf.Len()+len(b)) <= w.maxBuffer {
			return w.buf.Write(b)
		}
		if err := w.release(); err != nil {
			return 0, err
		}
	}
	return w.w.Write(b)
}

// release writes the held status line and buffered prefix, then switches
// to streaming.
func (w *ModifyResponseWriter) release() error {
	w.buffering = false
	w.overflowed = true
	buf := w.buf
	w.buf = nil
	defer ReleaseBuffer(buf)

	w.w.WriteHeader(w.status)
	_, err := w.w.Write(buf.B)
	return err
}

// Flush is a no-op while buffering.
func (w *ModifyResponseWriter) Flush() {
	if w.decided && !w.buffering {
		_ = http.NewResponseController(w.w).Flush()
	}
}

func (w *ModifyResponseWriter) Unwrap() http.ResponseWriter {
	return w.w
}

// Buffering reports whether the response is held back for modification.
func (w *ModifyResponseWriter) Buffering() bool {
	return w.buffering
}

// Overflowed reports whether the response outgrew maxBuffer and was
// streamed unmodified.
func (w *ModifyResponseWriter) Overflowed() bool {
	return w.overflowed
}

// Finish runs the modifier over a buffered response and writes the result.
//
// It must be called once after the wrapped handler returns. Errors from the
// modifier are returned after the (possibly partially modified) response
// has been written.
func (w *ModifyResponseWriter) Finish() error {
	if !w.decided {
		w.WriteHeader(http.StatusOK)
	}
	if !w.buffering {
		return nil
	}

	h := w.w.Header()
	resp := &http.Response{
		Status:        strconv.Itoa(w.status) + " " + http.StatusText(w.status),
		StatusCode:    w.status,
		Proto:         w.r.Proto,
		ProtoMajor:    w.r.ProtoMajor,
		ProtoMinor:    w.r.ProtoMinor,
		Header:        h,
		Body:          NewBufferBody(w.buf),
		ContentLength: int64(w.buf.Len()),
		Request:       w.r,
	}
	w.buf = nil
	modifyErr := w.modify(resp)

	if resp.ContentLength >= 0 {
		resp.Header.Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	w.w.WriteHeader(resp.StatusCode)
	_, copyErr := io.Copy(w.w, resp.Body)
	resp.Body.Close()
	if modifyErr != nil {
		return modifyErr
	}
	return copyErr
}
