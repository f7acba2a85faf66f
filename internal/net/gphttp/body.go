package gphttp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/valyala/bytebufferpool"
)

var ErrBodyTooLarge = errors.New("body too large")

// ReadAllBody reads r into a pooled buffer.
//
// If limit > 0 and r holds more than limit bytes, it stops after limit+1 bytes
// and returns ErrBodyTooLarge. The buffer is returned in every case so the
// caller can replay what has been consumed, and must be released with
// [ReleaseBuffer] or handed to one of the body constructors below.
func ReadAllBody(r io.Reader, limit int64) (*bytebufferpool.ByteBuffer, error) {
	buf := bytebufferpool.Get()
	if limit <= 0 {
		_, err := buf.ReadFrom(r)
		return buf, err
	}
	n, err := buf.ReadFrom(io.LimitReader(r, limit+1))
	if err != nil {
		return buf, err
	}
	if n > limit {
		return buf, ErrBodyTooLarge
	}
	return buf, nil
}

func ReleaseBuffer(buf *bytebufferpool.ByteBuffer) {
	bytebufferpool.Put(buf)
}

type hookReadCloser struct {
	io.Reader
	closeOnce sync.Once
	onClose   func() error
}

func (r *hookReadCloser) Close() (err error) {
	r.closeOnce.Do(func() {
		err = r.onClose()
	})
	return err
}

// NewBufferBody returns a body reading buf, buf goes back to the pool on Close.
func NewBufferBody(buf *bytebufferpool.ByteBuffer) io.ReadCloser {
	return &hookReadCloser{
		Reader: bytes.NewReader(buf.B),
		onClose: func() error {
			ReleaseBuffer(buf)
			return nil
		},
	}
}

// NewReplayBody returns a body yielding the already consumed prefix
// followed by the unread rest of the original body.
func NewReplayBody(prefix *bytebufferpool.ByteBuffer, rest io.ReadCloser) io.ReadCloser {
	return &hookReadCloser{
		Reader: io.MultiReader(bytes.NewReader(prefix.B), rest),
		onClose: func() error {
			ReleaseBuffer(prefix)
			return rest.Close()
		},
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

// NewErrorBody returns a body yielding prefix and then failing with err,
// the same way the original body did.
func NewErrorBody(prefix *bytebufferpool.ByteBuffer, err error) io.ReadCloser {
	return &hookReadCloser{
		Reader: io.MultiReader(bytes.NewReader(prefix.B), errReader{err}),
		onClose: func() error {
			ReleaseBuffer(prefix)
			return nil
		},
	}
}

// ReplaceBody sets body as the new response body and fixes the
// framing headers to match it.
func ReplaceBody(resp *http.Response, body []byte) {
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.TransferEncoding = nil
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	resp.Header.Del("Transfer-Encoding")
	resp.Header.Del("Trailer")
}

func WriteBody(w http.ResponseWriter, body []byte) {
	if _, err := w.Write(body); err != nil {
		switch {
		case errors.Is(err, http.ErrHandlerTimeout),
			errors.Is(err, context.DeadlineExceeded):
			log.Err(err).Msg("timeout writing body")
		default:
			log.Err(err).Msg("failed to write body")
		}
	}
}

// FullURL returns a printable URL for req, nil safe.
func FullURL(req *http.Request) string {
	switch {
	case req == nil:
		return ""
	case req.RequestURI != "":
		return req.Host + req.RequestURI
	case req.URL != nil:
		return req.URL.String()
	}
	return req.Host
}
