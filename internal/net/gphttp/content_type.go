package gphttp

import (
	"net/http"
	"strings"
)

type ContentType string

const (
	ContentTypeJSON      = ContentType("application/json")
	ContentTypeTextPlain = ContentType("text/plain")
	ContentTypeTextHTML  = ContentType("text/html")
)

// IsHTML reports whether the Content-Type header mentions text/html anywhere.
//
// It does not parse the media type, so malformed values like
// "text/html;;charset=utf-8" still count.
func IsHTML(h http.Header) bool {
	ct := h.Get("Content-Type")
	if ct == "" {
		return false
	}
	return strings.Contains(strings.ToLower(ct), string(ContentTypeTextHTML))
}

// IsIdentityEncoded reports whether the body is sent as is, i.e. without
// gzip, br, zstd or any other content coding.
func IsIdentityEncoded(h http.Header) bool {
	for _, v := range h.Values("Content-Encoding") {
		for enc := range strings.SplitSeq(v, ",") {
			enc = strings.TrimSpace(enc)
			if enc != "" && !strings.EqualFold(enc, "identity") {
				return false
			}
		}
	}
	return true
}

// BodyAllowed reports whether a response with the given status to a request
// with the given method may carry a body.
func BodyAllowed(method string, status int) bool {
	switch {
	case method == http.MethodHead:
		return false
	case status >= 100 && status < 200,
		status == http.StatusNoContent,
		status == http.StatusNotModified:
		return false
	}
	return true
}
