package inject

import (
	"bytes"
	"net/http"

	"github.com/yusing/envinject/internal/net/gphttp"
)

type Outcome uint8

const (
	Unchanged Outcome = iota
	Replaced
)

func (o Outcome) String() string {
	if o == Replaced {
		return "replaced"
	}
	return "unchanged"
}

type Reason uint8

const (
	ReasonInjected Reason = iota
	ReasonNotHTML
	ReasonEncoded
	ReasonNoBody
	ReasonNoMarker
	ReasonNoHeadTag
	ReasonTooLarge
	ReasonReadError

	numReasons
)

var reasonNames = [numReasons]string{
	ReasonInjected:  "injected",
	ReasonNotHTML:   "not_html",
	ReasonEncoded:   "encoded",
	ReasonNoBody:    "no_body",
	ReasonNoMarker:  "no_marker",
	ReasonNoHeadTag: "no_head_tag",
	ReasonTooLarge:  "too_large",
	ReasonReadError: "read_error",
}

func (r Reason) String() string {
	if r < numReasons {
		return reasonNames[r]
	}
	return "unknown"
}

// Result is the outcome of [Transform].
//
// Body is the input body when Outcome is Unchanged.
type Result struct {
	Outcome Outcome
	Reason  Reason
	Body    []byte
}

var headClose = []byte("</head>")

// checkHeaders tells whether a response with header h can be rewritten
// without looking at its body.
func checkHeaders(h http.Header) (Reason, bool) {
	if !gphttp.IsHTML(h) {
		return ReasonNotHTML, false
	}
	if !gphttp.IsIdentityEncoded(h) {
		return ReasonEncoded, false
	}
	return ReasonInjected, true
}

// Transform inserts the config script right before the first "</head>"
// of an HTML body containing the marker.
//
// It has no side effects and does not modify body.
func Transform(h http.Header, body []byte, cfg Config) Result {
	if reason, ok := checkHeaders(h); !ok {
		return Result{Outcome: Unchanged, Reason: reason, Body: body}
	}
	if !bytes.Contains(body, []byte(cfg.marker())) {
		return Result{Outcome: Unchanged, Reason: ReasonNoMarker, Body: body}
	}
	i := bytes.Index(body, headClose)
	if i < 0 {
		return Result{Outcome: Unchanged, Reason: ReasonNoHeadTag, Body: body}
	}

	script := Script(cfg)
	out := make([]byte, 0, len(body)+len(script))
	out = append(out, body[:i]...)
	out = append(out, script...)
	out = append(out, body[i:]...)
	return Result{Outcome: Replaced, Reason: ReasonInjected, Body: out}
}
