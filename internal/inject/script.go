package inject

import (
	"strings"

	"github.com/bytedance/sonic"
)

// jsString encodes s as a JSON string literal with <, > and & escaped,
// so it can neither end the string nor the surrounding script element.
func jsString(s string) string {
	quoted, err := sonic.ConfigStd.MarshalToString(s)
	if err != nil {
		// strings always marshal, keep the output a valid literal anyway
		return `""`
	}
	return quoted
}

// Script renders the script element assigning the configured globals.
func Script(cfg Config) string {
	var sb strings.Builder
	sb.WriteString("<script>\n  window.PUBLIC_SUPABASE_URL = ")
	sb.WriteString(jsString(cfg.url()))
	sb.WriteString(";\n  window.PUBLIC_SUPABASE_ANON_KEY = ")
	sb.WriteString(jsString(cfg.anonKey()))
	sb.WriteString(";\n  </script>")
	return sb.String()
}
