package version

import (
	"net/http"
	"strings"
)

// version is the current version of the ScriptSDK.
// Set using -ldflags "-X go.minekube.com/scriptsdk/pkg/version.version=v1.2.3"
var version string = "unknown"

func String() string {
	return version
}

// UserAgent is sent with outgoing HTTP requests, e.g. Discord webhooks.
func UserAgent() string {
	s := strings.Builder{}
	s.WriteString("ScriptSDK/")
	if v := String(); v != "" {
		s.WriteString(v)
	} else {
		s.WriteString("Dirty")
	}
	return s.String()
}

func UserAgentHeader() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", UserAgent())
	return h
}
