// Package pprofserver exposes the runtime profiling endpoints on a separate
// port. Loopback callers get through directly; anything else must present
// basic auth credentials.
package pprofserver

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
)

// Config stores pprof server settings.
type Config struct {
	User string
	Pass string
}

// Handler returns the guarded pprof handler tree.
func Handler(cfg Config) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)

	for _, name := range []string{"heap", "goroutine", "allocs", "block", "mutex", "threadcreate"} {
		mux.Handle("/debug/pprof/"+name, pprof.Handler(name))
	}
	return requireAuth(mux, cfg)
}

// requireAuth admits loopback callers unconditionally and everyone else only
// with the configured credentials. With no credentials configured, remote
// access is shut off entirely.
func requireAuth(next http.Handler, cfg Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isLoopback(r.RemoteAddr) {
			next.ServeHTTP(w, r)
			return
		}

		if cfg.User == "" || cfg.Pass == "" {
			deny(w)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !constantEq(u, cfg.User) || !constantEq(p, cfg.Pass) {
			deny(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="pprof"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func constantEq(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isLoopback(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}

	ip := net.ParseIP(strings.TrimSpace(host))
	return ip != nil && ip.IsLoopback()
}
