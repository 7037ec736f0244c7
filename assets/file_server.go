package assets

import (
	"net/http"
	"strconv"

	"github.com/latency-benchmark/latency-server/framework/opt"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const (
	// DocumentRoot is prefixed to every request path to form a virtual path.
	DocumentRoot = "html"

	// DefaultDocument is served for the root path.
	DefaultDocument = "/index.html"

	// MaxPathLength bounds a virtual path plus one terminating byte, so the longest path that
	// can be found is MaxPathLength-2 bytes.
	MaxPathLength = 2048

	notFoundBody = "Error 404: File not found"
)

// FileServer answers requests for static files from a ResourceProvider, with caching disabled.
type FileServer struct {
	provider ResourceProvider
	loggers  ldlog.Loggers
}

// NewFileServer creates a FileServer.
func NewFileServer(provider ResourceProvider, loggers ldlog.Loggers) *FileServer {
	return &FileServer{provider: provider, loggers: loggers}
}

// Lookup maps a request path to an asset.
func (s *FileServer) Lookup(uri string) opt.Maybe[Asset] {
	if len(uri) < 2 {
		uri = DefaultDocument
	}
	if len(DocumentRoot)+len(uri)+1 >= MaxPathLength {
		return opt.None[Asset]()
	}
	return s.provider.Resolve(DocumentRoot + uri)
}

func (s *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "close")

	asset := s.Lookup(r.URL.Path)
	if !asset.IsDefined() {
		s.loggers.Debugf("No asset for %s", r.URL.Path)
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("Content-Length", strconv.Itoa(len(notFoundBody)))
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(notFoundBody))
		return
	}
	a := asset.Value()
	h.Set("Content-Type", a.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}
