// Package web serves minq pages over HTTP. Pages are plain files whose
// <?mq ... ?> blocks are evaluated per request; markdown pages are rendered
// to HTML afterwards.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/minqlang/minq/pkg/minq/evaluator"
	"github.com/minqlang/minq/pkg/minq/stdlib"
)

// IndexKey names the page served at "/".
const IndexKey = "__index__"

// Options configures a Server.
type Options struct {
	Host        string // listen host; empty means all interfaces
	Root        string // base directory for relative page paths
	Compression CompressionOptions
	LogFormat   string    // text, json or none
	LogOutput   io.Writer // request log sink; defaults to os.Stdout
	Markdown    bool      // render .md pages to HTML

	// OnListen is called with the bound address once runOnPort listens.
	OnListen func(net.Addr)
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		Compression: CompressionOptions{Enabled: true, Level: "default", MinSize: 1024},
		LogFormat:   "text",
		Markdown:    true,
	}
}

// Server holds the routes loaded by a script and serves them on the
// script's runtime.
type Server struct {
	rt   *evaluator.Runtime
	opts Options

	// evalMu serializes template evaluation; a Runtime is single-threaded.
	evalMu sync.Mutex

	routesMu sync.RWMutex
	routes   map[string]string
	index    string
}

// NewServer creates a server bound to rt.
func NewServer(rt *evaluator.Runtime, opts Options) *Server {
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stdout
	}
	return &Server{rt: rt, opts: opts}
}

// Register adds the web module to rt and returns its server.
func Register(rt *evaluator.Runtime, opts Options) *Server {
	s := NewServer(rt, opts)
	rt.Modules.Register(s.Module())
	return s
}

// Module builds the script-facing web module.
func (s *Server) Module() *evaluator.Module {
	m := evaluator.NewModule("web")
	m.Define("loadConfig", s.loadConfig)
	m.Define("runOnPort", s.runOnPort)
	m.Define("render", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, evaluator.Param{Types: evaluator.Types(evaluator.STRING_OBJ), Count: 1}) {
			return evaluator.InvalidArgs(env, "render")
		}
		out, halt := renderTemplate(s.rt, args[0].(*evaluator.String).Value, evaluator.NewDictionary())
		if halt != nil {
			return halt
		}
		return &evaluator.String{Value: out}
	})
	return m
}

func webError(env *evaluator.Environment, format string, a ...any) evaluator.Object {
	return evaluator.Report(env, "WEB-0001", map[string]any{"Error": fmt.Sprintf(format, a...)})
}

func (s *Server) loadConfig(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
	if !evaluator.ValidateArgs(args, evaluator.Param{Types: evaluator.Types(evaluator.OBJECT_OBJ), Count: 1}) {
		return evaluator.InvalidArgs(env, "loadConfig")
	}
	urlsObj, ok := args[0].(*evaluator.Dictionary).Get("urls")
	if !ok {
		return webError(env, "config does not define urls")
	}
	urls, ok := urlsObj.(*evaluator.Dictionary)
	if !ok {
		return webError(env, "urls must be an object, got %s", urlsObj.Type())
	}

	routes := make(map[string]string, urls.Len())
	for _, path := range urls.Keys {
		file, ok := urls.Pairs[path].(*evaluator.String)
		if !ok {
			return webError(env, "url '%s' must map to a file name string", path)
		}
		routes[path] = s.resolve(file.Value)
	}
	index, ok := routes[IndexKey]
	if !ok {
		return webError(env, "%s not defined in urls", IndexKey)
	}
	delete(routes, IndexKey)

	s.routesMu.Lock()
	s.routes = routes
	s.index = index
	s.routesMu.Unlock()
	return evaluator.NULL
}

func (s *Server) resolve(file string) string {
	if s.opts.Root == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.opts.Root, file)
}

// runOnPort serves until the runtime's context is cancelled.
func (s *Server) runOnPort(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
	if !evaluator.ValidateArgs(args, evaluator.Param{Types: evaluator.Types(evaluator.NUMBER_OBJ), Count: 1}) {
		return evaluator.InvalidArgs(env, "runOnPort")
	}
	port := args[0].(*evaluator.Number).Value
	if port != math.Trunc(port) || port < 0 || port > 65535 {
		return webError(env, "invalid port %v", port)
	}
	if !s.configured() {
		return webError(env, "no configuration loaded, call loadConfig() first")
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(s.opts.Host, fmt.Sprint(int(port))))
	if err != nil {
		return webError(env, "%v", err)
	}
	if err := s.Serve(s.rt.Context(), ln); err != nil {
		return webError(env, "%v", err)
	}
	return evaluator.NULL
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.rt.Logger.LogLine("Web: application running on " + ln.Addr().String())
	if s.opts.OnListen != nil {
		s.opts.OnListen(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) configured() bool {
	s.routesMu.RLock()
	defer s.routesMu.RUnlock()
	return s.index != ""
}

func (s *Server) lookup(path string) (string, bool) {
	s.routesMu.RLock()
	defer s.routesMu.RUnlock()
	if path == "/" {
		return s.index, s.index != ""
	}
	file, ok := s.routes[path]
	return file, ok
}

// Handler returns the page handler wrapped with request logging and
// compression.
func (s *Server) Handler() http.Handler {
	h := newRequestLogger(http.HandlerFunc(s.servePage), s.opts.LogOutput, s.opts.LogFormat)
	return newCompressionHandler(h, s.opts.Compression)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	file, ok := s.lookup(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	src, err := os.ReadFile(file)
	if err != nil {
		s.rt.WarnLogger.LogLine(fmt.Sprintf("[MINQ] web: %v", err))
		http.Error(w, "page not available", http.StatusInternalServerError)
		return
	}

	page, err := s.renderPage(string(src), firstValues(r))
	if err != nil {
		s.rt.WarnLogger.LogLine(fmt.Sprintf("[MINQ] web: %s: %v", file, err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.opts.Markdown && strings.HasSuffix(file, ".md") {
		if page, err = stdlib.RenderMarkdown(page); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, page)
}

func (s *Server) renderPage(src string, query map[string]string) (string, error) {
	s.evalMu.Lock()
	defer s.evalMu.Unlock()
	return Render(s.rt, src, query)
}

func firstValues(r *http.Request) map[string]string {
	values := r.URL.Query()
	out := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			out[key] = vals[0]
		}
	}
	return out
}

// queryObject builds the script-facing query Object with sorted keys.
func queryObject(query map[string]string) *evaluator.Dictionary {
	dict := evaluator.NewDictionary()
	for _, key := range slices.Sorted(maps.Keys(query)) {
		dict.Set(key, &evaluator.String{Value: query[key]})
	}
	return dict
}
