// Package server serves the generated site over HTTPS and redirects plain
// HTTP to it.
package server

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
)

// Route names, used as the route metric label.
const (
	RouteMain     = "main"
	RouteMainPage = "main_redirect"
	RouteText     = "text"
	RouteFile     = "file"
	RouteNotFound = "not_found"

	RouteMethodNotAllowed = "method_not_allowed"
	RouteRedirect         = "https_redirect"
)

// Site describes the directories and names served by the router.
type Site struct {
	HTMLDir      string
	MarkdownDir  string
	TextSuffix   string
	NotFoundPage string
	MainPage     string
}

// NewRouter builds the HTTPS handler for site. Only GET and HEAD are routed;
// other methods get 405 from the catch-all route.
func NewRouter(site Site) *mux.Router {
	h := &siteHandler{site: site}
	mainName := strings.TrimSuffix(site.MainPage, ".html")

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	methods := []string{http.MethodGet, http.MethodHead}
	r.Methods(methods...).Path("/").HandlerFunc(h.main).Name(RouteMain)
	r.Methods(methods...).Path("/" + mainName).HandlerFunc(redirectToIndex).Name(RouteMainPage)
	if mainName != site.MainPage {
		r.Methods(methods...).Path("/" + site.MainPage).HandlerFunc(redirectToIndex).Name(RouteMainPage)
	}
	r.Methods(methods...).MatcherFunc(h.isText).HandlerFunc(h.text).Name(RouteText)
	r.Methods(methods...).PathPrefix("/").HandlerFunc(h.file).Name(RouteFile)
	return r
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

func redirectToIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusMovedPermanently)
}

type siteHandler struct {
	site Site
}

// resolve maps a URL path to a file below dir. It returns "" when the
// cleaned path escapes dir.
func resolve(dir, urlPath string) string {
	cleaned := path.Clean("/" + urlPath)
	full := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(cleaned, "/")))
	rel, err := filepath.Rel(dir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return full
}

// regularFile reports whether p is an existing regular file.
func regularFile(p string) bool {
	if p == "" {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func (h *siteHandler) main(w http.ResponseWriter, r *http.Request) {
	p := filepath.Join(h.site.HTMLDir, h.site.MainPage)
	if !regularFile(p) {
		h.notFound(w, r)
		return
	}
	serveFile(w, r, p, "", http.StatusOK)
}

func (h *siteHandler) isText(r *http.Request, _ *mux.RouteMatch) bool {
	return strings.HasSuffix(r.URL.Path, h.site.TextSuffix)
}

// text serves the Markdown copy of a page as plain text.
func (h *siteHandler) text(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSuffix(r.URL.Path, h.site.TextSuffix)
	p := resolve(h.site.MarkdownDir, slug+".md")
	if !regularFile(p) {
		h.notFound(w, r)
		return
	}
	serveFile(w, r, p, "text/plain; charset=utf-8", http.StatusOK)
}

// file serves a file from the HTML directory, retrying with .html when the
// path has no extension. Directories are never listed.
func (h *siteHandler) file(w http.ResponseWriter, r *http.Request) {
	p := resolve(h.site.HTMLDir, r.URL.Path)
	if regularFile(p) {
		serveFile(w, r, p, "", http.StatusOK)
		return
	}
	if p != "" && path.Ext(r.URL.Path) == "" && regularFile(p+".html") {
		serveFile(w, r, p+".html", "", http.StatusOK)
		return
	}
	h.notFound(w, r)
}

// notFound serves the 404 page with status 404, or plain text when the
// page does not exist.
func (h *siteHandler) notFound(w http.ResponseWriter, r *http.Request) {
	p := filepath.Join(h.site.HTMLDir, h.site.NotFoundPage)
	if regularFile(p) {
		serveFile(w, r, p, "text/html; charset=utf-8", http.StatusNotFound)
		return
	}
	http.Error(w, "404 page not found", http.StatusNotFound)
}

// serveFile writes the file at p. Successful responses go through
// http.ServeContent for range and conditional request support.
func serveFile(w http.ResponseWriter, r *http.Request, p, contentType string, status int) {
	f, err := os.Open(p) // #nosec G304 -- p is confined by resolve
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if status == http.StatusOK {
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
		return
	}

	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = io.Copy(w, f)
	}
}
