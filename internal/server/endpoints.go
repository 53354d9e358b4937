package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Endpoint is one canned response.
type Endpoint struct {
	Status      int
	ContentType string
	Body        []byte
}

// Endpoints maps request paths to canned responses. Safe for concurrent use.
type Endpoints struct {
	mu    sync.RWMutex
	paths map[string]Endpoint
}

func NewEndpoints() *Endpoints {
	return &Endpoints{paths: make(map[string]Endpoint)}
}

// Set registers body under p with the given status.
func (e *Endpoints) Set(p string, status int, body []byte) {
	ep := Endpoint{Status: status, Body: body, ContentType: contentType(p)}
	e.mu.Lock()
	e.paths[cleanPath(p)] = ep
	e.mu.Unlock()
}

// Get returns the endpoint registered for p.
func (e *Endpoints) Get(p string) (Endpoint, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ep, ok := e.paths[cleanPath(p)]
	return ep, ok
}

// Paths lists registered paths in order.
func (e *Endpoints) Paths() []string {
	e.mu.RLock()
	out := make([]string, 0, len(e.paths))
	for p := range e.paths {
		out = append(out, p)
	}
	e.mu.RUnlock()
	sort.Strings(out)
	return out
}

// LoadDir registers every regular file under root with status 200. A file
// at root/current_data/data_north_V1_0_5.csv is served at
// /current_data/data_north_V1_0_5.csv.
func (e *Endpoints) LoadDir(root string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		body, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		e.Set(filepath.ToSlash(rel), http.StatusOK, body)
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("failed to load endpoints from %s: %w", root, err)
	}
	return n, nil
}

func cleanPath(p string) string {
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}

func contentType(p string) string {
	switch path.Ext(p) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
