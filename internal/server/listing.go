package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bimmerbailey/publogs/internal/sanitize"
)

// Item is one entry of a directory listing.
type Item struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
}

// listItems returns the visible entries of dir: subdirectories outside
// ongoing rounds and publishable files, directories first.
func (s *Server) listItems(ctx context.Context, dir string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	items := []Item{}
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())
		if s.guard.IsOngoing(ctx, entryPath) {
			continue
		}

		link := s.link(entryPath)
		if entry.IsDir() {
			items = append(items, Item{Name: entry.Name(), Path: link, IsDir: true})
			continue
		}
		if _, ok := sanitize.Classify(entry.Name()); !ok {
			continue
		}

		items = append(items, Item{Name: entry.Name(), Path: link})
		if entry.Name() == "runtime.log" {
			for _, name := range []string{sanitize.CondensedJSON, sanitize.CondensedText} {
				items = append(items, Item{Name: name, Path: s.link(filepath.Join(dir, name))})
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsDir != items[j].IsDir {
			return items[i].IsDir
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *Server) link(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}

type breadcrumb struct {
	Name string
	Path string
}

var listingTemplate = template.Must(template.New("listing").Parse(`<html>
	<head>
		<title>{{.Title}}</title>
	</head>
	<body>
		<p>{{range $i, $b := .Breadcrumbs}}{{if $i}}/{{end}}<a href="{{$b.Path}}">{{$b.Name}}</a>{{end}}</p>
		<hr />
		<ul>{{range .Items}}
			<li><a href="{{.Path}}">{{.Name}}{{if .IsDir}}/{{end}}</a></li>{{end}}
		</ul>
	</body>
</html>
`))

func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, dir string) {
	items, err := s.listItems(r.Context(), dir)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "error creating listing", err)
		return
	}

	var body bytes.Buffer
	contentType := "text/html; charset=utf-8"

	if r.URL.Query().Get("format") == "json" {
		contentType = "application/json"
		if err := json.NewEncoder(&body).Encode(items); err != nil {
			s.fail(w, r, http.StatusInternalServerError, "error creating listing", err)
			return
		}
	} else {
		rel := strings.TrimPrefix(s.link(dir), "/")
		page := struct {
			Title       string
			Breadcrumbs []breadcrumb
			Items       []Item
		}{
			Title:       "/" + rel,
			Breadcrumbs: breadcrumbs(rel),
			Items:       items,
		}
		if err := listingTemplate.Execute(&body, page); err != nil {
			s.fail(w, r, http.StatusInternalServerError, "error creating listing", err)
			return
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", s.cachePolicy(dir))
	w.WriteHeader(http.StatusOK)
	w.Write(body.Bytes())
}

// breadcrumbs links every ancestor of rel, starting at the root.
func breadcrumbs(rel string) []breadcrumb {
	crumbs := []breadcrumb{{Name: "logs", Path: "/"}}
	if rel == "" {
		return crumbs
	}

	path := ""
	for _, part := range strings.Split(rel, "/") {
		path += "/" + part
		crumbs = append(crumbs, breadcrumb{Name: part, Path: path})
	}
	return crumbs
}
