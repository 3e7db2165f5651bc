package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// rewrittenAttrs lists, per element, the attribute holding a document-relative path.
var rewrittenAttrs = map[string]string{
	"img": "src",
	"a":   "href",
}

// RewriteRelativePaths resolves relative img and link targets in an HTML
// document against sourceDir and turns them into file:// URLs, so the page
// still finds its images once written to a temporary directory.
// An empty sourceDir returns the document unchanged. Targets escaping
// sourceDir are left as written.
func RewriteRelativePaths(document, sourceDir string) (string, error) {
	if sourceDir == "" {
		return document, nil
	}

	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", err
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if key, ok := rewrittenAttrs[n.Data]; ok {
				for i := range n.Attr {
					if n.Attr[i].Key == key {
						n.Attr[i].Val = resolveTarget(n.Attr[i].Val, root)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// resolveTarget returns the file:// URL for a relative target under root,
// or target itself when it is not a rewritable relative path.
func resolveTarget(target, root string) string {
	if !isRelativePath(target) {
		return target
	}

	abs := filepath.Clean(filepath.Join(root, target))
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return target
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

// isRelativePath reports whether target is a local relative path:
// not empty, not an anchor, not a URL and not absolute.
func isRelativePath(target string) bool {
	if target == "" || strings.HasPrefix(target, "#") || strings.HasPrefix(target, "//") {
		return false
	}
	if u, err := url.Parse(target); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}
	return !filepath.IsAbs(target)
}
