// Package filelinks finds LMS file attachments linked from assignment
// description HTML.
package filelinks

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"vast/internal/logging"
)

const fileLinkClass = "instructure_file_link"

// fileIDPattern matches /files/{id}, /files/{id}/download and /files/{id}/preview.
var fileIDPattern = regexp.MustCompile(`/files/(\d+)(?:/download|/preview)?`)

// Link is a file attachment referenced by an anchor in a description.
type Link struct {
	FileID   int64  `json:"file_id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Extract returns the distinct file links in document order. Blank or
// unparsable input yields an empty result, never an error.
func Extract(document string) []Link {
	return ExtractWithLogger(document, nil)
}

// ExtractWithLogger is Extract with a logger for tokenizer diagnostics.
func ExtractWithLogger(document string, logger *slog.Logger) []Link {
	if strings.TrimSpace(document) == "" {
		return nil
	}

	var (
		links   []Link
		seen    = map[int64]bool{}
		current *pendingLink
		// nested counts open non-file anchors inside current.
		nested  int
	)
	tokenizer := html.NewTokenizer(strings.NewReader(document))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && !errors.Is(err, io.EOF) {
				logging.WarnWithContext(logger, "file link extraction stopped early", "file_link_parse_failed",
					logging.Error(err),
					logging.Int("links_found", len(links)),
					logging.String(logging.FieldImpact, "some attachments may be missing from the download"),
				)
			}
			return links
		case html.StartTagToken:
			token := tokenizer.Token()
			if token.DataAtom != atom.A {
				continue
			}
			pending := newPendingLink(token)
			switch {
			case pending != nil:
				if current != nil {
					links = appendLink(links, seen, current.finish())
				}
				current, nested = pending, 0
			case current != nil:
				nested++
			}
		case html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.DataAtom == atom.A {
				if pending := newPendingLink(token); pending != nil {
					links = appendLink(links, seen, pending.finish())
				}
			}
		case html.TextToken:
			if current != nil {
				current.text.WriteString(tokenizer.Token().Data)
			}
		case html.EndTagToken:
			token := tokenizer.Token()
			if token.DataAtom != atom.A || current == nil {
				continue
			}
			if nested > 0 {
				nested--
				continue
			}
			links = appendLink(links, seen, current.finish())
			current = nil
		}
	}
}

func appendLink(links []Link, seen map[int64]bool, link Link) []Link {
	if seen[link.FileID] {
		return links
	}
	seen[link.FileID] = true
	return append(links, link)
}

type pendingLink struct {
	id    int64
	href  string
	title string
	text  strings.Builder
}

// newPendingLink returns nil for anchors that are not file links or whose
// href carries no file id.
func newPendingLink(token html.Token) *pendingLink {
	var class, href, title string
	for _, attr := range token.Attr {
		switch attr.Key {
		case "class":
			class = attr.Val
		case "href":
			href = attr.Val
		case "title":
			title = attr.Val
		}
	}
	if !hasClass(class, fileLinkClass) {
		return nil
	}
	match := fileIDPattern.FindStringSubmatch(href)
	if match == nil {
		return nil
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &pendingLink{id: id, href: href, title: title}
}

// finish picks the filename: title, then visible text, then the last URL
// path segment, then file-{id}.
func (p *pendingLink) finish() Link {
	name := cleanName(p.title)
	if name == "" {
		name = cleanName(p.text.String())
	}
	if name == "" {
		name = cleanName(lastSegment(p.href))
	}
	if name == "" {
		name = fmt.Sprintf("file-%d", p.id)
	}
	return Link{FileID: p.id, Filename: name, URL: p.href}
}

func hasClass(classAttr, want string) bool {
	for _, class := range strings.Fields(classAttr) {
		if class == want {
			return true
		}
	}
	return false
}

func lastSegment(href string) string {
	path := href
	if parsed, err := url.Parse(href); err == nil {
		path = parsed.Path
	} else if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	path = strings.TrimRight(path, "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		path = path[idx+1:]
	}
	return path
}

// cleanName collapses non-breaking spaces left over from &nbsp; and trims.
// The tokenizer has already decoded character references.
func cleanName(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}
