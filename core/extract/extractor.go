// Package extract is the record extractor: it parses loosely structured
// catalog markup into a document tree and answers structural queries on it.
//
// Queries are CSS selectors compiled with cascadia, optionally narrowed by an
// exact text-content match (the catalog marks row kinds with a badge whose
// text is "APK" or "BUNDLE"). A query that matches nothing yields an empty
// result, never an error.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Query is a compiled structural query.
type Query struct {
	source string
	sel    cascadia.Selector
	text   string
}

// Compile compiles a CSS selector into a Query.
func Compile(selector string) (Query, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return Query{}, fmt.Errorf("compiling selector %q: %w", selector, err)
	}
	return Query{source: selector, sel: sel}, nil
}

// MustCompile is like Compile but panics on an invalid selector.
// It is meant for package-level query tables.
func MustCompile(selector string) Query {
	q, err := Compile(selector)
	if err != nil {
		panic(err)
	}
	return q
}

// WithText returns a copy of q that only matches elements whose trimmed
// text content equals text.
func (q Query) WithText(text string) Query {
	q.text = text
	return q
}

// String returns the query in selector form, for diagnostics.
func (q Query) String() string {
	if q.text == "" {
		return q.source
	}
	return fmt.Sprintf("%s[text=%q]", q.source, q.text)
}

func (q Query) apply(s *goquery.Selection) *goquery.Selection {
	if q.sel == nil {
		return s.Slice(0, 0)
	}
	found := s.FindMatcher(q.sel)
	if q.text == "" {
		return found
	}
	return found.FilterFunction(func(_ int, el *goquery.Selection) bool {
		return strings.TrimSpace(el.Text()) == q.text
	})
}

// Document is a parsed markup document.
type Document struct {
	doc *goquery.Document
}

// Parse parses markup with the HTML5 algorithm, which repairs unclosed and
// misnested tags instead of failing.
func Parse(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

// Root returns the document element as an Element.
func (d *Document) Root() Element {
	return Element{sel: d.doc.Selection}
}

// FindAll returns every element matching q, in document order.
func (d *Document) FindAll(q Query) []Element {
	return d.Root().Find(q)
}

// FindOne returns the first element matching q.
func (d *Document) FindOne(q Query) (Element, bool) {
	return d.Root().FindOne(q)
}

// Element is a handle to a single matched element.
type Element struct {
	sel *goquery.Selection
}

// Text returns the element's combined text content, trimmed.
func (e Element) Text() string {
	if e.sel == nil {
		return ""
	}
	return strings.TrimSpace(e.sel.Text())
}

// Attr returns the value of the named attribute.
func (e Element) Attr(name string) (string, bool) {
	if e.sel == nil {
		return "", false
	}
	return e.sel.Attr(name)
}

// Find returns descendants of e matching q, in document order.
func (e Element) Find(q Query) []Element {
	if e.sel == nil {
		return nil
	}
	found := q.apply(e.sel)
	out := make([]Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Element{sel: s})
	})
	return out
}

// FindOne returns the first descendant of e matching q.
func (e Element) FindOne(q Query) (Element, bool) {
	if e.sel == nil {
		return Element{}, false
	}
	found := q.apply(e.sel)
	if found.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: found.First()}, true
}

// Has reports whether any descendant of e matches q.
func (e Element) Has(q Query) bool {
	_, ok := e.FindOne(q)
	return ok
}

// OuterHTML serializes the element including its own tag.
func (e Element) OuterHTML() (string, error) {
	if e.sel == nil {
		return "", nil
	}
	out, err := goquery.OuterHtml(e.sel)
	if err != nil {
		return "", fmt.Errorf("serializing element: %w", err)
	}
	return out, nil
}
