package catalog

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Book is one record of the loaded catalog.
type Book struct {
	Title      string     `json:"titulo,omitempty"`
	Author     string     `json:"autor,omitempty"`
	Location   string     `json:"ubicacion,omitempty"`
	Cover      string     `json:"portada,omitempty"`
	Categories Categories `json:"categoria"`
}

// UnmarshalJSON keeps whatever it can of a record. Scalar text fields
// are stringified, other shapes are dropped, and a value that is not an
// object yields an empty book.
func (b *Book) UnmarshalJSON(data []byte) error {
	*b = Book{}

	var fields struct {
		Title      json.RawMessage `json:"titulo"`
		Author     json.RawMessage `json:"autor"`
		Location   json.RawMessage `json:"ubicacion"`
		Cover      json.RawMessage `json:"portada"`
		Categories Categories      `json:"categoria"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		// Not an object: the record stays, empty.
		return nil
	}
	b.Title = scalarText(fields.Title)
	b.Author = scalarText(fields.Author)
	b.Location = scalarText(fields.Location)
	b.Cover = scalarText(fields.Cover)
	b.Categories = fields.Categories
	return nil
}

func (b Book) clone() Book {
	b.Categories.Values = slices.Clone(b.Categories.Values)
	b.Categories.Raw = slices.Clone(b.Categories.Raw)
	return b
}

func cloneBooks(books []Book) []Book {
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = b.clone()
	}
	return out
}

// scalarText renders a JSON string, number or bool as text. Anything else,
// including an absent value, is "".
func scalarText(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Categories is the normalized category list of a book. The source data
// carries either a comma-delimited string or an array, so decoding
// accepts both and remembers the form it was written in.
type Categories struct {
	Values []string
	Raw    json.RawMessage
}

func (c *Categories) UnmarshalJSON(data []byte) error {
	c.Raw = append(json.RawMessage(nil), data...)
	c.Values = nil
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Values = splitCategories(s)
		return nil
	}

	var items []any
	if err := json.Unmarshal(data, &items); err == nil {
		for _, item := range items {
			if v, ok := item.(string); ok {
				c.Values = append(c.Values, v)
			}
		}
	}
	// Anything else degrades to no categories.
	return nil
}

func (c Categories) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw, nil
	}
	if c.Values == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.Values)
}

// Display renders the categories the way they were written: a string
// verbatim, an array joined with ", ". Numbers and bools in an array are
// shown even though they never match a filter.
func (c Categories) Display() string {
	var s string
	if err := json.Unmarshal(c.Raw, &s); err == nil {
		return s
	}
	var items []json.RawMessage
	if err := json.Unmarshal(c.Raw, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, scalarText(item))
		}
		return strings.Join(parts, ", ")
	}
	return strings.Join(c.Values, ", ")
}

func splitCategories(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// Query selects books. Empty fields are ignored.
type Query struct {
	Term       string   `json:"q" validate:"max=200"`
	Author     string   `json:"author" validate:"max=200"`
	Categories []string `json:"categories" validate:"max=50,dive,max=200"`
}

// Options are the values offered by the author and category selectors.
type Options struct {
	Authors    []string `json:"authors"`
	Categories []string `json:"categories"`
}

// Catalog is an immutable, ordered collection of books together with
// the filter options derived from it. Books going in and out are deep
// copies.
type Catalog struct {
	books   []Book
	options Options
}

func New(books []Book) *Catalog {
	c := &Catalog{books: cloneBooks(books)}
	c.options = deriveOptions(c.books)
	return c
}

func deriveOptions(books []Book) Options {
	authors := make(map[string]struct{})
	categories := make(map[string]struct{})
	for _, b := range books {
		if b.Author != "" {
			authors[b.Author] = struct{}{}
		}
		for _, cat := range b.Categories.Values {
			if cat != "" {
				categories[cat] = struct{}{}
			}
		}
	}
	return Options{
		Authors:    sortedKeys(authors),
		Categories: sortedKeys(categories),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (c *Catalog) Len() int {
	return len(c.books)
}

// Books returns a copy of every book in load order.
func (c *Catalog) Books() []Book {
	return cloneBooks(c.books)
}

func (c *Catalog) Options() Options {
	return Options{
		Authors:    slices.Clone(c.options.Authors),
		Categories: slices.Clone(c.options.Categories),
	}
}

// Query returns the books matching every active filter of q, in load
// order.
func (c *Catalog) Query(q Query) []Book {
	term := strings.ToLower(q.Term)

	var selected map[string]struct{}
	if len(q.Categories) > 0 {
		selected = make(map[string]struct{}, len(q.Categories))
		for _, cat := range q.Categories {
			selected[cat] = struct{}{}
		}
	}

	out := make([]Book, 0, len(c.books))
	for _, b := range c.books {
		if term != "" && (b.Title == "" || !strings.Contains(strings.ToLower(b.Title), term)) {
			continue
		}
		if q.Author != "" && b.Author != q.Author {
			continue
		}
		if selected != nil && !hasAnyCategory(b, selected) {
			continue
		}
		out = append(out, b.clone())
	}
	return out
}

func hasAnyCategory(b Book, selected map[string]struct{}) bool {
	for _, cat := range b.Categories.Values {
		if _, ok := selected[cat]; ok {
			return true
		}
	}
	return false
}
