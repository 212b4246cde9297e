package catalog

const (
	UnknownTitle   = "unknown title"
	UnknownAuthor  = "unknown"
	NotAvailable   = "N/A"
	NoBooksMessage = "no books found"
)

// Card is the render-ready description of one book.
type Card struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	Location   string `json:"location"`
	Categories string `json:"categories"`
	Cover      string `json:"cover,omitempty"`
	CoverAlt   string `json:"cover_alt,omitempty"`
}

// Results is what a search hands back to the page. An empty match set
// carries a message instead of cards.
type Results struct {
	Cards   []Card `json:"cards"`
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

func Describe(books []Book) Results {
	if len(books) == 0 {
		return Results{Cards: []Card{}, Empty: true, Message: NoBooksMessage}
	}
	cards := make([]Card, 0, len(books))
	for _, b := range books {
		cards = append(cards, NewCard(b))
	}
	return Results{Cards: cards}
}

func NewCard(b Book) Card {
	card := Card{
		Title:      orDefault(b.Title, UnknownTitle),
		Author:     orDefault(b.Author, UnknownAuthor),
		Location:   orDefault(b.Location, NotAvailable),
		Categories: orDefault(b.Categories.Display(), NotAvailable),
	}
	if b.Cover != "" {
		card.Cover = b.Cover
		card.CoverAlt = "Cover of " + orDefault(b.Title, "unknown")
	}
	return card
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
