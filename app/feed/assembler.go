package feed

import (
	"cmp"
	"fmt"

	"github.com/lysyi3m/html-comb/app/document"
	"github.com/lysyi3m/html-comb/app/site"
)

const (
	pageTitlePath    = "//head/title/text()"
	pageLanguagePath = "/html/@lang"
)

type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Run builds the channel. The page title falls back to the site name; the
// language is left empty when the page does not declare one. Values are not
// otherwise validated.
func (a *Assembler) Run(doc *document.Document, spec site.Spec, items []Item) (*Channel, error) {
	title, _, err := doc.FirstText(pageTitlePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read page title: %w", err)
	}

	language, _, err := doc.FirstText(pageLanguagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read page language: %w", err)
	}

	return &Channel{
		Title:    cmp.Or(title, spec.Name()),
		URL:      spec.URL,
		Language: language,
		Items:    items,
	}, nil
}

func itemsFromRecords(records []Record) []Item {
	items := make([]Item, len(records))
	for i, record := range records {
		items[i] = Item{
			Title:       record.Fields[FieldTitle],
			Description: record.Fields[FieldDescription],
			URL:         record.Fields[FieldURL],
			PubDate:     record.Fields[FieldPubDate],
			GUID:        record.Fields[FieldGUID],
			Enclosure:   record.Enclosure,
		}
	}
	return items
}
