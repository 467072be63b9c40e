package feed

import (
	"github.com/lysyi3m/html-comb/app/document"
	"github.com/lysyi3m/html-comb/app/site"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Run evaluates one field's location path and returns the string value of
// every result in document order. Elements are reduced to their descendant
// text here, so later stages only handle plain strings.
func (e *Extractor) Run(doc *document.Document, field, path string) ([]string, error) {
	texts, err := doc.Texts(path)
	if err != nil {
		return nil, &ConfigurationError{Field: field, Reason: "invalid location path", Err: err}
	}
	if texts == nil {
		texts = []string{}
	}
	return texts, nil
}

// CheckRequired fails with a ConfigurationError when a required item path
// is missing.
func (e *Extractor) CheckRequired(spec site.ItemSpec) error {
	required := []struct{ field, path string }{
		{FieldTitle, spec.Title},
		{FieldDescription, spec.Description},
		{FieldURL, spec.URL},
	}
	for _, r := range required {
		if r.path == "" {
			return &ConfigurationError{Field: r.field, Reason: "missing required location path"}
		}
	}
	return nil
}

// Fields extracts every configured item field. Optional fields without a
// path are left out of the result; optional fields whose path matches
// nothing are kept as empty sequences.
func (e *Extractor) Fields(doc *document.Document, spec site.ItemSpec) (map[string][]string, error) {
	if err := e.CheckRequired(spec); err != nil {
		return nil, err
	}

	paths := []struct{ field, path string }{
		{FieldTitle, spec.Title},
		{FieldDescription, spec.Description},
		{FieldURL, spec.URL},
		{FieldPubDate, spec.PubDate},
		{FieldGUID, spec.GUID},
	}

	fields := make(map[string][]string, len(paths))
	for _, p := range paths {
		if p.path == "" {
			continue
		}
		values, err := e.Run(doc, p.field, p.path)
		if err != nil {
			return nil, err
		}
		fields[p.field] = values
	}

	return fields, nil
}
