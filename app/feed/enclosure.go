package feed

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/html-comb/app/document"
	"github.com/lysyi3m/html-comb/app/site"
	"golang.org/x/sync/errgroup"
)

type Prober interface {
	Probe(ctx context.Context, url string) (length string, contentType string, err error)
}

// EnclosureResolver builds enclosures either from the page alone, when
// length and type paths are both configured, or by probing every enclosure
// URL with a HEAD request.
type EnclosureResolver struct {
	extractor   *Extractor
	aligner     *Aligner
	prober      Prober
	concurrency int
}

func NewEnclosureResolver(extractor *Extractor, aligner *Aligner, prober Prober, concurrency int) *EnclosureResolver {
	return &EnclosureResolver{
		extractor:   extractor,
		aligner:     aligner,
		prober:      prober,
		concurrency: max(concurrency, 1),
	}
}

func (r *EnclosureResolver) Run(ctx context.Context, doc *document.Document, spec *site.EnclosureSpec) ([]Enclosure, error) {
	if spec.URL == "" {
		return nil, &ConfigurationError{Field: "enclosure.url", Reason: "missing required location path"}
	}

	urls, err := r.extractor.Run(doc, "enclosure.url", spec.URL)
	if err != nil {
		return nil, err
	}

	if spec.Declarative() {
		return r.fromPage(doc, spec, urls)
	}

	slog.Debug("Probing enclosures", "count", len(urls), "concurrency", r.concurrency)
	return r.fromProbes(ctx, urls)
}

func (r *EnclosureResolver) fromPage(doc *document.Document, spec *site.EnclosureSpec, urls []string) ([]Enclosure, error) {
	lengths, err := r.extractor.Run(doc, "enclosure.length", spec.Length)
	if err != nil {
		return nil, err
	}
	types, err := r.extractor.Run(doc, "enclosure.type", spec.Type)
	if err != nil {
		return nil, err
	}

	records, err := r.aligner.Run(RecordSet{Fields: map[string][]string{
		"enclosure.url":    urls,
		"enclosure.length": lengths,
		"enclosure.type":   types,
	}})
	if err != nil {
		return nil, err
	}

	enclosures := make([]Enclosure, len(records))
	for i, record := range records {
		enclosures[i] = Enclosure{
			URL:    record.Fields["enclosure.url"],
			Length: record.Fields["enclosure.length"],
			Type:   record.Fields["enclosure.type"],
		}
	}
	return enclosures, nil
}

// fromProbes issues one probe per URL. Results keep URL order and the first
// failure aborts the whole resolution.
func (r *EnclosureResolver) fromProbes(ctx context.Context, urls []string) ([]Enclosure, error) {
	enclosures := make([]Enclosure, len(urls))

	if r.concurrency == 1 {
		for i, url := range urls {
			length, contentType, err := r.prober.Probe(ctx, url)
			if err != nil {
				return nil, err
			}
			enclosures[i] = Enclosure{URL: url, Length: length, Type: contentType}
		}
		return enclosures, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, url := range urls {
		g.Go(func() error {
			length, contentType, err := r.prober.Probe(gctx, url)
			if err != nil {
				return err
			}
			enclosures[i] = Enclosure{URL: url, Length: length, Type: contentType}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return enclosures, nil
}
