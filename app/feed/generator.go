package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/html-comb/app/document"
	"github.com/lysyi3m/html-comb/app/site"
)

// PageCache returns the stored body of a site page when it is still fresh.
type PageCache interface {
	Lookup(ctx context.Context, spec site.Spec) (body string, fresh bool, err error)
	Put(ctx context.Context, url, body string) error
}

type Downloader interface {
	Prober
	Fetch(ctx context.Context, url string) (string, error)
}

// Generator turns a site configuration into a channel:
// cache check, fetch on miss, parse, extract, resolve enclosures, align,
// assemble. Any failing stage aborts the run; there are no partial channels.
type Generator struct {
	cache      PageCache
	downloader Downloader
	extractor  *Extractor
	enclosures *EnclosureResolver
	aligner    *Aligner
	assembler  *Assembler
}

func NewGenerator(cache PageCache, downloader Downloader, probeConcurrency int) *Generator {
	extractor := NewExtractor()
	aligner := NewAligner()

	return &Generator{
		cache:      cache,
		downloader: downloader,
		extractor:  extractor,
		enclosures: NewEnclosureResolver(extractor, aligner, downloader, probeConcurrency),
		aligner:    aligner,
		assembler:  NewAssembler(),
	}
}

func (g *Generator) Run(ctx context.Context, spec site.Spec) (*Channel, error) {
	started := time.Now()

	if err := g.validate(spec); err != nil {
		return nil, err
	}

	body, err := g.loadPage(ctx, spec)
	if err != nil {
		return nil, err
	}

	doc, err := document.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", spec.URL, err)
	}

	fields, err := g.extractor.Fields(doc, spec.Items)
	if err != nil {
		return nil, err
	}

	set := RecordSet{Fields: fields}
	if spec.Items.Enclosure != nil {
		enclosures, err := g.enclosures.Run(ctx, doc, spec.Items.Enclosure)
		if err != nil {
			return nil, err
		}
		set.Enclosures = enclosures
		set.HasEnclosures = true
	}

	records, err := g.aligner.Run(set)
	if err != nil {
		return nil, err
	}

	channel, err := g.assembler.Run(doc, spec, itemsFromRecords(records))
	if err != nil {
		return nil, err
	}

	slog.Debug("Channel generated",
		"site", spec.Name(),
		"items", len(channel.Items),
		"duration", time.Since(started))

	return channel, nil
}

func (g *Generator) validate(spec site.Spec) error {
	if spec.URL == "" {
		return &ConfigurationError{Field: "url", Reason: "site URL is required"}
	}
	if spec.Refresh < 0 {
		return &ConfigurationError{Field: "refresh", Reason: "refresh must be non-negative"}
	}
	return g.extractor.CheckRequired(spec.Items)
}

func (g *Generator) loadPage(ctx context.Context, spec site.Spec) (string, error) {
	body, fresh, err := g.cache.Lookup(ctx, spec)
	if err != nil {
		return "", &StorageError{Op: "read", Err: err}
	}
	if fresh {
		slog.Debug("Page served from cache", "site", spec.Name(), "url", spec.URL)
		return body, nil
	}

	body, err = g.downloader.Fetch(ctx, spec.URL)
	if err != nil {
		return "", err
	}

	if err := g.cache.Put(ctx, spec.URL, body); err != nil {
		return "", &StorageError{Op: "write", Err: err}
	}

	slog.Debug("Page fetched", "site", spec.Name(), "url", spec.URL, "bytes", len(body))
	return body, nil
}
