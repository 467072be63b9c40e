package api

import (
	"context"
	"time"

	"github.com/lysyi3m/html-comb/app/cache"
	"github.com/lysyi3m/html-comb/app/database"
	"github.com/lysyi3m/html-comb/app/feed"
	"github.com/lysyi3m/html-comb/app/site"
)

type GeneratorInterface interface {
	Run(ctx context.Context, spec site.Spec) (*feed.Channel, error)
}

type RendererInterface interface {
	Run(channel *feed.Channel, selfLink string) (string, error)
}

// PageCounter is implemented by cache stores that can report their size.
type PageCounter interface {
	GetPageCount(ctx context.Context) (int, error)
}

var (
	_ GeneratorInterface = (*feed.Generator)(nil)
	_ RendererInterface  = (*feed.Renderer)(nil)
	_ PageCounter        = (*cache.MemoryStore)(nil)
	_ PageCounter        = (*database.PageRepository)(nil)
)

type Handler struct {
	registry       *site.Registry
	generator      GeneratorInterface
	renderer       RendererInterface
	pages          PageCounter
	baseUrl        string
	requestTimeout time.Duration
}
