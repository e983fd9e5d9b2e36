package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrUnreachable is returned when the import URL cannot be reached at
// all (DNS failure or connection refused). Every other extraction
// problem degrades to a best-effort ParsedRecipe instead of an error.
var ErrUnreachable = errors.New("unable to access the provided URL")

// Some recipe sites refuse requests without a browser user agent.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const (
	defaultTimeout    = 10 * time.Second
	defaultSocialHost = "instagram.com"
)

// Options configures the Importer. Zero values fall back to defaults.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	SocialHost string
}

// Importer fetches recipe pages and runs the extraction strategy
// chain over them.
type Importer struct {
	client     *resty.Client
	logger     *zap.Logger
	socialHost string
	pageChain  []extractor
	caption    extractor
}

// New creates an Importer with a bounded-timeout HTTP client.
func New(logger *zap.Logger, opts Options) *Importer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.SocialHost == "" {
		opts.SocialHost = defaultSocialHost
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)

	return &Importer{
		client:     client,
		logger:     logger,
		socialHost: opts.SocialHost,
		pageChain:  []extractor{structuredData{}, htmlHeuristic{}},
		caption:    captionHeuristic{},
	}
}

// ImportFromURL fetches the page at rawURL and extracts a ParsedRecipe
// from it. The result always carries at least one ingredient entry.
// ErrUnreachable is the only error a caller should branch on; all
// parsing failures are absorbed into placeholder content.
func (imp *Importer) ImportFromURL(ctx context.Context, rawURL string) (*ParsedRecipe, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid import URL: %w", err)
	}

	var recipe *ParsedRecipe
	if strings.Contains(u.Host, imp.socialHost) {
		recipe = imp.importFromCaption(ctx, rawURL)
	} else {
		recipe, err = imp.importFromPage(ctx, rawURL)
		if err != nil {
			return nil, err
		}
	}

	if len(recipe.Ingredients) == 0 {
		recipe.Ingredients = []ParsedIngredient{{}}
	}
	return recipe, nil
}

// importFromCaption handles social-media posts. Fetch and parse
// failures never propagate: the user gets a fixed placeholder recipe
// to fill in by hand.
func (imp *Importer) importFromCaption(ctx context.Context, rawURL string) *ParsedRecipe {
	doc, err := imp.fetch(ctx, rawURL)
	if err != nil {
		imp.logger.Warn("social post fetch failed, returning placeholder",
			zap.String("url", rawURL), zap.Error(err))
		return captionPlaceholder()
	}
	return imp.caption.Extract(doc)
}

// importFromPage handles regular recipe pages through the strategy
// chain: structured data first, selector heuristics second. The
// heuristic strategy always produces a result, so the chain cannot
// come up empty.
func (imp *Importer) importFromPage(ctx context.Context, rawURL string) (*ParsedRecipe, error) {
	doc, err := imp.fetch(ctx, rawURL)
	if err != nil {
		if isUnreachable(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnreachable, rawURL)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}

	for _, strategy := range imp.pageChain {
		if recipe := strategy.Extract(doc); recipe != nil {
			return recipe, nil
		}
	}

	// Unreachable as long as htmlHeuristic stays in the chain.
	return &ParsedRecipe{Title: "Imported Recipe", Ingredients: []ParsedIngredient{{}}}, nil
}

func (imp *Importer) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	resp, err := imp.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch returned status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// isUnreachable classifies DNS failures and refused connections; other
// network errors (timeouts, resets, TLS) stay generic.
func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

func captionPlaceholder() *ParsedRecipe {
	return &ParsedRecipe{
		Title:       "Social Media Recipe - Please Edit",
		Directions:  "Please copy the cooking instructions from the original post.",
		Notes:       "This recipe was imported from a social media post. Please review and complete the details.",
		Ingredients: []ParsedIngredient{{}},
	}
}
