package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"go.uber.org/zap"

	"vintagefeed/internal/model"
)

var (
	blogPathPattern    = regexp.MustCompile(`(?i)/(blog|news|article|post|journal)s?/`)
	productPathPattern = regexp.MustCompile(`(?i)/(products?|shop|items?|listings?|p)/`)
)

// RSS reads a generic RSS 2.0 / Atom feed, optionally with media: extensions.
type RSS struct {
	store   model.StoreConfig
	opts    Options
	feedURL string
}

func NewRSS(store model.StoreConfig, opts Options) *RSS {
	return &RSS{store: store, opts: opts.withDefaults(), feedURL: strings.TrimSpace(store.RSSURL)}
}

func (r *RSS) Name() string { return "rss" }

func (r *RSS) Fetch(ctx context.Context) (*FetchResult, error) {
	req, err := http.NewRequest(http.MethodGet, r.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", r.feedURL, err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	raw, err := do(ctx, r.opts, r.Name(), req)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Source: r.Name(), URL: r.feedURL, Err: err}
	}

	res := &FetchResult{}
	for _, item := range feed.Items {
		l, ok := r.toListing(item)
		if !ok || !syncable(l) {
			continue
		}
		if rssSoldOut(l.Title, l.Description) {
			res.Skipped++
			continue
		}
		res.Listings = append(res.Listings, l)
	}

	r.opts.Logger.Debug("rss feed",
		zap.String("store", r.store.Name),
		zap.Int("items", len(feed.Items)),
		zap.Int("listings", len(res.Listings)))
	return res, nil
}

// toListing applies the product heuristics; ok is false for items that are
// not sellable products (blog posts, no price, no link).
func (r *RSS) toListing(item *gofeed.Item) (model.RawListing, bool) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return model.RawListing{}, false
	}

	description := item.Description
	if strings.TrimSpace(description) == "" {
		description = item.Content
	}
	text := htmlText(description)

	if isBlogURL(link) {
		return model.RawListing{}, false
	}
	price := ExtractPrice(text)
	if price == nil {
		price = ExtractPrice(title)
	}
	if price == nil {
		if isProductURL(link) {
			r.opts.Logger.Debug("rss product link without price", zap.String("store", r.store.Name), zap.String("url", link))
		}
		return model.RawListing{}, false
	}

	images := rssImages(item, description)
	return model.RawListing{
		Title:       title,
		Price:       price,
		Currency:    model.DefaultCurrency,
		Image:       firstOrEmpty(images),
		Images:      images,
		ExternalURL: link,
		Description: description,
	}, true
}

func isBlogURL(link string) bool {
	return blogPathPattern.MatchString(linkPath(link))
}

func isProductURL(link string) bool {
	return productPathPattern.MatchString(linkPath(link))
}

func linkPath(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	p := u.Path
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// rssImages collects media:content, enclosures, then inline <img> tags.
func rssImages(item *gofeed.Item, description string) []string {
	var srcs []string
	if media, ok := item.Extensions["media"]; ok {
		srcs = append(srcs, mediaURLs(media["content"])...)
		for _, g := range media["group"] {
			srcs = append(srcs, mediaURLs(g.Children["content"])...)
		}
	}
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		if enc.Type == "" || strings.HasPrefix(enc.Type, "image/") {
			srcs = append(srcs, enc.URL)
		}
	}
	if item.Image != nil {
		srcs = append(srcs, item.Image.URL)
	}
	srcs = append(srcs, imageSources(description)...)
	return dedupe(srcs)
}

func mediaURLs(list []ext.Extension) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		if medium := e.Attrs["medium"]; medium != "" && medium != "image" {
			continue
		}
		out = append(out, e.Attrs["url"])
	}
	return out
}
