package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/recipe"

	"github.com/PuerkitoBio/goquery"
)

const (
	invalidURLMessage = "Introduce una dirección web válida (http o https)."
	fetchMessage      = "No se pudo abrir la página indicada. Comprueba la dirección e inténtalo de nuevo."
)

// Extractor finds a recipe in the text of a web page.
type Extractor interface {
	ExtractRecipe(ctx context.Context, sourceURL, pageText string) (recipe.ExtractorResult, error)
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	extractor Extractor
	client    *http.Client
}

// NewClipper creates a new Clipper instance.
func NewClipper(extractor Extractor) *Clipper {
	return &Clipper{
		extractor: extractor,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Clip fetches rawURL and returns the recipe found in it as a draft ready
// to be stored in the user's collection.
func (c *Clipper) Clip(ctx context.Context, rawURL string) (recipe.Draft, error) {
	const op = "clipper.clip"

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return recipe.Draft{}, apperr.New(apperr.MalformedInput, op, invalidURLMessage)
	}

	// 1. Fetch and Clean HTML
	content, err := c.fetchAndCleanHTML(ctx, u.String())
	if err != nil {
		return recipe.Draft{}, apperr.Wrap(apperr.MalformedInput, op, fetchMessage, err)
	}

	// 2. Extract the recipe
	res, err := c.extractor.ExtractRecipe(ctx, u.String(), content)
	if err != nil {
		return recipe.Draft{}, err
	}
	return res.Draft, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return strings.Join(strings.Fields(doc.Find("body").Text()), " "), nil
}
