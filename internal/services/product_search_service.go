package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"surcan_assistant_backend/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const searchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultProductSearcher scrapes the storefront's search results page. The
// selectors are fixed against the current PrestaShop theme; there is no
// pagination and no retry.
type DefaultProductSearcher struct {
	baseURL string
	client  *http.Client
}

// NewProductSearchService creates a new DefaultProductSearcher
func NewProductSearchService(baseURL string, timeout time.Duration) *DefaultProductSearcher {
	return &DefaultProductSearcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *DefaultProductSearcher) Search(ctx context.Context, productName string) ([]models.Product, error) {
	searchURL := fmt.Sprintf("%s/busqueda?controller=search&order=product.position.desc&s=%s",
		s.baseURL, url.QueryEscape(productName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storefront search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	doc.Find("article.product-miniature").Each(func(_ int, sel *goquery.Selection) {
		img, _ := sel.Find("img.product-thumbnail-first").First().Attr("src")
		link, _ := sel.Find("a.thumbnail").First().Attr("href")
		products = append(products, models.Product{
			Title: strings.TrimSpace(sel.Find("h3.product-title").First().Text()),
			Price: strings.TrimSpace(sel.Find("span.product-price").First().Text()),
			Link:  link,
			Image: img,
		})
	})

	return products, nil
}
