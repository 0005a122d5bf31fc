package models

// Product is one record scraped from the storefront search results page.
type Product struct {
	Title string `json:"titulo"`
	Price string `json:"precio"`
	Link  string `json:"link"`
	Image string `json:"imagen"`
}
