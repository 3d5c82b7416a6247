package models

// ScrapedProduct is one imported catalog item. Identity is SourceID, the
// id the target site assigns to the product card/page; the orchestrator
// guarantees SourceID is unique within one run's output.
type ScrapedProduct struct {
	SourceID    string   `json:"sourceId"`
	SourceURL   string   `json:"sourceUrl"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Price       float64  `json:"price"`
	OldPrice    *float64 `json:"oldPrice"`
	Images      []string `json:"images"`
	Specs       []Spec   `json:"specs"`
	InStock     bool     `json:"inStock"`
}

// Spec is a single name/value row from a product's characteristics block.
type Spec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LeafCategory is a catalog category that directly lists products. It is
// discovered transiently during the category walk and only consumed to
// drive pagination; it is never persisted.
type LeafCategory struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	ProductCount int    `json:"productCount"`
}
