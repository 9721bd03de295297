package model

import "time"

const (
	LayoutBanner     = "Banner"
	LayoutFAQ        = "FAQ"
	LayoutCategories = "Categories"
)

type BannerImage struct {
	Key string `json:"public_id,omitempty"`
	URL string `json:"url,omitempty"`
}

type Banner struct {
	Image    BannerImage `json:"image"`
	Title    string      `json:"title"`
	SubTitle string      `json:"sub_title"`
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Layout holds one singleton document per kind: a banner, the FAQ list, or
// the category list.
type Layout struct {
	ID         string     `json:"id"`
	Kind       string     `json:"type"`
	Banner     *Banner    `json:"banner,omitempty"`
	FAQ        []FAQItem  `json:"faq,omitempty"`
	Categories []ListItem `json:"categories,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
