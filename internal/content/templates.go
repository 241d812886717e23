// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// templates.go holds the prototypes for newly created list items. Each
// constructor returns a fresh value so callers can never share state
// through a template.
package content

import (
	"time"

	"creatorsite/internal/slug"
)

// NewCaseStudy returns a blank standard case study ready for editing.
func NewCaseStudy() CaseStudy {
	return CaseStudy{
		Type:  "standard",
		Title: "New Case Study",
		Brand: "Brand Name",
		Goal:  "Project goal...",
		Results: []ResultMetric{
			{Value: "0", Label: "result metric"},
			{Value: "0", Label: "result metric"},
		},
		EmbedURL: "https://www.youtube.com/embed/...",
	}
}

// NewCarouselItem returns a blank story for a phone-carousel case study.
func NewCarouselItem() CarouselItem {
	return CarouselItem{
		Brand:        "New Brand Story",
		Goal:         "Goal for this specific story...",
		Results:      []ResultMetric{{Value: "0", Label: "result metric"}},
		Name:         "New Brand Story Name",
		Description:  "Description for SEO...",
		ThumbnailURL: "thumbnail.jpg",
		UploadDate:   "YYYY-MM-DDTHH:MM:SS+00:00",
		Duration:     "PT0M15S",
		EmbedURL:     "https://www.youtube.com/embed/...",
	}
}

// NewBlogPost returns a blank blog post. The slug is derived from the
// title; pass an empty title to get the placeholder slug.
func NewBlogPost(title string) BlogPost {
	if title == "" {
		title = "New Blog Post Title"
	}
	return BlogPost{
		Slug:        slug.Generate(title),
		Title:       title,
		Category:    "Category",
		Excerpt:     "A short, compelling summary of the article.",
		FullContent: "Start writing the full content of the blog post here.\n\nUse a blank line to create a new paragraph.",
	}
}

// NewFeaturedWork returns a blank UGC feed item. The numeric identity is
// assigned from the wall clock at creation time.
func NewFeaturedWork() FeaturedWork {
	return FeaturedWork{
		ID:          time.Now().UnixMilli(),
		Username:    "@username",
		Description: "Describe this piece of work...",
		Likes:       "0",
		Comments:    "0",
	}
}

// NewPowerCard returns a blank about-page power card.
func NewPowerCard() PowerCard {
	return PowerCard{
		Title:       "New Power Card",
		Description: "Describe this strength...",
	}
}

// NewTrustedByLogo returns a blank trusted-brand logo entry.
func NewTrustedByLogo() TrustedByLogo {
	return TrustedByLogo{
		Name: "Brand",
		Alt:  "Brand logo",
		URL:  "https://example.com",
	}
}
