// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content defines the site content document: the single aggregate
// value that drives every public page. Two instances of it live side by
// side during an editing session (the last published state and the working
// copy) and they must never share memory. Clone and Set therefore always
// produce fully independent values.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TrustedByLogo is one entry in the trusted-brands strip on the homepage.
type TrustedByLogo struct {
	Name string `json:"name"`
	Alt  string `json:"alt"`
	Src  string `json:"src,omitempty"`
	URL  string `json:"url"`
}

// FeaturedWork is one item in the homepage UGC feed. The ID is assigned
// from the wall clock at creation time and is stable for the item's life.
type FeaturedWork struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Description string `json:"description"`
	Likes       string `json:"likes"`
	Comments    string `json:"comments"`
	VideoSrc    string `json:"videoSrc"`
}

// ResultMetric is a single value/label pair inside a case study's results.
type ResultMetric struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CarouselItem is one story inside a phone-carousel case study.
type CarouselItem struct {
	Brand        string         `json:"brand"`
	Goal         string         `json:"goal"`
	Results      []ResultMetric `json:"results"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	ThumbnailURL string         `json:"thumbnailUrl"`
	UploadDate   string         `json:"uploadDate"`
	Duration     string         `json:"duration"`
	EmbedURL     string         `json:"embedUrl"`
}

// CaseStudy is a portfolio case study. Type selects the render layout:
// "standard", "phone", or "phone-carousel". Most fields are optional and
// only meaningful for some layouts.
type CaseStudy struct {
	Type         string         `json:"type"`
	Title        string         `json:"title"`
	Brand        string         `json:"brand,omitempty"`
	Goal         string         `json:"goal,omitempty"`
	Results      []ResultMetric `json:"results,omitempty"`
	Items        []CarouselItem `json:"items,omitempty"`
	Name         string         `json:"name,omitempty"`
	Description  string         `json:"description,omitempty"`
	ThumbnailURL string         `json:"thumbnailUrl,omitempty"`
	UploadDate   string         `json:"uploadDate,omitempty"`
	Duration     string         `json:"duration,omitempty"`
	EmbedURL     string         `json:"embedUrl,omitempty"`
}

// Photo is one image in the portfolio photo grid. Src is a media reference
// (see reference.go for the three wire forms).
type Photo struct {
	Src  string `json:"src"`
	Alt  string `json:"alt"`
	Name string `json:"name"`
}

// BlogPost is a blog article. Unlike the other collections, posts carry a
// human-assigned slug as their identity. Slugs are expected to be unique
// but uniqueness is not enforced here.
type BlogPost struct {
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Excerpt       string `json:"excerpt"`
	FullContent   string `json:"fullContent"`
	FeaturedImage string `json:"featuredImage,omitempty"`
}

// PowerCard is one card in the about-page strengths section.
type PowerCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoSrc    string `json:"videoSrc"`
}

// KeyStat is a key/value site statistic shown on the about page.
type KeyStat struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SiteAsset describes a bundled static asset referenced by the site shell.
type SiteAsset struct {
	Type     string `json:"type"` // "image" or "video"
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Usage    string `json:"usage"`
}

// Document is the full site content: every named collection plus the map
// of named singleton media references. There is no schema beyond this
// shape; validity is whatever the page application expects.
type Document struct {
	TrustedByLogos  []TrustedByLogo   `json:"trustedByLogos"`
	FeaturedWorkUGC []FeaturedWork    `json:"featuredWorkDataUGC"`
	CaseStudies     []CaseStudy       `json:"caseStudiesData"`
	Photos          []Photo           `json:"photosData"`
	BlogPosts       []BlogPost        `json:"blogPosts"`
	PowerCards      []PowerCard       `json:"powerCardsData"`
	KeyStats        []KeyStat         `json:"keyStats"`
	SiteAssets      []SiteAsset       `json:"siteAssets"`
	SingletonAssets map[string]string `json:"siteSingletonAssets"`
}

// Decode parses a serialized content document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode content document: %w", err)
	}
	return &doc, nil
}

// Encode serializes the document the way it is committed to the content
// file: indented JSON, stable field order.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode content document: %w", err)
	}
	return data, nil
}

// Clone returns a deep, independent copy of the document. Mutating the
// copy is never observable through the original and vice versa.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		// The document is plain data with no cycles or custom marshalers;
		// a marshal failure here means memory corruption.
		panic(fmt.Sprintf("content: clone marshal: %v", err))
	}
	var copy Document
	if err := json.Unmarshal(data, &copy); err != nil {
		panic(fmt.Sprintf("content: clone unmarshal: %v", err))
	}
	return &copy
}

// Equal reports whether two documents are equal by value. Either side may
// be nil; two nils are equal.
func Equal(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// PostBySlug returns the blog post with the given slug, or nil. When slugs
// collide the first match wins.
func (d *Document) PostBySlug(slug string) *BlogPost {
	for i := range d.BlogPosts {
		if d.BlogPosts[i].Slug == slug {
			return &d.BlogPosts[i]
		}
	}
	return nil
}
