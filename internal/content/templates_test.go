// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import "testing"

func TestNewBlogPostSlug(t *testing.T) {
	post := NewBlogPost("Hello, World! Again")
	if post.Slug != "hello-world-again" {
		t.Errorf("unexpected slug %q", post.Slug)
	}
	if post.Title != "Hello, World! Again" {
		t.Errorf("unexpected title %q", post.Title)
	}

	blank := NewBlogPost("")
	if blank.Slug == "" || blank.Title == "" {
		t.Error("blank title should yield placeholder post")
	}
}

func TestNewFeaturedWorkID(t *testing.T) {
	a := NewFeaturedWork()
	if a.ID <= 0 {
		t.Errorf("expected time-derived id, got %d", a.ID)
	}
}

func TestTemplatesAreIndependent(t *testing.T) {
	a := NewCaseStudy()
	b := NewCaseStudy()
	a.Results[0].Value = "changed"
	if b.Results[0].Value == "changed" {
		t.Error("case study templates share result slices")
	}
}
