package models

import (
	"testing"
	"time"
)

func TestPackageVisibleDefaultsToTrue(t *testing.T) {
	var p Package
	if !p.Visible() {
		t.Fatal("package without isVisible should be visible")
	}
	hidden := false
	p.IsVisible = &hidden
	if p.Visible() {
		t.Fatal("package with isVisible=false should be hidden")
	}
}

func TestPackageNormalize(t *testing.T) {
	var p Package
	p.Normalize()
	if p.Images == nil || p.Highlights == nil || p.Included == nil || p.Excluded == nil {
		t.Fatal("expected empty slices after Normalize")
	}
	if p.IsVisible == nil || !*p.IsVisible {
		t.Fatal("expected isVisible=true after Normalize")
	}
}

func TestBlogPostPublished(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var b BlogPost
	if b.Published(now) {
		t.Fatal("draft should not be published")
	}
	past := now.Add(-time.Hour)
	b.PublishedAt = &past
	if !b.Published(now) {
		t.Fatal("post with past publishedAt should be published")
	}
	future := now.Add(time.Hour)
	b.PublishedAt = &future
	if b.Published(now) {
		t.Fatal("scheduled post should not be published yet")
	}
}

func TestPasswordResetTokenValid(t *testing.T) {
	now := time.Now()
	tok := PasswordResetToken{ExpiresAt: now.Add(time.Minute)}
	if !tok.Valid(now) {
		t.Fatal("fresh token should be valid")
	}

	expired := PasswordResetToken{ExpiresAt: now.Add(-time.Second)}
	if expired.Valid(now) {
		t.Fatal("expired token should be invalid")
	}

	used := now.Add(-time.Minute)
	consumed := PasswordResetToken{ExpiresAt: now.Add(time.Hour), UsedAt: &used}
	if consumed.Valid(now) {
		t.Fatal("used token should be invalid")
	}
}
