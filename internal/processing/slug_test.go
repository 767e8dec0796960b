package processing

import (
	"regexp"
	"strings"
	"testing"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugifyURLSafe(t *testing.T) {
	tests := []struct {
		title      string
		wantPrefix string
	}{
		{"Test Clip", "test-clip-"},
		{"Mud Run 2025!", "mud-run-2025-"},
		{"  Rock   Crawling  ", "rock-crawling-"},
		{"4x4 Recovery: Winch & Straps", "4x4-recovery-winch-straps-"},
		{"snake_case_title", "snake-case-title-"},
	}

	for _, tt := range tests {
		slug := Slugify(tt.title)
		if !strings.HasPrefix(slug, tt.wantPrefix) {
			t.Errorf("Slugify(%q) = %q, want prefix %q", tt.title, slug, tt.wantPrefix)
		}
		if !slugPattern.MatchString(slug) {
			t.Errorf("Slugify(%q) = %q is not URL-safe", tt.title, slug)
		}
	}
}

func TestSlugifySameTitleDistinct(t *testing.T) {
	a := Slugify("Test Clip")
	b := Slugify("Test Clip")

	if a == b {
		t.Fatalf("two slugs for the same title should differ, both were %q", a)
	}
	if !strings.HasPrefix(a, "test-clip-") || !strings.HasPrefix(b, "test-clip-") {
		t.Errorf("slugs %q and %q should share the title-derived base", a, b)
	}
}

func TestSlugifyLongTitleTruncated(t *testing.T) {
	title := strings.Repeat("offroad adventure ", 10)
	slug := Slugify(title)

	// base (<= 60) + hyphen + 8-char token
	if len(slug) > maxSlugBaseLength+1+8 {
		t.Errorf("slug %q exceeds the truncated length bound", slug)
	}
	if !slugPattern.MatchString(slug) {
		t.Errorf("truncated slug %q is not URL-safe", slug)
	}
}

func TestSlugifyEmptyAndSymbolTitles(t *testing.T) {
	for _, title := range []string{"", "!!!", "   "} {
		slug := Slugify(title)
		if slug == "" {
			t.Errorf("Slugify(%q) returned an empty slug", title)
		}
		if !slugPattern.MatchString(slug) {
			t.Errorf("Slugify(%q) = %q is not URL-safe", title, slug)
		}
	}
}
