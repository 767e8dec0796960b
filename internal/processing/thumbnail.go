package processing

import (
	"fmt"
	"strings"
)

// PlaceholderThumbnail renders a lightweight SVG used as the thumbnail
// until a real frame grab replaces it. The title is embedded (escaped)
// so placeholders are distinguishable in the gallery grid.
func PlaceholderThumbnail(title string) []byte {
	label := strings.TrimSpace(title)
	if label == "" {
		label = "Video"
	}
	if runes := []rune(label); len(runes) > 40 {
		label = string(runes[:40]) + "…"
	}
	label = escapeXML(label)

	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="1280" height="720" viewBox="0 0 1280 720">
  <defs>
    <linearGradient id="bg" x1="0" y1="0" x2="1" y2="1">
      <stop offset="0%%" stop-color="#1f2937"/>
      <stop offset="100%%" stop-color="#111827"/>
    </linearGradient>
  </defs>
  <rect width="1280" height="720" fill="url(#bg)"/>
  <circle cx="640" cy="330" r="80" fill="#f97316" opacity="0.9"/>
  <polygon points="615,290 615,370 695,330" fill="#ffffff"/>
  <text x="640" y="480" font-family="sans-serif" font-size="40" fill="#e5e7eb" text-anchor="middle">%s</text>
</svg>
`, label)

	return []byte(svg)
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
