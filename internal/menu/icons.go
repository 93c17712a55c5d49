package menu

// Icon names are symbolic strings chosen in the admin UI; the console maps
// them to renderable glyph handles here. The mapping is a closed table with
// an explicit fallback, so an unknown name can never break rendering.

// DefaultGlyph is used for unknown or empty icon names.
const DefaultGlyph = "square-outline"

var glyphs = map[string]string{
	"dashboard":   "gauge",
	"users":       "people",
	"user":        "person",
	"roles":       "shield",
	"permissions": "key",
	"menu":        "list",
	"settings":    "gear",
	"reports":     "bar-chart",
	"home":        "house",
	"folder":      "folder",
	"document":    "file-text",
	"calendar":    "calendar",
	"mail":        "envelope",
	"bell":        "bell",
	"search":      "magnifier",
	"logout":      "box-arrow-right",
}

// ResolveGlyph maps a symbolic icon name to its glyph handle, falling back
// to DefaultGlyph.
func ResolveGlyph(name string) string {
	if glyph, ok := glyphs[name]; ok {
		return glyph
	}
	return DefaultGlyph
}

// DecorateGlyphs returns a copy of the forest with every node's Glyph
// resolved from its icon name.
func DecorateGlyphs(forest []Node) []Node {
	decorated := make([]Node, len(forest))
	for i, n := range forest {
		n.Glyph = ResolveGlyph(n.Icon)
		n.SubMenus = DecorateGlyphs(n.SubMenus)
		decorated[i] = n
	}
	return decorated
}
