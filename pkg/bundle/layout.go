package bundle

import (
	"fmt"
	"path"
	"strings"
)

// Layout selects where entries live inside the archive.
type Layout string

const (
	// LayoutFlat puts every entry at the archive root.
	LayoutFlat Layout = "flat"
	// LayoutStructured groups entries under <stem>/<category>/ and adds a
	// README.txt.
	LayoutStructured Layout = "structured"
)

// DefaultLayout is used when nothing is configured.
const DefaultLayout = LayoutFlat

// ReadmeName is the generated description added by LayoutStructured.
const ReadmeName = "README.txt"

// ParseLayout resolves a layout name. Empty selects DefaultLayout.
func ParseLayout(name string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultLayout, nil
	case LayoutFlat:
		return LayoutFlat, nil
	case LayoutStructured:
		return LayoutStructured, nil
	default:
		return "", fmt.Errorf("unknown archive layout: %s", name)
	}
}

// Category groups related outputs in the structured layout.
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryWeb      Category = "web"
	CategoryFavicon  Category = "favicon"
)

// EntryName returns the archive path of name for this layout.
func (l Layout) EntryName(stem string, category Category, name string) string {
	if l != LayoutStructured {
		return name
	}
	if category == "" {
		category = CategoryStandard
	}
	return path.Join(stem, string(category), name)
}
