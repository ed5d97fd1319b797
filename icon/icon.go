// Package icon provides a flexible multi-variant rendering engine for UI symbols and feedback indicators.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, or Unicode squares
// depending on user preference.
package icon

import (
	"github.com/spf13/viper"

	"github.com/marquee-cli/marquee/key"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, squares}
}

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	squares string
}

// Get retrieves the visual representation for the receiver Def based on the global icons variant configuration.
func (d iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Icon identifies a registered UI symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Image
	Video
	Tag
	Banner
	Pod
	Clock
)

var icons = map[Icon]iconDef{
	Success:  {emoji: "✅", nerd: "", plain: "[ok]", squares: "🟩"},
	Fail:     {emoji: "❌", nerd: "", plain: "[!]", squares: "🟥"},
	Progress: {emoji: "⏳", nerd: "", plain: "...", squares: "🟨"},
	Image:    {emoji: "🖼️", nerd: "", plain: "[img]", squares: "🟦"},
	Video:    {emoji: "🎬", nerd: "", plain: "[vid]", squares: "🟪"},
	Tag:      {emoji: "🌐", nerd: "", plain: "[tag]", squares: "🟧"},
	Banner:   {emoji: "🪧", nerd: "", plain: "[bnr]", squares: "⬜"},
	Pod:      {emoji: "📺", nerd: "", plain: "[pod]", squares: "⬛"},
	Clock:    {emoji: "🕒", nerd: "", plain: "[t]", squares: "🕒"},
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	return icons[i].Get()
}
