// Package tui implements the terminal rendering surface and the playback loop driving it.
package tui

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/spf13/viper"

	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/icon"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/playback"
	"github.com/marquee-cli/marquee/style"
	"github.com/marquee-cli/marquee/util"
)

var (
	paddingStyle = lipgloss.NewStyle().Padding(1, 2)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 3)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case playingState:
		output = b.viewPlaying()
	case emptyState:
		output = b.viewEmpty()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " Fetching playlist...",
		},
	)
}

func (b *statefulBubble) viewEmpty() string {
	lines := []string{
		style.Title("Marquee"),
		"",
		style.Faint("No media"),
		"",
	}

	if viper.GetBool(key.TUIShowClock) {
		lines = append(lines, icon.Get(icon.Clock)+" "+time.Now().Format("15:04:05"))
	}

	return b.renderLines(true, b.withBanner(lines))
}

func (b *statefulBubble) viewPlaying() string {
	current, ok := b.onScreen.Get()
	if !ok {
		return b.viewEmpty()
	}

	lines := []string{b.headerLine(), ""}

	if outgoing, leaving := b.outgoing.Get(); leaving && b.phase != playback.PhaseIdle {
		lines = append(lines, b.renderLayer(outgoing, false), "")
	}

	// The incoming layer stays hidden for the first beat after an advance.
	if b.revealed {
		lines = append(lines, b.renderLayer(current, true), "")
	}

	lines = append(lines, b.footerLines(current)...)

	return b.renderLines(true, b.withBanner(lines))
}

// headerLine shows the surface title and, mid-handoff, the live transition tag.
func (b *statefulBubble) headerLine() string {
	header := style.Title("Now Showing")
	if b.phase != playback.PhaseIdle && b.transition != playback.StyleNone {
		header += " " + style.Tag(color.New("230"), color.Purple)(b.transition.String()) +
			" " + style.Faint(b.phase.String())
	}
	return header
}

// renderLayer draws one creative card, choreographed by transition and phase.
// Static text cannot animate, so the choreography maps to intensity and offset:
// fades render the moving layer faint, slides indent it, zooms narrow it.
func (b *statefulBubble) renderLayer(item creative.Item, incoming bool) string {
	card := b.renderCard(item)

	if b.phase == playback.PhaseIdle || b.transition == playback.StyleNone {
		return card
	}

	moving := lipgloss.NewStyle()
	mid := b.phase == playback.PhasePreparing || b.phase == playback.PhaseTransitioning

	switch b.transition {
	case playback.StyleFade, playback.StyleCrossfade:
		if incoming && mid || !incoming {
			moving = moving.Faint(true)
		}
	case playback.StyleSlide:
		if mid {
			if incoming {
				moving = moving.MarginLeft(6)
			} else {
				moving = moving.MarginLeft(2).Faint(true)
			}
		}
	case playback.StyleZoom:
		if mid {
			moving = moving.Faint(true)
			if incoming && b.width > 20 {
				moving = moving.Width(b.width * 3 / 4)
			}
		}
	}

	return moving.Render(card)
}

// renderCard draws the creative itself.
func (b *statefulBubble) renderCard(item creative.Item) string {
	category := item.Category()

	title := categoryIcon(category) + " " + style.Bold(displayName(item))
	meta := categoryTag(category) + " " +
		style.Faint(fmt.Sprintf("#%d", item.ID)) + " " +
		style.Faint(playback.Deadline(item).Round(time.Second).String())

	body := b.cardBody(item, category)

	content := strings.Join([]string{title, meta, "", body}, "\n")

	width := b.width - 8
	if width > 0 {
		return cardStyle.Width(width).Render(content)
	}
	return cardStyle.Render(content)
}

func (b *statefulBubble) cardBody(item creative.Item, category creative.Category) string {
	switch category {
	case creative.CategoryVideo:
		body := style.Fg(color.VideoAccent)(item.CreativeURL)
		if viper.GetBool(key.PlayerVideoExternal) {
			body += "\n" + style.Faint("playing on "+viper.GetString(key.Player))
			if item.StartTimeSec != nil && item.EndTimeSec != nil {
				body += style.Faint(fmt.Sprintf(" (%.0fs - %.0fs)", *item.StartTimeSec, *item.EndTimeSec))
			}
		}
		return body
	case creative.CategoryTag:
		return style.Fg(color.TagAccent)(item.CreativeURL) + "\n" + style.Faint("embedded content")
	case creative.CategoryBanner:
		return wrap.String(style.Fg(color.BannerAccent)(item.CreativeURL), max(b.width-12, 16))
	case creative.CategoryPod:
		return style.Fg(color.PodAccent)(item.CreativeURL)
	default:
		return style.Fg(color.ImageAccent)(item.CreativeURL)
	}
}

func (b *statefulBubble) footerLines(current creative.Item) []string {
	var lines []string

	if viper.GetBool(key.TUIShowProgress) {
		elapsed := time.Since(b.shownAt)
		ratio := 0.0
		if b.armed.Deadline > 0 {
			ratio = min(float64(elapsed)/float64(b.armed.Deadline), 1)
		}
		lines = append(lines, b.progressC.ViewAs(ratio))
	}

	position := style.Faint(fmt.Sprintf("%d of %s",
		b.cursor.Index()+1,
		util.Quantify(b.cursor.Len(), "creative", "creatives")))

	if viper.GetBool(key.TUIShowClock) {
		position += "  " + icon.Get(icon.Clock) + " " + time.Now().Format("15:04:05")
	}

	return append(lines, position)
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	body := errorStyle.Render(fmt.Sprintf("Playback halted: %v", b.lastError))

	return b.renderLines(
		true,
		append([]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
		},
			wrap.String(body, b.width),
		),
	)
}

// withBanner prepends the sticky backend banner when one is raised.
func (b *statefulBubble) withBanner(lines []string) []string {
	banner := b.notifier.Banner()
	if banner == "" {
		return lines
	}

	rendered := style.Tag(color.New("230"), color.Red)(icon.Get(icon.Fail) + " " + banner)
	return append([]string{wrap.String(rendered, b.width), ""}, lines...)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}

// displayName derives a human-readable name from the creative URL.
func displayName(item creative.Item) string {
	u, err := url.Parse(item.CreativeURL)
	if err != nil {
		return item.CreativeURL
	}

	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return item.CreativeURL
	}
	return base
}

func categoryIcon(category creative.Category) string {
	switch category {
	case creative.CategoryVideo:
		return icon.Get(icon.Video)
	case creative.CategoryTag:
		return icon.Get(icon.Tag)
	case creative.CategoryBanner:
		return icon.Get(icon.Banner)
	case creative.CategoryPod:
		return icon.Get(icon.Pod)
	default:
		return icon.Get(icon.Image)
	}
}

func categoryTag(category creative.Category) string {
	tag := style.Tag(color.New("230"), categoryColor(category))
	return tag(category.String())
}

func categoryColor(category creative.Category) lipgloss.Color {
	switch category {
	case creative.CategoryVideo:
		return color.VideoAccent
	case creative.CategoryTag:
		return color.TagAccent
	case creative.CategoryBanner:
		return color.BannerAccent
	case creative.CategoryPod:
		return color.PodAccent
	default:
		return color.ImageAccent
	}
}
