package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/cinescope/internal/browse"
	"github.com/vadimtrunov/cinescope/internal/discover"
)

// Callback data of the navigation buttons.
const (
	navPrev   = "nav:prev"
	navNext   = "nav:next"
	navReload = "nav:reload"
)

// mdV2Replacer escapes special characters for Telegram MarkdownV2.
var mdV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMdV2 escapes a string for safe use in Telegram MarkdownV2.
func EscapeMdV2(s string) string {
	return mdV2Replacer.Replace(s)
}

// FormatBold returns MarkdownV2 bold text.
func FormatBold(s string) string {
	return "*" + EscapeMdV2(s) + "*"
}

// FormatItalic returns MarkdownV2 italic text.
func FormatItalic(s string) string {
	return "_" + EscapeMdV2(s) + "_"
}

// FormatItem renders one listing line, e.g. "Inception (2010) · 2:28:00 · ★ 8.4".
func FormatItem(it discover.Item) string {
	var b strings.Builder
	b.WriteString(it.Title)
	if it.Year > 0 {
		fmt.Fprintf(&b, " (%d)", it.Year)
	}
	b.WriteString(" · ")
	b.WriteString(it.Runtime)
	if it.VoteAverage > 0 {
		fmt.Fprintf(&b, " · ★ %.1f", it.VoteAverage)
	}
	return b.String()
}

// FormatPage renders a listing page as MarkdownV2.
func FormatPage(title string, page discover.Page) string {
	var b strings.Builder
	b.WriteString(FormatBold(title))
	if page.TotalPages > 0 {
		b.WriteString(EscapeMdV2(fmt.Sprintf(" · page %d/%d", page.Number, page.TotalPages)))
	}
	b.WriteString("\n\n")

	switch page.Status {
	case discover.StatusFailed:
		b.WriteString(EscapeMdV2("Couldn't load this page. Tap ↻ to try again."))
		return b.String()
	case discover.StatusEmpty:
		b.WriteString(FormatItalic("No results."))
		return b.String()
	}

	for i, it := range page.Items {
		b.WriteString(EscapeMdV2(strconv.Itoa(i+1) + ". " + FormatItem(it)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTitle renders a title page as MarkdownV2.
func FormatTitle(p *browse.TitlePage) string {
	var b strings.Builder
	d := p.Details
	b.WriteString(FormatBold(d.Title))
	if year := discover.ReleaseYear(d.ReleaseDate); year > 0 {
		b.WriteString(EscapeMdV2(fmt.Sprintf(" (%d)", year)))
	}
	b.WriteString("\n")
	b.WriteString(EscapeMdV2(fmt.Sprintf("%s · %s · ★ %.1f", p.Runtime, p.Rating.Label(), d.VoteAverage)))
	if d.Tagline != "" {
		b.WriteString("\n" + FormatItalic(d.Tagline))
	}
	if d.Overview != "" {
		b.WriteString("\n\n" + EscapeMdV2(d.Overview))
	}
	if len(p.Cast) > 0 {
		names := make([]string, len(p.Cast))
		for i, c := range p.Cast {
			names[i] = c.Name
		}
		b.WriteString("\n\n" + FormatBold("Cast") + "\n" + EscapeMdV2(strings.Join(names, ", ")))
	}
	if url := browse.VideoURL(p.Trailer); url != "" {
		b.WriteString("\n\n" + EscapeMdV2("Trailer: "+url))
	}
	return b.String()
}

// navKeyboard builds the ◀ ↻ ▶ row for a page, or nil when no button applies.
func navKeyboard(page discover.Page) *tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if page.HasPrevious() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("◀", navPrev))
	}
	if page.Status == discover.StatusFailed {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("↻", navReload))
	}
	if page.HasNext() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("▶", navNext))
	}
	if len(row) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(row)
	return &kb
}
