package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/cinescope/internal/browse"
	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
)

const (
	unauthorizedMsg = "Sorry, you are not authorized to use this bot."
	errorMsg        = "An error occurred while processing your request. Please try again."
	resetMsg        = "Session reset. Use /browse, /discover or /search to start over."
	noViewMsg       = "Nothing to page through yet. Use /browse, /discover or /search first."

	helpMsg = "Commands:\n" +
		"/browse <category> - browse a category, e.g. /browse movie_popular\n" +
		"/discover <key=value ...> - filter by type, genre, country, year, rating, sort\n" +
		"/search <title> - search movies and series\n" +
		"/title <movie|tv> <id> - show a title\n" +
		"/next, /prev - page through results\n" +
		"/reset - start over"
)

// handleMessage processes an incoming text message.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.logger.Debug("received message",
		slog.Int64("user_id", userID),
	)

	if !b.sessions.isAllowed(userID) {
		b.sendText(chatID, unauthorizedMsg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if !msg.IsCommand() {
		// Bare text is a search.
		b.startSearch(ctx, userID, chatID, text)
		return
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.sendText(chatID, "Welcome to cinescope!\n\n"+helpMsg+"\n\nCategories: "+strings.Join(discover.FixedTokens(), ", "))
	case "browse":
		b.startBrowse(ctx, userID, chatID, args)
	case "discover":
		b.startDiscover(ctx, userID, chatID, args)
	case "search":
		b.startSearch(ctx, userID, chatID, args)
	case "title":
		b.showTitle(ctx, chatID, args)
	case "next":
		b.navigate(ctx, userID, chatID, 0, navNext)
	case "prev":
		b.navigate(ctx, userID, chatID, 0, navPrev)
	case "reset":
		b.sessions.reset(userID)
		b.sendText(chatID, resetMsg)
	default:
		b.sendText(chatID, "Unknown command.\n\n"+helpMsg)
	}
}

// handleCallback processes the inline navigation buttons.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	b.logger.Debug("received callback",
		slog.Int64("user_id", userID),
		slog.String("data", cq.Data),
	)

	// Acknowledge the callback immediately.
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Debug("callback ack failed", slog.String("error", err.Error()))
	}

	if !b.sessions.isAllowed(userID) {
		return
	}

	switch cq.Data {
	case navPrev, navNext, navReload:
		b.navigate(ctx, userID, chatID, cq.Message.MessageID, cq.Data)
	}
}

func (b *Bot) startBrowse(ctx context.Context, userID, chatID int64, token string) {
	if token == "" {
		b.sendText(chatID, "Usage: /browse <category>\nCategories: "+strings.Join(discover.FixedTokens(), ", "))
		return
	}
	view, err := discover.NewSession(token)
	if err != nil {
		b.sendText(chatID, fmt.Sprintf("%s: %q. Try one of: %s", discover.InvalidCategoryTitle, token,
			strings.Join(discover.FixedTokens(), ", ")))
		return
	}
	title := view.Category.TitleWith(b.svc.Taxonomy().Lookup(ctx))
	b.startView(ctx, userID, chatID, view, title)
}

func (b *Bot) startDiscover(ctx context.Context, userID, chatID int64, args string) {
	cs := b.sessions.getOrCreate(userID, b.newSession)
	view, _ := cs.snapshot()

	current := view.Category.MediaType()
	if current == "" {
		current = core.MediaMovie
	}
	f, err := parseDiscoverArgs(ctx, args, current, b.svc.Taxonomy())
	if err != nil {
		b.sendText(chatID, "Invalid filter: "+err.Error())
		return
	}
	if f.MediaType == "" {
		f = f.WithMediaType(current)
	}

	title := "Discover Movies"
	if f.MediaType == core.MediaTV {
		title = "Discover Series"
	}
	b.startView(ctx, userID, chatID, view.WithFilter(f), title+" · "+f.String())
}

func (b *Bot) startSearch(ctx context.Context, userID, chatID int64, query string) {
	if query == "" {
		b.sendText(chatID, "Usage: /search <title>")
		return
	}
	cs := b.sessions.getOrCreate(userID, b.newSession)
	cs.setView(discover.Session{}, fmt.Sprintf("Results for %q", query))
	page, err := cs.paginator.FetchPage(ctx, browse.SearchQuery(query), 1)
	b.showPage(chatID, 0, cs, page, err)
}

// startView points the user's paginator at a view and shows its first page.
func (b *Bot) startView(ctx context.Context, userID, chatID int64, view discover.Session, title string) {
	q, err := view.Query()
	if err != nil {
		b.sendText(chatID, "Invalid filter: "+err.Error())
		return
	}
	cs := b.sessions.getOrCreate(userID, b.newSession)
	cs.setView(view, title)
	page, err := cs.paginator.FetchPage(ctx, q, 1)
	b.showPage(chatID, 0, cs, page, err)
}

// navigate pages the user's current view. messageID > 0 edits that message.
func (b *Bot) navigate(ctx context.Context, userID, chatID int64, messageID int, action string) {
	cs, ok := b.sessions.lookup(userID)
	if !ok || cs.paginator.Query().IsZero() {
		b.sendText(chatID, noViewMsg)
		return
	}

	var (
		page discover.Page
		err  error
	)
	switch action {
	case navNext:
		page, err = cs.paginator.NextPage(ctx)
	case navPrev:
		page, err = cs.paginator.PreviousPage(ctx)
	default:
		page, err = cs.paginator.Reload(ctx)
	}
	b.showPage(chatID, messageID, cs, page, err)
}

// showPage renders a fetched page. Stale results are dropped silently.
func (b *Bot) showPage(chatID int64, messageID int, cs *chatSession, page discover.Page, err error) {
	if errors.Is(err, discover.ErrStale) {
		return
	}
	if err != nil {
		b.logger.Warn("page fetch failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
	if page.Status == "" {
		b.sendText(chatID, errorMsg)
		return
	}

	_, title := cs.snapshot()
	text := FormatPage(title, page)
	kb := navKeyboard(page)
	if messageID > 0 {
		b.editMarkdown(chatID, messageID, text, kb)
		return
	}
	b.sendMarkdown(chatID, text, plainPage(title, page), kb)
}

func (b *Bot) showTitle(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.sendText(chatID, "Usage: /title <movie|tv> <id>")
		return
	}
	mediaType, err := core.ParseMediaType(fields[0])
	if err != nil {
		b.sendText(chatID, err.Error())
		return
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil || id <= 0 {
		b.sendText(chatID, "id must be a positive integer")
		return
	}

	page, err := b.svc.Title(ctx, mediaType, id)
	if err != nil {
		b.logger.Warn("title fetch failed", slog.Int("id", id), slog.String("error", err.Error()))
		b.sendText(chatID, errorMsg)
		return
	}
	b.sendMarkdown(chatID, FormatTitle(page), page.Details.Title, nil)
}

// plainPage is the fallback rendering when MarkdownV2 is rejected.
func plainPage(title string, page discover.Page) string {
	var b strings.Builder
	b.WriteString(title)
	for i, it := range page.Items {
		fmt.Fprintf(&b, "\n%d. %s", i+1, FormatItem(it))
	}
	return b.String()
}

// parseDiscoverArgs reads "key=value" pairs. Genre and country values may be
// names; they are resolved through the taxonomy.
func parseDiscoverArgs(ctx context.Context, args string, current core.MediaType, tax *browse.Taxonomy) (discover.FilterState, error) {
	raw := url.Values{}
	for _, field := range strings.Fields(args) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || value == "" {
			return discover.FilterState{}, fmt.Errorf("expected key=value, got %q", field)
		}
		raw.Add(strings.ToLower(key), value)
	}

	mediaType := current
	if t := raw.Get("type"); t != "" {
		mt, err := core.ParseMediaType(t)
		if err != nil {
			return discover.FilterState{}, err
		}
		mediaType = mt
	}

	values := url.Values{}
	for key, vs := range raw {
		for _, v := range vs {
			for _, part := range strings.Split(v, ",") {
				resolved, err := resolveFacet(ctx, key, part, mediaType, tax)
				if err != nil {
					return discover.FilterState{}, err
				}
				values.Add(key, resolved)
			}
		}
	}
	return discover.FilterFromValues(values)
}

func resolveFacet(ctx context.Context, key, value string, mediaType core.MediaType, tax *browse.Taxonomy) (string, error) {
	switch key {
	case "genre":
		// science_fiction reads as "science fiction".
		id, err := tax.ResolveGenre(ctx, mediaType, strings.ReplaceAll(value, "_", " "))
		if err != nil {
			return "", err
		}
		return strconv.Itoa(id), nil
	case "country":
		return tax.ResolveCountry(ctx, strings.ReplaceAll(value, "_", " "))
	}
	return value, nil
}
