package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"crypto-analytics/internal/derive"
	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

const commandTimeout = 20 * time.Second

// Dashboard is the per-chat session the bot answers from.
type Dashboard interface {
	Snapshot(ctx context.Context, days int, sort domain.TableSort) service.View
	ToggleBoth(ctx context.Context) domain.Preference
	Retry(ctx context.Context, days int) error
	DefaultDays() int
}

const (
	defaultMaxSessions = 1000
	defaultIdleTTL     = 24 * time.Hour
)

type chatSession struct {
	dashboard Dashboard
	lastUsed  time.Time
}

// Bot keeps one dashboard session per chat. Sessions idle for longer than
// idleTTL are dropped, and the least recently used one makes room once
// maxSessions chats are open.
type Bot struct {
	tracer      trace.Tracer
	newSession  func() Dashboard
	now         func() time.Time
	maxSessions int
	idleTTL     time.Duration

	mu       sync.Mutex
	sessions map[int64]*chatSession
}

func New(tracer trace.Tracer, newSession func() Dashboard) *Bot {
	return &Bot{
		tracer:      tracer,
		newSession:  newSession,
		now:         time.Now,
		maxSessions: defaultMaxSessions,
		idleTTL:     defaultIdleTTL,
		sessions:    make(map[int64]*chatSession),
	}
}

func (b *Bot) session(chatID int64) Dashboard {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if s, ok := b.sessions[chatID]; ok {
		s.lastUsed = now
		return s.dashboard
	}

	b.evictLocked(now)
	s := &chatSession{dashboard: b.newSession(), lastUsed: now}
	b.sessions[chatID] = s
	return s.dashboard
}

func (b *Bot) evictLocked(now time.Time) {
	for id, s := range b.sessions {
		if now.Sub(s.lastUsed) > b.idleTTL {
			delete(b.sessions, id)
		}
	}
	for len(b.sessions) >= b.maxSessions {
		var (
			oldestID int64
			oldest   time.Time
			found    bool
		)
		for id, s := range b.sessions {
			if !found || s.lastUsed.Before(oldest) {
				oldestID, oldest, found = id, s.lastUsed, true
			}
		}
		if !found {
			return
		}
		delete(b.sessions, oldestID)
		log.Printf("telegram: evicted session for chat %d", oldestID)
	}
}

// load waits for the markets batch and the window. Failures are logged and
// reflected by the snapshot's error flags.
func (b *Bot) load(ctx context.Context, d Dashboard, days int) service.View {
	if err := d.Retry(ctx, days); err != nil {
		log.Printf("telegram: load failed: %v", err)
	}
	return d.Snapshot(ctx, days, domain.DefaultTableSort())
}

func unavailableText(v service.View) string {
	if v.MarketsError != "" || v.HistoryError != "" {
		return v.Labels.FetchFailed
	}
	return v.Labels.NoData
}

// SummaryText renders the summary cards of the chat's session.
func (b *Bot) SummaryText(ctx context.Context, chatID int64) string {
	ctx, span := b.tracer.Start(ctx, "telegram.summary")
	defer span.End()
	span.SetAttributes(attribute.Int64("chat_id", chatID))

	d := b.session(chatID)
	v := b.load(ctx, d, d.DefaultDays())
	if v.Summary == nil {
		return unavailableText(v)
	}

	lines := []string{v.Labels.Title, ""}
	for _, c := range v.Summary.Cards() {
		line := fmt.Sprintf("%s: %s", c.Title, c.Value)
		if c.Subtitle != "" {
			line += " (" + c.Subtitle + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// TopText renders the market cap breakdown.
func (b *Bot) TopText(ctx context.Context, chatID int64) string {
	ctx, span := b.tracer.Start(ctx, "telegram.top")
	defer span.End()

	d := b.session(chatID)
	v := b.load(ctx, d, d.DefaultDays())
	if len(v.Breakdown) == 0 {
		return unavailableText(v)
	}

	lines := []string{v.Labels.TopFive, ""}
	for i, s := range v.Breakdown {
		lines = append(lines, fmt.Sprintf("%d. %s %s (%.1f%%)", i+1, strings.ToUpper(s.Symbol), s.Label, s.Share*100))
	}
	return strings.Join(lines, "\n")
}

// HistoryText renders the tracked asset's price range over a window. The
// window defaults to the session's default when args is empty and must be one
// of the offered windows otherwise.
func (b *Bot) HistoryText(ctx context.Context, chatID int64, args []string) string {
	ctx, span := b.tracer.Start(ctx, "telegram.history")
	defer span.End()

	d := b.session(chatID)
	days := d.DefaultDays()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || !domain.IsHistoryWindow(n) {
			return fmt.Sprintf("Usage: /history <days>\nSupported: %s", joinInts(domain.HistoryWindows))
		}
		days = n
	}
	span.SetAttributes(attribute.Int("days", days))

	v := b.load(ctx, d, days)
	if len(v.Chart) == 0 {
		return unavailableText(v)
	}

	pref := v.Preference
	first, last := v.Chart[0], v.Chart[len(v.Chart)-1]
	lo, hi, _ := derive.SeriesRange(v.Chart)
	lines := []string{
		v.ChartTitle,
		"",
		fmt.Sprintf("%s: %s", first.Label, derive.FormatCurrency(first.Value, pref.Currency, pref.Language, derive.PriceDecimals)),
		fmt.Sprintf("%s: %s", last.Label, derive.FormatCurrency(last.Value, pref.Currency, pref.Language, derive.PriceDecimals)),
		fmt.Sprintf("↓ %s  ↑ %s",
			derive.FormatCurrency(lo, pref.Currency, pref.Language, derive.PriceDecimals),
			derive.FormatCurrency(hi, pref.Currency, pref.Language, derive.PriceDecimals)),
	}
	if first.Value > 0 {
		lines = append(lines, derive.FormatPercent((last.Value-first.Value)/first.Value*100))
	}
	return strings.Join(lines, "\n")
}

// ToggleText flips the chat's language and currency.
func (b *Bot) ToggleText(ctx context.Context, chatID int64) string {
	ctx, span := b.tracer.Start(ctx, "telegram.toggle")
	defer span.End()

	p := b.session(chatID).ToggleBoth(ctx)
	return fmt.Sprintf("%s: %s · %s", derive.Text(p.Language, derive.MsgToggleLanguage), strings.ToUpper(string(p.Language)), p.Currency)
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ", ")
}

// Register wires the bot commands onto tb.
func (b *Bot) Register(tb *tele.Bot) {
	tb.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	tb.Handle("/summary", b.reply(func(ctx context.Context, c tele.Context) string {
		return b.SummaryText(ctx, c.Chat().ID)
	}))
	tb.Handle("/top", b.reply(func(ctx context.Context, c tele.Context) string {
		return b.TopText(ctx, c.Chat().ID)
	}))
	tb.Handle("/history", b.reply(func(ctx context.Context, c tele.Context) string {
		return b.HistoryText(ctx, c.Chat().ID, c.Args())
	}))
	tb.Handle("/toggle", b.reply(func(ctx context.Context, c tele.Context) string {
		return b.ToggleText(ctx, c.Chat().ID)
	}))
}

func (b *Bot) reply(fn func(context.Context, tele.Context) string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return c.Send(fn(ctx, c))
	}
}

// StartTelegramBot starts long polling in the background. An empty token
// leaves the bot disabled.
func StartTelegramBot(token string, b *Bot) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	tb, err := tele.NewBot(pref)
	if err != nil {
		log.Printf("failed to create Telegram bot: %v", err)
		return
	}
	b.Register(tb)

	log.Println("Telegram bot started")
	go tb.Start()
}
