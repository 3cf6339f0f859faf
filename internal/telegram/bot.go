package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"foodflow/internal/app"
	"foodflow/internal/config"
	"foodflow/internal/metrics"
	"foodflow/internal/recipe"
)

const toggleAction = "chk"

// Sender is the part of the Telegram API the bot talks to.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API and the meal-planning App.
type Bot struct {
	api     Sender
	app     *app.App
	stats   *metrics.Store // optional
	allowed map[int64]bool
	dataDir string
	started time.Time
	log     logrus.FieldLogger

	// Webhook updates run on ctx and are counted in inflight until they finish.
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	closing  bool
	inflight sync.WaitGroup
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App, stats *metrics.Store, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.WithField("account", api.Self.UserName).Info("authorized on telegram")

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.WithField("response", resp.Description).Info("webhook set")

	return New(api, a, stats, cfg, log), nil
}

// New builds a Bot around an existing Sender.
func New(api Sender, a *app.App, stats *metrics.Store, cfg *config.Config, log logrus.FieldLogger) *Bot {
	allowed := make(map[int64]bool, len(cfg.TelegramAllowedUserIDs))
	for _, id := range cfg.TelegramAllowedUserIDs {
		allowed[id] = true
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		api:     api,
		app:     a,
		stats:   stats,
		allowed: allowed,
		dataDir: cfg.StorageDir,
		started: time.Now(),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Shutdown stops accepting webhook updates and waits for the ones in flight.
// If ctx ends first, their context is cancelled and ctx's error is returned.
// Call it after the HTTP server has shut down and before closing storage.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.closing = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.cancel()
		return nil
	case <-ctx.Done():
		b.cancel()
		return fmt.Errorf("failed to drain telegram updates: %w", ctx.Err())
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", b.handleHealth)
}

func (b *Bot) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(metrics.CollectHealth(b.dataDir, b.started))
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.log.WithError(err).Warn("error parsing update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	if b.closing {
		b.mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	b.inflight.Add(1)
	b.mu.Unlock()

	w.WriteHeader(http.StatusOK)

	// Telegram retries until it gets a response, so reply first and work after.
	go func() {
		defer b.inflight.Done()
		b.handleUpdate(b.ctx, update)
	}()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From == nil || !b.isAllowed(q.From) {
			return
		}
		b.handleCallbackQuery(ctx, q)
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || !b.isAllowed(msg.From) {
			return
		}
		b.processMessage(ctx, msg)
	}
}

func (b *Bot) isAllowed(u *tgbotapi.User) bool {
	if b.allowed[u.ID] {
		return true
	}
	b.log.WithFields(logrus.Fields{"user_id": u.ID, "username": u.UserName}).Warn("unauthorized access attempt")
	return false
}

// parseCommand splits "/diet@FoodFlowBot vegan" into "diet" and "vegan".
func parseCommand(text string) (cmd, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	cmd, args, _ = strings.Cut(text[1:], " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args), true
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd, args, ok := parseCommand(msg.Text)
	if !ok {
		b.sendMarkdown(chatID, helpText)
		return
	}

	b.log.WithFields(logrus.Fields{"command": cmd, "user_id": msg.From.ID}).Debug("handling command")

	switch cmd {
	case "start":
		b.handleStart(ctx, chatID, args)
	case "diet":
		b.handleDiet(ctx, chatID, args)
	case "skill":
		b.handleSkill(ctx, chatID, args)
	case "plan":
		if plan, ok := b.app.CurrentPlan(); ok {
			b.sendMarkdown(chatID, formatPlanMarkdown(plan))
			return
		}
		b.generate(ctx, chatID, b.app.GeneratePlan)
	case "regenerate":
		b.generate(ctx, chatID, b.app.RegeneratePlan)
	case "fetch":
		b.generate(ctx, chatID, b.app.FetchPlan)
	case "random":
		b.handleRandom(ctx, chatID)
	case "groceries":
		b.sendGroceries(chatID)
	case "reset":
		if err := b.app.ClearData(ctx); err != nil {
			b.log.WithError(err).Error("failed to clear user data")
			b.sendError(chatID, "Error clearing your data", err)
			return
		}
		b.sendMarkdown(chatID, "🧹 *All data cleared.*\nSend /start to set up again.")
	case "stats":
		b.handleStats(ctx, chatID)
	default:
		b.sendMarkdown(chatID, helpText)
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, args string) {
	if args == "" {
		if b.app.HasCompletedOnboarding() {
			b.sendMarkdown(chatID, formatPreferences(b.app.Preferences())+"\n\n"+helpText)
			return
		}
		b.sendMarkdown(chatID, welcomeText())
		return
	}

	fields := strings.Fields(args)
	diet, err := recipe.ParseDiet(strings.Join(fields[:len(fields)-1], " "))
	if len(fields) < 2 || err != nil {
		b.sendMarkdown(chatID, welcomeText())
		return
	}
	skill, err := recipe.ParseSkill(fields[len(fields)-1])
	if err != nil {
		b.sendMarkdown(chatID, welcomeText())
		return
	}

	res, err := b.app.CompleteOnboarding(ctx, diet, skill)
	if err != nil {
		b.sendError(chatID, "Error generating plan", err)
		return
	}
	b.sendMarkdown(chatID, "🎉 *You're all set!*\n\n"+formatPreferences(b.app.Preferences()))
	b.sendMarkdown(chatID, formatResult(res))
}

func (b *Bot) handleDiet(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.sendMarkdown(chatID, formatPreferences(b.app.Preferences())+"\n\n"+dietOptions())
		return
	}
	d, err := recipe.ParseDiet(args)
	if err != nil {
		b.sendMarkdown(chatID, "❓ Unknown diet.\n\n"+dietOptions())
		return
	}
	prefs, err := b.app.SetDiet(ctx, d)
	if err != nil {
		b.sendError(chatID, "Error saving preferences", err)
		return
	}
	b.sendMarkdown(chatID, "✅ Saved.\n\n"+formatPreferences(prefs)+"\n\nSend /regenerate for a new plan.")
}

func (b *Bot) handleSkill(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.sendMarkdown(chatID, formatPreferences(b.app.Preferences())+"\n\n"+skillOptions())
		return
	}
	s, err := recipe.ParseSkill(args)
	if err != nil {
		b.sendMarkdown(chatID, "❓ Unknown skill level.\n\n"+skillOptions())
		return
	}
	prefs, err := b.app.SetSkill(ctx, s)
	if err != nil {
		b.sendError(chatID, "Error saving preferences", err)
		return
	}
	b.sendMarkdown(chatID, "✅ Saved.\n\n"+formatPreferences(prefs)+"\n\nSend /regenerate for a new plan.")
}

func (b *Bot) generate(ctx context.Context, chatID int64, run func(context.Context) (app.Result, error)) {
	sent, err := b.api.Send(markdown(chatID, "🧑‍🍳 *Cooking up your week...*"))
	if err != nil {
		b.log.WithError(err).Warn("failed to send initial reply")
		return
	}

	res, err := run(ctx)
	var text string
	switch {
	case errors.Is(err, app.ErrFetchUnavailable):
		text = "⚠️ Recipe fetching is not configured."
	case err != nil:
		b.log.WithError(err).Error("error generating plan")
		text = formatError("Error generating plan", err)
	default:
		text = formatResult(res)
	}

	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

func (b *Bot) handleRandom(ctx context.Context, chatID int64) {
	r, err := b.app.RandomRecipe(ctx)
	switch {
	case errors.Is(err, app.ErrFetchUnavailable):
		b.sendMarkdown(chatID, "⚠️ Recipe fetching is not configured.")
	case err != nil:
		b.log.WithError(err).Warn("random recipe fetch failed")
		b.sendError(chatID, "Could not fetch a recipe", err)
	default:
		b.sendMarkdown(chatID, formatRecipe(r))
	}
}

func (b *Bot) sendGroceries(chatID int64) {
	list, planID := b.app.Groceries()
	if list.Len() == 0 {
		b.sendMarkdown(chatID, "🛒 Your grocery list is empty. Send /plan first.")
		return
	}
	msg := markdown(chatID, formatGroceries(list))
	msg.ReplyMarkup = groceryKeyboard(list, planID)
	b.send(msg)
}

const staleList = "This list is out of date, send /groceries again."

func (b *Bot) handleCallbackQuery(_ context.Context, q *tgbotapi.CallbackQuery) {
	parts := strings.Split(q.Data, "|")
	if len(parts) != 3 || parts[0] != toggleAction {
		b.answer(q.ID, "")
		return
	}

	list, planID := b.app.Groceries()
	if planID == "" || parts[1] != planTag(planID) {
		b.answer(q.ID, staleList)
		return
	}

	idx, err := strconv.Atoi(parts[2])
	items := list.Items()
	if err != nil || idx < 0 || idx >= len(items) {
		b.answer(q.ID, staleList)
		return
	}

	text := items[idx].Normalized
	checked, err := list.Toggle(text)
	if err != nil {
		b.answer(q.ID, staleList)
		return
	}
	if checked {
		b.answer(q.ID, "✅ "+text)
	} else {
		b.answer(q.ID, "⬜ "+text)
	}

	if q.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(q.Message.Chat.ID, q.Message.MessageID, formatGroceries(list), groceryKeyboard(list, planID))
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	var summary []metrics.DailySummary
	if b.stats != nil {
		var err error
		if summary, err = b.stats.GetDailySummary(ctx, 7); err != nil {
			b.log.WithError(err).Warn("failed to fetch generation metrics")
			b.sendMarkdown(chatID, "❌ Error fetching metrics.")
			return
		}
	}
	b.sendMarkdown(chatID, formatStats(summary, metrics.CollectHealth(b.dataDir, b.started)))
}

func (b *Bot) answer(queryID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		b.log.WithError(err).Warn("failed to answer callback")
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	b.send(markdown(chatID, text))
}

func (b *Bot) sendError(chatID int64, title string, err error) {
	b.sendMarkdown(chatID, formatError(title, err))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.WithError(err).Warn("failed to send telegram message")
	}
}

func markdown(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}
