// Package telegram gives linked users their weekly menu and shopping list
// from a Telegram chat.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/config"
	"comida-a-casa/internal/dates"
	"comida-a-casa/internal/menu"
	"comida-a-casa/internal/metrics"
	"comida-a-casa/internal/persistence"
	"comida-a-casa/internal/planner"
	"comida-a-casa/internal/profile"
	"comida-a-casa/internal/recipe"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	menuDays = 7
	// promptTokenAlert is the prompt size above which the admin is warned.
	promptTokenAlert = 4000
	requestTimeout   = 2 * time.Minute
)

const (
	helpText = "👋 *ComidaACasa*\n\n" +
		"/menu [preferencias] — menú de 7 días a partir de mañana\n" +
		"/compra — lista de la compra del último menú\n" +
		"/guardar — guarda el último menú\n\n" +
		"También puedes enviarme el enlace de una receta para guardarla."
	noPlanText = "Primero pide un menú con /menu."
)

// Messenger sends messages to Telegram. *tgbotapi.BotAPI implements it.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Planner produces menus and shopping lists.
type Planner interface {
	GenerateMenuPlan(ctx context.Context, req planner.MenuRequest) (planner.MenuResult, error)
	GenerateShoppingList(ctx context.Context, plan menu.Plan, profiles []profile.Profile) (planner.ShoppingResult, error)
}

// Clipper turns a recipe web page into a draft.
type Clipper interface {
	Clip(ctx context.Context, url string) (recipe.Draft, error)
}

// Deps are the services the bot works with.
type Deps struct {
	Store        *persistence.Store
	Planner      Planner
	Clipper      Clipper
	Chats        *ChatSessions
	Metrics      *metrics.Store
	DatabasePath string
	Logger       *zap.Logger
}

// Bot wraps the Telegram API and the planner.
type Bot struct {
	api     Messenger
	users   map[int64]string
	adminID int64
	deps    Deps
	logger  *zap.Logger

	now      func() time.Time
	dispatch func(func())
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	b := newBot(api, cfg.TelegramUsers, cfg.AdminTelegramID, deps)
	b.logger.Info("Authorized on account", zap.String("username", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url: %w", err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	b.logger.Info("Webhook set", zap.String("description", resp.Description))
	return b, nil
}

func newBot(api Messenger, users map[int64]string, adminID int64, deps Deps) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:      api,
		users:    users,
		adminID:  adminID,
		deps:     deps,
		logger:   logger,
		now:      time.Now,
		dispatch: func(f func()) { go f() },
	}
}

// Handler serves the webhook and a health check.
func (b *Bot) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("Error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	uid, ok := b.users[msg.From.ID]
	if !ok {
		b.logger.Warn("Unauthorized access attempt",
			zap.Int64("telegram_id", msg.From.ID), zap.String("username", msg.From.UserName))
		return
	}

	b.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		b.processMessage(ctx, msg, uid)
	})
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message, uid string) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "menu":
			b.handleMenu(ctx, msg, uid, msg.CommandArguments())
		case "compra":
			b.handleShopping(ctx, msg, uid)
		case "guardar":
			b.handleSave(ctx, msg, uid)
		case "estado":
			b.handleStatus(ctx, msg)
		default:
			b.reply(msg.Chat.ID, helpText)
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClip(ctx, msg, uid, text)
		return
	}
	if text == "" {
		b.reply(msg.Chat.ID, helpText)
		return
	}
	b.handleMenu(ctx, msg, uid, text)
}

func (b *Bot) reply(chatID int64, text string) (tgbotapi.Message, error) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(m)
	if err != nil {
		b.logger.Warn("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return sent, err
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	e := tgbotapi.NewEditMessageText(chatID, messageID, text)
	e.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(e); err != nil {
		b.logger.Warn("Failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) fail(chatID int64, messageID int, op string, err error) {
	b.logger.Error("Chat request failed", zap.String("op", op), zap.Int64("chat_id", chatID), zap.Error(err))
	b.edit(chatID, messageID, "❌ "+escape(apperr.UserMessage(err)))
}

func (b *Bot) handleMenu(ctx context.Context, msg *tgbotapi.Message, uid, preferences string) {
	chatID := msg.Chat.ID
	status, err := b.reply(chatID, "🧑‍🍳 *Preparando tu menú...*")
	if err != nil {
		return
	}

	col := b.deps.Store.ForUser(uid)
	profiles, err := col.ListProfiles(ctx)
	if err != nil {
		b.fail(chatID, status.MessageID, "menu", err)
		return
	}
	recipes, err := col.ListRecipes(ctx)
	if err != nil {
		b.fail(chatID, status.MessageID, "menu", err)
		return
	}
	start, err := dates.ParseKey(dates.Tomorrow(b.now()))
	if err != nil {
		b.fail(chatID, status.MessageID, "menu", err)
		return
	}

	res, err := b.deps.Planner.GenerateMenuPlan(ctx, planner.MenuRequest{
		Start:       start,
		Days:        menuDays,
		Preferences: strings.TrimSpace(preferences),
		Profiles:    profiles,
		Recipes:     recipes,
	})
	if res.Meta.Usage.PromptTokens > promptTokenAlert {
		b.sendAdminAlert(fmt.Sprintf("⚠️ *Prompt demasiado grande*\nOperación: %s\nModelo: %s\nTokens: %d",
			escape(res.Meta.Operation), escape(res.Meta.Usage.Model), res.Meta.Usage.PromptTokens))
	}
	if err != nil {
		b.fail(chatID, status.MessageID, "menu", err)
		return
	}

	if err := b.deps.Chats.SavePlan(ctx, chatID, uid, res.Plan); err != nil {
		b.logger.Warn("Failed to remember chat plan", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	b.edit(chatID, status.MessageID, formatPlanMarkdown(res.Plan))
}

func (b *Bot) handleShopping(ctx context.Context, msg *tgbotapi.Message, uid string) {
	chatID := msg.Chat.ID
	sess, err := b.deps.Chats.Get(ctx, chatID)
	if err != nil || sess == nil || len(sess.Plan) == 0 {
		if err != nil {
			b.logger.Warn("Failed to load chat session", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		b.reply(chatID, noPlanText)
		return
	}
	if len(sess.Shopping) > 0 {
		b.reply(chatID, formatShoppingMarkdown(sess.Shopping))
		return
	}

	status, err := b.reply(chatID, "🛒 *Preparando la lista de la compra...*")
	if err != nil {
		return
	}
	profiles, err := b.deps.Store.ForUser(uid).ListProfiles(ctx)
	if err != nil {
		b.fail(chatID, status.MessageID, "shopping", err)
		return
	}
	res, err := b.deps.Planner.GenerateShoppingList(ctx, sess.Plan, profiles)
	if err != nil {
		b.fail(chatID, status.MessageID, "shopping", err)
		return
	}
	if err := b.deps.Chats.SaveShopping(ctx, chatID, res.Items); err != nil {
		b.logger.Warn("Failed to remember shopping list", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	b.edit(chatID, status.MessageID, formatShoppingMarkdown(res.Items))
}

func (b *Bot) handleSave(ctx context.Context, msg *tgbotapi.Message, uid string) {
	chatID := msg.Chat.ID
	sess, err := b.deps.Chats.Get(ctx, chatID)
	if err != nil || sess == nil || len(sess.Plan) == 0 {
		b.reply(chatID, noPlanText)
		return
	}
	saved, err := b.deps.Store.ForUser(uid).SaveMenu(ctx, sess.Plan)
	if err != nil {
		b.logger.Error("Failed to save menu", zap.String("user_id", uid), zap.Error(err))
		b.reply(chatID, "❌ "+escape(apperr.UserMessage(err)))
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ *Menú guardado*\nDel %s al %s.",
		escape(dates.MustFormatDisplay(saved.StartDate)), escape(dates.MustFormatDisplay(saved.EndDate))))
}

func (b *Bot) handleClip(ctx context.Context, msg *tgbotapi.Message, uid, url string) {
	chatID := msg.Chat.ID
	status, err := b.reply(chatID, "✂️ *Guardando la receta...*")
	if err != nil {
		return
	}
	draft, err := b.deps.Clipper.Clip(ctx, url)
	if err != nil {
		b.fail(chatID, status.MessageID, "clip", err)
		return
	}
	added, err := b.deps.Store.ForUser(uid).AddRecipe(ctx, draft)
	if err != nil {
		b.fail(chatID, status.MessageID, "clip", err)
		return
	}
	b.edit(chatID, status.MessageID, fmt.Sprintf("✅ *Receta guardada*\n\n*Nombre:* %s\n*Categoría:* %s",
		escape(added.Name), escape(string(added.Category))))
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	if b.adminID == 0 || msg.From.ID != b.adminID {
		b.reply(msg.Chat.ID, "⛔ *Acceso denegado*: solo para administradores.")
		return
	}
	usage, err := b.deps.Metrics.GetDailyUsage(ctx, 7)
	if err != nil {
		b.logger.Error("Failed to fetch metrics", zap.Error(err))
		b.reply(msg.Chat.ID, "❌ No se pudieron obtener las métricas.")
		return
	}
	health, err := b.deps.Metrics.Health(ctx, b.deps.DatabasePath)
	if err != nil {
		b.logger.Error("Failed to collect health", zap.Error(err))
		b.reply(msg.Chat.ID, "❌ No se pudo leer el estado de la base de datos.")
		return
	}
	b.reply(msg.Chat.ID, formatStatusMarkdown(usage, health))
}

func (b *Bot) sendAdminAlert(text string) {
	if b.adminID == 0 {
		return
	}
	b.reply(b.adminID, text)
}
