package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-tracker/internal/report"
	"task-tracker/internal/service"
)

// sender is the part of the Telegram API the handlers talk to.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services groups the core operations the bot exposes.
type Services struct {
	Auth       *service.AuthService
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Reports    *service.ReportService
}

// Bot is a chat front end over the task tracker core. The core keeps a single
// process-wide session, so one owner chat drives it.
type Bot struct {
	client        *tgbotapi.BotAPI
	api           sender
	svc           Services
	ownerChatID   int64
	upcomingDays  int
	now           func() time.Time
	logger        *slog.Logger
	conversations map[int64]*conversationState
	mu            sync.Mutex
}

// New authorizes against the Bot API. ownerChatID limits the bot to one chat
// when non-zero.
func New(token string, svc Services, ownerChatID int64, upcomingDays int, logger *slog.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("bot authorized", slog.String("account", client.Self.UserName))

	b := newBot(client, svc, ownerChatID, upcomingDays, logger)
	b.client = client
	return b, nil
}

func newBot(api sender, svc Services, ownerChatID int64, upcomingDays int, logger *slog.Logger) *Bot {
	return &Bot{
		api:           api,
		svc:           svc,
		ownerChatID:   ownerChatID,
		upcomingDays:  upcomingDays,
		now:           time.Now,
		logger:        logger,
		conversations: make(map[int64]*conversationState),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.logger.Error("handle callback", slog.Any("error", err))
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() || !b.allowed(update.Message.Chat.ID) {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.logger.Error("handle message", slog.Any("error", err))
		}
	}
}

func (b *Bot) allowed(chatID int64) bool {
	return b.ownerChatID == 0 || b.ownerChatID == chatID
}

// SendDigest pushes the detailed report for all tasks to the owner chat.
func (b *Bot) SendDigest(ctx context.Context) error {
	if b.ownerChatID == 0 {
		return nil
	}
	r, err := b.svc.Reports.GenerateDetailedReport(ctx)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	names, err := b.svc.Categories.Names(ctx)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	return b.sendText(b.ownerChatID, report.Digest(r, b.now(), names))
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
