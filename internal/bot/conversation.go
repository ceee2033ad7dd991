package bot

import (
	"context"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-tracker/internal/model"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageDueDate
	stagePriority
	stageCategory
)

const (
	btnSkip         = "⏭️ Skip"
	btnCancelDialog = "⏪ Cancel input"
	noCategory      = "No category"
)

type conversationState struct {
	stage      conversationStage
	task       model.Task
	categories map[string]string
}

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.svc.Auth.CurrentUser(); err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	switch state.stage {
	case stageTitle:
		state.task.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(chatID, "✏️ Add a short description (or skip).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.task.Description = text
		}
		state.stage = stageDueDate
		return b.sendWithReplyMarkup(chatID, "⏰ Due date as <code>2026-05-01</code> or <code>2026-05-01 18:00</code> (or skip).", skipKeyboard())
	case stageDueDate:
		if !isSkipInput(text) {
			due, err := parseDue(text, b.now().Location())
			if err != nil {
				return b.sendWithReplyMarkup(chatID, "Cannot read that date. Use <code>2026-05-01</code> or skip.", skipKeyboard())
			}
			state.task.DueDate = &due
		}
		state.stage = stagePriority
		return b.sendWithReplyMarkup(chatID, "🎯 Priority?", priorityKeyboard())
	case stagePriority:
		priority := model.PriorityMedium
		if !isSkipInput(text) {
			p, err := model.ParsePriority(text)
			if err != nil {
				return b.sendWithReplyMarkup(chatID, "Pick low, medium or high.", priorityKeyboard())
			}
			priority = p
		}
		state.task.Priority = priority

		names, err := b.svc.Categories.Names(ctx)
		if err != nil {
			b.clearConversation(msg.From.ID)
			return b.replyError(chatID, err)
		}
		if len(names) == 0 {
			return b.finishTaskCreation(ctx, msg, state)
		}
		state.categories = names
		state.stage = stageCategory
		return b.sendWithReplyMarkup(chatID, "🏷 Category?", categoryKeyboard(names))
	case stageCategory:
		if !isSkipInput(text) && text != noCategory {
			id, ok := categoryByName(state.categories, text)
			if !ok {
				return b.sendWithReplyMarkup(chatID, "Unknown category, pick one from the list.", categoryKeyboard(state.categories))
			}
			state.task.CategoryID = &id
		}
		return b.finishTaskCreation(ctx, msg, state)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(chatID, "Input reset. Start again with /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	b.clearConversation(msg.From.ID)
	task := state.task
	return b.saveTask(ctx, msg.Chat.ID, &task)
}

func categoryByName(categories map[string]string, name string) (string, bool) {
	for id, n := range categories {
		if strings.EqualFold(n, name) {
			return id, true
		}
	}
	return "", false
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	row := tgbotapi.NewKeyboardButtonRow()
	for _, p := range model.Priorities {
		row = append(row, tgbotapi.NewKeyboardButton(p.String()))
	}
	kb := tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// categoryKeyboard lays category names out two per row.
func categoryKeyboard(categories map[string]string) tgbotapi.ReplyKeyboardMarkup {
	names := make([]string, 0, len(categories))
	for _, n := range categories {
		names = append(names, n)
	}
	sort.Strings(names)

	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(names); i += 2 {
		row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(names[i]))
		if i+1 < len(names) {
			row = append(row, tgbotapi.NewKeyboardButton(names[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(noCategory),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	))

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancel"
}
