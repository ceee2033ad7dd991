package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-tracker/internal/model"
	"task-tracker/internal/query"
	"task-tracker/internal/report"
	"task-tracker/internal/service"
)

const (
	cbDonePrefix    = "done:"
	cbDeletePrefix  = "del:"
	cbConfirmPrefix = "confirm-del:"
	cbCancel        = "cancel"
)

var errAmbiguousID = errors.New("several tasks match this id, type more characters")

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏪ Input cancelled.", tgbotapi.NewRemoveKeyboard(true))
	}

	if msg.IsCommand() {
		b.logger.Info("command", slog.Int64("from", msg.From.ID), slog.String("command", msg.Command()))
		return b.handleCommand(ctx, msg)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		return b.handleConversation(ctx, msg, state)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Use /newtask to add a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		return b.sendText(chatID, helpText)
	case "login":
		return b.handleLogin(ctx, msg, args)
	case "logout":
		b.svc.Auth.Logout()
		return b.sendText(chatID, "👋 Logged out.")
	case "whoami":
		return b.handleWhoAmI(chatID)
	case "add":
		return b.handleAdd(ctx, chatID, args)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendWithReplyMarkup(chatID, "⏪ Input cancelled.", tgbotapi.NewRemoveKeyboard(true))
	case "tasks":
		return b.handleListTasks(ctx, chatID)
	case "search":
		return b.handleSearch(ctx, chatID, args)
	case "status":
		return b.handleStatus(ctx, chatID, args)
	case "done":
		return b.handleDone(ctx, chatID, args)
	case "delete":
		return b.handleDelete(ctx, chatID, args)
	case "categories":
		return b.handleCategories(ctx, chatID)
	case "newcategory":
		return b.handleNewCategory(ctx, chatID, args)
	case "report":
		return b.handleReport(ctx, chatID)
	case "digest":
		return b.handleDigest(ctx, chatID)
	case "csv":
		return b.handleCSV(ctx, chatID)
	case "overdue":
		return b.handleOverdue(ctx, chatID)
	case "upcoming":
		return b.handleUpcoming(ctx, chatID, args)
	case "stats":
		return b.handleStats(ctx, chatID)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

const helpText = "ℹ️ <b>Task tracker</b>\n" +
	"• /login &lt;user&gt; &lt;password&gt;, /logout, /whoami\n" +
	"• /newtask: add a task step by step\n" +
	"• /add title | description | 2026-05-01 | high\n" +
	"• /tasks: list tasks (yours when logged in)\n" +
	"• /search &lt;text&gt;, /status &lt;pending|in progress|completed&gt;\n" +
	"• /done &lt;id&gt;, /delete &lt;id&gt;\n" +
	"• /categories, /newcategory name | description\n" +
	"• /report, /digest, /csv, /overdue, /upcoming [days], /stats\n" +
	"• /cancel: abort the current input"

func (b *Bot) handleLogin(ctx context.Context, msg *tgbotapi.Message, args string) error {
	// The message carries a password; drop it from the chat history.
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		b.logger.Warn("delete login message", slog.Any("error", err))
	}

	parts := strings.Fields(args)
	if len(parts) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /login &lt;user&gt; &lt;password&gt;")
	}

	user, ok, err := b.svc.Auth.Login(ctx, service.Credentials{Username: parts[0], Password: parts[1]})
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if !ok {
		return b.sendText(msg.Chat.ID, "⛔ Invalid username or password.")
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Logged in as <b>%s</b>.", html.EscapeString(user.Username)))
}

func (b *Bot) handleWhoAmI(chatID int64) error {
	user, err := b.svc.Auth.CurrentUser()
	if err != nil {
		return b.replyError(chatID, err)
	}
	text := fmt.Sprintf("👤 <b>%s</b> (%s)", html.EscapeString(user.Username), html.EscapeString(user.Email))
	if user.LastLoginAt != nil {
		text += fmt.Sprintf("\nLast login: %s", user.LastLoginAt.In(b.now().Location()).Format("2006-01-02 15:04"))
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) error {
	if args == "" {
		return b.sendText(chatID, "Usage: /add title | description | 2026-05-01 | high")
	}
	task, err := parseAddArgs(args, b.now().Location())
	if err != nil {
		return b.sendText(chatID, html.EscapeString(err.Error()))
	}
	return b.saveTask(ctx, chatID, &task)
}

func (b *Bot) saveTask(ctx context.Context, chatID int64, task *model.Task) error {
	if err := b.svc.Tasks.AddTaskForCurrentUser(ctx, task); err != nil {
		return b.replyError(chatID, err)
	}
	b.logger.InfoContext(ctx, "task created", slog.String("task_id", task.ID), slog.String("user_id", task.UserID))

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> <code>%s</code>\n", shortID(task.ID)))
	summary.WriteString(fmt.Sprintf("• <b>Title:</b> %s\n", html.EscapeString(task.Title)))
	if task.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Description:</b> %s\n", html.EscapeString(task.Description)))
	}
	if task.DueDate != nil {
		summary.WriteString(fmt.Sprintf("• <b>Due:</b> %s\n", task.DueDate.Format("2006-01-02 15:04")))
	}
	summary.WriteString(fmt.Sprintf("• <b>Priority:</b> %s", task.Priority))

	return b.sendWithReplyMarkup(chatID, summary.String(), tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) handleListTasks(ctx context.Context, chatID int64) error {
	var (
		tasks []model.Task
		err   error
	)
	if user, sessErr := b.svc.Auth.CurrentUser(); sessErr == nil {
		tasks, err = b.svc.Tasks.GetUserTasks(ctx, user.ID)
	} else {
		tasks, err = b.svc.Tasks.GetAllTasks(ctx)
	}
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendTaskList(ctx, chatID, "📋 <b>Tasks</b>", tasks)
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, title string, tasks []model.Task) error {
	if len(tasks) == 0 {
		return b.sendText(chatID, "Nothing here. Add a task with /newtask.")
	}

	names, err := b.svc.Categories.Names(ctx)
	if err != nil {
		return b.replyError(chatID, err)
	}

	query.SortByDueDate(tasks)
	now := b.now()

	var builder strings.Builder
	builder.WriteString(title)
	builder.WriteString("\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		builder.WriteString(fmt.Sprintf("<code>%s</code> ", shortID(task.ID)))
		builder.WriteString(report.FormatTask(task, names, now))
		if task.IsCompleted() {
			continue
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+shortTitle(task.Title, 24), cbDonePrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+task.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ParseMode = tgbotapi.ModeHTML
	if len(buttons) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, term string) error {
	tasks, err := b.svc.Tasks.Search(ctx, term)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendTaskList(ctx, chatID, fmt.Sprintf("🔎 <b>Results for</b> «%s»", html.EscapeString(term)), tasks)
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64, args string) error {
	status, err := model.ParseStatus(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /status pending | in progress | completed")
	}
	tasks, err := b.svc.Tasks.SearchByStatus(ctx, status)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendTaskList(ctx, chatID, fmt.Sprintf("📌 <b>%s</b>", status), tasks)
}

func (b *Bot) handleDone(ctx context.Context, chatID int64, ref string) error {
	if ref == "" {
		return b.sendText(chatID, "Give the task id: /done 1a2b3c4d")
	}
	task, err := b.resolveTask(ctx, ref)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.completeTask(ctx, chatID, task.ID)
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, id string) error {
	task, err := b.svc.Tasks.SetStatus(ctx, id, model.StatusCompleted)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Task «%s» completed.", html.EscapeString(task.Title)))
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, ref string) error {
	if ref == "" {
		return b.sendText(chatID, "Give the task id: /delete 1a2b3c4d")
	}
	task, err := b.resolveTask(ctx, ref)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.askDeleteConfirmation(chatID, *task)
}

func (b *Bot) askDeleteConfirmation(chatID int64, task model.Task) error {
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbConfirmPrefix+task.ID),
		tgbotapi.NewInlineKeyboardButtonData("↩️ Keep", cbCancel),
	))
	return b.sendWithReplyMarkup(chatID, fmt.Sprintf("Delete «%s»?", html.EscapeString(task.Title)), markup)
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, id string) error {
	task, err := b.svc.Tasks.GetTask(ctx, id)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if err := b.svc.Tasks.DeleteTask(ctx, id); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Task «%s» deleted.", html.EscapeString(task.Title)))
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64) error {
	categories, err := b.svc.Categories.ListCategories(ctx)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if len(categories) == 0 {
		return b.sendText(chatID, "No categories yet. Add one with /newcategory name | description.")
	}

	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, c := range categories {
		builder.WriteString(fmt.Sprintf("• %s", html.EscapeString(c.Name)))
		if c.Description != "" {
			builder.WriteString(fmt.Sprintf(": <i>%s</i>", html.EscapeString(c.Description)))
		}
		builder.WriteByte('\n')
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleNewCategory(ctx context.Context, chatID int64, args string) error {
	fields := splitArgs(args)
	category := model.Category{Name: fields[0]}
	if len(fields) > 1 {
		category.Description = fields[1]
	}
	if err := b.svc.Categories.AddCategory(ctx, &category); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("📂 Category «%s» added.", html.EscapeString(category.Name)))
}

func (b *Bot) handleReport(ctx context.Context, chatID int64) error {
	r, err := b.svc.Reports.GenerateStatusReport(ctx)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, "<pre>"+html.EscapeString(b.svc.Reports.ExportReportToText(r))+"</pre>")
}

func (b *Bot) handleDigest(ctx context.Context, chatID int64) error {
	r, err := b.svc.Reports.GenerateDetailedReport(ctx)
	if err != nil {
		return b.replyError(chatID, err)
	}
	names, err := b.svc.Categories.Names(ctx)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, report.Digest(r, b.now(), names))
}

func (b *Bot) handleCSV(ctx context.Context, chatID int64) error {
	r, err := b.svc.Reports.GenerateStatusReport(ctx)
	if err != nil {
		return b.replyError(chatID, err)
	}
	data, err := b.svc.Reports.ExportReportToCsv(r)
	if err != nil {
		return b.replyError(chatID, err)
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("status-%s.csv", r.GeneratedAt.Format("20060102-150405")),
		Bytes: []byte(data),
	})
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) handleOverdue(ctx context.Context, chatID int64) error {
	tasks, err := b.svc.Reports.OverdueTasks(ctx, b.scope())
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendTaskList(ctx, chatID, "⚠️ <b>Overdue</b>", tasks)
}

func (b *Bot) handleUpcoming(ctx context.Context, chatID int64, args string) error {
	days := b.upcomingDays
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil {
			return b.sendText(chatID, "Usage: /upcoming [days]")
		}
		days = n
	}
	tasks, err := b.svc.Reports.UpcomingTasks(ctx, b.scope(), days)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendTaskList(ctx, chatID, fmt.Sprintf("🔥 <b>Due in %d day(s)</b>", days), tasks)
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	counts, err := b.svc.Tasks.StatusCounts(ctx, b.scope())
	if err != nil {
		return b.replyError(chatID, err)
	}
	var builder strings.Builder
	builder.WriteString("📊 <b>Stats</b>\n")
	for _, s := range model.Statuses {
		builder.WriteString(fmt.Sprintf("• %s: %d\n", s, counts[s]))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack", slog.Any("error", err))
	}
	if !b.allowed(cb.Message.Chat.ID) {
		return nil
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbDonePrefix):
		return b.completeTask(ctx, chatID, strings.TrimPrefix(data, cbDonePrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		task, err := b.svc.Tasks.GetTask(ctx, strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			return b.replyError(chatID, err)
		}
		return b.askDeleteConfirmation(chatID, *task)
	case strings.HasPrefix(data, cbConfirmPrefix):
		return b.deleteTask(ctx, chatID, strings.TrimPrefix(data, cbConfirmPrefix))
	default:
		return nil
	}
}

// scope narrows report queries to the logged in user, if any.
func (b *Bot) scope() query.Criteria {
	user, err := b.svc.Auth.CurrentUser()
	if err != nil {
		return query.Criteria{}
	}
	return query.Criteria{}.ForUser(user.ID)
}

// resolveTask finds a task by full id or by a unique id prefix.
func (b *Bot) resolveTask(ctx context.Context, ref string) (*model.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if len(ref) == 36 {
		return b.svc.Tasks.GetTask(ctx, ref)
	}

	tasks, err := b.svc.Tasks.GetAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	var found *model.Task
	for i := range tasks {
		if !strings.HasPrefix(tasks[i].ID, ref) {
			continue
		}
		if found != nil {
			return nil, errAmbiguousID
		}
		found = &tasks[i]
	}
	if found == nil {
		return nil, model.ErrTaskNotFound
	}
	return found, nil
}

// replyError turns core failures into chat replies. Storage failures are
// logged and reported generically.
func (b *Bot) replyError(chatID int64, err error) error {
	var text string
	switch {
	case errors.Is(err, model.ErrNoActiveSession):
		text = "🔒 Log in first: /login &lt;user&gt; &lt;password&gt;"
	case errors.Is(err, model.ErrTaskNotFound):
		text = "Task not found."
	case errors.Is(err, model.ErrCategoryNotFound):
		text = "Category not found."
	case errors.Is(err, model.ErrValidation), errors.Is(err, errAmbiguousID):
		text = "⚠️ " + html.EscapeString(err.Error())
	default:
		b.logger.Error("request failed", slog.Any("error", err))
		text = "Something went wrong, try again later."
	}
	return b.sendText(chatID, text)
}
