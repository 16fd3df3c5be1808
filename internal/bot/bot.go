package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"focus-planner/internal/config"
	"focus-planner/internal/model"
	"focus-planner/internal/repository"
	"focus-planner/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageCategory
	stageImportance
	stageUrgency
	stageDeadline
	stageHours
	stageRecurring
	stageInterval
	stageWeekdays
	stageEnd
)

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
	cbDismiss        = "dismiss"
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

type confirmationAction int

const (
	actionComplete confirmationAction = iota
	actionDelete
)

type confirmationRequest struct {
	taskID string
	action confirmationAction
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	userRepo      *repository.UserRepository
	categorySvc   *service.CategoryService
	taskSvc       *service.TaskService
	planSvc       *service.PlanService
	reminderSvc   *service.ReminderService
	config        *config.Config
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, userRepo *repository.UserRepository, categorySvc *service.CategoryService, taskSvc *service.TaskService, planSvc *service.PlanService, reminderSvc *service.ReminderService, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		userRepo:      userRepo,
		categorySvc:   categorySvc,
		taskSvc:       taskSvc,
		planSvc:       planSvc,
		reminderSvc:   reminderSvc,
		config:        cfg,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Диалог создания задачи отменён. Я здесь, чтобы начать заново.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "Я пока не понял сообщение. Набери /newtask, чтобы добавить задачу, или /help для списка команд.")
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelNewTask:
		return true, b.startNewTaskConversation(ctx, msg)
	case menuLabelPlan:
		return true, b.handlePlan(ctx, msg)
	case menuLabelTasks:
		return true, b.handleListTasks(ctx, msg)
	case menuLabelStreak:
		return true, b.handleStreak(ctx, msg)
	case menuLabelHelp:
		return true, b.handleHelp(msg)
	}
	return false, nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "plan":
		return b.handlePlan(ctx, msg)
	case "tasks":
		return b.handleListTasks(ctx, msg)
	case "streak":
		return b.handleStreak(ctx, msg)
	case "replan":
		return b.handleReplan(ctx, msg)
	case "report":
		return b.handlePlan(ctx, msg)
	case "complete":
		return b.handleTaskCommand(ctx, msg, actionComplete)
	case "delete":
		return b.handleTaskCommand(ctx, msg, actionDelete)
	case "limit":
		return b.handleCategoryLimit(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Диалог создания задачи отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

// handleCategoryLimit serves /limit <категория> <число>: the per-day task
// count cap enforced by the creation gate.
func (b *Bot) handleCategoryLimit(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		categories, err := b.categorySvc.List(ctx, user)
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
		}
		var sb strings.Builder
		sb.WriteString("🏷 <b>Лимиты категорий</b> (задач в день)\n")
		if len(categories) == 0 {
			sb.WriteString("Категорий пока нет. Они появятся при создании задач.\n")
		}
		for _, c := range categories {
			sb.WriteString(fmt.Sprintf("• %s — %d\n", escape(c.Name), c.EffectiveDailyLimit()))
		}
		sb.WriteString("\nИзменить: <code>/limit Работа 3</code>")
		return b.sendText(msg.Chat.ID, sb.String())
	}

	limit, err := strconv.Atoi(args[len(args)-1])
	if err != nil || limit < 1 {
		return b.sendText(msg.Chat.ID, "Лимит должен быть положительным числом, например <code>/limit Работа 3</code>.")
	}
	name := strings.Join(args[:len(args)-1], " ")

	categories, err := b.categorySvc.List(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			if err := b.categorySvc.SetDailyLimit(ctx, user, c.ID, limit); err != nil {
				return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сохранить лимит: %s", escape(err.Error())))
			}
			log.Printf("[info] category limit user=%d category=%q limit=%d", user.ID, c.Name, limit)
			return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Лимит категории «%s» — %d задач(и) в день.", escape(c.Name), limit))
		}
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("Категория «%s» не найдена. Посмотри список: /limit", escape(name)))
}

// handleTaskCommand serves /complete and /delete with an explicit task id
// argument; without one it falls back to the button list.
func (b *Bot) handleTaskCommand(ctx context.Context, msg *tgbotapi.Message, action confirmationAction) error {
	taskID := strings.TrimSpace(msg.CommandArguments())
	if taskID == "" {
		return b.handleListTasks(ctx, msg)
	}
	return b.askConfirmation(ctx, msg.Chat.ID, msg.From, taskID, action)
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я планировщик фокуса: каждый день решаю, за что взяться.</b>\n\nКоманды:\n"+
			"• /newtask — добавить новую задачу\n"+
			"• /plan — план на сегодня\n"+
			"• /tasks — все активные задачи\n"+
			"• /streak — серия выполнений\n"+
			"• /replan — пересчитать расписание\n"+
			"• /help — подсказки\n"+
			"• /cancel — отменить текущий ввод",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"• /newtask — добавить задачу пошагово: название, категория, важность, срочность, дедлайн, оценка часов, повторение\n" +
		"• /plan — что запланировано на сегодня (пересчитывается каждую ночь и после каждого изменения)\n" +
		"• /tasks — все активные задачи с кнопками выполнения и удаления\n" +
		"• /streak — текущая серия, рекорд и заморозки\n" +
		"• /replan — пересчитать расписание вручную\n" +
		"• /limit — лимиты категорий на день (<code>/limit Работа 3</code>)\n" +
		"• /cancel — отменить текущий ввод"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handlePlan(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.reminderSvc.DailySummary(ctx, *user, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сформировать план: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReplan(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	if _, err := b.planSvc.Recompute(ctx, user.ID, time.Now()); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось пересчитать: %s", escape(err.Error())))
	}
	return b.handlePlan(ctx, msg)
}

func (b *Bot) handleStreak(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	streak, err := b.taskSvc.Streak(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	var sb strings.Builder
	sb.WriteString("🔥 <b>Серия выполнений</b>\n")
	sb.WriteString(fmt.Sprintf("• Текущая серия: <b>%d дн.</b>\n", streak.CurrentStreak))
	sb.WriteString(fmt.Sprintf("• Рекорд: %d дн.\n", streak.LongestStreak))
	sb.WriteString(fmt.Sprintf("• Заморозок: %d (одна закрывает один пропущенный день)\n", streak.FreezeTokens))
	if streak.FreezeUsedOn != "" {
		sb.WriteString(fmt.Sprintf("• Заморозка использована: %s\n", streak.FreezeUsedOn))
	}

	if streak.HasMilestone() {
		sb.WriteString(fmt.Sprintf("\n🎉 <b>Веха: %d дней подряд!</b>", streak.MilestoneStreak))
		message := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(sb.String()))
		message.ParseMode = tgbotapi.ModeHTML
		message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("👌 Спасибо, видел", cbDismiss),
			),
		)
		_, err := b.api.Send(message)
		return err
	}

	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Создаём новую задачу.\n<b>Шаг 1:</b> как её назвать?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым. Как назвать задачу?", cancelKeyboard())
		}
		state.input.Name = text
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Укажи категорию (например, «Работа») или нажми «Пропустить».", skipKeyboard())
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = text
		}
		state.stage = stageImportance
		return b.sendWithReplyMarkup(msg.Chat.ID, "⭐️ Это <b>важная</b> задача?", yesNoKeyboard())
	case stageImportance:
		switch {
		case isYesInput(text):
			state.input.Importance = model.Important
		case isNoInput(text):
			state.input.Importance = model.NotImportant
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Нажми «Да» или «Нет».", yesNoKeyboard())
		}
		state.stage = stageUrgency
		return b.sendWithReplyMarkup(msg.Chat.ID, "⚡️ Это <b>срочная</b> задача?", yesNoKeyboard())
	case stageUrgency:
		switch {
		case isYesInput(text):
			state.input.Urgency = model.Urgent
		case isNoInput(text):
			state.input.Urgency = model.NotUrgent
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Нажми «Да» или «Нет».", yesNoKeyboard())
		}
		state.stage = stageDeadline
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ Укажи дедлайн в формате <code>2026-09-30</code> (или «Пропустить»).", skipKeyboard())
	case stageDeadline:
		if !isSkipInput(text) {
			parsed, err := time.ParseInLocation("2006-01-02", text, time.Local)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать дату. Используй формат <code>2026-09-30</code> или «Пропустить».", skipKeyboard())
			}
			state.input.DueDate = &parsed
		}
		state.stage = stageHours
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏱ Сколько часов займёт задача? (от 0.25 до 24, например <code>1.5</code>)", cancelKeyboard())
	case stageHours:
		hours, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err != nil || hours <= 0 {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Нужно число часов, например <code>0.5</code> или <code>2</code>.", cancelKeyboard())
		}
		state.input.EstimatedHours = hours
		state.stage = stageRecurring
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 Сделать задачу повторяющейся?", yesNoKeyboard())
	case stageRecurring:
		switch {
		case isYesInput(text):
			state.input.IsRecurring = true
			state.stage = stageInterval
			return b.sendWithReplyMarkup(msg.Chat.ID, "📆 Как часто повторять?", intervalKeyboard())
		case isNoInput(text):
			state.input.IsRecurring = false
			err := b.finishTaskCreation(ctx, msg.From, state.input, msg.Chat.ID)
			b.clearConversation(msg.From.ID)
			return err
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Нажми «Да» или «Нет».", yesNoKeyboard())
		}
	case stageInterval:
		switch strings.TrimSpace(text) {
		case btnDaily:
			state.input.RecurringInterval = model.RecurDaily
		case btnWeekly:
			state.input.RecurringInterval = model.RecurWeekly
		case btnMonthly:
			state.input.RecurringInterval = model.RecurMonthly
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери вариант на клавиатуре.", intervalKeyboard())
		}
		if state.input.RecurringInterval == model.RecurWeekly {
			state.stage = stageWeekdays
			return b.sendWithReplyMarkup(msg.Chat.ID, "📅 В какие дни недели? Перечисли числа через запятую: 0 — вс, 1 — пн, … 6 — сб (или «Пропустить» — тогда раз в неделю от даты).", skipKeyboard())
		}
		state.stage = stageEnd
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔚 Сколько повторений всего? Введи число или нажми «Всегда».", endKeyboard())
	case stageWeekdays:
		if !isSkipInput(text) {
			days, err := parseWeekdays(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Перечисли дни числами 0–6 через запятую, например <code>1,3,5</code>.", skipKeyboard())
			}
			state.input.RecurringDays = days
		}
		state.stage = stageEnd
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔚 Сколько повторений всего? Введи число или нажми «Всегда».", endKeyboard())
	case stageEnd:
		if strings.EqualFold(strings.TrimSpace(text), btnNever) || strings.EqualFold(strings.TrimSpace(text), "always") {
			state.input.RecurringEndType = model.RecurEndNever
		} else {
			count, err := strconv.Atoi(text)
			if err != nil || count < 1 {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Нужно положительное число повторений или кнопка «Всегда».", endKeyboard())
			}
			state.input.RecurringEndType = model.RecurEndAfter
			state.input.RecurringEndCount = count
		}
		err := b.finishTaskCreation(ctx, msg.From, state.input, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен. Попробуй ещё раз через /newtask.")
	}
}

func parseWeekdays(text string) (model.WeekdaySet, error) {
	var days model.WeekdaySet
	for _, part := range strings.Split(text, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("empty weekday list")
	}
	return days, nil
}

func (b *Bot) finishTaskCreation(ctx context.Context, from *tgbotapi.User, input service.TaskInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, admission, err := b.taskSvc.CreateTask(ctx, user, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось сохранить задачу: %s", escape(err.Error())))
	}
	if !admission.Allowed {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("🚫 %s", escape(admission.Message)))
	}

	log.Printf("[info] task created id=%s user=%d recurring=%t", task.ID, user.ID, task.IsRecurring)

	var summary strings.Builder
	summary.WriteString("✅ <b>Задача сохранена</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Название:</b> %s\n", escape(task.Name)))
	if task.CategoryName != "" {
		summary.WriteString(fmt.Sprintf("• <b>Категория:</b> %s\n", escape(task.CategoryName)))
	}
	summary.WriteString(fmt.Sprintf("• <b>Приоритет:</b> %s\n", describeQuadrant(task)))
	if task.DueDate != nil {
		summary.WriteString(fmt.Sprintf("• <b>Дедлайн:</b> %s\n", task.DueDate.Format("2006-01-02")))
	}
	summary.WriteString(fmt.Sprintf("• <b>Оценка:</b> %.2g ч.\n", task.EstimatedHours))
	if task.IsRecurring {
		summary.WriteString(fmt.Sprintf("• <b>Повтор:</b> %s\n", describeRecurrence(task)))
	}
	if task.StartDate != nil {
		summary.WriteString(fmt.Sprintf("• <b>В плане на:</b> %s\n", task.StartDate.Format("2006-01-02")))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(summary.String()))
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, user)
}

func describeQuadrant(task *model.Task) string {
	switch {
	case task.Urgency == model.Urgent && task.Importance == model.Important:
		return "срочная и важная"
	case task.Importance == model.Important:
		return "важная, не срочная"
	case task.Urgency == model.Urgent:
		return "срочная, не важная"
	default:
		return "обычная"
	}
}

func describeRecurrence(task *model.Task) string {
	var base string
	switch task.RecurringInterval {
	case model.RecurWeekly:
		base = "каждую неделю"
	case model.RecurMonthly:
		base = "каждый месяц"
	default:
		base = "каждый день"
	}
	if task.RecurringEndType == model.RecurEndAfter {
		base += fmt.Sprintf(", всего %d раз", task.RecurringEndCount)
	}
	return base
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendTaskList(ctx, msg.Chat.ID, user)
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, user *model.User) error {
	tasks, err := b.taskSvc.ListPending(ctx, user)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось получить задачи: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "У тебя нет активных задач. Добавь новую через /newtask.")
	}

	now := time.Now()
	var builder strings.Builder
	builder.WriteString("🗂 <b>Активные задачи</b>\n")
	builder.WriteString("Нажми на кнопку, чтобы отметить задачу выполненной или удалить.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		builder.WriteString(formatTaskLine(task, now))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ %s", shortTitle(task.Name, 24)), cbCompletePrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+task.ID),
		))
	}

	message := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	message.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(message)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		taskID := strings.TrimPrefix(data, cbCompletePrefix)
		log.Printf("[info] callback complete request user=%d task=%s", cb.From.ID, taskID)
		return b.askConfirmation(ctx, cb.Message.Chat.ID, cb.From, taskID, actionComplete)
	case strings.HasPrefix(data, cbDeletePrefix):
		taskID := strings.TrimPrefix(data, cbDeletePrefix)
		log.Printf("[info] callback delete request user=%d task=%s", cb.From.ID, taskID)
		return b.askConfirmation(ctx, cb.Message.Chat.ID, cb.From, taskID, actionDelete)
	case data == cbDismiss:
		user, err := b.ensureUser(ctx, cb.From)
		if err != nil {
			return err
		}
		if _, err := b.taskSvc.DismissMilestone(ctx, user); err != nil {
			return err
		}
		return b.sendText(cb.Message.Chat.ID, "Веха скрыта. Вперёд к следующей! 💪")
	default:
		return nil
	}
}

func (b *Bot) askConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, taskID string, action confirmationAction) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.GetTask(ctx, user, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Задача не найдена.")
		}
		return err
	}
	if action == actionComplete && task.Completed {
		return b.sendText(chatID, "Задача уже выполнена.")
	}

	var text string
	if action == actionDelete {
		text = fmt.Sprintf("Удалить задачу «%s» безвозвратно?", escape(task.Name))
	} else {
		text = fmt.Sprintf("Отметить задачу «%s» как выполненную?", escape(task.Name))
	}
	b.setConfirmation(from.ID, confirmationRequest{taskID: task.ID, action: action})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionDelete {
			return b.deleteTaskAndRefresh(ctx, msg.Chat.ID, msg.From, req.taskID)
		}
		return b.completeTaskAndRefresh(ctx, msg.Chat.ID, msg.From, req.taskID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Хорошо, ничего не меняю.")
	default:
		prompt := "Подтверди или отмени выполнение задачи."
		if req.action == actionDelete {
			prompt = "Подтверди или отмени удаление задачи."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

func (b *Bot) completeTaskAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, taskID string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	result, err := b.taskSvc.CompleteTask(ctx, user, taskID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Задача не найдена.")
		}
		return b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Задача «%s» выполнена.", escape(result.Task.Name)))
	sb.WriteString(fmt.Sprintf("\n🔥 Серия: %d дн.", result.Streak.CurrentStreak))
	if result.Streak.FreezeUsedOn != "" && result.Streak.FreezeUsedOn == result.Streak.LastCompletedDate {
		sb.WriteString(" (пропуск закрыт заморозкой ❄️)")
	}
	if result.Streak.HasMilestone() && result.Streak.MilestoneStreak == result.Streak.CurrentStreak {
		sb.WriteString(fmt.Sprintf("\n🎉 Веха: %d дней подряд!", result.Streak.MilestoneStreak))
	}
	if result.Next != nil {
		sb.WriteString(fmt.Sprintf("\n♻️ Следующее повторение: %s", result.Next.DueDate.Format("2006-01-02")))
	}

	if err := b.sendTextWithRemove(chatID, sb.String()); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, user)
}

func (b *Bot) deleteTaskAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, taskID string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	if err := b.taskSvc.DeleteTask(ctx, user, taskID); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось удалить: %s", escape(err.Error())))
	}
	if err := b.sendTextWithRemove(chatID, "🗑 Задача удалена."); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, user)
}

// SendDailyReports sends the computed plan to every known user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminderSvc.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("build summary for user %d: %v", user.TelegramID, err)
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send summary to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
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

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
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

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
