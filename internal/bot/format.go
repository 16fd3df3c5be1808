package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"focus-planner/internal/model"
	"focus-planner/internal/plan"
)

const (
	btnSkip         = "⏭️ Пропустить"
	btnYes          = "Да"
	btnNo           = "Нет"
	btnConfirm      = "✅ Подтвердить"
	btnCancel       = "↩️ Отмена"
	btnCancelDialog = "⏪ Отменить ввод"
	btnNever        = "Всегда"

	btnDaily   = "Каждый день"
	btnWeekly  = "Каждую неделю"
	btnMonthly = "Каждый месяц"

	menuLabelNewTask = "➕ Новая задача"
	menuLabelPlan    = "📋 План на сегодня"
	menuLabelTasks   = "🗂 Все задачи"
	menuLabelStreak  = "🔥 Серия"
	menuLabelHelp    = "ℹ️ Помощь"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelPlan),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTasks),
			tgbotapi.NewKeyboardButton(menuLabelStreak),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkip)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func yesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnYes),
			tgbotapi.NewKeyboardButton(btnNo),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func intervalKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDaily),
			tgbotapi.NewKeyboardButton(btnWeekly),
			tgbotapi.NewKeyboardButton(btnMonthly),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func endKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnNever)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func isSkipInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == strings.ToLower(btnSkip) || lower == "пропустить" || lower == "skip" || lower == "-"
}

func isCancelDialogInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == strings.ToLower(btnCancelDialog) || lower == "отменить ввод"
}

func isConfirmInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == strings.ToLower(btnConfirm) || lower == "подтвердить" || lower == "да"
}

func isCancelInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == strings.ToLower(btnCancel) || lower == "отмена" || lower == "нет"
}

func isYesInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == "да" || lower == "yes" || lower == "y"
}

func isNoInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == "нет" || lower == "no" || lower == "n" || lower == "-"
}

// formatTaskLine renders one task row for the /tasks listing.
func formatTaskLine(task model.Task, now time.Time) string {
	icon := "🟢"
	switch {
	case task.IsRecurring:
		icon = "♻️"
	case task.DueDate != nil && plan.DaysBetween(now, *task.DueDate) < 0:
		icon = "⚠️"
	case task.DueDate != nil && plan.DaysBetween(now, *task.DueDate) <= 1:
		icon = "⏳"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s", icon, escape(strings.TrimSpace(task.Name))))
	if task.CategoryName != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(task.CategoryName)))
	}
	if task.StartDate != nil {
		sb.WriteString(fmt.Sprintf("\n   📅 в плане на %s", plan.Normalize(*task.StartDate).Format("2006-01-02")))
	} else {
		sb.WriteString("\n   📅 пока не в плане")
	}
	if task.DueDate != nil {
		d := plan.Normalize(*task.DueDate)
		if plan.DaysBetween(now, d) < 0 {
			sb.WriteString(fmt.Sprintf(" · ⏰ до %s — <b>просрочено</b>", d.Format("2006-01-02")))
		} else {
			sb.WriteString(fmt.Sprintf(" · ⏰ до %s", d.Format("2006-01-02")))
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

func shortTitle(title string, limit int) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return string(runes[:limit-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
