package internal

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"files-bot/controller"
	"files-bot/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	// Telegram rejects longer messages
	maxMessageLength = 4096
	// Telegram limits callback data to 64 bytes
	maxCallbackData = 64
	// Inline buttons attached under list and search results
	maxTitleButtons = 10

	callbackDownload = "dl:"
	callbackDetails  = "dt:"
)

const helpText = `Welcome! I upload files to the file storage and fetch them back.

To upload, send a file with a caption:
first line - title
following lines - description

Commands:
/download <title> - download a file
/list - list all stored files
/details <title> - show file details
/search <title> | <date> - search by title and/or date
/history - your last operations
/users - registered users (admins only)
/promote <user id> - make a user an admin (admins only)`

// parseCaption splits an upload caption into title (first line) and description (the rest)
func parseCaption(caption string) (title, description string) {
	first, rest, _ := strings.Cut(caption, "\n")
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}

// parseSearchArgs splits "/search <title> | <date>" arguments. Either side may be empty.
func parseSearchArgs(args string) (title, date string) {
	title, date, _ = strings.Cut(args, "|")
	return strings.TrimSpace(title), strings.TrimSpace(date)
}

// splitMessage breaks text into chunks Telegram accepts, preferring to cut
// between blank-line separated blocks. Cuts never split a UTF-8 sequence.
func splitMessage(text string, limit int) []string {
	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				_, cut = utf8.DecodeRuneInString(text)
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// titleKeyboard offers download and details buttons for each title that fits
// into callback data.
func titleKeyboard(titles []string) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, title := range titles {
		if len(rows) == maxTitleButtons {
			break
		}
		if len(callbackDownload)+len(title) > maxCallbackData {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬇️ "+title, callbackDownload+title),
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Details", callbackDetails+title),
		))
	}
	if len(rows) == 0 {
		return nil
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

// historyOutcome is the text stored for an operation; downloads keep their checksum
func historyOutcome(result controller.Result) string {
	if result.Checksum == "" {
		return result.Text
	}
	return fmt.Sprintf("%s (xxhash %s)", result.Text, result.Checksum)
}

func formatHistory(entries []models.HistoryEntry) string {
	if len(entries) == 0 {
		return "No operations yet."
	}

	var sb strings.Builder
	sb.WriteString("Your last operations:")
	for i, e := range entries {
		outcome, _, _ := strings.Cut(e.Outcome, "\n")
		fmt.Fprintf(&sb, "\n%d. %s %s", i+1, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Operation)
		if e.Title != "" {
			fmt.Fprintf(&sb, " %q", e.Title)
		}
		fmt.Fprintf(&sb, " - %s", outcome)
	}
	return sb.String()
}

func formatUsers(users []models.User) string {
	if len(users) == 0 {
		return "No registered users."
	}

	var sb strings.Builder
	for i, u := range users {
		name := u.Username
		if name == "" {
			name = strings.TrimSpace(u.FirstName + " " + u.LastName)
		}
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(&sb, "%d. %s (ID: %d, %s)\n", i+1, name, u.ID, role)
	}
	return strings.TrimRight(sb.String(), "\n")
}
