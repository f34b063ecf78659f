package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"files-bot/config"
	"files-bot/controller"
	"files-bot/db"
	"files-bot/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxFileSize  = 100 * 1024 * 1024 // 100MB in bytes
	historyLimit = 10
)

// Bot represents the Telegram bot and its dependencies
type Bot struct {
	API           *tgbotapi.BotAPI
	DB            *db.DB
	Config        *config.Config
	ConfigPath    string
	Files         *controller.FormController
	History       *db.History
	SheetsService *SheetsService
}

// verifyAdmins checks and updates admin status for all users in the database
func (b *Bot) verifyAdmins() error {
	return b.DB.UpdateAdminStatuses(b.Config.Admins)
}

// NewBot creates a new Bot instance. history may be nil when MongoDB is not configured.
// configPath is where admin changes made through the bot are saved.
func NewBot(botToken string, database *db.DB, cfg *config.Config, configPath string, files *controller.FormController, history *db.History) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	var sheetsService *SheetsService
	if cfg.SheetsEnabled() {
		sheetsService, err = NewSheetsService(cfg.Sheets)
		if err != nil {
			log.Printf("Warning: Failed to initialize Google Sheets API: %v", err)
			// Uploads still work without the audit sheet
			sheetsService = nil
		}
	}

	bot := &Bot{
		API:           api,
		DB:            database,
		Config:        cfg,
		ConfigPath:    configPath,
		Files:         files,
		History:       history,
		SheetsService: sheetsService,
	}

	// Verify admin statuses at startup
	if err := bot.verifyAdmins(); err != nil {
		return nil, fmt.Errorf("failed to verify admins: %w", err)
	}

	return bot, nil
}

// Start starts the bot and listens for updates
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.API.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			go b.handleMessage(update.Message)
		} else if update.CallbackQuery != nil {
			go b.handleCallback(update.CallbackQuery)
		}
	}

	return nil
}

// Stop stops receiving updates
func (b *Bot) Stop() {
	b.API.StopReceivingUpdates()
}

// handleMessage handles incoming messages
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	log.Printf("[%s] %s", message.From.UserName, message.Text)

	b.registerUser(message.From)

	if fileID, fileName, fileSize, ok := attachment(message); ok {
		b.handleUpload(message, fileID, fileName, fileSize)
		return
	}

	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	b.send(message.Chat.ID, "Send a file to upload it or use /start to see the available commands.", nil)
}

// registerUser saves the sender on first contact and keeps their names current
func (b *Bot) registerUser(from *tgbotapi.User) {
	user := &models.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		IsAdmin:   b.Config.IsAdmin(from.UserName),
	}
	if err := b.DB.SaveUser(user); err != nil {
		log.Printf("Error saving user: %v", err)
	}
}

// attachment extracts the uploadable file carried by a message
func attachment(message *tgbotapi.Message) (fileID, fileName string, fileSize int, ok bool) {
	switch {
	case message.Document != nil:
		return message.Document.FileID, message.Document.FileName, message.Document.FileSize, true
	case len(message.Photo) > 0:
		// Get the largest photo size
		photo := message.Photo[len(message.Photo)-1]
		return photo.FileID, "photo.jpg", photo.FileSize, true
	case message.Audio != nil:
		fileName := message.Audio.FileName
		if fileName == "" {
			fileName = "audio.mp3"
		}
		return message.Audio.FileID, fileName, message.Audio.FileSize, true
	case message.Video != nil:
		fileName := message.Video.FileName
		if fileName == "" {
			fileName = "video.mp4"
		}
		return message.Video.FileID, fileName, message.Video.FileSize, true
	case message.Voice != nil:
		return message.Voice.FileID, "voice.ogg", message.Voice.FileSize, true
	}
	return "", "", 0, false
}

// handleUpload fetches the attachment from Telegram and uploads it with the caption metadata
func (b *Bot) handleUpload(message *tgbotapi.Message, fileID, fileName string, fileSize int) {
	chatID := message.Chat.ID

	if fileSize > maxFileSize {
		b.send(chatID, "Sorry, the file is too large. The maximum file size is 100 MB.", nil)
		return
	}

	data, err := b.fetchTelegramFile(fileID)
	if err != nil {
		log.Printf("Error downloading file from Telegram: %v", err)
		b.send(chatID, "Error receiving the file.", nil)
		return
	}

	title, description := parseCaption(message.Caption)
	ctx := context.Background()
	result := b.Files.Upload(ctx, models.UploadRequest{
		FileName:    fileName,
		File:        bytes.NewReader(data),
		Title:       title,
		Description: description,
	})
	b.send(chatID, result.Text, nil)
	b.record(ctx, message.From, "upload", title, result)

	if b.SheetsService != nil {
		audit := UploadAudit{
			UserID:      message.From.ID,
			Username:    displayName(message.From),
			FileName:    fileName,
			Size:        len(data),
			Title:       title,
			Description: description,
			Response:    result.Text,
			UploadedAt:  time.Now(),
		}
		if err := b.SheetsService.LogUpload(ctx, audit); err != nil {
			log.Printf("Error logging to Google Sheets: %v", err)
		} else {
			log.Printf("File upload logged to Google Sheets: title=%q, user=%s", title, audit.Username)
		}
	}
}

func (b *Bot) fetchTelegramFile(fileID string) ([]byte, error) {
	file, err := b.API.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("error getting file info: %w", err)
	}

	resp, err := http.Get(file.Link(b.API.Token))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())
	ctx := context.Background()

	switch message.Command() {
	case "start", "help":
		b.send(chatID, helpText, nil)

	case "download":
		b.download(ctx, chatID, message.From, args)

	case "list":
		result := b.Files.List(ctx)
		b.send(chatID, result.Text, titleKeyboard(result.Titles))
		b.record(ctx, message.From, "list", "", result)

	case "details":
		b.details(ctx, chatID, message.From, args)

	case "search":
		title, date := parseSearchArgs(args)
		result := b.Files.Search(ctx, title, date)
		b.send(chatID, result.Text, titleKeyboard(result.Titles))
		b.record(ctx, message.From, "search", strings.TrimSpace(title+" "+date), result)

	case "history":
		b.sendHistory(ctx, chatID, message.From.ID)

	case "users":
		b.sendUsers(chatID, message.From.ID)

	case "promote":
		b.send(chatID, promoteUser(b.DB, b.Config, b.ConfigPath, message.From.ID, args), nil)

	default:
		b.send(chatID, "Sorry, no such command. Use /start to see the available commands.", nil)
	}
}

// handleCallback handles the download and details buttons under list and search results
func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	log.Printf("[CALLBACK] %s: %s", callback.From.UserName, callback.Data)

	// Respond to callback
	if _, err := b.API.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	ctx := context.Background()

	switch {
	case strings.HasPrefix(callback.Data, callbackDownload):
		b.download(ctx, chatID, callback.From, strings.TrimPrefix(callback.Data, callbackDownload))
	case strings.HasPrefix(callback.Data, callbackDetails):
		b.details(ctx, chatID, callback.From, strings.TrimPrefix(callback.Data, callbackDetails))
	}
}

func (b *Bot) download(ctx context.Context, chatID int64, from *tgbotapi.User, title string) {
	saver := controller.SaverFunc(func(ctx context.Context, name string, data []byte) error {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
		_, err := b.API.Send(doc)
		return err
	})

	result := b.Files.Download(ctx, title, saver)
	b.send(chatID, result.Text, nil)
	b.record(ctx, from, "download", title, result)
}

func (b *Bot) details(ctx context.Context, chatID int64, from *tgbotapi.User, title string) {
	result := b.Files.Details(ctx, title)
	b.send(chatID, result.Text, nil)
	b.record(ctx, from, "details", title, result)
}

func (b *Bot) sendHistory(ctx context.Context, chatID, userID int64) {
	if b.History == nil {
		b.send(chatID, "History is not available.", nil)
		return
	}

	entries, err := b.History.Recent(ctx, userID, historyLimit)
	if err != nil {
		log.Printf("Error getting history: %v", err)
		b.send(chatID, "Error getting history.", nil)
		return
	}
	b.send(chatID, formatHistory(entries), nil)
}

func (b *Bot) sendUsers(chatID, userID int64) {
	user, err := b.DB.GetUser(userID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		b.send(chatID, "Error checking access rights.", nil)
		return
	}
	if user == nil || !user.IsAdmin {
		b.send(chatID, "Only admins can list users.", nil)
		return
	}

	users, err := b.DB.ListUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		b.send(chatID, "Error getting the user list.", nil)
		return
	}
	b.send(chatID, formatUsers(users), nil)
}

// record appends the operation to the caller's history when MongoDB is configured
func (b *Bot) record(ctx context.Context, from *tgbotapi.User, operation, title string, result controller.Result) {
	if b.History == nil {
		return
	}

	entry := models.HistoryEntry{
		UserID:    from.ID,
		Username:  displayName(from),
		Operation: operation,
		Title:     title,
		Outcome:   historyOutcome(result),
		CreatedAt: time.Now().UTC(),
	}
	if err := b.History.Record(ctx, entry); err != nil {
		log.Printf("Error recording history: %v", err)
	}
}

// send delivers text in as many messages as needed; the keyboard goes under the last one
func (b *Bot) send(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	if text == "" {
		log.Printf("Skipping empty response for chat %d", chatID)
		return
	}

	chunks := splitMessage(text, maxMessageLength)
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if keyboard != nil && i == len(chunks)-1 {
			msg.ReplyMarkup = keyboard
		}
		if _, err := b.API.Send(msg); err != nil {
			log.Printf("Error sending message: %v", err)
			return
		}
	}
}

func displayName(from *tgbotapi.User) string {
	if from.UserName != "" {
		return from.UserName
	}
	return strings.TrimSpace(from.FirstName + " " + from.LastName)
}
