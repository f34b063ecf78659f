// Package controller maps the file operations a user can trigger onto
// storage API calls and renders each response as display text.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"files-bot/api"
	"files-bot/models"

	"github.com/cespare/xxhash/v2"
)

// Messages shown instead of a server response
const (
	MsgTitleBlank     = "Title Cannot Left Blank"
	MsgCriteriaNeeded = "At Least One Criteria Required"
	MsgNoResults      = "No Results"
	MsgFileNotFound   = "File Not Found"
	MsgRequestFailed  = "Request Failed"
)

// Saver stores a downloaded payload under the resolved filename
type Saver interface {
	Save(ctx context.Context, name string, data []byte) error
}

// SaverFunc adapts a function to Saver
type SaverFunc func(ctx context.Context, name string, data []byte) error

func (f SaverFunc) Save(ctx context.Context, name string, data []byte) error {
	return f(ctx, name, data)
}

// Result is what an operation wants displayed in its output element
type Result struct {
	Text string
	// FileName is set when a download was saved
	FileName string
	// Checksum is the xxhash64 of a saved download, in hex
	Checksum string
	// Titles lists the files a successful list, details or search rendered
	Titles []string
}

// FormController runs the five file operations against the storage API.
// It holds no per-call state, so operations may run concurrently.
type FormController struct {
	api *api.Client
}

// New creates a controller backed by client
func New(client *api.Client) *FormController {
	return &FormController{api: client}
}

// Upload sends the file and shows whatever the server answered
func (c *FormController) Upload(ctx context.Context, req models.UploadRequest) Result {
	body, err := c.api.Upload(ctx, req)
	if err != nil {
		return failed("upload", err)
	}
	return Result{Text: body}
}

// Download fetches the file stored under title and hands it to saver
func (c *FormController) Download(ctx context.Context, title string, saver Saver) Result {
	if title == "" {
		return Result{Text: MsgTitleBlank}
	}

	download, err := c.api.Download(ctx, title)
	if err != nil {
		return failed("download", err)
	}

	filename := ResolveFilename(download.ContentDisposition, title)
	if err := saver.Save(ctx, filename, download.Data); err != nil {
		log.Printf("Error saving file %q: %v", filename, err)
		return Result{Text: "Failed To Save File " + filename}
	}

	checksum := Checksum(download.Data)
	log.Printf("Downloaded %q as %q (%d bytes, xxhash %s)", title, filename, len(download.Data), checksum)
	return Result{Text: "Downloaded File " + filename, FileName: filename, Checksum: checksum}
}

// List shows every stored file
func (c *FormController) List(ctx context.Context) Result {
	records, err := c.api.List(ctx)
	if err != nil {
		return failed("list", err)
	}
	if len(records) == 0 {
		return Result{Text: MsgNoResults}
	}

	var sb strings.Builder
	titles := make([]string, 0, len(records))
	sb.WriteString("List Of Files:")
	for _, record := range records {
		sb.WriteString("\n\n")
		writeRecord(&sb, record)
		titles = append(titles, record.Title)
	}
	return Result{Text: sb.String(), Titles: titles}
}

// Details shows the metadata of the file stored under title
func (c *FormController) Details(ctx context.Context, title string) Result {
	if title == "" {
		return Result{Text: MsgTitleBlank}
	}

	record, err := c.api.Details(ctx, title)
	if errors.Is(err, api.ErrNotFound) {
		return Result{Text: MsgFileNotFound}
	}
	if err != nil {
		return failed("details", err)
	}

	var sb strings.Builder
	sb.WriteString("File Details:\n\n")
	writeRecord(&sb, *record)
	return Result{Text: sb.String(), Titles: []string{record.Title}}
}

// Search shows the titles matching title and/or date
func (c *FormController) Search(ctx context.Context, title, date string) Result {
	if title == "" && date == "" {
		return Result{Text: MsgCriteriaNeeded}
	}

	titles, err := c.api.Search(ctx, models.SearchRequest{Title: title, Date: date})
	if err != nil {
		return failed("search", err)
	}
	if len(titles) == 0 {
		return Result{Text: MsgNoResults}
	}

	var sb strings.Builder
	sb.WriteString("Matched Files:")
	for _, t := range titles {
		sb.WriteString("\n\nTitle: ")
		sb.WriteString(t)
	}
	return Result{Text: sb.String(), Titles: titles}
}

// Checksum returns the hex xxhash64 digest of data
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("%s (status %d)", MsgRequestFailed, code)
}

func writeRecord(sb *strings.Builder, record models.FileRecord) {
	fmt.Fprintf(sb, "Title: %s\nDescription: %s\nUpload Time: %s", record.Title, record.Description, record.UploadTime)
}

// failed renders server errors verbatim and hides transport errors behind a
// generic message so the output never goes stale. A server error without a
// body shows its status text.
func failed(op string, err error) Result {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Body == "" {
			return Result{Text: statusText(statusErr.Code)}
		}
		return Result{Text: statusErr.Body}
	}
	log.Printf("Error running %s: %v", op, err)
	return Result{Text: MsgRequestFailed}
}
