package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"files-bot/models"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id logged for every outgoing call
const RequestIDHeader = "X-Request-ID"

// Storage API endpoints
const (
	uploadPath   = "/f/ul"
	downloadPath = "/f/dl/"
	listPath     = "/f/ls"
	detailsPath  = "/f/dt"
	searchPath   = "/f/fd"
)

// Client talks to the remote file-storage API
type Client struct {
	baseURL string
	client  *http.Client
}

// Download is a successful download response
type Download struct {
	ContentDisposition string
	Data               []byte
}

// NewClient creates a client for the API rooted at baseURL.
// A nil httpClient falls back to http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// Upload posts the file with its metadata and returns the server message.
// The body is returned for every status code; only transport failures are errors.
func (c *Client) Upload(ctx context.Context, req models.UploadRequest) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if req.File != nil {
		part, err := writer.CreateFormFile("file", req.FileName)
		if err != nil {
			return "", fmt.Errorf("error creating file part: %w", err)
		}
		if _, err := io.Copy(part, req.File); err != nil {
			return "", fmt.Errorf("error reading upload file: %w", err)
		}
	}
	if err := writer.WriteField("title", req.Title); err != nil {
		return "", err
	}
	if err := writer.WriteField("description", req.Description); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, uploadPath, &buf, writer.FormDataContentType())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}
	return string(body), nil
}

// Download fetches the payload stored under title
func (c *Client) Download(ctx context.Context, title string) (*Download, error) {
	resp, err := c.do(ctx, http.MethodGet, downloadPath+url.PathEscape(title), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, newStatusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	return &Download{
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		Data:               data,
	}, nil
}

// List returns every stored file record
func (c *Client) List(ctx context.Context) ([]models.FileRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, listPath, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var records []models.FileRecord
	if err := decodeJSON(resp, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Details looks up a single file record by title
func (c *Client) Details(ctx context.Context, title string) (*models.FileRecord, error) {
	query := url.Values{"title": {title}}
	resp, err := c.do(ctx, http.MethodGet, detailsPath+"?"+query.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var record models.FileRecord
	if err := decodeJSON(resp, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Search returns the titles matching the request
func (c *Client) Search(ctx context.Context, req models.SearchRequest) ([]string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, searchPath, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var titles []string
	if err := decodeJSON(resp, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[%s] %s %s failed: %v", requestID, method, path, err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	log.Printf("[%s] %s %s -> %d", requestID, method, path, resp.StatusCode)
	return resp, nil
}

func decodeJSON(resp *http.Response, v any) error {
	if !isSuccess(resp.StatusCode) {
		return newStatusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
