package models

import "io"

// FileRecord describes a stored file as returned by the list and details endpoints
type FileRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UploadTime  string `json:"uploadTime"`
}

// UploadRequest is sent to the storage API as multipart form data
type UploadRequest struct {
	FileName    string
	File        io.Reader
	Title       string
	Description string
}

// SearchRequest is the JSON body of a search call. Either field may be empty.
type SearchRequest struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}
