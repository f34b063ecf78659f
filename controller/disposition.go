package controller

import "regexp"

var dispositionFilename = regexp.MustCompile(`filename="([^"]+)"`)

// ResolveFilename picks the name suggested by a Content-Disposition header,
// falling back to title when the header is empty or carries no quoted filename.
func ResolveFilename(contentDisposition, title string) string {
	if contentDisposition == "" {
		return title
	}
	match := dispositionFilename.FindStringSubmatch(contentDisposition)
	if len(match) < 2 || match[1] == "" {
		return title
	}
	return match[1]
}
