// Package storage is the S3-compatible export target for paper configurations.
// Exports are streamed; nothing is written to local disk.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ExportContentType is the media type of every exported configuration.
const ExportContentType = "application/json"

// PaperExport is one configuration document to publish for a paper.
type PaperExport struct {
	PaperID int64
	Title   string
	Level   string
	Body    []byte
}

// ExportedObject identifies a stored export.
type ExportedObject struct {
	Key  string
	Size int64
	ETag string
}

// Storage publishes paper exports to an object store.
type Storage interface {
	// PutExport uploads e under a fresh key below papers/<id>/.
	PutExport(ctx context.Context, e PaperExport) (ExportedObject, error)
	// Remove deletes an export by key.
	Remove(ctx context.Context, key string) error
	// PresignDownload returns a time-limited download URL for key.
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ExportKey lays out export objects as papers/<paper id>/<export id>.json.
func ExportKey(paperID int64, exportID string) string {
	return fmt.Sprintf("papers/%d/%s.json", paperID, exportID)
}

// exportMetadata is stored as S3 user metadata. Titles are query-escaped
// because metadata values must be ASCII.
func exportMetadata(e PaperExport) map[string]string {
	return map[string]string{
		"paper-id":    strconv.FormatInt(e.PaperID, 10),
		"paper-title": url.QueryEscape(e.Title),
		"paper-level": url.QueryEscape(e.Level),
	}
}

// downloadName turns a paper title into a safe attachment file name.
func downloadName(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "paper"
	}
	return name + ".json"
}
