// Package corpus holds the notes text that grounds every answer, plus the
// optional PDF attachment read alongside it at startup.
package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"rsc.io/pdf"
)

var ErrNotesUnavailable = errors.New("notes file unavailable")

// Corpus is immutable once built and safe for concurrent readers.
type Corpus struct {
	notes      string
	attachment []byte
	pages      int
}

func New(notes string, attachment []byte) *Corpus {
	c := &Corpus{notes: notes, attachment: attachment}
	if attachment != nil {
		c.pages = countPages(attachment)
	}
	return c
}

func (c *Corpus) Notes() string { return c.notes }

func (c *Corpus) NotesLoaded() bool { return len(c.notes) > 0 }

func (c *Corpus) AttachmentLoaded() bool { return c.attachment != nil }

// AttachmentPages is zero when no attachment is loaded or it could not be parsed.
func (c *Corpus) AttachmentPages() int { return c.pages }

// Load reads the required notes file and, best effort, the attachment.
// An empty attachmentPath skips the attachment.
func Load(notesPath, attachmentPath string) (*Corpus, error) {
	notes, err := readNotes(notesPath)
	if err != nil {
		return nil, err
	}
	slog.Info("notes loaded", "path", notesPath, "bytes", len(notes))

	attachment := readAttachment(attachmentPath)
	c := New(notes, attachment)
	if c.AttachmentLoaded() {
		slog.Info("attachment loaded", "path", attachmentPath, "bytes", len(attachment), "pages", c.pages)
	}
	return c, nil
}

func readNotes(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path is from application config, not user input
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotesUnavailable, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrNotesUnavailable, path)
	}
	return string(data), nil
}

func readAttachment(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path is from application config, not user input
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("attachment not found", "path", path)
		return nil
	}
	if err != nil {
		slog.Warn("failed to read attachment", "path", path, "error", err)
		return nil
	}
	return data
}

// countPages never fails the load; the attachment has no consumer beyond the health flag.
func countPages(data []byte) (n int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("failed to parse attachment as pdf", "panic", r)
			n = 0
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Warn("failed to parse attachment as pdf", "error", err)
		return 0
	}
	return r.NumPage()
}
