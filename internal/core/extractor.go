package core

import (
	"bytes"
	"context"
	"log"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"golang.org/x/sync/errgroup"
)

// Attachment is one uploaded file accompanying a chat message. Attachments
// are never persisted: images are forwarded inline to the multimodal backend
// and text-bearing documents are extracted into the outbound prompt.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IsImage reports whether the attachment should be forwarded as inline
// multimodal input.
func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.mimeType(), "image/")
}

// IsDocument reports whether the attachment carries extractable text.
func (a *Attachment) IsDocument() bool {
	switch a.mimeType() {
	case "text/plain", "text/markdown", "text/csv", "application/pdf":
		return true
	}
	return false
}

func (a *Attachment) mimeType() string {
	ct := a.ContentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))
	if ct == "" || ct == "application/octet-stream" {
		// Fall back to the filename extension; unknown extensions come back
		// as application/octet-stream again, which no branch treats as text.
		ct = docconv.MimeTypeByExtension(filepath.Base(a.Filename))
	}
	return ct
}

// ExtractDocumentTexts pulls the text out of every text-bearing attachment,
// preserving input order. Plain text variants are read directly; PDFs go
// through docconv. A failed extraction is logged and skipped rather than
// failing the whole send.
func ExtractDocumentTexts(ctx context.Context, attachments []*Attachment) []string {
	texts := make([]string, len(attachments))
	g, ctx := errgroup.WithContext(ctx)

	for i, a := range attachments {
		if !a.IsDocument() {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			switch mt := a.mimeType(); mt {
			case "text/plain", "text/markdown", "text/csv":
				texts[i] = strings.TrimSpace(string(a.Data))
			default:
				res, err := docconv.Convert(bytes.NewReader(a.Data), mt, false)
				if err != nil {
					log.Printf("extractor: %s (%s): %v", a.Filename, mt, err)
					return nil
				}
				texts[i] = strings.TrimSpace(res.Body)
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []string
	for i, t := range texts {
		if t == "" {
			continue
		}
		out = append(out, "--- Attached file: "+attachments[i].Filename+" ---\n"+t)
	}
	return out
}
