package covers

import (
	"bytes"
	"context"
	"encoding/base64"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/catalog/pkg/models"
)

// InlineCover is the JSON document the edit form submits for a re-uploaded
// cover. Data holds the base64 encoded file contents.
type InlineCover struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// ParseInline decodes the raw value of the inline cover field.
func ParseInline(raw string) (*InlineCover, error) {
	cover := &InlineCover{}
	if err := json.Unmarshal([]byte(raw), cover); err != nil {
		return nil, errors.Wrap(err, "malformed inline cover")
	}
	if cover.Data == "" {
		return nil, errors.New("inline cover has no data")
	}
	return cover, nil
}

// StoreInline decodes raw, writes the blob under a new name and records the
// name and type on book. Unlike Store, the declared type is taken as given.
// When no type is declared it is sniffed from the content.
func (s *Store) StoreInline(ctx context.Context, book *models.Book, raw string) error {
	cover, err := ParseInline(raw)
	if err != nil {
		return err
	}

	data, err := base64.StdEncoding.DecodeString(cover.Data)
	if err != nil {
		return errors.Wrap(err, "malformed inline cover data")
	}

	mimeType := cover.Type
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}

	name, err := s.write(ctx, bytes.NewReader(data), mimeType)
	if err != nil {
		return err
	}

	book.CoverImageName = &name
	book.CoverImageType = &mimeType
	return nil
}
