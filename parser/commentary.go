package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aluiziolira/go-cricket-live/models"
)

// ErrEmptyDocument is returned when a feed body has no content.
var ErrEmptyDocument = errors.New("parser: empty document")

// ParseCommentary decodes the commentary feed of a match. Fields missing
// from the feed keep their zero value; unknown fields are ignored.
func ParseCommentary(data []byte) (*models.Commentary, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	var c models.Commentary
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode commentary: %w", err)
	}
	return &c, nil
}
