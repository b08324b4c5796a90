package database

import (
	"encoding/json"
	"fmt"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
)

// encodeAttachments returns the JSON column value for a message's
// attachments, or nil for SQL NULL when there are none.
func encodeAttachments(list []models.Attachment) (*string, error) {
	if len(list) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encoding attachments: %w", err)
	}
	s := string(b)
	return &s, nil
}

func decodeAttachments(raw []byte) ([]models.Attachment, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []models.Attachment
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding attachments: %w", err)
	}
	return list, nil
}
