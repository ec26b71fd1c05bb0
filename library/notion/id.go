package notion

import (
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/google/uuid"
)

// NormalizeID returns the dashed form of a Notion object id.
//
// Both the dashed form and the 32 hex characters copied from a page url are accepted.
func NormalizeID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty notion id")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(err, "invalid notion id %q", raw)
	}

	return id.String(), nil
}

// IsID reports whether raw looks like a Notion object id
func IsID(raw string) bool {
	_, err := NormalizeID(raw)
	return err == nil
}
