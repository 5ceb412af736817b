package appliers

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
	"github.com/google/uuid"
)

// EntityID returns data["id"] as a string, or "" when absent or not a string.
func EntityID(data map[string]any) string {
	s, _ := data["id"].(string)
	return s
}

// uuidField validates and canonicalises a uuid-valued field.
func uuidField(name, v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", common.ErrMalformedChange, name)
	}
	u, err := uuid.Parse(v)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrMalformedChange, name, err)
	}
	return u.String(), nil
}

// stringField returns the first of keys holding a string. JSON null and
// absent keys yield nil.
func stringField(data map[string]any, keys ...string) *string {
	for _, k := range keys {
		if s, ok := data[k].(string); ok {
			return &s
		}
	}
	return nil
}

func stringValue(data map[string]any, keys ...string) string {
	if s := stringField(data, keys...); s != nil {
		return *s
	}
	return ""
}

// timeField parses the first of keys holding an RFC 3339 timestamp.
func timeField(data map[string]any, keys ...string) (*time.Time, error) {
	s := stringField(data, keys...)
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrMalformedChange, keys[0], err)
	}
	return &t, nil
}

// contactName picks name, then raw.name, then the default display name.
func contactName(data map[string]any) string {
	if s := stringValue(data, "name"); s != "" {
		return s
	}
	if raw, ok := data["raw"].(map[string]any); ok {
		if s := stringValue(raw, "name"); s != "" {
			return s
		}
	}
	return models.DefaultContactName
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
