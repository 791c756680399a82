package repository

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// newRecordID generates a client-side record identifier for table.
// Generating ids before the write lets an atomic batch reference the
// new record from its sibling statements.
func newRecordID(table string) string {
	return table + ":" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// isUniqueConstraintError reports whether err is a unique index
// violation, which SurrealDB surfaces only as message text.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{"unique", "duplicate", "already exists", "already contains"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// extractRecordID normalizes the id shapes the driver may hand back
// into the "table:id" string form the rest of the code uses.
func extractRecordID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return v.String()
	case *models.RecordID:
		if v != nil {
			return v.String()
		}
		return ""
	case map[string]interface{}:
		tb, tbOK := v["tb"].(string)
		inner, idOK := v["id"].(string)
		if tbOK && idOK {
			return tb + ":" + inner
		}
	}

	// Unknown shape: round-trip through JSON into a RecordID.
	data, err := json.Marshal(id)
	if err != nil {
		return ""
	}
	var rid models.RecordID
	if json.Unmarshal(data, &rid) != nil {
		return ""
	}
	return rid.String()
}

// datetime wraps a time value for use as a query variable.
func datetime(t time.Time) models.CustomDateTime {
	return models.CustomDateTime{Time: t}
}

// extractQueryResults returns the result rows of the first statement
// in a SurrealDB response.
func extractQueryResults(result interface{}) ([]interface{}, bool) {
	results, ok := result.([]interface{})
	if !ok || len(results) == 0 {
		return nil, false
	}
	if first, ok := results[0].(map[string]interface{}); ok {
		if rows, ok := first["result"].([]interface{}); ok {
			return rows, true
		}
	}
	// Some responses are already the bare row array.
	return results, true
}

// extractCountValue coerces the numeric types CBOR decoding may
// produce down to an int.
func extractCountValue(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	default:
		return 0
	}
}

// Field getters over decoded row maps. Missing or mistyped fields
// yield zero values; the repositories treat those as absent.

func getString(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

func getInt(m map[string]interface{}, key string) int {
	return extractCountValue(m[key])
}

func getBool(m map[string]interface{}, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func getTime(m map[string]interface{}, key string) time.Time {
	switch v := m[key].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	case time.Time:
		return v
	case models.CustomDateTime:
		return v.Time
	case *models.CustomDateTime:
		if v != nil {
			return v.Time
		}
	}
	return time.Time{}
}

func getStringSlice(m map[string]interface{}, key string) []string {
	items, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		} else if id := extractRecordID(item); id != "" {
			out = append(out, id)
		}
	}
	return out
}
