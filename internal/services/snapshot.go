package services

import "time"

// Snapshot maps are schema-less on the wire: values round-trip through
// JSON, so a reader may see either the typed value the writer put in
// (time.Time, int, []string) or its decoded JSON form (string, float64,
// []interface{}). These coercions accept both.

func snapshotString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func snapshotStringPtr(v interface{}) *string {
	switch value := v.(type) {
	case nil:
		return nil
	case string:
		return &value
	case *string:
		return value
	default:
		return nil
	}
}

func snapshotInt(v interface{}) (int, bool) {
	switch value := v.(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case float64:
		return int(value), true
	default:
		return 0, false
	}
}

func snapshotBool(v interface{}) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func snapshotTime(v interface{}) *time.Time {
	switch value := v.(type) {
	case nil:
		return nil
	case time.Time:
		return &value
	case *time.Time:
		return value
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
			return &parsed
		}
		return nil
	default:
		return nil
	}
}

func snapshotStringSlice(v interface{}) []string {
	switch value := v.(type) {
	case nil:
		return nil
	case []string:
		return value
	case []interface{}:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
