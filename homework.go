package homeworkbot

import (
	"encoding/json"
	"fmt"
	"math"
)

// Record is one raw homework object from the review API response.
type Record map[string]any

// response field names
const (
	fieldHomeworks   = "homeworks"
	fieldCurrentDate = "current_date"
	fieldName        = "homework_name"
	fieldStatus      = "status"
	fieldUpdatedAt   = "date_updated"
)

// CheckResponse validates a decoded review API document and returns its
// homework records in API order. The first record is the most recent one.
//
// An empty homeworks list is a valid response meaning nothing changed in
// the queried window. CheckResponse returns a [*SchemaError] when doc is
// not an object, has no homeworks key, or homeworks is not a list of
// objects.
func CheckResponse(doc any) ([]Record, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &SchemaError{Reason: fmt.Sprintf("expected a JSON object, got %s", jsonKind(doc))}
	}

	raw, ok := obj[fieldHomeworks]
	if !ok {
		return nil, &SchemaError{Reason: fmt.Sprintf("key %q is missing", fieldHomeworks)}
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, &SchemaError{Reason: fmt.Sprintf("%q must be a list, got %s", fieldHomeworks, jsonKind(raw))}
	}

	records := make([]Record, 0, len(list))
	for i, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, &SchemaError{Reason: fmt.Sprintf("%s[%d] must be an object, got %s", fieldHomeworks, i, jsonKind(item))}
		}
		records = append(records, Record(rec))
	}
	return records, nil
}

// NewWorkItem extracts the tracked fields from a homework record.
//
// It returns a [*FieldMissingError] when homework_name or status is absent
// or not a string. date_updated is optional.
func NewWorkItem(rec Record) (WorkItem, error) {
	name, err := stringField(rec, fieldName)
	if err != nil {
		return WorkItem{}, err
	}
	status, err := stringField(rec, fieldStatus)
	if err != nil {
		return WorkItem{}, err
	}

	item := WorkItem{Name: name, Status: Status(status)}
	if updated, ok := rec[fieldUpdatedAt].(string); ok {
		item.UpdatedAt = updated
	}
	return item, nil
}

// ParseStatus renders the notification text for a homework record.
//
// Returns a [*FieldMissingError] for an incomplete record and an
// [*UnknownStatusError] for a status outside the verdict catalog.
func ParseStatus(rec Record) (string, error) {
	item, err := NewWorkItem(rec)
	if err != nil {
		return "", err
	}
	return RenderStatusMessage(item)
}

// RenderStatusMessage formats the status change message for item.
func RenderStatusMessage(item WorkItem) (string, error) {
	verdict, ok := Verdict(item.Status)
	if !ok {
		return "", &UnknownStatusError{Status: string(item.Status)}
	}
	return fmt.Sprintf(`Status changed for "%s": %s`, item.Name, verdict), nil
}

// CurrentDate returns the server clock echoed in the current_date field.
// ok is false when the field is absent or not an integral number.
func CurrentDate(doc any) (ts int64, ok bool) {
	obj, isObj := doc.(map[string]any)
	if !isObj {
		return 0, false
	}

	switch v := obj[fieldCurrentDate].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func stringField(rec Record, key string) (string, error) {
	v, ok := rec[key].(string)
	if !ok {
		return "", &FieldMissingError{Field: key}
	}
	return v, nil
}

// jsonKind names the JSON type of a decoded value for error messages.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
