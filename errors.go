package homeworkbot

import (
	"fmt"
	"net/http"
)

// TransportError reports that the request to the review API did not
// complete: connection refused, timeout, cancelled context and the like.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("review API request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError reports a review API response with a status other than 200.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("review API returned HTTP %d %s, expected 200",
		e.StatusCode, http.StatusText(e.StatusCode))
}

// MalformedResponseError reports a response body that is not valid JSON.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("review API response is not valid JSON: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SchemaError reports a JSON document that does not have the expected shape.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "unexpected review API response: " + e.Reason
}

// FieldMissingError reports a homework record without a required field.
type FieldMissingError struct {
	Field string
}

func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("homework record has no %q field", e.Field)
}

// UnknownStatusError reports a status that is not in the verdict catalog.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown homework status %q", e.Status)
}

// NotificationError reports a chat message that could not be delivered.
// It is logged and never stops the polling loop.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("failed to send notification: %v", e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
