// Package iojson writes command output as JSON: indented documents, one
// object per line streams, and a fixed error envelope.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the envelope written in place of a document when a command run
// with JSON output fails.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// marshalFailure is the envelope for a value that json could not encode. It
// is built by hand so it cannot fail itself.
func marshalFailure(msg string, cause error) string {
	m, _ := json.Marshal(msg)
	c, _ := json.Marshal(cause.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, m, c)
}

// MarshalError renders msg and data as an indented Error.
func MarshalError(msg string, data map[string]any) string {
	bits, err := json.MarshalIndent(Error{Message: msg, Data: data}, "", "  ")
	if err != nil {
		return marshalFailure(msg, err)
	}
	return string(bits)
}

// WriteError writes an Error envelope to w.
func WriteError(w io.Writer, msg string, data map[string]any) error {
	_, err := fmt.Fprintln(w, MarshalError(msg, data))
	return err
}

// WriteWith writes obj as indented JSON to w. Encoding failures are reported
// on ew as an Error envelope and do not return an error.
func WriteWith(w, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, err = fmt.Fprintln(ew, marshalFailure("error marshaling in iojson.Write", err))
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLine writes obj as a single compact JSON line.
func WriteLine(w io.Writer, obj any) error {
	return json.NewEncoder(w).Encode(obj)
}
