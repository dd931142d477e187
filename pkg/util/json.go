package util

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// PrintPrettyJSON writes v to stdout as indented JSON.
func PrintPrettyJSON(v any) error {
	return WritePrettyJSON(os.Stdout, v)
}

// WritePrettyJSON writes v to w as indented JSON followed by a newline.
// Nil slices are printed as "[]" rather than "null".
func WritePrettyJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if string(data) == "null" {
		data = []byte("[]")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
