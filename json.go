package ek60

import (
	"encoding/json"
	"os"
)

// JsonDumps marshals v to a compact JSON string. Used for attaching small
// structured values (load reports, calibration snapshots) as TileDB array
// metadata, where the API wants a string payload rather than raw bytes.
func JsonDumps(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// JsonIndentDumps marshals v to an indented JSON string, for the CLI's
// human-readable report output.
func JsonIndentDumps(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteJson marshals v and writes it to path, creating or truncating the
// file.
func WriteJson(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
