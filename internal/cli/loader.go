package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/filtertree/internal/codec"
	"github.com/roach88/filtertree/internal/config"
	"github.com/roach88/filtertree/internal/field"
	"github.com/roach88/filtertree/internal/query"
)

// Error codes for CLI input handling.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeUsage        = "E002" // Missing flag or bad argument
	ErrCodeDecodeFailed = "E004" // Input could not be decoded
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeWriteFailed  = "E007" // File write error
)

// LoadError represents an error that occurred while reading CLI input.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// readInput reads path, mapping a missing file to ErrCodeNotFound.
func readInput(kind, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s file not found: %s", kind, path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading %s file %s", kind, path), Err: err}
	}
	return data, nil
}

// LoadQuery reads a query envelope in JSON or YAML. Unversioned documents
// are accepted only when strict_version is off.
func LoadQuery(path string, cfg *config.Options) (*query.Group, error) {
	data, err := readInput("query", path)
	if err != nil {
		return nil, err
	}
	root, err := codec.Decode(data, cfg.DecodeOptions()...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding query %s", path), Err: err}
	}
	return root, nil
}

// decodeList decodes a JSON or YAML document into v.
func decodeList(data []byte, v any) error {
	if codec.IsJSON(data) {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

// LoadFields reads a list of field definitions in JSON or YAML.
func LoadFields(path string) (*field.Set, error) {
	data, err := readInput("fields", path)
	if err != nil {
		return nil, err
	}
	var defs []field.Definition
	if err := decodeList(data, &defs); err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding fields %s", path), Err: err}
	}
	for i, def := range defs {
		if def.Key == "" || !def.Type.Valid() {
			return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("fields %s: entry %d needs a key and a type", path, i)}
		}
	}
	return field.NewSet(defs...), nil
}

// LoadRecords reads a list of records in JSON or YAML.
func LoadRecords(path string) ([]map[string]any, error) {
	data, err := readInput("data", path)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := decodeList(data, &records); err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding records %s", path), Err: err}
	}
	return records, nil
}

// loadFailure reports a load error through formatter and converts it into
// a command error.
func loadFailure(formatter *OutputFormatter, err error) error {
	code, message := ErrCodeGeneric, err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
		message = loadErr.Message
		if loadErr.Err != nil {
			message = fmt.Sprintf("%s: %v", loadErr.Message, loadErr.Err)
		}
	}
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, code, err)
}

// usageFailure reports a missing flag or a bad argument.
func usageFailure(formatter *OutputFormatter, message string) error {
	_ = formatter.Error(ErrCodeUsage, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeUsage, message))
}
