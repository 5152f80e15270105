package config

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// ExitCodes is the exit-code tolerance policy of a stage.
// In TOML it is written either as a boolean (`ignore-exit-code = true`,
// tolerating every nonzero code) or as a list of specific codes
// (`ignore-exit-code = [1, 2]`). The zero value tolerates nothing.
type ExitCodes struct {
	All   bool
	Codes []int
}

// Tolerates reports whether a nonzero exit code should be treated as success.
func (e ExitCodes) Tolerates(code int) bool {
	if e.All {
		return true
	}

	return slices.Contains(e.Codes, code)
}

// MarshalTOML renders the policy in its boolean or list form.
func (e ExitCodes) MarshalTOML() ([]byte, error) {
	if len(e.Codes) == 0 {
		if e.All {
			return []byte("true"), nil
		}

		return []byte("false"), nil
	}

	out := "["
	for i, code := range e.Codes {
		if i > 0 {
			out += ", "
		}

		out += fmt.Sprintf("%d", code)
	}

	return []byte(out + "]"), nil
}

// ExitCodesDecodeHook converts the boolean or integer-list form read from a
// config file into an ExitCodes value.
func ExitCodesDecodeHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(ExitCodes{}) {
			return data, nil
		}

		switch v := data.(type) {
		case bool:
			return ExitCodes{All: v}, nil
		case []any:
			codes := make([]int, len(v))

			for i, raw := range v {
				switch code := raw.(type) {
				case int:
					codes[i] = code
				case int64:
					codes[i] = int(code)
				case float64:
					codes[i] = int(code)
				default:
					return nil, fmt.Errorf("invalid exit code '%v' of type %T", raw, raw)
				}
			}

			return ExitCodes{Codes: codes}, nil
		case []int:
			return ExitCodes{Codes: v}, nil
		default:
			return nil, fmt.Errorf("invalid ignore-exit-code value '%v' of type %T", data, data)
		}
	}
}
