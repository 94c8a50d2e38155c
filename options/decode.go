package options

import (
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/validation"
)

// Decode copies the options into out, a pointer to a struct whose fields
// carry mapstructure tags, and validates the result. Fields whose option is
// absent keep the value they had before the call, so callers pre-fill
// defaults. The last value of each option is used.
func (o *Options) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			trimStringHook,
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return errors.InvalidOption("", "cannot decode options").WithCause(err)
	}
	if err := dec.Decode(o.Map()); err != nil {
		return errors.InvalidOption(decodeFailedField(err), err.Error()).WithCause(err)
	}
	return validation.Validate(out)
}

// Decode is a convenience for decoding o into a fresh value of T.
func Decode[T any](o *Options, defaults T) (T, error) {
	out := defaults
	err := o.Decode(&out)
	return out, err
}

func trimStringHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() == reflect.String {
		return data, nil
	}
	return strings.TrimSpace(reflect.ValueOf(data).String()), nil
}

// decodeFailedField extracts the option name from a mapstructure error such
// as `'length' cannot parse 'abc' as float`.
func decodeFailedField(err error) string {
	msg := err.Error()
	start := strings.IndexByte(msg, '\'')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(msg[start+1:], '\'')
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
