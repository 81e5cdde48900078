package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/vk/fixturegrid/internal/retry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var durationType = reflect.TypeOf(time.Duration(0))

// FixtureRetry returns the retry policy the named fixture block refers to,
// or nil when none is configured.
func (m *Model) FixtureRetry(name string) (*retry.Policy, error) {
	f, ok := m.Fixtures[name]
	if !ok || f.Retry == "" {
		return nil, nil
	}
	p, ok := m.Retries[f.Retry]
	if !ok {
		return nil, fmt.Errorf("retry policy %q is not defined", f.Retry)
	}
	return &p, nil
}

// DecodeFixtureArgs decodes the arguments of the named fixture block into
// target, a pointer to a struct whose fields carry `cty:"name"` tags. Fields
// without a configured argument keep their current value, so callers set
// defaults before decoding. An argument with no matching field is an error.
func (m *Model) DecodeFixtureArgs(name string, target any) error {
	f, ok := m.Fixtures[name]
	if !ok || len(f.Arguments) == 0 {
		return nil
	}

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() || structVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("fixture %q: decode target must be a non-nil pointer to a struct, got %T", name, target)
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	fields := make(map[string]reflect.Value)
	for i := 0; i < structType.NumField(); i++ {
		fieldDef := structType.Field(i)
		if !fieldDef.IsExported() {
			continue
		}
		tagName := strings.Split(fieldDef.Tag.Get("cty"), ",")[0]
		if tagName == "" || tagName == "-" {
			continue
		}
		fields[tagName] = structVal.Field(i)
	}

	argNames := make([]string, 0, len(f.Arguments))
	for argName := range f.Arguments {
		argNames = append(argNames, argName)
	}
	sort.Strings(argNames)

	for _, argName := range argNames {
		field, ok := fields[argName]
		if !ok {
			return fmt.Errorf("fixture %q: unsupported argument %q", name, argName)
		}
		if err := decodeValue(f.Arguments[argName], field); err != nil {
			return fmt.Errorf("fixture %q: failed to decode argument '%s': %w", name, argName, err)
		}
	}
	return nil
}

// decodeValue converts val to the Go type of field and stores it. Durations
// are written as strings such as "250ms".
func decodeValue(val cty.Value, field reflect.Value) error {
	if val.IsNull() {
		return nil
	}
	if !val.IsWhollyKnown() {
		return fmt.Errorf("value is not known")
	}

	if field.Type() == durationType {
		strVal, err := convert.Convert(val, cty.String)
		if err != nil {
			return err
		}
		d, err := time.ParseDuration(strVal.AsString())
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	wantType, err := gocty.ImpliedType(reflect.Zero(field.Type()).Interface())
	if err != nil {
		return fmt.Errorf("could not imply cty type from Go type %s: %w", field.Type(), err)
	}
	converted, err := convert.Convert(val, wantType)
	if err != nil {
		return fmt.Errorf("want %s: %w", wantType.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, field.Addr().Interface())
}
