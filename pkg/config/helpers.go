package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cperrin88/cavern/pkg/errors"
)

var durationType = reflect.TypeOf(time.Duration(0))

// SetValue sets a configuration value by its dotted key, e.g.
// "settings.log_level" or "api.oauth.client_id". The result is validated.
func (c *Config) SetValue(key, value string) error {
	field, ok := c.lookup(key)
	if !ok {
		return errors.ErrUnknownConfigKeyWithName(key)
	}

	prev := reflect.New(field.Type()).Elem()
	prev.Set(field)
	if err := setField(field, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := c.Validate(); err != nil {
		field.Set(prev)
		return err
	}
	if key == "api.api_key" {
		c.envOverride = false
	}
	return nil
}

// GetValue returns the value of a dotted key as a string.
func (c *Config) GetValue(key string) (string, error) {
	field, ok := c.lookup(key)
	if !ok {
		return "", errors.ErrUnknownConfigKeyWithName(key)
	}
	return formatField(field), nil
}

// Keys returns every settable key in sorted order.
func (c *Config) Keys() []string {
	var keys []string
	walkFields(reflect.ValueOf(c).Elem(), "", func(key string, _ reflect.Value) {
		keys = append(keys, key)
	})
	sort.Strings(keys)
	return keys
}

// ToMap flattens the configuration into dotted keys. The API key is masked.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)
	walkFields(reflect.ValueOf(c).Elem(), "", func(key string, v reflect.Value) {
		result[key] = formatField(v)
	})
	if result["api.api_key"] != "" {
		result["api.api_key"] = "********"
	}
	return result
}

func (c *Config) lookup(key string) (reflect.Value, bool) {
	v := reflect.ValueOf(c).Elem()
	for _, part := range strings.Split(key, ".") {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		next, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, false
		}
		v = next
	}
	if v.Kind() == reflect.Struct {
		return reflect.Value{}, false
	}
	return v, true
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if yamlKey(t.Field(i)) == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func walkFields(v reflect.Value, prefix string, fn func(string, reflect.Value)) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := yamlKey(t.Field(i))
		if name == "" {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if f := v.Field(i); f.Kind() == reflect.Struct {
			walkFields(f, key, fn)
		} else {
			fn(key, f)
		}
	}
}

// yamlKey returns the yaml name of an exported field, or "".
func yamlKey(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func setField(f reflect.Value, value string) error {
	if f.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		f.SetInt(int64(d))
		return nil
	}
	switch f.Kind() {
	case reflect.String:
		f.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Float64:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		f.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		f.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", f.Type())
	}
	return nil
}

func formatField(f reflect.Value) string {
	if f.Type() == durationType {
		return time.Duration(f.Int()).String()
	}
	switch f.Kind() {
	case reflect.String:
		return f.String()
	case reflect.Int, reflect.Int64:
		return strconv.FormatInt(f.Int(), 10)
	case reflect.Float64:
		return strconv.FormatFloat(f.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(f.Bool())
	default:
		return fmt.Sprintf("%v", f.Interface())
	}
}
