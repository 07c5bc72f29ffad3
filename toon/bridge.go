package toon

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Marshal renders an arbitrary Go value as TOON text using the default
// encoder options. See FromInterface for the supported input shapes.
func Marshal(v interface{}) (string, error) {
	return NewEncoder(DefaultEncodeOptions()).Marshal(v)
}

// Marshal renders an arbitrary Go value as TOON text.
func (enc *Encoder) Marshal(v interface{}) (string, error) {
	val, err := FromInterface(v)
	if err != nil {
		return "", err
	}
	return enc.Encode(val)
}

// Unmarshal parses TOON text into out using the default decoder options.
// out may be a *Value, a pointer to a Go struct, map, slice, or scalar, or
// a *interface{} for a fully dynamic result.
func Unmarshal(text string, out interface{}) error {
	return NewDecoder(DefaultDecodeOptions()).Unmarshal(text, out)
}

// Unmarshal parses TOON text into out. Struct fields bind by `toon` tag,
// falling back to the field name; RFC 3339 strings decode into time.Time
// fields.
func (d *Decoder) Unmarshal(text string, out interface{}) error {
	v, err := d.Decode(text)
	if err != nil {
		return err
	}

	switch target := out.(type) {
	case *Value:
		*target = v
		return nil
	case *interface{}:
		*target = ToInterface(v)
		return nil
	}

	md, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "toon",
		Result:     out,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return errors.Wrap(err, "toon: building unmarshal decoder")
	}
	if err := md.Decode(ToInterface(v)); err != nil {
		return errors.Wrap(err, "toon: unmarshal")
	}
	return nil
}

// FromInterface converts a Go value into a Value tree. It accepts Values
// (returned as-is), nils, booleans, strings, all numeric kinds, json.Number,
// time.Time (rendered RFC 3339), slices and arrays, maps with string-castable keys
// (entries sorted by key for deterministic output), structs (exported
// fields, `toon` tag preferred over `json`), and pointers to any of these.
func FromInterface(v interface{}) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return NewBool(val), nil
	case string:
		return NewString(val), nil
	case time.Time:
		return NewString(val.Format(time.RFC3339)), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return NewInt(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "toon: number %q", string(val))
		}
		return NewFloat(f), nil
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return FromInterface(rv.Elem().Interface())

	case reflect.Bool:
		return NewBool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInt(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return NewFloat(float64(u)), nil
		}
		return NewInt(int64(u)), nil

	case reflect.Float32, reflect.Float64:
		return NewFloat(rv.Float()), nil

	case reflect.String:
		return NewString(rv.String()), nil

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null{}, nil
		}
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := FromInterface(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return NewList(items...), nil

	case reflect.Map:
		return fromMap(rv)

	case reflect.Struct:
		return fromStruct(rv)
	}

	return nil, &UnsupportedTypeError{TypeName: rv.Type().String()}
}

// fromMap converts a map, sorting entries by key so that equal maps always
// encode identically.
func fromMap(rv reflect.Value) (Value, error) {
	if rv.IsNil() {
		return Null{}, nil
	}

	keys := make([]string, 0, rv.Len())
	byKey := make(map[string]reflect.Value, rv.Len())
	for _, k := range rv.MapKeys() {
		name, err := cast.ToStringE(k.Interface())
		if err != nil {
			return nil, errors.Wrapf(err, "toon: map key of type %v", k.Type())
		}
		keys = append(keys, name)
		byKey[name] = rv.MapIndex(k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, name := range keys {
		fv, err := FromInterface(byKey[name].Interface())
		if err != nil {
			return nil, err
		}
		fields = append(fields, NewField(name, fv))
	}
	return NewObject(fields...), nil
}

func fromStruct(rv reflect.Value) (Value, error) {
	rt := rv.Type()
	var fields []Field
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}

		name, opts := fieldTag(sf)
		if name == "-" {
			continue
		}
		if opts.omitempty && rv.Field(i).IsZero() {
			continue
		}

		fv, err := FromInterface(rv.Field(i).Interface())
		if err != nil {
			return nil, err
		}
		fields = append(fields, NewField(name, fv))
	}
	return NewObject(fields...), nil
}

type tagOptions struct {
	omitempty bool
}

// fieldTag resolves a struct field's encoded name from its `toon` tag,
// falling back to `json`, then to the Go field name.
func fieldTag(sf reflect.StructField) (string, tagOptions) {
	tag := sf.Tag.Get("toon")
	if tag == "" {
		tag = sf.Tag.Get("json")
	}
	if tag == "" {
		return sf.Name, tagOptions{}
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = sf.Name
	}
	var opts tagOptions
	for _, p := range parts[1:] {
		if p == "omitempty" {
			opts.omitempty = true
		}
	}
	return name, opts
}

// ToInterface converts a Value tree into plain Go values: nil, bool,
// int64, float64, string, []interface{}, and map[string]interface{}. Object
// field order is not preserved in the map form.
func ToInterface(v Value) interface{} {
	switch val := v.(type) {
	case Null:
		return nil
	case Bool:
		return val.Value()
	case Int:
		return val.Value()
	case Float:
		return val.Value()
	case String:
		return val.Value()
	case List:
		items := make([]interface{}, val.Len())
		for i, elem := range val.Values() {
			items[i] = ToInterface(elem)
		}
		return items
	case Object:
		m := make(map[string]interface{}, val.Len())
		for _, f := range val.Fields() {
			m[f.Name] = ToInterface(f.Value)
		}
		return m
	}
	return nil
}
