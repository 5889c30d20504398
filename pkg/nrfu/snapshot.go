package nrfu

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Field is a string attribute read from a snapshot record. Set is false when
// the device output did not carry the attribute at all, which validators
// report as missing data rather than comparing against "".
type Field struct {
	Value string
	Set   bool
}

func fieldOf(rec gjson.Result, name string) Field {
	v := rec.Get(gjson.Escape(name))
	if !v.Exists() {
		return Field{}
	}
	return Field{Value: v.String(), Set: true}
}

// parseDocument validates data as JSON and returns the value at container,
// which must be an object (or an array when wantArray is set).
func parseDocument(data []byte, container string, wantArray bool) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%w: not valid JSON", ErrBadSnapshot)
	}
	doc := gjson.ParseBytes(data)
	if container == "" {
		if !doc.IsObject() {
			return gjson.Result{}, fmt.Errorf("%w: top level is not an object", ErrBadSnapshot)
		}
		return doc, nil
	}

	v := doc.Get(container)
	switch {
	case !v.Exists():
		return gjson.Result{}, fmt.Errorf("%w: %q not found", ErrBadSnapshot, container)
	case wantArray && !v.IsArray():
		return gjson.Result{}, fmt.Errorf("%w: %q is not a list", ErrBadSnapshot, container)
	case !wantArray && !v.IsObject():
		return gjson.Result{}, fmt.Errorf("%w: %q is not an object", ErrBadSnapshot, container)
	}
	return v, nil
}

// eachEntry walks an object in document order.
func eachEntry(obj gjson.Result, fn func(key string, val gjson.Result)) {
	obj.ForEach(func(k, v gjson.Result) bool {
		fn(k.String(), v)
		return true
	})
}

// missingField builds the error for a resolved record lacking an attribute.
func missingField(key, field string) error {
	return &MissingError{
		Message: fmt.Sprintf("No %s for %s", field, key),
		Missing: key + "." + field,
	}
}
