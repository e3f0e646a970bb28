// Package xmlprops decodes "payload-in-content" XML blobs into a flat
// field map. The payload convention is a single root element whose direct
// children are fields; a repeated child element name yields an ordered
// list value.
package xmlprops

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseError reports a malformed payload blob.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed payload XML: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Value holds either a single field value or an ordered list of values
// from a repeated element. The two shapes are distinct and must be
// consumed explicitly.
type Value struct {
	scalar string
	list   []string
	isList bool
}

func Scalar(s string) Value {
	return Value{scalar: s}
}

func List(items []string) Value {
	return Value{list: items, isList: true}
}

func (v Value) IsList() bool {
	return v.isList
}

// Scalar returns the single value. Only meaningful when IsList is false.
func (v Value) Scalar() string {
	return v.scalar
}

// List returns the ordered values. Only meaningful when IsList is true.
func (v Value) List() []string {
	return v.list
}

// Strings returns the value as an ordered list regardless of shape.
// Scalars become one-element lists; list order is preserved.
func (v Value) Strings() []string {
	if v.isList {
		out := make([]string, len(v.list))
		copy(out, v.list)
		return out
	}
	return []string{v.scalar}
}

// Properties is the raw field map decoded from a payload blob.
type Properties map[string]Value

// Parse decodes blob into a Properties map. The field value is the
// trimmed character data of the child element, including text of any
// nested elements. A malformed blob fails with *ParseError.
func Parse(blob string) (Properties, error) {
	dec := xml.NewDecoder(strings.NewReader(blob))

	if err := skipToRoot(dec); err != nil {
		return nil, &ParseError{Err: err}
	}

	props := make(Properties)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			text, err := elementText(dec)
			if err != nil {
				return nil, &ParseError{Err: err}
			}
			addField(props, t.Name.Local, text)
		case xml.EndElement:
			// Root closed; anything but trailing whitespace is malformed.
			if err := drain(dec); err != nil {
				return nil, &ParseError{Err: err}
			}
			return props, nil
		}
	}
}

func skipToRoot(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return errors.New("no root element")
		}
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.StartElement); ok {
			return nil
		}
	}
}

// elementText consumes the current element through its end tag and
// returns the accumulated character data, trimmed.
func elementText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func addField(props Properties, name, text string) {
	existing, ok := props[name]
	if !ok {
		props[name] = Scalar(text)
		return
	}
	if existing.isList {
		existing.list = append(existing.list, text)
		props[name] = existing
		return
	}
	props[name] = List([]string{existing.scalar, text})
}

func drain(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return errors.New("trailing content after root element")
			}
		case xml.Comment, xml.ProcInst:
			// ignore
		default:
			return errors.New("trailing content after root element")
		}
	}
}
