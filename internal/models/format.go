package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// RecordFormat renders and reads records on the wire. The secondary
// attribute travels under AttrName ("edat", "alcada", ...).
type RecordFormat struct {
	AttrName string
}

// NewRecordFormat returns a RecordFormat for the given attribute name,
// falling back to DefaultAttributeName.
func NewRecordFormat(attrName string) RecordFormat {
	if attrName == "" {
		attrName = DefaultAttributeName
	}
	return RecordFormat{AttrName: attrName}
}

// MarshalUser encodes a record as a JSON object with keys in the order
// id, nom, attribute. Fields without a value are left out.
func (f RecordFormat) MarshalUser(usr User) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.writeUser(&buf, usr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalUsers encodes records as a JSON array. A nil slice is encoded as [].
func (f RecordFormat) MarshalUsers(users []User) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, usr := range users {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := f.writeUser(&buf, usr); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (f RecordFormat) writeUser(buf *bytes.Buffer, usr User) error {
	buf.WriteString(`{"id":`)
	buf.WriteString(strconv.FormatInt(usr.ID, 10))

	if usr.Nom != nil {
		nom, err := json.Marshal(*usr.Nom)
		if err != nil {
			return fmt.Errorf("error marshaling nom: %w", err)
		}
		buf.WriteString(`,"nom":`)
		buf.Write(nom)
	}

	if usr.Attr != nil {
		key, err := json.Marshal(f.AttrName)
		if err != nil {
			return fmt.Errorf("error marshaling attribute name: %w", err)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(*usr.Attr, 10))
	}

	buf.WriteByte('}')
	return nil
}

var errBodyNotObject = errors.New("request body is neither an object nor an array")

// DecodePayload reads nom and the attribute from a JSON object body.
// An empty body or an array yields an empty payload; any other top-level
// value is malformed. Values of the wrong kind are treated as absent;
// numeric strings and floats are coerced to integers.
func (f RecordFormat) DecodePayload(body []byte) (UserPayload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return UserPayload{}, nil
	}

	var top interface{}
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return UserPayload{}, fmt.Errorf("error unmarshaling request body: %w", err)
	}

	switch top.(type) {
	case []interface{}:
		return UserPayload{}, nil
	case map[string]interface{}:
	default:
		return UserPayload{}, errBodyNotObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return UserPayload{}, fmt.Errorf("error unmarshaling request body: %w", err)
	}

	return UserPayload{
		Nom:  decodeNom(fields["nom"]),
		Attr: DecodeAttr(fields[f.AttrName]),
	}, nil
}

func decodeNom(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var nom *string
	if err := json.Unmarshal(raw, &nom); err != nil {
		return nil
	}
	return nom
}

// DecodeAttr coerces a raw JSON value into an attribute value.
func DecodeAttr(raw json.RawMessage) *int64 {
	if raw == nil {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil
	}

	return CoerceAttr(value)
}

// fitsInt64 reports whether fl truncates to a representable int64.
// 2^63 itself is exactly representable as a float64 but not as an int64.
func fitsInt64(fl float64) bool {
	if math.IsNaN(fl) || math.IsInf(fl, 0) {
		return false
	}
	return fl >= math.MinInt64 && fl < math.MaxInt64
}

// CoerceAttr converts a decoded JSON value (json.Number, float64, string)
// into an attribute value, or nil when it carries no integer.
func CoerceAttr(value interface{}) *int64 {
	var result int64
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			result = i
			break
		}
		fl, err := v.Float64()
		if err != nil || !fitsInt64(fl) {
			return nil
		}
		result = int64(fl)
	case float64:
		if !fitsInt64(v) {
			return nil
		}
		result = int64(v)
	case string:
		parsed, ok := ParseLeadingInt(v)
		if !ok {
			return nil
		}
		result = parsed
	default:
		return nil
	}
	return &result
}
