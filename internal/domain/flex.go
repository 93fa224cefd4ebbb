package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// FlexString accepts either a JSON string or a JSON number and keeps its
// textual form. Amounts arrive both ways depending on the client.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
		return nil
	}
	return &json.UnmarshalTypeError{
		Value: jsonKind(data[0]),
		Type:  reflect.TypeOf(FlexString("")),
	}
}

func (f FlexString) String() string {
	return string(f)
}

func jsonKind(b byte) string {
	switch b {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	}
	return "value"
}
