package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldError reports a payload value that could not be interpreted.
type FieldError struct {
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid value %s: %s", e.Value, e.Reason)
}

// YesNo is a form answer sent either as a JSON boolean or as "Yes"/"No".
type YesNo bool

func (y *YesNo) UnmarshalJSON(b []byte) error {
	var asBool bool
	if err := json.Unmarshal(b, &asBool); err == nil {
		*y = YesNo(asBool)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &FieldError{Value: string(b), Reason: `expected true, false, "Yes" or "No"`}
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		*y = true
	case "no":
		*y = false
	default:
		return &FieldError{Value: strconv.Quote(s), Reason: `expected "Yes" or "No"`}
	}
	return nil
}

func (y YesNo) Bool() bool { return bool(y) }

// FlexInt is an integer sent as a JSON number or a numeric string. An empty
// string decodes to an explicit clear (Null).
type FlexInt struct {
	Value int
	Null  bool
}

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return &FieldError{Value: string(b), Reason: "expected a whole number"}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = FlexInt{Null: true}
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return &FieldError{Value: strconv.Quote(s), Reason: "expected a whole number"}
		}
		*n = FlexInt{Value: v}
		return nil
	}

	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return &FieldError{Value: string(b), Reason: "expected a whole number"}
	}
	*n = FlexInt{Value: v}
	return nil
}

func (n FlexInt) MarshalJSON() ([]byte, error) {
	if n.Null {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func NewFlexInt(v int) *FlexInt { return &FlexInt{Value: v} }

// Date is a calendar date sent as YYYY-MM-DD or RFC 3339. An empty string
// decodes to the zero value, which callers treat as an explicit clear.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &FieldError{Value: string(b), Reason: "expected a date string"}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = Date{}
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		*d = Date{Time: t}
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return &FieldError{Value: strconv.Quote(s), Reason: "expected YYYY-MM-DD"}
	}
	y, m, day := t.Date()
	*d = Date{Time: time.Date(y, m, day, 0, 0, 0, 0, time.UTC)}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func NewDate(t time.Time) *Date { return &Date{Time: t} }

// ParseDate parses YYYY-MM-DD for query strings and CLI flags.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}

func StringPtr(s string) *string { return &s }

func YesNoPtr(b bool) *YesNo {
	y := YesNo(b)
	return &y
}
