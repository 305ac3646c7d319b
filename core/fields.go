package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// FlexDate decodes a date posted by an HTML form: "YYYY-MM-DD", RFC 3339, or
// "" to clear the value.
type FlexDate struct {
	Time  time.Time
	Valid bool
}

func (d *FlexDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = FlexDate{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		*d = FlexDate{}
		return nil
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		*d = FlexDate{Time: t, Valid: true}
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = FlexDate{Time: t.UTC(), Valid: true}
	return nil
}

func (d FlexDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time)
}

// Ptr returns nil for a cleared date.
func (d FlexDate) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

// FlexFloat decodes a JSON number or a numeric string; "" clears the value.
type FlexFloat struct {
	Float float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = FlexFloat{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = FlexFloat{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*f = FlexFloat{Float: v, Valid: true}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid number: %w", err)
	}
	*f = FlexFloat{Float: v, Valid: true}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Float)
}

// Ptr returns nil for a cleared number.
func (f FlexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float
	return &v
}
