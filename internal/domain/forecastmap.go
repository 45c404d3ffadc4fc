package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ForecastEntry is one formatted date key and its trend value.
type ForecastEntry struct {
	Date  string
	Value float64
}

// ForecastMap is a date->value mapping that keeps insertion order. Go maps
// randomize iteration order, so a plain map[string]float64 cannot guarantee
// the chronological JSON object the API promises.
type ForecastMap []ForecastEntry

// Get returns the value for a formatted date key.
func (m ForecastMap) Get(date string) (float64, bool) {
	for _, e := range m {
		if e.Date == date {
			return e.Value, true
		}
	}
	return 0, false
}

// MarshalJSON renders the map as a JSON object with keys in insertion order.
func (m ForecastMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Date)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving document order of its keys.
func (m *ForecastMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("forecast map: expected JSON object, got %v", tok)
	}

	out := ForecastMap{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("forecast map: non-string key %v", keyTok)
		}
		var val float64
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("forecast map: value for %q: %w", key, err)
		}
		out = append(out, ForecastEntry{Date: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}
