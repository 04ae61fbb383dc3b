package rpc

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexUint decodes integers that gateways serve either as JSON numbers or as quoted strings.
type flexUint uint64

func (f *flexUint) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexUint(n)
	return nil
}

// Event is an ABCI event as rendered by the REST gateway.
type Event struct {
	Type       string           `json:"type"`
	Attributes []EventAttribute `json:"attributes"`
}

// EventAttribute is one key/value pair of an Event.
type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// findAttribute returns the first value of key in the first event of the given type.
func findAttribute(events []Event, eventType, key string) (string, bool) {
	for _, ev := range events {
		if ev.Type != eventType {
			continue
		}
		for _, attr := range ev.Attributes {
			if attr.Key == key {
				return attr.Value, true
			}
		}
	}
	return "", false
}

// nonEmptyArray reports whether raw is a JSON array with at least one element.
func nonEmptyArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '[' {
		return false
	}
	return len(bytes.TrimSpace(raw[1:len(raw)-1])) > 0
}
