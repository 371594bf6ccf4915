// internal/app/gateway/envelope.go
package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var errNoPayload = errors.New("payload missing")

// envelope is a decoded {success, message, ...} response body. Payload
// fields are kept raw and decoded on demand because backends disagree on
// where they put data.
type envelope struct {
	Success bool
	Message string
	fields  map[string]json.RawMessage
}

// parseEnvelope decodes body into an envelope. ok is false when the body is
// not a JSON object or lacks a boolean success flag.
func parseEnvelope(body []byte) (envelope, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return envelope{}, false
	}
	raw, has := fields["success"]
	if !has {
		return envelope{}, false
	}
	var success bool
	if err := json.Unmarshal(raw, &success); err != nil {
		return envelope{}, false
	}
	env := envelope{Success: success, fields: fields}
	if m, has := fields["message"]; has {
		var msg string
		if json.Unmarshal(m, &msg) == nil {
			env.Message = strings.TrimSpace(msg)
		}
	}
	return env, true
}

// lookup resolves a dotted path ("data.students") against the envelope.
// Null values count as absent.
func (e envelope) lookup(path string) (json.RawMessage, bool) {
	parts := strings.Split(path, ".")
	raw, has := e.fields[parts[0]]
	if !has {
		return nil, false
	}
	for _, p := range parts[1:] {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		if raw, has = obj[p]; !has {
			return nil, false
		}
	}
	if isNull(raw) {
		return nil, false
	}
	return raw, true
}

// decode unmarshals the first present path into out.
func (e envelope) decode(out any, paths ...string) error {
	for _, p := range paths {
		raw, ok := e.lookup(p)
		if !ok {
			continue
		}
		return json.Unmarshal(raw, out)
	}
	return errNoPayload
}

// decodeOptional is decode, except a missing payload is not an error.
// The bool reports whether anything was decoded.
func (e envelope) decodeOptional(out any, paths ...string) (bool, error) {
	err := e.decode(out, paths...)
	if errors.Is(err, errNoPayload) {
		return false, nil
	}
	return err == nil, err
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
