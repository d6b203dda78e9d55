package checkins

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"seatkeep/internal/shared/apperrors"
)

// Token is the payload carried by a check-in QR code
type Token struct {
	RegistrationID string `json:"registrationId"`
	EventID        string `json:"eventId"`
}

type rawToken struct {
	RegistrationID json.RawMessage `json:"registrationId"`
	EventID        json.RawMessage `json:"eventId"`
}

// EncodeToken renders the payload printed on a pass as base64url JSON
func EncodeToken(eventID, registrationID string) string {
	b, _ := json.Marshal(Token{RegistrationID: registrationID, EventID: eventID})
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeToken accepts plain JSON, standard base64, URL-escaped base64 and
// base64url, with ids given as strings or numbers.
func DecodeToken(raw string) (*Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.Validation(apperrors.CodeInvalidToken, "token is required")
	}

	for _, candidate := range tokenCandidates(raw) {
		tok, ok := parseToken(candidate)
		if !ok {
			continue
		}
		if tok.RegistrationID == "" || tok.EventID == "" {
			return nil, apperrors.Validation(apperrors.CodeInvalidToken, "token does not carry a registration and an event")
		}
		return tok, nil
	}
	return nil, apperrors.Validation(apperrors.CodeInvalidToken, "invalid token format")
}

func tokenCandidates(raw string) [][]byte {
	out := [][]byte{[]byte(raw)}
	if b, err := base64.StdEncoding.DecodeString(raw); err == nil {
		out = append(out, b)
	}
	if unescaped, err := url.QueryUnescape(raw); err == nil && unescaped != raw {
		if b, err := base64.StdEncoding.DecodeString(unescaped); err == nil {
			out = append(out, b)
		}
	}
	if b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "=")); err == nil {
		out = append(out, b)
	}
	return out
}

func parseToken(b []byte) (*Token, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil, false
	}
	var rt rawToken
	if err := json.Unmarshal(b, &rt); err != nil {
		return nil, false
	}
	return &Token{RegistrationID: scalar(rt.RegistrationID), EventID: scalar(rt.EventID)}, true
}

// scalar reads a JSON string or number as text
func scalar(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}
