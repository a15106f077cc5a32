// Package claims reads the expiry of a bearer token without verifying it.
//
// The result is a scheduling hint only. The API stays authoritative for
// whether a token is accepted, so nothing here is ever used as a trust
// decision.
package claims

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode is returned for any token whose payload cannot yield an expiry.
var ErrDecode = errors.New("malformed token payload")

// toStdAlphabet folds the url-safe alphabet into the standard one so segments
// written with either decode the same way.
var toStdAlphabet = strings.NewReplacer("-", "+", "_", "/")

// decodeSegment decodes a base64 segment with optional padding.
func decodeSegment(seg string) ([]byte, error) {
	seg = toStdAlphabet.Replace(strings.TrimRight(seg, "="))
	if rem := len(seg) % 4; rem > 0 {
		seg += strings.Repeat("=", 4-rem)
	}
	return base64.StdEncoding.DecodeString(seg)
}

// DecodeExpiry returns the exp claim of token in Unix seconds.
func DecodeExpiry(token string) (int64, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: expected at least 2 segments, got %d", ErrDecode, len(parts))
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: failed to decode payload: %v", ErrDecode, err)
	}
	if !utf8.Valid(payload) {
		return 0, fmt.Errorf("%w: payload is not valid UTF-8", ErrDecode)
	}

	var mapClaims jwt.MapClaims
	if err := json.Unmarshal(payload, &mapClaims); err != nil {
		return 0, fmt.Errorf("%w: failed to parse payload: %v", ErrDecode, err)
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return 0, fmt.Errorf("%w: invalid exp claim: %v", ErrDecode, err)
	}
	if exp == nil {
		return 0, fmt.Errorf("%w: missing exp claim", ErrDecode)
	}

	return exp.Unix(), nil
}

// SecondsTilExpire returns exp - now in whole seconds. The result is negative
// for an already expired token.
func SecondsTilExpire(token string, now time.Time) (int64, error) {
	exp, err := DecodeExpiry(token)
	if err != nil {
		return 0, err
	}
	return exp - now.Unix(), nil
}
