package claims

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/qcom/litelist/internal/testutil"
)

func TestDecodeExpiry(t *testing.T) {
	exp := time.Unix(2000000000, 0)
	signed := testutil.Token(t, "alice", exp)
	parts := strings.Split(signed, ".")

	padded := base64.URLEncoding.EncodeToString([]byte(`{"exp": 1900000000}`))
	urlAlphabet := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":2000000000,"n":"????"}`))
	if !strings.Contains(urlAlphabet, "_") {
		t.Fatalf("fixture %q does not exercise the url alphabet", urlAlphabet)
	}
	stdAlphabet := base64.RawStdEncoding.EncodeToString([]byte(`{"exp":1700000000,"n":"??>>~~"}`))
	if !strings.ContainsAny(stdAlphabet, "+/") {
		t.Fatalf("fixture %q does not exercise the standard alphabet", stdAlphabet)
	}

	tests := []struct {
		name  string
		token string
		want  int64
	}{
		{"signed token", signed, 2000000000},
		{"signature is ignored", parts[0] + "." + parts[1] + ".bm90LWEtc2lnbmF0dXJl", 2000000000},
		{"two segments", parts[0] + "." + parts[1], 2000000000},
		{"padded payload", "h." + padded + ".s", 1900000000},
		{"url alphabet payload", "h." + urlAlphabet + ".s", 2000000000},
		{"standard alphabet payload", "h." + stdAlphabet + ".s", 1700000000},
		{"float exp", testutil.RawToken(`{"exp":1700000000.0,"sub":"bob"}`), 1700000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeExpiry(tt.token)
			if err != nil {
				t.Fatalf("DecodeExpiry() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeExpiry() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodeExpiryMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"single segment", "abc"},
		{"non base64 payload", "h.!!!not-base64!!!.s"},
		{"non json payload", "h." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".s"},
		{"json array payload", testutil.RawToken(`[1,2,3]`)},
		{"missing exp", testutil.RawToken(`{"sub":"alice"}`)},
		{"string exp", testutil.RawToken(`{"exp":"tomorrow"}`)},
		{"null payload", testutil.RawToken(`null`)},
		{"invalid utf8 payload", "h." + base64.RawURLEncoding.EncodeToString([]byte("{\"exp\":1700000000,\"n\":\"\xff\xfe\"}")) + ".s"},
		{"truncated segment", "h.e.s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeExpiry(tt.token)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("DecodeExpiry() error = %v, want ErrDecode", err)
			}
		})
	}
}

func TestSecondsTilExpire(t *testing.T) {
	now := time.Unix(1700000000, 0)

	for _, d := range []time.Duration{-time.Minute, 0, 30 * time.Second, 100 * time.Second, time.Hour} {
		token := testutil.TokenExpiringIn(t, "alice", now, d)
		got, err := SecondsTilExpire(token, now)
		if err != nil {
			t.Fatalf("SecondsTilExpire(%s) error = %v", d, err)
		}
		if want := int64(d / time.Second); got != want {
			t.Errorf("SecondsTilExpire(%s) = %d, want %d", d, got, want)
		}
	}
}

func TestSecondsTilExpirePropagatesDecodeError(t *testing.T) {
	_, err := SecondsTilExpire("only-one-segment", time.Now())
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("SecondsTilExpire() error = %v, want ErrDecode", err)
	}
}
