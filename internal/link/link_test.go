package link

import (
	"errors"
	"testing"
)

func TestParseValidLink(t *testing.T) {
	parts, err := Parse("https://x.example.com:8888/?token=abc123")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parts.Port != 8888 {
		t.Fatalf("expected port 8888, got %d", parts.Port)
	}
	if parts.Token != "abc123" {
		t.Fatalf("expected token abc123, got %q", parts.Token)
	}
}

func TestParseTokenAmongOtherParams(t *testing.T) {
	parts, err := Parse("http://localhost:9999/lab?foo=bar&token=s3cret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parts.Token != "s3cret" {
		t.Fatalf("expected token s3cret, got %q", parts.Token)
	}
}

func TestParseRejectsBadLinks(t *testing.T) {
	cases := map[string]string{
		"no port":        "https://x.example.com/?token=abc",
		"no token":       "https://x.example.com:8888/",
		"empty token":    "https://x.example.com:8888/?token=",
		"not a url":      "://nope",
		"port not a num": "https://x.example.com:port/?token=abc",
	}
	for name, raw := range cases {
		if _, err := Parse(raw); !errors.Is(err, ErrInvalidLink) {
			t.Errorf("%s: expected ErrInvalidLink, got %v", name, err)
		}
	}
}
