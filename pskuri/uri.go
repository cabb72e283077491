// Package pskuri parses and builds the out-of-band PSK URI
// (spec.md §6): algochat-psk://v1?addr=<address>&psk=<base64url(32 bytes)>[&label=<label>].
// No pack example implements a custom URI scheme this shape, so this is
// stdlib net/url + encoding/base64 — the same tools the teacher reaches
// for whenever it needs ad hoc query-string handling (DESIGN.md).
package pskuri

import (
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/chainnote/e2e/errs"
)

const (
	scheme      = "algochat-psk"
	versionHost = "v1"
)

// PSK is a parsed out-of-band PSK URI.
type PSK struct {
	Address string
	Key     [32]byte
	Label   string
}

// Parse validates and decodes a PSK URI.
func Parse(raw string) (*PSK, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errs.Wrap(errs.ErrInvalidEnvelope, fmt.Sprintf("malformed uri: %s", err))
	}
	if u.Scheme != scheme {
		return nil, errs.Wrap(errs.ErrInvalidEnvelope, fmt.Sprintf("wrong scheme %q", u.Scheme))
	}
	if u.Host != versionHost {
		return nil, errs.Wrap(errs.ErrInvalidEnvelope, fmt.Sprintf("wrong version token %q", u.Host))
	}

	q := u.Query()
	addr := q.Get("addr")
	if addr == "" {
		return nil, errs.Wrap(errs.ErrInvalidEnvelope, "missing addr")
	}

	pskB64 := q.Get("psk")
	if pskB64 == "" {
		return nil, errs.Wrap(errs.ErrInvalidEnvelope, "missing psk")
	}
	raw32, err := base64.URLEncoding.DecodeString(pskB64)
	if err != nil {
		raw32, err = base64.RawURLEncoding.DecodeString(pskB64)
		if err != nil {
			return nil, errs.Wrap(errs.ErrInvalidEnvelope, "psk is not valid base64url")
		}
	}
	if len(raw32) != 32 {
		return nil, errs.Wrap(errs.ErrInvalidEnvelope, "psk must decode to 32 bytes")
	}

	p := &PSK{Address: addr, Label: q.Get("label")}
	copy(p.Key[:], raw32)
	return p, nil
}

// Build constructs the canonical URI string for a PSK. label is omitted
// from the query string when empty.
func Build(address string, key [32]byte, label string) string {
	q := url.Values{}
	q.Set("addr", address)
	q.Set("psk", base64.URLEncoding.EncodeToString(key[:]))
	if label != "" {
		q.Set("label", label)
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     versionHost,
		RawQuery: q.Encode(),
	}
	return u.String()
}
