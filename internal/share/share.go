// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package share builds the public link of an invitation and its QR code.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the QR code edge length in pixels.
const DefaultSize = 256

// Linker turns template slugs into public invitation URLs.
type Linker struct {
	base *url.URL
}

// NewLinker parses the public base URL of the invitation site.
func NewLinker(baseURL string) (*Linker, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse public base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("public base url %q must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("public base url %q has no host", baseURL)
	}
	return &Linker{base: u}, nil
}

// URL returns the public link for slug.
func (l *Linker) URL(slug string) string {
	return l.base.JoinPath(slug).String()
}

// QR encodes the public link for slug as a PNG image of the given size.
// A size of zero uses DefaultSize.
func (l *Linker) QR(slug string, size int) ([]byte, error) {
	if slug == "" {
		return nil, errors.New("share: empty slug")
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(l.URL(slug), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr code generation: %w", err)
	}
	return png, nil
}
