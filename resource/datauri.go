package resource

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DecodeDataURI decodes RFC 2397 "data:" URI:
//
//	data:[<mediatype>][;base64],<data>
//
// Whitespace inside base64 payload is ignored, HTML attributes often wrap
// long values.
func DecodeDataURI(uri string) (*Resource, error) {
	rest, ok := cutPrefixFold(uri, "data:")
	if !ok {
		return nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("malformed data URI: no data separator")
	}

	isBase64 := false
	params := strings.Split(meta, ";")
	if n := len(params); n > 0 && strings.EqualFold(strings.TrimSpace(params[n-1]), "base64") {
		isBase64 = true
		params = params[:n-1]
	}
	contentType := strings.ToLower(strings.TrimSpace(params[0]))

	var data []byte
	if isBase64 {
		clean := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\t', '\n', '\r', '\f':
				return -1
			}
			return r
		}, payload)
		// unescape percent encoded padding
		if strings.Contains(clean, "%") {
			if unescaped, err := url.PathUnescape(clean); err == nil {
				clean = unescaped
			}
		}
		var err error
		data, err = base64.StdEncoding.DecodeString(clean)
		if err != nil {
			// some producers strip padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "="))
			if err != nil {
				return nil, fmt.Errorf("malformed data URI payload: %w", err)
			}
		}
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed data URI payload: %w", err)
		}
		data = []byte(unescaped)
	}
	return &Resource{Data: data, ContentType: contentType}, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
