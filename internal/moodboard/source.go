package moodboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type SourceKind string

const (
	SourceURL    SourceKind = "url"
	SourceInline SourceKind = "inline"
)

// Source is an image location: either a remote URL or inline base64 data.
type Source struct {
	Kind       SourceKind `json:"kind"`
	URL        string     `json:"url,omitempty"`
	DataBase64 string     `json:"data,omitempty"`
	MimeType   string     `json:"mimeType,omitempty"`
}

func URLSource(url string) Source {
	return Source{Kind: SourceURL, URL: strings.TrimSpace(url)}
}

func InlineSource(data []byte, mimeType string) Source {
	return InlineBase64Source(base64.StdEncoding.EncodeToString(data), mimeType)
}

func InlineBase64Source(data, mimeType string) Source {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "image/png"
	}
	return Source{Kind: SourceInline, DataBase64: strings.TrimSpace(data), MimeType: mimeType}
}

var dataURLRegex = regexp.MustCompile(`^data:([^;,]+)?(;[^,]*)?,`)

// ParseSource accepts a plain URL or a data URI.
func ParseSource(value string) (Source, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Source{}, errors.New("empty image source")
	}
	if !strings.HasPrefix(value, "data:") {
		return URLSource(value), nil
	}

	matches := dataURLRegex.FindStringSubmatch(value)
	if matches == nil {
		return Source{}, fmt.Errorf("invalid data url")
	}
	if !strings.Contains(matches[2], "base64") {
		return Source{}, fmt.Errorf("data url is not base64 encoded")
	}
	data := value[len(matches[0]):]
	if data == "" {
		return Source{}, errors.New("data url has no payload")
	}
	return InlineBase64Source(data, matches[1]), nil
}

func (s Source) String() string {
	if s.Kind == SourceInline {
		return fmt.Sprintf("data:%s;base64,%s", s.MimeType, s.DataBase64)
	}
	return s.URL
}

func (s Source) Bytes() ([]byte, error) {
	if s.Kind != SourceInline {
		return nil, fmt.Errorf("source %q is not inline", s.Kind)
	}
	return base64.StdEncoding.DecodeString(s.DataBase64)
}

func (s Source) Empty() bool {
	switch s.Kind {
	case SourceURL:
		return s.URL == ""
	case SourceInline:
		return s.DataBase64 == ""
	}
	return true
}
