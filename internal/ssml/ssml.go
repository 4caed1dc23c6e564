package ssml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
)

const (
	speakOpen     = `<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="`
	voiceOpen     = `"><voice name="`
	voiceTextOpen = `">`
	speakClose    = `</voice></speak>`
	markupPrefix  = "<speak"
	xmlDeclPrefix = "<?xml"
	utf8BOM       = "\ufeff"
)

// Errors returned when building SSML from plain text.
var (
	ErrEmptyText  = errors.New("text cannot be empty")
	ErrEmptyVoice = errors.New("voice cannot be empty")
)

// IsMarkup reports whether content already is an SSML document.
func IsMarkup(content string) bool {
	trimmed := strings.TrimSpace(strings.TrimPrefix(content, utf8BOM))

	return strings.HasPrefix(trimmed, markupPrefix) || strings.HasPrefix(trimmed, xmlDeclPrefix)
}

// FromText wraps plain text in a single-voice speak element.
func FromText(text, voice, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	if voice == "" {
		return "", ErrEmptyVoice
	}

	var buf bytes.Buffer

	buf.WriteString(speakOpen)
	escape(&buf, language)
	buf.WriteString(voiceOpen)
	escape(&buf, voice)
	buf.WriteString(voiceTextOpen)
	escape(&buf, text)
	buf.WriteString(speakClose)

	return buf.String(), nil
}

func escape(buf *bytes.Buffer, value string) {
	// EscapeText only fails when the writer does; bytes.Buffer never does.
	_ = xml.EscapeText(buf, []byte(value))
}
