package llm

import (
	"encoding/json"
	"fmt"
)

// Extractor pulls answer text out of a provider response. It reports false
// when the response does not have the shape it looks for.
type Extractor func(resp any) (string, bool)

// DefaultExtractors is the order answers are looked up in: a text field, a
// content field, then the whole response as a string.
var DefaultExtractors = []Extractor{TextExtractor, ContentExtractor, StringExtractor}

// ExtractAnswer never panics. If no extractor yields text, the empty string
// is returned.
func ExtractAnswer(resp any) string {
	return Extract(resp, DefaultExtractors...)
}

func Extract(resp any, extractors ...Extractor) string {
	for _, extractor := range extractors {
		if text, ok := safeExtract(extractor, resp); ok && text != "" {
			return text
		}
	}
	return ""
}

func safeExtract(extractor Extractor, resp any) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()
	return extractor(resp)
}

type texter interface {
	Text() string
}

type contenter interface {
	Content() string
}

func TextExtractor(resp any) (string, bool) {
	switch v := resp.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case texter:
		return v.Text(), true
	case map[string]any:
		return stringField(v, "text")
	case json.RawMessage:
		return documentField(v, "text")
	case []byte:
		return documentField(v, "text")
	default:
		return "", false
	}
}

func ContentExtractor(resp any) (string, bool) {
	switch v := resp.(type) {
	case nil:
		return "", false
	case contenter:
		return v.Content(), true
	case map[string]any:
		return stringField(v, "content")
	case json.RawMessage:
		return documentField(v, "content")
	case []byte:
		return documentField(v, "content")
	default:
		return "", false
	}
}

func StringExtractor(resp any) (string, bool) {
	switch v := resp.(type) {
	case nil:
		return "", false
	case []byte:
		return string(v), true
	case json.RawMessage:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprintf("%+v", v), true
	}
}

func stringField(values map[string]any, key string) (string, bool) {
	value, ok := values[key].(string)
	return value, ok
}

func documentField(raw []byte, key string) (string, bool) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", false
	}
	return stringField(doc, key)
}
