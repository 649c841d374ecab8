package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrMalformedReply is returned when the model's reply is not a resolution object.
var ErrMalformedReply = errors.New("malformed advisor reply")

// ParseResolution decodes a model reply into a Resolution. Markdown code
// fences and leading prose are tolerated. Numbers quoted as strings are
// accepted, as are single strings where a list is expected.
func ParseResolution(content string) (*domain.Resolution, error) {
	body := extractObject(content)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedReply)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if nested, ok := raw["resolution"].(map[string]any); ok {
		raw = nested
	}

	var res domain.Resolution
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &res,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return &res, nil
}

// extractObject returns the outermost {...} span of s, after stripping code fences.
func extractObject(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
