package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// DecodeStrict unmarshals the whole response, allowing only surrounding
// whitespace.
func DecodeStrict[T any](response string) (T, error) {
	var result T
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &result); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// DecodeLenient handles common LLM quirks: a fenced code block, or a JSON
// object embedded in prose. It takes the first '{' to the last '}'.
func DecodeLenient[T any](response string) (T, error) {
	var zero T
	jsonStr := response

	if m := fencePattern.FindStringSubmatch(jsonStr); m != nil {
		jsonStr = m[1]
	}

	start := strings.IndexByte(jsonStr, '{')
	end := strings.LastIndexByte(jsonStr, '}')
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}
	if end < start {
		return zero, fmt.Errorf("no JSON object found in response (missing '}')")
	}
	jsonStr = jsonStr[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}
