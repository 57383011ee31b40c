package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseFailure classifies why a model response was rejected.
type ParseFailure string

const (
	FailureParse  ParseFailure = "PARSE_ERROR"
	FailureSchema ParseFailure = "SCHEMA_ERROR"
)

// Issue is one schema violation with a JSON-pointer-ish path.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidateOptions tunes the output contract.
//
// EmotionEnum, when non-empty, restricts emotion_preview entries to the
// given values. Default is nil: entries are free-form strings, matching
// the current contract; the enum remains a prompt convention.
type ValidateOptions struct {
	RequireHardModeFields bool
	EmotionEnum           []string
}

// ParseResult is the outcome of ParseAndValidate. On ok=false, Failure
// tells parse from schema errors, Issues collects every violation, and
// RawPreview holds the head of the offending text.
type ParseResult struct {
	OK               bool
	Parsed           ParsedOutput
	ExtractedFromRaw bool
	Failure          ParseFailure
	Issues           []Issue
	RawPreview       string
}

const previewLen = 240

// FlexStrings decodes a JSON array whose entries may be any scalar
// type, stringifying each one. The output contract stringifies
// emotion_preview entries rather than rejecting non-strings.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	var arr []any
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	*f = out
	return nil
}

// ParseAndValidate parses raw model text as JSON, falling back to
// balanced-brace extraction, then validates the result against the
// suggestion contract. expectedCount is exact: not fewer, not more.
func ParseAndValidate(raw string, expectedCount int, opts ValidateOptions) ParseResult {
	extracted := false

	src := raw
	if err := strictParse(src); err != nil {
		candidate, found := extractFirstJSONObject(raw)
		if !found {
			return ParseResult{Failure: FailureParse, RawPreview: preview(raw)}
		}
		extracted = true
		src = candidate
		if err := strictParse(src); err != nil {
			return ParseResult{Failure: FailureParse, ExtractedFromRaw: true, RawPreview: preview(raw)}
		}
	}

	// Parsed but not an object: a schema problem, not a parse problem.
	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(src), &root); err != nil {
		return ParseResult{
			Failure:          FailureSchema,
			ExtractedFromRaw: extracted,
			Issues:           []Issue{{Path: "", Message: "root must be an object"}},
			RawPreview:       preview(raw),
		}
	}

	issues := validateRoot(root, expectedCount, opts)
	if len(issues) > 0 {
		return ParseResult{
			Failure:          FailureSchema,
			ExtractedFromRaw: extracted,
			Issues:           issues,
			RawPreview:       preview(raw),
		}
	}

	var out ParsedOutput
	if err := json.Unmarshal([]byte(src), &out); err != nil {
		return ParseResult{Failure: FailureParse, ExtractedFromRaw: extracted, RawPreview: preview(raw)}
	}
	return ParseResult{OK: true, Parsed: out, ExtractedFromRaw: extracted}
}

// strictParse accepts exactly one JSON value with nothing but
// whitespace after it, mirroring a plain JSON.parse of the whole text.
func strictParse(raw string) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	var v json.RawMessage
	if err := dec.Decode(&v); err != nil {
		return err
	}
	// Anything but a clean EOF after the first value, valid JSON or
	// not, means the text was more than one JSON value.
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return fmt.Errorf("trailing content after JSON value")
	}
	return nil
}

// extractFirstJSONObject scans for the first '{' and returns the
// substring up to its matching '}', tracking brace depth.
func extractFirstJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return raw[start : i+1], true
		}
	}
	return "", false
}

// fieldRule is one declarative constraint: the rule set is data, the
// traversal below is the only code path.
type fieldRule struct {
	key      string
	required bool
	check    func(raw json.RawMessage) string // returns "" when valid
}

var rootKeysBase = []string{"suggestions"}
var rootKeysHard = []string{"suggestions", "hard_mode_applied", "safety_line", "best_question"}

func suggestionRules(enum []string) []fieldRule {
	return []fieldRule{
		{key: "label", required: true, check: nonEmptyString},
		{key: "text", required: true, check: nonEmptyString},
		{key: "why_it_works", required: true, check: nonEmptyString},
		{key: "emotion_preview", required: true, check: emotionArray(enum)},
	}
}

func hardModeRules(required bool) []fieldRule {
	return []fieldRule{
		{key: "hard_mode_applied", required: required, check: literalTrueOrBool(required)},
		{key: "safety_line", required: required, check: nonEmptyString},
		{key: "best_question", required: required, check: nonEmptyString},
	}
}

func validateRoot(root map[string]json.RawMessage, expectedCount int, opts ValidateOptions) []Issue {
	var issues []Issue

	allowed := rootKeysBase
	if opts.RequireHardModeFields || hasAnyHardKey(root) {
		allowed = rootKeysHard
	}
	for key := range root {
		if !inList(allowed, key) {
			issues = append(issues, Issue{
				Path:    "",
				Message: fmt.Sprintf("additional properties are not allowed (only: %s)", strings.Join(rootKeysHard, ", ")),
			})
			break
		}
	}

	rawSuggestions, ok := root["suggestions"]
	if !ok {
		issues = append(issues, Issue{Path: "/suggestions", Message: "must be an array"})
		return issues
	}
	var suggestions []json.RawMessage
	if err := json.Unmarshal(rawSuggestions, &suggestions); err != nil {
		issues = append(issues, Issue{Path: "/suggestions", Message: "must be an array"})
		return issues
	}
	if len(suggestions) != expectedCount {
		issues = append(issues, Issue{Path: "/suggestions", Message: fmt.Sprintf("must have exactly %d items", expectedCount)})
	}

	rules := suggestionRules(opts.EmotionEnum)
	for i, rawItem := range suggestions {
		base := fmt.Sprintf("/suggestions/%d", i)
		var item map[string]json.RawMessage
		if err := json.Unmarshal(rawItem, &item); err != nil {
			issues = append(issues, Issue{Path: base, Message: "must be an object"})
			continue
		}
		for key := range item {
			if !ruleKey(rules, key) {
				issues = append(issues, Issue{Path: base, Message: "additional properties are not allowed"})
				break
			}
		}
		for _, rule := range rules {
			raw, present := item[rule.key]
			if !present {
				if rule.required {
					issues = append(issues, Issue{Path: base + "/" + rule.key, Message: rule.check(nil)})
				}
				continue
			}
			if msg := rule.check(raw); msg != "" {
				issues = append(issues, Issue{Path: base + "/" + rule.key, Message: msg})
			}
		}
	}

	for _, rule := range hardModeRules(opts.RequireHardModeFields) {
		raw, present := root[rule.key]
		if !present {
			if rule.required {
				issues = append(issues, Issue{Path: "/" + rule.key, Message: rule.check(nil) + " in hard mode"})
			}
			continue
		}
		if msg := rule.check(raw); msg != "" {
			if opts.RequireHardModeFields {
				msg += " in hard mode"
			}
			issues = append(issues, Issue{Path: "/" + rule.key, Message: msg})
		}
	}

	return issues
}

func nonEmptyString(raw json.RawMessage) string {
	const msg = "must be a non-empty string"
	if raw == nil {
		return msg
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
		return msg
	}
	return ""
}

func emotionArray(enum []string) func(json.RawMessage) string {
	return func(raw json.RawMessage) string {
		if raw == nil {
			return "must be an array of strings"
		}
		var arr []any
		if err := json.Unmarshal(raw, &arr); err != nil {
			return "must be an array of strings"
		}
		valid := 0
		for _, v := range arr {
			s := strings.TrimSpace(fmt.Sprint(v))
			if s == "" {
				continue
			}
			if len(enum) > 0 && !inList(enum, s) {
				return fmt.Sprintf("must only contain values from: %s", strings.Join(enum, ", "))
			}
			valid++
		}
		if valid == 0 {
			return "must contain at least 1 non-empty string"
		}
		return ""
	}
}

func literalTrueOrBool(requireTrue bool) func(json.RawMessage) string {
	return func(raw json.RawMessage) string {
		if requireTrue {
			if raw == nil || string(raw) != "true" {
				return "must be true"
			}
			return ""
		}
		if raw == nil {
			return "must be a boolean"
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "must be a boolean"
		}
		return ""
	}
}

func hasAnyHardKey(root map[string]json.RawMessage) bool {
	for _, k := range []string{"hard_mode_applied", "safety_line", "best_question"} {
		if _, ok := root[k]; ok {
			return true
		}
	}
	return false
}

func ruleKey(rules []fieldRule, key string) bool {
	for _, r := range rules {
		if r.key == key {
			return true
		}
	}
	return false
}

func inList(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLen {
		return s
	}
	return string(runes[:previewLen]) + "…"
}
