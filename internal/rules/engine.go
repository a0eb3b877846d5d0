// Package rules applies user-defined text replacements (autocorrect,
// shorthand expansion) to decoded trace words and dictation transcripts.
package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

type replacement interface {
	Apply(input string) (output string, changed bool)
}

// LineParser parses one rules-file line into a compiled replacement.
type LineParser interface {
	CanParse(line string) bool
	Parse(line string) (replacement, error)
}

// Engine applies deterministic replacements loaded from a rules file.
type Engine struct {
	replacements []replacement
	loopLimit    int
}

// NewEngine loads and compiles replacements from a file using the
// built-in parsers. A missing file yields an empty engine.
func NewEngine(path string, loopLimit int) (*Engine, error) {
	return NewEngineWithParsers(path, loopLimit, defaultParsers())
}

// NewEngineWithParsers allows parser extension without engine changes.
func NewEngineWithParsers(path string, loopLimit int, parsers []LineParser) (*Engine, error) {
	if loopLimit <= 0 {
		loopLimit = 30
	}
	if len(parsers) == 0 {
		parsers = defaultParsers()
	}

	if strings.TrimSpace(path) == "" {
		return &Engine{loopLimit: loopLimit}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Engine{loopLimit: loopLimit}, nil
		}
		return nil, fmt.Errorf("failed to read replacements file %q: %w", path, err)
	}

	replacements, err := parseLines(string(contents), parsers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse replacements file %q: %w", path, err)
	}

	return &Engine{replacements: replacements, loopLimit: loopLimit}, nil
}

// Apply transforms text deterministically, iterating until stable or the
// loop limit is hit (rules may feed each other).
func (e *Engine) Apply(text string) (string, error) {
	if len(e.replacements) == 0 {
		return text, nil
	}

	result := text
	for i := 0; i < e.loopLimit; i++ {
		changed := false
		for _, r := range e.replacements {
			next, applied := r.Apply(result)
			if applied {
				result = next
				changed = true
			}
		}
		if !changed {
			return result, nil
		}
	}

	return result, nil
}

func parseLines(contents string, parsers []LineParser) ([]replacement, error) {
	lines := strings.Split(contents, "\n")
	replacements := make([]replacement, 0, len(lines))

	for index, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parsed := false
		for _, parser := range parsers {
			if !parser.CanParse(line) {
				continue
			}
			r, err := parser.Parse(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", index+1, err)
			}
			replacements = append(replacements, r)
			parsed = true
			break
		}

		if !parsed {
			return nil, fmt.Errorf("line %d: unsupported replacement format", index+1)
		}
	}

	return replacements, nil
}

func defaultParsers() []LineParser {
	return []LineParser{regexLineParser{}, literalLineParser{}}
}

type literalLineParser struct{}

func (literalLineParser) CanParse(line string) bool {
	return strings.Contains(line, "=>")
}

func (literalLineParser) Parse(line string) (replacement, error) {
	return parseLiteral(line)
}

type regexLineParser struct{}

func (regexLineParser) CanParse(line string) bool {
	return looksLikeRegexLine(line)
}

func (regexLineParser) Parse(line string) (replacement, error) {
	return parseRegex(line)
}

type literalReplacement struct {
	replacement string
	re          *regexp.Regexp
}

func parseLiteral(line string) (replacement, error) {
	parts := strings.SplitN(line, "=>", 2)
	if len(parts) != 2 {
		return nil, errors.New("invalid literal replacement")
	}
	from := strings.TrimSpace(parts[0])
	to := strings.TrimSpace(parts[1])
	if from == "" {
		return nil, errors.New("literal replacement source cannot be empty")
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(from))
	if err != nil {
		return nil, fmt.Errorf("invalid literal source: %w", err)
	}

	return literalReplacement{replacement: to, re: re}, nil
}

func (r literalReplacement) Apply(input string) (string, bool) {
	output := r.re.ReplaceAllString(input, r.replacement)
	return output, output != input
}

type regexReplacement struct {
	re          *regexp.Regexp
	replacement string
	global      bool
}

func parseRegex(line string) (replacement, error) {
	if len(line) < 2 {
		return nil, errors.New("invalid regex replacement")
	}
	delim := line[1]
	if isAlphaNumericOrSpace(delim) {
		return nil, errors.New("regex delimiter must be non-alphanumeric")
	}

	pattern, pos, err := parseDelimited(line, 2, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	repl, pos, err := parseDelimited(line, pos, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid regex replacement: %w", err)
	}
	flags := strings.TrimSpace(line[pos:])

	ignoreCase := true
	global := false
	multiLine := false
	dotAll := false

	for _, flag := range flags {
		switch flag {
		case 'i':
			ignoreCase = true
		case 'g':
			global = true
		case 'm':
			multiLine = true
		case 's':
			dotAll = true
		case ' ':
			continue
		default:
			return nil, fmt.Errorf("unsupported regex flag %q", flag)
		}
	}

	prefixFlags := ""
	if ignoreCase {
		prefixFlags += "i"
	}
	if multiLine {
		prefixFlags += "m"
	}
	if dotAll {
		prefixFlags += "s"
	}
	if prefixFlags != "" {
		pattern = "(?" + prefixFlags + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}

	return regexReplacement{re: re, replacement: repl, global: global}, nil
}

func (r regexReplacement) Apply(input string) (string, bool) {
	if r.global {
		output := r.re.ReplaceAllString(input, r.replacement)
		return output, output != input
	}

	loc := r.re.FindStringIndex(input)
	if loc == nil {
		return input, false
	}

	segment := input[loc[0]:loc[1]]
	replaced := r.re.ReplaceAllString(segment, r.replacement)
	output := input[:loc[0]] + replaced + input[loc[1]:]
	return output, output != input
}

func parseDelimited(line string, start int, delim byte) (string, int, error) {
	if start >= len(line) {
		return "", 0, errors.New("unexpected end of expression")
	}

	var builder strings.Builder
	escaped := false
	for index := start; index < len(line); index++ {
		char := line[index]
		if escaped {
			builder.WriteByte(char)
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			builder.WriteByte(char)
			continue
		}
		if char == delim {
			return builder.String(), index + 1, nil
		}
		builder.WriteByte(char)
	}
	return "", 0, errors.New("unterminated expression")
}

func isAlphaNumericOrSpace(char byte) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == ' ' || char == '\t'
}

func looksLikeRegexLine(line string) bool {
	return len(line) > 1 && line[0] == 's' && !isAlphaNumericOrSpace(line[1])
}
