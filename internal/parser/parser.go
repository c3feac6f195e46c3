// Package parser decodes Compose compiler composables reports into structured records.
package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/mendable/internal/models"
)

const maxLineSize = 1024 * 1024

// ErrMalformed is wrapped by every ParseError
var ErrMalformed = errors.New("malformed composables report")

// ParseError describes why a single report file could not be parsed
type ParseError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Path, e.Reason)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformed
}

// ParseBytes parses an in-memory report
func ParseBytes(file models.ReportFile, data []byte) (models.ComposableReport, error) {
	return Parse(file, bytes.NewReader(data))
}

// Parse reads a composables report from r. Records keep file order.
func Parse(file models.ReportFile, r io.Reader) (models.ComposableReport, error) {
	report := models.ComposableReport{
		File:        file,
		Composables: []models.ComposableDetails{},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		current *models.ComposableDetails
		lineNo  int
	)

	malformed := func(line int, format string, args ...any) error {
		return &ParseError{Path: file.Path, Line: line, Reason: fmt.Sprintf(format, args...)}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if current != nil {
			if strings.HasPrefix(line, ")") {
				current.ReturnType = returnType(line)
				report.Composables = append(report.Composables, *current)
				current = nil
				continue
			}
			if line == "" {
				continue
			}
			param, err := parseParameter(line)
			if err != nil {
				return models.ComposableReport{}, malformed(lineNo, "%v", err)
			}
			current.Params = append(current.Params, param)
			continue
		}

		if line == "" {
			continue
		}

		details, open, err := parseHeader(line)
		if err != nil {
			return models.ComposableReport{}, malformed(lineNo, "%v", err)
		}
		details.Line = lineNo
		if open {
			current = &details
			continue
		}
		report.Composables = append(report.Composables, details)
	}

	if err := scanner.Err(); err != nil {
		return models.ComposableReport{}, &ParseError{Path: file.Path, Line: lineNo, Reason: "read failed", Err: err}
	}
	if current != nil {
		return models.ComposableReport{}, malformed(current.Line, "unterminated parameter list for %q", current.FunctionName)
	}

	return report, nil
}

// parseHeader parses "tag tag scheme(...) fun Name(" and reports whether a
// parameter list follows on the next lines.
func parseHeader(line string) (models.ComposableDetails, bool, error) {
	details := models.ComposableDetails{Params: []models.Parameter{}}

	var prefix, rest string
	switch {
	case strings.HasPrefix(line, "fun "):
		rest = line[len("fun "):]
	default:
		idx := strings.Index(line, " fun ")
		if idx < 0 {
			return details, false, fmt.Errorf("expected a function declaration, got %q", truncate(line, 60))
		}
		prefix, rest = line[:idx], line[idx+len(" fun "):]
	}

	for _, tag := range splitTags(prefix) {
		switch {
		case tag == "restartable":
			details.IsRestartable = true
		case tag == "skippable":
			details.IsSkippable = true
		case tag == "inline":
			details.IsInline = true
		case tag == "readonly":
			details.IsReadonly = true
		case strings.HasPrefix(tag, "scheme("):
			details.Scheme = strings.Trim(strings.TrimSuffix(strings.TrimPrefix(tag, "scheme("), ")"), `"`)
		}
	}

	rest, err := stripTypeParams(rest)
	if err != nil {
		return details, false, fmt.Errorf("%v in %q", err, truncate(line, 60))
	}

	paren := strings.Index(rest, "(")
	if paren < 0 {
		return details, false, fmt.Errorf("missing parameter list in %q", truncate(line, 60))
	}
	details.FunctionName = strings.TrimSpace(rest[:paren])
	if details.FunctionName == "" {
		return details, false, fmt.Errorf("missing function name in %q", truncate(line, 60))
	}

	tail := strings.TrimSpace(rest[paren+1:])
	if tail == "" {
		return details, true, nil
	}
	if strings.HasPrefix(tail, ")") {
		details.ReturnType = returnType(tail)
		return details, false, nil
	}

	// A parameter list written on the header line itself.
	closing := strings.LastIndex(tail, ")")
	if closing < 0 {
		return details, false, fmt.Errorf("unterminated parameter list in %q", truncate(line, 60))
	}
	for _, raw := range splitTopLevel(tail[:closing], ',') {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		param, err := parseParameter(strings.TrimSpace(raw))
		if err != nil {
			return details, false, err
		}
		details.Params = append(details.Params, param)
	}
	details.ReturnType = returnType(tail[closing:])
	return details, false, nil
}

// parseParameter parses "[unused] [stable|unstable|runtime] name: Type [= default]"
func parseParameter(line string) (models.Parameter, error) {
	param := models.Parameter{Condition: models.ConditionUnknown}

	rest := line
modifiers:
	for {
		word, remainder, found := strings.Cut(rest, " ")
		if !found {
			break
		}
		switch word {
		case "unused":
			param.Unused = true
		case "stable":
			param.Condition = models.ConditionStable
		case "unstable":
			param.Condition = models.ConditionUnstable
		case "runtime":
			param.Condition = models.ConditionRuntime
		default:
			break modifiers
		}
		rest = strings.TrimSpace(remainder)
	}

	name, typ, found := strings.Cut(rest, ":")
	if !found {
		return param, fmt.Errorf("expected \"name: Type\" parameter, got %q", truncate(line, 60))
	}
	param.Name = strings.TrimSpace(name)
	if param.Name == "" || strings.ContainsAny(param.Name, " \t(") {
		return param, fmt.Errorf("invalid parameter name in %q", truncate(line, 60))
	}

	typ = strings.TrimSpace(typ)
	if t, def, ok := strings.Cut(typ, " = "); ok {
		typ = t
		param.DefaultValue = strings.TrimSpace(def)
	}
	param.Type = strings.TrimSpace(typ)
	return param, nil
}

// returnType extracts "Int" from "): Int"
func returnType(closing string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(closing, ")"))
	return strings.TrimSpace(strings.TrimPrefix(rest, ":"))
}

// splitTags splits header tags on spaces, keeping parenthesised and quoted
// segments such as scheme("[a b]") intact.
func splitTags(prefix string) []string {
	var (
		tags  []string
		b     strings.Builder
		depth int
		quote bool
	)
	flush := func() {
		if b.Len() > 0 {
			tags = append(tags, b.String())
			b.Reset()
		}
	}
	for _, r := range prefix {
		switch {
		case r == '"':
			quote = !quote
		case quote:
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case r == ' ' && depth == 0:
			flush()
			continue
		}
		b.WriteRune(r)
	}
	flush()
	return tags
}

// splitTopLevel splits s on sep outside of <>, () and [] nesting.
func splitTopLevel(s string, sep rune) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripTypeParams drops a leading "<...>" type parameter group, so
// "<T: Function0<Unit>> Run(" becomes "Run(".
func stripTypeParams(s string) (string, error) {
	if !strings.HasPrefix(s, "<") {
		return s, nil
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[i+1:]), nil
			}
		}
	}
	return s, fmt.Errorf("unterminated type parameter list")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
