package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rugaard/git-hooks-php/domain"
	"github.com/tidwall/gjson"
)

// ResultParserImpl implements domain.ResultParser
type ResultParserImpl struct{}

// NewResultParser creates a new result parser
func NewResultParser() *ResultParserImpl {
	return &ResultParserImpl{}
}

// Parse decodes out according to kind. Payloads that can not be decoded
// yield a result flagged as unparsable, never a partial one.
func (p *ResultParserImpl) Parse(kind domain.ToolOutputKind, out domain.RawOutput) *domain.CheckResult {
	switch kind {
	case domain.ToolOutputStyleJSON:
		return p.parseStyle(out)
	case domain.ToolOutputAnalysisJSON:
		return p.parseAnalysis(out)
	case domain.ToolOutputLintText:
		return p.parseLint(out)
	case domain.ToolOutputTestRunnerStatus:
		return domain.NewCheckResult(out.ExitSuccess)
	default:
		return domain.NewUnparsableResult()
	}
}

// phpcs --report=json

type styleReport struct {
	Totals struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
		Fixable  int `json:"fixable"`
	} `json:"totals"`
	Files orderedFiles[styleFile] `json:"files"`
}

type styleFile struct {
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
	Messages []styleMessage `json:"messages"`
}

type styleMessage struct {
	Message  string `json:"message"`
	Source   string `json:"source"`
	Severity int    `json:"severity"`
	Fixable  bool   `json:"fixable"`
	Type     string `json:"type"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func (p *ResultParserImpl) parseStyle(out domain.RawOutput) *domain.CheckResult {
	var report styleReport
	if err := decodeStrict(out.Stdout, &report); err != nil {
		return domain.NewUnparsableResult()
	}

	result := domain.NewCheckResult(out.ExitSuccess)
	for _, file := range report.Files {
		for _, msg := range file.Report.Messages {
			severity := domain.SeverityError
			if strings.EqualFold(msg.Type, "warning") {
				severity = domain.SeverityWarning
			}
			result.Add(domain.Diagnostic{
				File:     file.Path,
				Line:     msg.Line,
				Column:   msg.Column,
				Severity: severity,
				Message:  msg.Message,
				Fixable:  msg.Fixable,
			})
		}
	}
	return result
}

// phpstan --error-format=json

type analysisReport struct {
	Totals struct {
		Errors     int `json:"errors"`
		FileErrors int `json:"file_errors"`
	} `json:"totals"`
	Files  orderedFiles[analysisFile] `json:"files"`
	Errors []string                   `json:"errors"`
}

type analysisFile struct {
	Errors   int               `json:"errors"`
	Messages []analysisMessage `json:"messages"`
}

type analysisMessage struct {
	Message   string `json:"message"`
	Line      int    `json:"line"`
	Ignorable bool   `json:"ignorable"`
	Tip       string `json:"tip"`
}

func (p *ResultParserImpl) parseAnalysis(out domain.RawOutput) *domain.CheckResult {
	var report analysisReport
	if err := decodeStrict(out.Stdout, &report); err != nil {
		return domain.NewUnparsableResult()
	}

	result := domain.NewCheckResult(out.ExitSuccess)
	for _, file := range report.Files {
		for _, msg := range file.Report.Messages {
			result.Add(domain.Diagnostic{
				File:     file.Path,
				Line:     msg.Line,
				Severity: domain.SeverityError,
				Message:  msg.Message,
			})
		}
	}
	result.Notices = append(result.Notices, report.Errors...)
	return result
}

// php -l <file>

var lintLinePattern = regexp.MustCompile(`on line (\d+)`)

func (p *ResultParserImpl) parseLint(out domain.RawOutput) *domain.CheckResult {
	result := domain.NewCheckResult(out.ExitSuccess)

	text := strings.Trim(string(out.Stdout), "\r\n")
	if text == "No syntax errors detected in "+out.Subject {
		return result
	}
	if text == "" && out.ExitSuccess {
		return result
	}

	message := firstLine(text)
	if message == "" {
		message = "Syntax check failed"
	}

	d := domain.Diagnostic{
		File:     out.Subject,
		Severity: domain.SeverityError,
		Message:  message,
	}
	if m := lintLinePattern.FindStringSubmatch(message); m != nil {
		d.Line, _ = strconv.Atoi(m[1])
	}
	result.Add(d)
	return result
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// decodeStrict decodes a single JSON document, rejecting trailing data
func decodeStrict(data []byte, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty output")
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("output is not valid JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return fmt.Errorf("output is not a JSON object")
	}
	return json.Unmarshal(data, v)
}

// fileEntry is one member of a per-file JSON object
type fileEntry[T any] struct {
	Path   string
	Report T
}

// orderedFiles decodes a JSON object keyed by file path, keeping the order
// in which the tool emitted the files
type orderedFiles[T any] []fileEntry[T]

// UnmarshalJSON implements json.Unmarshaler
func (o *orderedFiles[T]) UnmarshalJSON(data []byte) error {
	parsed := gjson.ParseBytes(data)
	switch {
	case parsed.Type == gjson.Null:
		*o = nil
		return nil
	case parsed.IsArray():
		// PHP encodes an empty map as []
		if len(parsed.Array()) == 0 {
			*o = nil
			return nil
		}
		return fmt.Errorf("files must be an object")
	case !parsed.IsObject():
		return fmt.Errorf("files must be an object")
	}

	var entries orderedFiles[T]
	var decodeErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		var report T
		if err := json.Unmarshal([]byte(value.Raw), &report); err != nil {
			decodeErr = fmt.Errorf("file %q: %w", key.String(), err)
			return false
		}
		entries = append(entries, fileEntry[T]{Path: key.String(), Report: report})
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}

	*o = entries
	return nil
}
