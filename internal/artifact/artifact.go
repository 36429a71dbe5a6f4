// Package artifact decodes the JSON objects returned by the reasoning stages.
//
// Every call site routes through Decode: optional code fence removal, JSON
// parsing, and a required-key check against an embedded JSON schema. Anything
// that fails is reported as a *MalformedError carrying a bounded preview of
// the raw response.
package artifact

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/erenakay1/CV-Analizer/internal/chunker"
	"github.com/erenakay1/CV-Analizer/internal/postprocess"
)

// PreviewChars bounds the raw text kept on a MalformedError.
const PreviewChars = 500

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema is a compiled required-key contract for one artifact kind.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

func (s *Schema) Name() string { return s.name }

var (
	AnalysisSchema     = mustCompile("analysis.schema.json")
	ReviewSchema       = mustCompile("review.schema.json")
	OptimizationSchema = mustCompile("optimization.schema.json")
)

func mustCompile(name string) *Schema {
	data, err := schemaFS.ReadFile(path.Join("schemas", name))
	if err != nil {
		panic(fmt.Sprintf("artifact: missing schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("artifact: add schema %s: %v", name, err))
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("artifact: compile schema %s: %v", name, err))
	}
	return &Schema{name: strings.TrimSuffix(name, ".schema.json"), compiled: compiled}
}

// MalformedError reports a stage response that could not be decoded.
type MalformedError struct {
	Stage   string
	Preview string
	Err     error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s artifact: %v (raw: %q)", e.Stage, e.Err, e.Preview)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// fenceRe matches the first triple-backtick block, with an optional language
// label on the opening line.
var fenceRe = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \\t]*\\r?\\n?(.*?)```")

// StripFence returns the interior of the first fenced block in s. Input
// without a complete fence is returned unchanged.
func StripFence(s string) string {
	m := fenceRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return strings.TrimSpace(m[1])
}

// Decode cleans raw, strips an optional fence, parses the JSON object,
// validates it against schema and unmarshals it into v.
func Decode(stage, raw string, schema *Schema, v any) error {
	fail := func(err error) error {
		return &MalformedError{Stage: stage, Preview: chunker.Preview(raw, PreviewChars), Err: err}
	}

	body := strings.TrimSpace(StripFence(postprocess.Clean(raw)))
	if body == "" {
		return fail(fmt.Errorf("empty response"))
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return fail(fmt.Errorf("parse json: %w", err))
	}
	if _, ok := doc.(map[string]any); !ok {
		return fail(fmt.Errorf("expected a JSON object, got %T", doc))
	}
	if schema != nil {
		if err := schema.compiled.Validate(doc); err != nil {
			return fail(fmt.Errorf("%s schema: %w", schema.name, err))
		}
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fail(fmt.Errorf("decode %T: %w", v, err))
	}
	return nil
}

// DecodeAnalysis decodes a cv_analyzer response.
func DecodeAnalysis(stage, raw string) (*Analysis, error) {
	var a Analysis
	if err := Decode(stage, raw, AnalysisSchema, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DecodeReview decodes a cv_critic response.
func DecodeReview(stage, raw string) (*Review, error) {
	var r Review
	if err := Decode(stage, raw, ReviewSchema, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DecodeOptimization decodes a cv_optimizer response.
func DecodeOptimization(stage, raw string) (*Optimization, error) {
	var o Optimization
	if err := Decode(stage, raw, OptimizationSchema, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
