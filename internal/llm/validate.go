package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

// compileSchema compiles s once per schema name.
func compileSchema(s *Schema) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if cs, ok := compiled[s.Name]; ok {
		return cs, nil
	}

	raw, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}

	url := "mem://" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	cs, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	compiled[s.Name] = cs
	return cs, nil
}

// stripFences removes a markdown code fence some models wrap JSON in
// even when asked for structured output.
func stripFences(raw json.RawMessage) json.RawMessage {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return json.RawMessage(s)
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return json.RawMessage(strings.TrimSpace(s))
}

// validateResponse checks a reply against the request schema. A nil
// schema accepts anything.
func validateResponse(s *Schema, raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	reject := func(err error) error {
		return &ErrInvalidResponse{Schema: s.Name, Content: raw, Err: err}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return reject(fmt.Errorf("not JSON: %w", err))
	}
	cs, err := compileSchema(s)
	if err != nil {
		return reject(err)
	}
	if err := cs.Validate(doc); err != nil {
		return reject(describeViolation(err))
	}
	return nil
}

// describeViolation points at the deepest failing location, which for a
// curriculum is usually a single lesson or question.
func describeViolation(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return fmt.Errorf("at /%s: %w", strings.Join(ve.InstanceLocation, "/"), err)
}

// finish runs the checks every backend applies to a reply: truncation
// first, since a cut-off document is never valid JSON, then the schema.
func finish(req Request, content json.RawMessage, stop StopReason) (json.RawMessage, error) {
	var name string
	if req.Schema != nil {
		name = req.Schema.Name
	}
	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Schema: name, Limit: req.MaxTokens, Content: content}
	}
	content = stripFences(content)
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	return content, nil
}
