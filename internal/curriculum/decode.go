package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

const (
	curriculumSchemaURL = "schema://curriculum.json"
	examSchemaURL       = "schema://exam.json"
)

func compiledSchema(url string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*jsonschema.Schema, 2)
		for url, def := range map[string]map[string]any{
			curriculumSchemaURL: Schema,
			examSchemaURL:       ExamSchema,
		} {
			doc, err := normalize(def)
			if err != nil {
				compileErr = fmt.Errorf("normalize schema %s: %w", url, err)
				return
			}
			c := jsonschema.NewCompiler()
			if err := c.AddResource(url, doc); err != nil {
				compileErr = fmt.Errorf("add resource %s: %w", url, err)
				return
			}
			s, err := c.Compile(url)
			if err != nil {
				compileErr = fmt.Errorf("compile %s: %w", url, err)
				return
			}
			compiled[url] = s
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	return compiled[url], nil
}

// normalize round-trips v through JSON so the schema library sees plain
// JSON values.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func checkSchema(url string, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	s, err := compiledSchema(url)
	if err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// Decode parses a JSON curriculum document, checks it against Schema,
// and runs Validate. The core only ever sees curricula that passed here.
func Decode(raw []byte) (*Curriculum, error) {
	if err := checkSchema(curriculumSchemaURL, raw); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	var c Curriculum
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DecodeExam parses and checks a single exam document.
func DecodeExam(raw []byte) (*Exam, error) {
	if err := checkSchema(examSchemaURL, raw); err != nil {
		return nil, err
	}
	var e Exam
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode exam: %w", err)
	}

	// Reuse the curriculum checks by wrapping the exam in a one-lesson plan.
	wrapper := &Curriculum{
		Title: "exam",
		Modules: []Module{{ID: "m", Topics: []Topic{{ID: "t", Lessons: []Lesson{
			{ID: "l", Exam: &e},
		}}}}},
	}
	if err := Validate(wrapper); err != nil {
		return nil, err
	}
	return &e, nil
}

// LoadFile reads a curriculum from a .json, .yaml or .yml file.
func LoadFile(path string) (*Curriculum, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yamlToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
	default:
		return nil, fmt.Errorf("unsupported curriculum file type: %q", filepath.Ext(path))
	}

	c, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
