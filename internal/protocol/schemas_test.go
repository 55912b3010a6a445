package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	runSchema := compile("run.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	progressSchema := compile("progress.schema.json")
	resultSchema := compile("result.schema.json")
	errorSchema := compile("error.schema.json")

	var run any
	_ = json.Unmarshal([]byte(`{
	  "type":"RUN",
	  "protocol_version":"1.0",
	  "job":"GENERATE",
	  "size":5,
	  "use_cache":true
	}`), &run)
	validate(runSchema, run)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "session_id":"S1",
	  "max_generate":10,
	  "max_count":16
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var progress any
	_ = json.Unmarshal([]byte(`{
	  "type":"PROGRESS",
	  "protocol_version":"1.0",
	  "job_id":"J1",
	  "done":100,
	  "total":1023
	}`), &progress)
	validate(progressSchema, progress)

	var result any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "protocol_version":"1.0",
	  "job_id":"J1",
	  "job":"COUNT",
	  "size":8,
	  "count":162913,
	  "exact":true,
	  "duration_ms":420
	}`), &result)
	validate(resultSchema, result)

	var errMsg any
	_ = json.Unmarshal([]byte(`{
	  "type":"ERROR",
	  "protocol_version":"1.0",
	  "code":"E_SIZE_RANGE",
	  "message":"size 99 above limit 16"
	}`), &errMsg)
	validate(errorSchema, errMsg)
}

func TestSchemas_RejectBadRun(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "run.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	var badJob any
	_ = json.Unmarshal([]byte(`{"type":"RUN","job":"EXPLODE","size":5}`), &badJob)
	if err := s.Validate(badJob); err == nil {
		t.Fatalf("unknown job kind should fail validation")
	}

	var badSize any
	_ = json.Unmarshal([]byte(`{"type":"RUN","job":"COUNT","size":0}`), &badSize)
	if err := s.Validate(badSize); err == nil {
		t.Fatalf("size 0 should fail validation")
	}
}
