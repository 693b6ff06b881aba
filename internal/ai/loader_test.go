package ai_test

import (
	"testing"
	"testing/fstest"

	"github.com/garnizeh/campus/internal/ai"
)

func TestLoader_BuiltinAssets(t *testing.T) {
	l, err := ai.NewLoader(ai.Assets)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	for _, task := range []string{"ideas", "mentors"} {
		p, ok := l.Prompt(task)
		if !ok || p.System == "" || p.User == "" {
			t.Fatalf("missing prompt for %s: %+v", task, p)
		}
		s, raw, ok := l.Schema(task)
		if !ok || s == nil || len(raw) == 0 {
			t.Fatalf("missing schema for %s", task)
		}
	}
}

func TestLoader_ValidatesWithCompiledSchema(t *testing.T) {
	fsys := fstest.MapFS{
		"schemas/probe.json":        {Data: []byte(`{"type":"object","required":["version"],"properties":{"version":{"type":"string"}}}`)},
		"prompts/probe_system.tmpl": {Data: []byte("system")},
		"prompts/probe_user.tmpl":   {Data: []byte("user")},
	}
	l, err := ai.NewLoader(fsys)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	s, _, ok := l.Schema("probe")
	if !ok {
		t.Fatalf("expected probe schema")
	}
	errs, err := s.ValidateBytes(t.Context(), []byte(`{"other":1}`))
	if err != nil {
		t.Fatalf("ValidateBytes: %v", err)
	}
	if len(errs) == 0 {
		t.Fatalf("expected a missing 'version' error")
	}
	errs, err = s.ValidateBytes(t.Context(), []byte(`{"version":"v1"}`))
	if err != nil || len(errs) != 0 {
		t.Fatalf("expected valid document, got %v %v", errs, err)
	}
}

func TestLoader_Errors(t *testing.T) {
	cases := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"bad schema", fstest.MapFS{"schemas/x.json": {Data: []byte(`{not json`)}}},
		{"user prompt missing", fstest.MapFS{"prompts/x_system.tmpl": {Data: []byte("s")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ai.NewLoader(tc.fsys); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoader_ReloadKeepsCacheOnError(t *testing.T) {
	fsys := fstest.MapFS{
		"schemas/x.json":        {Data: []byte(`{"type":"object"}`)},
		"prompts/x_system.tmpl": {Data: []byte("s")},
		"prompts/x_user.tmpl":   {Data: []byte("u")},
	}
	l, err := ai.NewLoader(fsys)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	fsys["schemas/x.json"] = &fstest.MapFile{Data: []byte(`{broken`)}
	if err := l.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if _, _, ok := l.Schema("x"); !ok {
		t.Fatalf("previous schema should survive a failed reload")
	}
}
