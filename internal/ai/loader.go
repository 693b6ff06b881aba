package ai

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

// Assets holds the built-in prompts and response schemas.
//
//go:embed prompts/*.tmpl schemas/*.json
var Assets embed.FS

// Prompt is the system/user template pair for one task.
type Prompt struct {
	System string
	User   string
}

type compiledSchema struct {
	schema *jsonschema.Schema
	raw    json.RawMessage
}

// Loader loads and caches prompt templates and compiled JSON schemas from a
// file system laid out as prompts/<task>_{system,user}.tmpl and
// schemas/<task>.json.
type Loader struct {
	fsys    fs.FS
	mu      sync.RWMutex
	schemas map[string]compiledSchema
	prompts map[string]Prompt
}

func NewLoader(fsys fs.FS) (*Loader, error) {
	l := &Loader{fsys: fsys}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Schema returns the compiled schema for a task and its source, which is
// also sent to the model as the response format.
func (l *Loader) Schema(task string) (*jsonschema.Schema, json.RawMessage, bool) {
	l.mu.RLock()
	s, ok := l.schemas[task]
	l.mu.RUnlock()

	return s.schema, s.raw, ok
}

func (l *Loader) Prompt(task string) (Prompt, bool) {
	l.mu.RLock()
	p, ok := l.prompts[task]
	l.mu.RUnlock()

	return p, ok
}

// Reload reads every schema and prompt again. On error the previous cache
// stays in place.
func (l *Loader) Reload() error {
	schemaFiles, err := fs.Glob(l.fsys, "schemas/*.json")
	if err != nil {
		return fmt.Errorf("list schemas: %w", err)
	}

	schemas := make(map[string]compiledSchema, len(schemaFiles))
	for _, name := range schemaFiles {
		b, err := fs.ReadFile(l.fsys, name)
		if err != nil {
			return fmt.Errorf("read schema %s: %w", name, err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return fmt.Errorf("compile schema %s: %w", name, err)
		}
		task := strings.TrimSuffix(path.Base(name), ".json")
		schemas[task] = compiledSchema{schema: rs, raw: json.RawMessage(b)}
	}

	systemFiles, err := fs.Glob(l.fsys, "prompts/*_system.tmpl")
	if err != nil {
		return fmt.Errorf("list prompts: %w", err)
	}

	prompts := make(map[string]Prompt, len(systemFiles))
	for _, name := range systemFiles {
		task := strings.TrimSuffix(path.Base(name), "_system.tmpl")
		system, err := fs.ReadFile(l.fsys, name)
		if err != nil {
			return fmt.Errorf("read prompt %s: %w", name, err)
		}
		user, err := fs.ReadFile(l.fsys, "prompts/"+task+"_user.tmpl")
		if err != nil {
			return fmt.Errorf("prompt %s has no user template: %w", task, err)
		}
		prompts[task] = Prompt{System: string(system), User: string(user)}
	}

	l.mu.Lock()
	l.schemas = schemas
	l.prompts = prompts
	l.mu.Unlock()
	return nil
}
