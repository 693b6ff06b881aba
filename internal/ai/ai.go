package ai

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/garnizeh/campus/internal/config"
	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/ollama"
)

// ErrExternalService wraps every failure of the generative model: transport
// errors, timeouts, output that is not JSON or does not match the schema.
var ErrExternalService = errors.New("external service failed")

const (
	taskIdeas   = "ideas"
	taskMentors = "mentors"

	// MaxMentorMatches bounds the mentor list returned by the model.
	MaxMentorMatches = 3
)

// Generator is the subset of *ollama.Client used by the engine.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, opts ...ollama.GenerateOption) (ollama.GenerateResult, error)
}

var _ Generator = (*ollama.Client)(nil)

// Engine asks the model for project ideas and mentor rankings.
type Engine struct {
	client Generator
	cfg    config.EngineConfig
	loader *Loader
}

// NewEngine creates an engine using the built-in prompts and schemas.
func NewEngine(client Generator, cfg config.EngineConfig) (*Engine, error) {
	loader, err := NewLoader(Assets)
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}
	return NewEngineWithLoader(client, cfg, loader)
}

func NewEngineWithLoader(client Generator, cfg config.EngineConfig, loader *Loader) (*Engine, error) {
	if client == nil {
		return nil, errors.New("generator is required")
	}
	if loader == nil {
		return nil, errors.New("loader is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	for _, task := range []string{taskIdeas, taskMentors} {
		if _, ok := loader.Prompt(task); !ok {
			return nil, fmt.Errorf("no prompt for %s", task)
		}
		if _, _, ok := loader.Schema(task); !ok {
			return nil, fmt.Errorf("no schema for %s", task)
		}
	}

	return &Engine{client: client, cfg: cfg, loader: loader}, nil
}

type ideasPrompt struct {
	Tags       []string
	TagList    string
	Difficulty models.Difficulty
}

type ideasResponse struct {
	Ideas []models.ProjectIdea `json:"ideas"`
}

// GenerateIdeas returns the model's project ideas for the tags. Ideas without
// a title are dropped; the difficulty is forced to the requested one.
func (e *Engine) GenerateIdeas(ctx context.Context, tags []string, difficulty models.Difficulty) ([]models.ProjectIdea, error) {
	data := ideasPrompt{Tags: tags, TagList: strings.Join(tags, ", "), Difficulty: difficulty}

	var resp ideasResponse
	if err := e.complete(ctx, taskIdeas, data, &resp); err != nil {
		return nil, err
	}

	ideas := make([]models.ProjectIdea, 0, len(resp.Ideas))
	for _, idea := range resp.Ideas {
		idea.Title = strings.TrimSpace(idea.Title)
		if idea.Title == "" {
			continue
		}
		idea.Difficulty = difficulty
		if idea.Technologies == nil {
			idea.Technologies = []string{}
		}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}

type mentorLine struct {
	ID        int64
	Name      string
	Expertise string
	Bio       string
	Rating    string
}

type mentorsPrompt struct {
	TagList string
	Mentors []mentorLine
}

type mentorsResponse struct {
	Matches []struct {
		MentorID    float64 `json:"mentorId"`
		MatchScore  float64 `json:"matchScore"`
		MatchReason string  `json:"matchReason"`
	} `json:"matches"`
}

// MatchMentors asks the model to rank mentors for the tags. Results are
// joined back to the pool: unknown or repeated ids are dropped, scores are
// clamped to 0..100, and at most MaxMentorMatches are returned, best first.
func (e *Engine) MatchMentors(ctx context.Context, tags []string, mentors []models.User) ([]models.MentorMatch, error) {
	data := mentorsPrompt{TagList: strings.Join(tags, ", "), Mentors: make([]mentorLine, 0, len(mentors))}
	byID := make(map[int64]models.User, len(mentors))
	for _, m := range mentors {
		byID[m.ID] = m
		data.Mentors = append(data.Mentors, mentorLine{
			ID:        m.ID,
			Name:      m.FullName,
			Expertise: strings.Join(m.Expertise, ", "),
			Bio:       m.Bio,
			Rating:    strconv.FormatFloat(m.Rating, 'f', -1, 64),
		})
	}

	var resp mentorsResponse
	if err := e.complete(ctx, taskMentors, data, &resp); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(resp.Matches))
	out := make([]models.MentorMatch, 0, len(resp.Matches))
	for _, r := range resp.Matches {
		id := int64(r.MentorID)
		m, ok := byID[id]
		if !ok || seen[id] || float64(id) != r.MentorID {
			continue
		}
		seen[id] = true

		expertise := m.Expertise
		if expertise == nil {
			expertise = []string{}
		}
		out = append(out, models.MentorMatch{
			ID:          m.ID,
			FullName:    m.FullName,
			Avatar:      m.Avatar,
			Expertise:   slices.Clone(expertise),
			Bio:         m.Bio,
			Rating:      m.Rating,
			MatchScore:  int(math.Round(min(max(r.MatchScore, 0), 100))),
			MatchReason: strings.TrimSpace(r.MatchReason),
		})
	}

	slices.SortStableFunc(out, func(a, b models.MentorMatch) int {
		return cmp.Compare(b.MatchScore, a.MatchScore)
	})
	if len(out) > MaxMentorMatches {
		out = out[:MaxMentorMatches]
	}
	return out, nil
}

// complete renders the task prompts, calls the model and decodes the
// schema-checked JSON answer into dst.
func (e *Engine) complete(ctx context.Context, task string, data, dst any) error {
	prompt, _ := e.loader.Prompt(task)
	schema, rawSchema, _ := e.loader.Schema(task)

	system, err := ollama.RenderTemplate(task+"_system", prompt.System, data)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	user, err := ollama.RenderTemplate(task+"_user", prompt.User, data)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	ctxReq, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	opts := []ollama.GenerateOption{ollama.WithSystem(system), ollama.WithJSONFormat(rawSchema)}
	if e.cfg.Temperature > 0 {
		opts = append(opts, ollama.WithTemperature(e.cfg.Temperature))
	}

	res, err := e.client.Generate(ctxReq, e.cfg.Model, user, opts...)
	if err != nil {
		return fmt.Errorf("%w: generate %s: %w", ErrExternalService, task, err)
	}

	j := extractJSON(res.Text)
	if j == "" {
		return fmt.Errorf("%w: no JSON object found in %s response", ErrExternalService, task)
	}

	verrs, err := schema.ValidateBytes(ctxReq, []byte(j))
	if err != nil {
		return fmt.Errorf("%w: %s response: %w", ErrExternalService, task, err)
	}
	if len(verrs) > 0 {
		var sb strings.Builder
		for _, v := range verrs {
			sb.WriteString(v.PropertyPath)
			sb.WriteString(" ")
			sb.WriteString(v.Message)
			sb.WriteString("; ")
		}
		return fmt.Errorf("%w: %s response does not match schema: %s", ErrExternalService, task, sb.String())
	}

	if err := json.Unmarshal([]byte(j), dst); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrExternalService, task, err)
	}
	return nil
}

// extractJSON returns the substring from the first '{' to the last '}' in the input.
// Models often wrap the object in prose or a markdown fence.
func extractJSON(s string) string {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	return s[first : last+1]
}
