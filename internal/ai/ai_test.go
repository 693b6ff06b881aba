package ai_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/campus/internal/ai"
	"github.com/garnizeh/campus/internal/config"
	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/ollama"
)

// fakeGenerator returns a canned answer and records the last prompt.
type fakeGenerator struct {
	out    string
	err    error
	calls  int
	model  string
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string, opts ...ollama.GenerateOption) (ollama.GenerateResult, error) {
	f.calls++
	f.model = model
	f.prompt = prompt
	if f.err != nil {
		return ollama.GenerateResult{}, f.err
	}
	return ollama.GenerateResult{Text: f.out}, nil
}

func newEngine(t *testing.T, g ai.Generator) *ai.Engine {
	t.Helper()
	e, err := ai.NewEngine(g, config.EngineConfig{Enabled: true, Model: "test-model", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngine_Validation(t *testing.T) {
	if _, err := ai.NewEngine(nil, config.EngineConfig{Model: "m"}); err == nil {
		t.Fatalf("expected error for nil generator")
	}
	if _, err := ai.NewEngine(&fakeGenerator{}, config.EngineConfig{}); err == nil {
		t.Fatalf("expected error for empty model")
	}
}

func TestGenerateIdeas(t *testing.T) {
	g := &fakeGenerator{out: "Here are your ideas:\n```json\n" +
		`{"ideas":[` +
		`{"title":"Campus Compost","description":"Track compost bins","technologies":["Go","IoT"],"duration":"4-6 weeks","teamSize":"3-4 members","difficulty":"advanced"},` +
		`{"title":"  ","description":"untitled","technologies":[],"duration":"1 week","teamSize":"1","difficulty":"beginner"}` +
		`]}` + "\n```"}
	e := newEngine(t, g)

	ideas, err := e.GenerateIdeas(context.Background(), []string{"Go", "IoT"}, models.DifficultyBeginner)
	if err != nil {
		t.Fatalf("GenerateIdeas: %v", err)
	}
	if len(ideas) != 1 {
		t.Fatalf("expected the untitled idea to be dropped, got %d ideas", len(ideas))
	}
	if ideas[0].Title != "Campus Compost" || ideas[0].Difficulty != models.DifficultyBeginner {
		t.Fatalf("unexpected idea: %+v", ideas[0])
	}
	if g.model != "test-model" {
		t.Fatalf("expected configured model, got %q", g.model)
	}
	if !strings.Contains(g.prompt, "Go, IoT") || !strings.Contains(g.prompt, "beginner") {
		t.Fatalf("prompt does not mention tags and difficulty: %q", g.prompt)
	}
}

func TestGenerateIdeas_Failures(t *testing.T) {
	cases := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"transport", &fakeGenerator{err: errors.New("connection refused")}},
		{"no json", &fakeGenerator{out: "I cannot help with that."}},
		{"schema mismatch", &fakeGenerator{out: `{"ideas":[{"title":"x"}]}`}},
		{"missing ideas", &fakeGenerator{out: `{"projects":[]}`}},
		{"broken json", &fakeGenerator{out: `{"ideas": [ }`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, tc.gen)
			_, err := e.GenerateIdeas(context.Background(), []string{"Go"}, models.DifficultyAdvanced)
			if !errors.Is(err, ai.ErrExternalService) {
				t.Fatalf("expected ErrExternalService, got %v", err)
			}
		})
	}
}

func TestGenerateIdeas_KeepsCause(t *testing.T) {
	e := newEngine(t, &fakeGenerator{err: context.DeadlineExceeded})
	_, err := e.GenerateIdeas(context.Background(), []string{"Go"}, models.DifficultyAdvanced)
	if !errors.Is(err, ai.ErrExternalService) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected both sentinel and cause, got %v", err)
	}
}

func mentorPool() []models.User {
	return []models.User{
		{ID: 2, FullName: "Ada", Role: models.RoleMentor, Expertise: []string{"Machine Learning"}, Rating: 4.5},
		{ID: 3, FullName: "Grace", Role: models.RoleFaculty, Expertise: []string{"Compilers"}, Rating: 5},
		{ID: 4, FullName: "Linus", Role: models.RoleMentor, Rating: 3},
		{ID: 5, FullName: "Barbara", Role: models.RoleMentor, Expertise: []string{"Distributed Systems"}, Rating: 4},
	}
}

func TestMatchMentors(t *testing.T) {
	g := &fakeGenerator{out: `{"matches":[` +
		`{"mentorId":3,"matchScore":70,"matchReason":"compilers"},` +
		`{"mentorId":99,"matchScore":99,"matchReason":"ghost"},` +
		`{"mentorId":2,"matchScore":140,"matchReason":" ml expert "},` +
		`{"mentorId":3,"matchScore":90,"matchReason":"duplicate"},` +
		`{"mentorId":4,"matchScore":-5,"matchReason":"weak"},` +
		`{"mentorId":5,"matchScore":40,"matchReason":"systems"}` +
		`]}`}
	e := newEngine(t, g)

	got, err := e.MatchMentors(context.Background(), []string{"Machine Learning"}, mentorPool())
	if err != nil {
		t.Fatalf("MatchMentors: %v", err)
	}
	if len(got) != ai.MaxMentorMatches {
		t.Fatalf("expected %d matches, got %d: %+v", ai.MaxMentorMatches, len(got), got)
	}

	wantIDs := []int64{2, 3, 5}
	wantScores := []int{100, 70, 40}
	for i := range got {
		if got[i].ID != wantIDs[i] || got[i].MatchScore != wantScores[i] {
			t.Fatalf("match %d: got id=%d score=%d, want id=%d score=%d", i, got[i].ID, got[i].MatchScore, wantIDs[i], wantScores[i])
		}
	}
	if got[0].FullName != "Ada" || got[0].MatchReason != "ml expert" || len(got[0].Expertise) != 1 {
		t.Fatalf("match not joined to the pool: %+v", got[0])
	}
	if !strings.Contains(g.prompt, "ID: 2, Name: Ada, Expertise: Machine Learning") {
		t.Fatalf("prompt does not list mentors: %q", g.prompt)
	}
}

func TestMatchMentors_SchemaMismatch(t *testing.T) {
	e := newEngine(t, &fakeGenerator{out: `{"matches":[{"mentorId":"two","matchScore":50,"matchReason":"x"}]}`})
	_, err := e.MatchMentors(context.Background(), []string{"Go"}, mentorPool())
	if !errors.Is(err, ai.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}
