package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aromasens/logger"
	"aromasens/models"
)

func newTestEngine(p *fakeProvider) *ConversationEngine {
	ai := newTestAI(map[models.ProviderID]Provider{models.ProviderPrimary: p})
	return NewConversationEngine(logger.NewNop(), ai)
}

func esSettings() models.Settings {
	return models.Settings{Model: models.ProviderPrimary, Language: models.LanguageES}
}

func TestStartReturnsStepZero(t *testing.T) {
	for _, gender := range []string{models.GenderFeminine, models.GenderMasculine} {
		p := &fakeProvider{name: "p", text: "¡Hola! ¿Cuántos años tienes?"}
		resp, err := newTestEngine(p).Start(context.Background(), StartInput{Gender: gender, Settings: esSettings()})
		if err != nil {
			t.Fatalf("Start(%s): %v", gender, err)
		}
		if resp.Step == nil || *resp.Step != 0 {
			t.Fatalf("step=%v", resp.Step)
		}
		if resp.Message == "" {
			t.Fatalf("empty message")
		}
		if len(resp.QuickResponses) != 0 || resp.IsComplete {
			t.Fatalf("unexpected extras: %+v", resp)
		}
		if !strings.Contains(p.lastText.Prompt, "AROMASENS") {
			t.Fatalf("prompt=%q", p.lastText.Prompt)
		}
	}
}

func TestStartRejectsUnknownGender(t *testing.T) {
	p := &fakeProvider{name: "p", text: "x"}
	_, err := newTestEngine(p).Start(context.Background(), StartInput{Gender: "unisex", Settings: esSettings()})
	if !errors.Is(err, ErrInvalidGender) {
		t.Fatalf("err=%v", err)
	}
	if n, _ := p.calls(); n != 0 {
		t.Fatalf("provider called %d times", n)
	}
}

func TestAdvanceStepsAndQuickReplies(t *testing.T) {
	wantReplies := map[int]int{1: 0, 2: 0, 3: 5, 4: 6}
	for current := 0; current <= 3; current++ {
		p := &fakeProvider{name: "p", text: "siguiente pregunta"}
		resp, err := newTestEngine(p).Advance(context.Background(), AdvanceInput{
			Message:     "respuesta",
			Gender:      models.GenderFeminine,
			CurrentStep: current,
			Settings:    esSettings(),
		})
		if err != nil {
			t.Fatalf("Advance(%d): %v", current, err)
		}
		next := current + 1
		if resp.Step == nil || *resp.Step != next {
			t.Fatalf("Advance(%d) step=%v", current, resp.Step)
		}
		if resp.IsComplete {
			t.Fatalf("Advance(%d) marked complete", current)
		}
		if len(resp.QuickResponses) != wantReplies[next] {
			t.Fatalf("Advance(%d) quick replies=%v", current, resp.QuickResponses)
		}
		if n, _ := p.calls(); n != 1 {
			t.Fatalf("Advance(%d) provider calls=%d", current, n)
		}
	}
}

func TestQuickReplyLiterals(t *testing.T) {
	occasions := QuickReplies(models.StepPreferences, models.LanguageES)
	if occasions[0] != "Uso diario" || occasions[4] != "Trabajo" {
		t.Fatalf("occasions=%v", occasions)
	}
	families := QuickReplies(models.StepComplete, models.LanguageES)
	if families[3] != "Orientales/especiadas" || families[5] != "Dulces" {
		t.Fatalf("families=%v", families)
	}
	if en := QuickReplies(models.StepComplete, models.LanguageEN); len(en) != 6 || en[0] != "Floral" {
		t.Fatalf("en families=%v", en)
	}
	occasions[0] = "mutated"
	if QuickReplies(models.StepPreferences, models.LanguageES)[0] != "Uso diario" {
		t.Fatalf("quick replies share backing array")
	}
}

func TestAdvanceFromCompleteIsIdempotent(t *testing.T) {
	p := &fakeProvider{name: "p", text: "should not be used"}
	engine := newTestEngine(p)

	var first *models.ChatResponse
	for i := 0; i < 3; i++ {
		resp, err := engine.Advance(context.Background(), AdvanceInput{
			Gender:      models.GenderMasculine,
			CurrentStep: 4,
			Settings:    esSettings(),
		})
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if !resp.IsComplete || resp.Step == nil || *resp.Step != 4 {
			t.Fatalf("resp=%+v", resp)
		}
		if first == nil {
			first = resp
		} else if resp.Message != first.Message {
			t.Fatalf("terminal message changed: %q vs %q", resp.Message, first.Message)
		}
	}
	if n, _ := p.calls(); n != 0 {
		t.Fatalf("provider called %d times", n)
	}
	if first.Message != completionMessage(models.LanguageES) {
		t.Fatalf("message=%q", first.Message)
	}
}

func TestAdvanceRejectsInvalidInputBeforeAICall(t *testing.T) {
	cases := []struct {
		name string
		in   AdvanceInput
		want error
	}{
		{"negative step", AdvanceInput{Message: "x", Gender: models.GenderFeminine, CurrentStep: -1}, ErrInvalidStep},
		{"step past complete", AdvanceInput{Message: "x", Gender: models.GenderFeminine, CurrentStep: 5}, ErrInvalidStep},
		{"bad gender", AdvanceInput{Message: "x", Gender: "", CurrentStep: 1}, ErrInvalidGender},
		{"empty message", AdvanceInput{Message: "  ", Gender: models.GenderFeminine, CurrentStep: 1}, ErrEmptyMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{name: "p", text: "x"}
			tc.in.Settings = esSettings()
			_, err := newTestEngine(p).Advance(context.Background(), tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v", err, tc.want)
			}
			if !ValidationError(err) {
				t.Fatalf("%v not classified as validation error", err)
			}
			if n, _ := p.calls(); n != 0 {
				t.Fatalf("provider called %d times", n)
			}
		})
	}
}

func TestAdvanceDegradesToCannedQuestion(t *testing.T) {
	p := &fakeProvider{name: "p", textErr: errors.New("timeout")}
	resp, err := newTestEngine(p).Advance(context.Background(), AdvanceInput{
		Message:     "30",
		Gender:      models.GenderFeminine,
		CurrentStep: 0,
		Settings:    esSettings(),
	})
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if resp.Message != degradedStep(models.StepExperience, models.LanguageES) {
		t.Fatalf("message=%q", resp.Message)
	}
	if *resp.Step != 1 {
		t.Fatalf("step=%d", *resp.Step)
	}
}

func TestStartDegradesInEnglish(t *testing.T) {
	p := &fakeProvider{name: "p", textErr: errors.New("boom")}
	resp, err := newTestEngine(p).Start(context.Background(), StartInput{
		Gender:   models.GenderMasculine,
		Settings: models.Settings{Model: models.ProviderPrimary, Language: models.LanguageEN, TTSEnabled: true},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !strings.Contains(resp.Message, "How old are you?") {
		t.Fatalf("message=%q", resp.Message)
	}
	if !resp.Speak {
		t.Fatalf("speak not echoed")
	}
}

func TestAdvancePassesRecentHistory(t *testing.T) {
	var history []models.ChatMessage
	for i := 0; i < 9; i++ {
		history = append(history, models.ChatMessage{Role: models.RoleUser, Content: string(rune('a' + i))})
	}
	p := &fakeProvider{name: "p", text: "ok"}
	_, err := newTestEngine(p).Advance(context.Background(), AdvanceInput{
		Message:     "floral",
		Gender:      models.GenderFeminine,
		CurrentStep: 2,
		History:     history,
		Settings:    esSettings(),
	})
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	got := p.lastText.History
	if len(got) != maxHistory {
		t.Fatalf("history len=%d", len(got))
	}
	if got[0].Content != "d" || got[5].Content != "i" {
		t.Fatalf("history=%v", got)
	}
	if !strings.Contains(p.lastText.Prompt, `"floral"`) {
		t.Fatalf("prompt missing answer: %q", p.lastText.Prompt)
	}
}
