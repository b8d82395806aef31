package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/llm"
)

// ScriptedLLM is an llm.LLMClient whose answers come from Respond. It is
// safe for concurrent use and records every request.
type ScriptedLLM struct {
	Respond func(req llm.GenerateRequest) (string, error)

	mu       sync.Mutex
	requests []llm.GenerateRequest
}

// NewScriptedLLM returns a client that always answers text.
func NewScriptedLLM(text string) *ScriptedLLM {
	return &ScriptedLLM{Respond: func(llm.GenerateRequest) (string, error) { return text, nil }}
}

func (s *ScriptedLLM) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	text, err := s.Respond(req)
	if err != nil {
		return nil, err
	}
	return &llm.GenerateResponse{Text: text, Model: "scripted"}, nil
}

func (s *ScriptedLLM) Available(context.Context) bool { return true }

// Calls returns the number of Generate calls, optionally for one task.
func (s *ScriptedLLM) Calls(task llm.TaskType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task == "" {
		return len(s.requests)
	}
	n := 0
	for _, r := range s.requests {
		if r.Task == task {
			n++
		}
	}
	return n
}

// Requests returns a copy of the recorded requests.
func (s *ScriptedLLM) Requests() []llm.GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.GenerateRequest(nil), s.requests...)
}

// MacroPlanJSON renders a macro plan response the way a provider would.
func MacroPlanJSON(intent, raceDistance string, weeks []domain.MacroWeek) string {
	type week struct {
		Week          int     `json:"week"`
		Focus         string  `json:"focus"`
		TotalDistance float64 `json:"total_distance"`
	}
	doc := struct {
		Weeks        []week `json:"weeks"`
		Intent       string `json:"intent"`
		RaceDistance string `json:"race_distance"`
	}{Intent: intent, RaceDistance: raceDistance}
	for _, w := range weeks {
		doc.Weeks = append(doc.Weeks, week{Week: w.Week, Focus: string(w.Focus), TotalDistance: w.TotalDistance})
	}
	data, _ := json.Marshal(doc)
	return string(data)
}

// ProgressiveWeeks builds n macro weeks ramping from start by 5% a week,
// cycling base/build, with the final week in lastFocus.
func ProgressiveWeeks(n int, start float64, lastFocus domain.Focus) []domain.MacroWeek {
	weeks := make([]domain.MacroWeek, n)
	vol := start
	for i := range weeks {
		focus := domain.FocusBuild
		if i < n/3 {
			focus = domain.FocusBase
		}
		weeks[i] = domain.MacroWeek{Week: i + 1, Focus: focus, TotalDistance: domain.Round1(vol)}
		vol *= 1.05
	}
	if n > 0 {
		weeks[n-1].Focus = lastFocus
	}
	return weeks
}
