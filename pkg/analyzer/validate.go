package analyzer

import (
	"encoding/json"
	"fmt"

	"github.com/flowstock/flowstock/pkg/types"
)

// rawAnalysis mirrors the model's JSON contract with pointer fields so
// that absent keys are distinguishable from zero values.
type rawAnalysis struct {
	Theme                 *string       `json:"theme"`
	Structure             *rawStructure `json:"structure"`
	NextDecisionRequired  *string       `json:"next_decision_required"`
	SuggestedNextAction   *string       `json:"suggested_next_action"`
	SuggestedOwner        *string       `json:"suggested_owner"`
	NewConcepts           *[]string     `json:"new_concepts"`
	StrategicImplications *[]string     `json:"strategic_implications"`
	RiskSignals           *[]string     `json:"risk_signals"`
	Participants          []rawStance   `json:"participants"`
}

type rawStructure struct {
	Premises                  *[]string `json:"premises"`
	KeyIssues                 *[]string `json:"key_issues"`
	ConclusionsOrCurrentState *[]string `json:"conclusions_or_current_state"`
}

type rawStance struct {
	Name         *string   `json:"name"`
	Stance       *string   `json:"stance"`
	KeyArguments *[]string `json:"key_arguments"`
	Concerns     *[]string `json:"concerns"`
}

// parseAnalysis parses model output as JSON and validates it against the
// AnalysisResult schema. Every top-level field except participants is
// required; missing keys and wrong types are both validation failures.
func parseAnalysis(text string) (*types.AnalysisResult, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	switch {
	case raw.Theme == nil:
		return nil, fmt.Errorf("missing required field %q", "theme")
	case raw.Structure == nil:
		return nil, fmt.Errorf("missing required field %q", "structure")
	case raw.Structure.Premises == nil:
		return nil, fmt.Errorf("missing required field %q", "structure.premises")
	case raw.Structure.KeyIssues == nil:
		return nil, fmt.Errorf("missing required field %q", "structure.key_issues")
	case raw.Structure.ConclusionsOrCurrentState == nil:
		return nil, fmt.Errorf("missing required field %q", "structure.conclusions_or_current_state")
	case raw.NextDecisionRequired == nil:
		return nil, fmt.Errorf("missing required field %q", "next_decision_required")
	case raw.SuggestedNextAction == nil:
		return nil, fmt.Errorf("missing required field %q", "suggested_next_action")
	case raw.SuggestedOwner == nil:
		return nil, fmt.Errorf("missing required field %q", "suggested_owner")
	case raw.NewConcepts == nil:
		return nil, fmt.Errorf("missing required field %q", "new_concepts")
	case raw.StrategicImplications == nil:
		return nil, fmt.Errorf("missing required field %q", "strategic_implications")
	case raw.RiskSignals == nil:
		return nil, fmt.Errorf("missing required field %q", "risk_signals")
	}

	result := &types.AnalysisResult{
		Theme: *raw.Theme,
		Structure: types.DiscussionStructure{
			Premises:                  nonNil(*raw.Structure.Premises),
			KeyIssues:                 nonNil(*raw.Structure.KeyIssues),
			ConclusionsOrCurrentState: nonNil(*raw.Structure.ConclusionsOrCurrentState),
		},
		NextDecisionRequired:  *raw.NextDecisionRequired,
		SuggestedNextAction:   *raw.SuggestedNextAction,
		SuggestedOwner:        *raw.SuggestedOwner,
		NewConcepts:           nonNil(*raw.NewConcepts),
		StrategicImplications: nonNil(*raw.StrategicImplications),
		RiskSignals:           nonNil(*raw.RiskSignals),
		Participants:          []types.ParticipantStance{},
	}

	for i, p := range raw.Participants {
		if p.Name == nil || p.Stance == nil {
			return nil, fmt.Errorf("participants[%d]: missing name or stance", i)
		}
		stance := types.ParticipantStance{
			Name:         *p.Name,
			Stance:       *p.Stance,
			KeyArguments: []string{},
			Concerns:     []string{},
		}
		if p.KeyArguments != nil {
			stance.KeyArguments = nonNil(*p.KeyArguments)
		}
		if p.Concerns != nil {
			stance.Concerns = nonNil(*p.Concerns)
		}
		result.Participants = append(result.Participants, stance)
	}

	return result, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
