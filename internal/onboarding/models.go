package onboarding

import (
	"time"

	"github.com/lib/pq"
	"github.com/storesight/console/internal/db"
)

// Steps is the wizard order.
var Steps = []string{"business", "stores", "cameras", "employees", "alerts"}

func knownStep(step string) bool {
	for _, s := range Steps {
		if s == step {
			return true
		}
	}
	return false
}

type Progress struct {
	AccountID      string         `gorm:"type:uuid;primaryKey" json:"-"`
	CurrentStep    string         `gorm:"not null" json:"current_step"`
	CompletedSteps pq.StringArray `gorm:"type:text[]" json:"completed_steps"`
	Answers        db.JSONB       `gorm:"type:jsonb" json:"answers"`
	Completed      bool           `json:"completed"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (Progress) TableName() string { return "console.onboarding_progress" }

func fresh(accountID string) Progress {
	return Progress{
		AccountID:      accountID,
		CurrentStep:    Steps[0],
		CompletedSteps: pq.StringArray{},
		Answers:        db.JSONB("{}"),
	}
}

// nextStep is the first step in wizard order not yet completed, or the last
// step once all are done.
func (p *Progress) nextStep() string {
	done := make(map[string]bool, len(p.CompletedSteps))
	for _, s := range p.CompletedSteps {
		done[s] = true
	}
	for _, s := range Steps {
		if !done[s] {
			return s
		}
	}
	return Steps[len(Steps)-1]
}

type StepRequest struct {
	Step    string         `json:"step"`
	Answers map[string]any `json:"answers"`
}
