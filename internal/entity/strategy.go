package entity

import (
	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/rules"
)

// Client identifies whose plan is being built.
type Client struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

type ScheduledItem struct {
	Violation  Violation            `json:"error"`
	Strategy   rules.StrategyDetail `json:"strategy"`
	LetterType rules.LetterType     `json:"letter_type"`
	LegalBasis string               `json:"legal_basis"`
}

type RoundPlan struct {
	Round int                                  `json:"round_number"`
	Items map[constants.Bureau][]ScheduledItem `json:"items"`
}

// Count returns how many items bureau b has this round.
func (r RoundPlan) Count(b constants.Bureau) int {
	return len(r.Items[b])
}

type TimelineEntry struct {
	Round            int                `json:"round"`
	SendDate         string             `json:"send_date"`
	ResponseDeadline string             `json:"response_deadline"`
	FollowUpDate     string             `json:"follow_up_date"`
	Bureaus          []constants.Bureau `json:"bureaus"`
}

type Estimates struct {
	Best         int `json:"best"`
	Realistic    int `json:"realistic"`
	Conservative int `json:"conservative"`
}

type Guide struct {
	Preparation []string `json:"preparation"`
	Sending     []string `json:"sending"`
	Waiting     []string `json:"waiting"`
	Response    []string `json:"response"`
	FollowUp    []string `json:"follow_up"`
}

type Strategy struct {
	ClientID     string                `json:"client_id"`
	ClientName   string                `json:"client_name,omitempty"`
	CurrentRound int                   `json:"current_round"`
	TotalRounds  int                   `json:"total_rounds"`
	Rounds       []RoundPlan           `json:"rounds"`
	Timeline     []TimelineEntry       `json:"timeline"`
	Guide        Guide                 `json:"guide"`
	Estimates    Estimates             `json:"estimated_improvement"`
	Checklist    []string              `json:"preparation_checklist"`
	Tips         []string              `json:"tips_and_warnings"`
	Bureaus      []rules.BureauContact `json:"bureau_addresses"`
}
