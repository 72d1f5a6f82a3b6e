// Package strategy turns detected violations into a multi-round dispute plan.
package strategy

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/detect"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
	"github.com/joseph-ayodele/credit-audit/internal/rules"
)

const (
	// MaxPerBureau caps how many items one bureau receives in a single round.
	MaxPerBureau = 5

	RoundInterval   = 45 * 24 * time.Hour
	ResponseWindow  = 30 * 24 * time.Hour
	FollowUpWindow  = 7 * 24 * time.Hour
	timelineDateFmt = "2006-01-02"
)

type Builder struct {
	catalog *rules.Catalog
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Builder)

// WithClock sets the time the first round is sent.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(catalog *rules.Catalog, logger *slog.Logger, opts ...Option) *Builder {
	if catalog == nil {
		catalog = rules.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Builder{
		catalog: catalog,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build schedules violations into rounds starting at startRound (values below 1 mean 1).
// Every violation goes to all three bureaus: a violation does not record which bureau's record
// produced it.
func (b *Builder) Build(violations []entity.Violation, client entity.Client, startRound int) (entity.Strategy, error) {
	if strings.TrimSpace(client.ID) == "" {
		return entity.Strategy{}, fmt.Errorf("client id is required: %w", common.ErrInvalidInput)
	}
	if startRound < 1 {
		startRound = 1
	}

	rounds := b.organizeRounds(violations, startRound)
	plan := entity.Strategy{
		ClientID:     client.ID,
		ClientName:   client.FullName,
		CurrentRound: startRound,
		TotalRounds:  len(rounds),
		Rounds:       rounds,
		Timeline:     Timeline(rounds, b.now()),
		Guide:        Guide(),
		Estimates:    Estimate(violations),
		Checklist:    Checklist(),
		Tips:         Tips(startRound),
		Bureaus:      b.catalog.Bureaus(),
	}

	b.logger.Info("strategy.build.ok",
		"client_id", client.ID,
		"violations", len(violations),
		"rounds", plan.TotalRounds,
		"start_round", startRound,
	)
	return plan, nil
}

func (b *Builder) organizeRounds(violations []entity.Violation, startRound int) []entity.RoundPlan {
	ranked := detect.Rank(violations)

	bureaus := constants.Bureaus()
	queues := make(map[constants.Bureau][]entity.Violation, len(bureaus))
	for _, bureau := range bureaus {
		queues[bureau] = append([]entity.Violation(nil), ranked...)
	}

	rounds := []entity.RoundPlan{}
	for round := startRound; anyPending(queues); round++ {
		plan := entity.RoundPlan{Round: round, Items: make(map[constants.Bureau][]entity.ScheduledItem, len(bureaus))}
		for _, bureau := range bureaus {
			q := queues[bureau]
			n := min(MaxPerBureau, len(q))
			items := make([]entity.ScheduledItem, 0, n)
			for _, v := range q[:n] {
				items = append(items, b.schedule(v))
			}
			plan.Items[bureau] = items
			queues[bureau] = q[n:]
		}
		rounds = append(rounds, plan)
	}
	return rounds
}

func (b *Builder) schedule(v entity.Violation) entity.ScheduledItem {
	key := v.DisputeStrategy
	if key == "" {
		key = rules.StrategyFactualDispute
	}
	section := v.FCRASection
	if section == "" {
		section = "623(a)(1)"
	}
	return entity.ScheduledItem{
		Violation:  v,
		Strategy:   b.catalog.Strategy(key),
		LetterType: rules.LetterFor(v.Type, key),
		LegalBasis: section,
	}
}

func anyPending(queues map[constants.Bureau][]entity.Violation) bool {
	for _, q := range queues {
		if len(q) > 0 {
			return true
		}
	}
	return false
}

// Timeline dates every round from start: round i is sent 45 days after round i-1, its response
// is due 30 days after sending and the follow-up falls 7 days after that.
func Timeline(rounds []entity.RoundPlan, start time.Time) []entity.TimelineEntry {
	out := make([]entity.TimelineEntry, 0, len(rounds))
	for i, r := range rounds {
		send := start.Add(time.Duration(i) * RoundInterval)
		due := send.Add(ResponseWindow)
		follow := due.Add(FollowUpWindow)

		var bureaus []constants.Bureau
		for _, bureau := range constants.Bureaus() {
			if r.Count(bureau) > 0 {
				bureaus = append(bureaus, bureau)
			}
		}
		out = append(out, entity.TimelineEntry{
			Round:            r.Round,
			SendDate:         send.Format(timelineDateFmt),
			ResponseDeadline: due.Format(timelineDateFmt),
			FollowUpDate:     follow.Format(timelineDateFmt),
			Bureaus:          bureaus,
		})
	}
	return out
}

// Estimate projects score improvement as fixed shares of the summed impact.
func Estimate(violations []entity.Violation) entity.Estimates {
	total := 0
	for _, v := range violations {
		total += v.EstimatedImpact
	}
	return entity.Estimates{
		Best:         total,
		Realistic:    total * 60 / 100,
		Conservative: total * 30 / 100,
	}
}
