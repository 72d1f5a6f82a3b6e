package strategy

import "github.com/joseph-ayodele/credit-audit/internal/entity"

var (
	guidePreparation = []string{
		"Gather all credit reports",
		"Review error analysis",
		"Print dispute letters",
		"Gather supporting documentation",
		"Prepare certified mail envelopes",
	}
	guideSending = []string{
		"Send letters via certified mail with return receipt",
		"Keep copies of everything sent",
		"Track delivery confirmation",
		"Mark calendar for response deadline",
	}
	guideWaiting = []string{
		"Wait 30 days for bureau response",
		"Check mail daily for responses",
		"Do not dispute same items during waiting period",
	}
	guideResponse = []string{
		"Review all responses carefully",
		"Check for deleted/updated items",
		"Verify any remaining errors",
		"Prepare next round if needed",
	}
	guideFollowUp = []string{
		"If no response by day 37, send follow-up",
		"Document all outcomes",
		"Update credit reports",
		"Plan next round strategy",
	}

	checklist = []string{
		"□ Review all error findings",
		"□ Print 3 copies of each letter",
		"□ Prepare certified mail (return receipt requested)",
		"□ Include copy of ID and proof of address",
		"□ Keep copies of everything for your records",
		"□ Mark calendar with response deadlines",
		"□ Set up mail tracking alerts",
		"□ Prepare follow-up calendar reminders",
	}

	baseTips = []string{
		"Never dispute online - use certified mail only",
		"Keep detailed records of all correspondence",
		"Don't dispute more than 5 items per bureau per round",
		"Wait for responses before sending next round",
	}
	followUpTips = []string{
		"Escalate tone in follow-up rounds",
		"Reference previous dispute attempts",
		"Consider FCRA violation claims if ignored",
	}
	legalTips = []string{
		"Consider CFPB complaint if bureaus don't respond",
		"Document all violations for potential legal action",
		"Consult attorney for repeated non-compliance",
	}
)

// Guide returns the phase-by-phase instructions. Each call returns fresh slices.
func Guide() entity.Guide {
	return entity.Guide{
		Preparation: clone(guidePreparation),
		Sending:     clone(guideSending),
		Waiting:     clone(guideWaiting),
		Response:    clone(guideResponse),
		FollowUp:    clone(guideFollowUp),
	}
}

func Checklist() []string {
	return clone(checklist)
}

// Tips escalates after the first round and adds legal options from round 3.
func Tips(round int) []string {
	tips := clone(baseTips)
	if round > 1 {
		tips = append(tips, followUpTips...)
	}
	if round >= 3 {
		tips = append(tips, legalTips...)
	}
	return tips
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
