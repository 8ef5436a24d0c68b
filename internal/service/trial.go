package service

import (
	"time"

	"github.com/quillworks/billing/internal/types"
)

// TrialAction is the outcome of evaluating the trial rules for an update
// event.
type TrialAction string

const (
	// TrialActionNone means no compensating action is needed
	TrialActionNone TrialAction = "none"
	// TrialActionRemediate means the subscription cannot collect payment
	// and must go through payment-failure remediation
	TrialActionRemediate TrialAction = "remediate"
	// TrialActionExtend means a manual trial extension must be pushed to
	// the provider
	TrialActionExtend TrialAction = "extend"
)

// TrialContext carries everything the trial rules look at for one update
// event. PrevTrialEnd is the pre-update trial_end from the event's previous
// attributes, zero when the trial end did not change.
type TrialContext struct {
	Status        types.SubscriptionStatus
	TrialEnd      int64
	PrevTrialEnd  int64
	TrialUsed     bool
	PlanTrialDays *int64
}

// TrialDecision is what the caller must do: nothing, remediate, or extend
// the subscription trial by ExtendSeconds from now.
type TrialDecision struct {
	Action        TrialAction
	ExtendSeconds int64
}

type trialRule struct {
	name   string
	match  func(ctx *TrialContext, now int64) bool
	decide func(ctx *TrialContext, now int64) TrialDecision
}

// Switching prices on an active subscription resets provider trial state,
// so the intended trial window has to be re-derived and reinstated after
// every plan change. The rules are ordered; the first match wins.
var trialRules = []trialRule{
	{
		name: "unpaid",
		match: func(ctx *TrialContext, _ int64) bool {
			return ctx.Status == types.SubscriptionStatusUnpaid
		},
		decide: func(_ *TrialContext, _ int64) TrialDecision {
			return TrialDecision{Action: TrialActionRemediate}
		},
	},
	{
		name: "fresh_trial",
		match: func(ctx *TrialContext, _ int64) bool {
			return ctx.Status == types.SubscriptionStatusActive &&
				!ctx.TrialUsed &&
				ctx.PlanTrialDays != nil &&
				ctx.TrialEnd != 0
		},
		decide: func(ctx *TrialContext, _ int64) TrialDecision {
			return TrialDecision{
				Action:        TrialActionExtend,
				ExtendSeconds: *ctx.PlanTrialDays * 86400,
			}
		},
	},
	{
		name: "leftover_trial",
		match: func(ctx *TrialContext, now int64) bool {
			return ctx.Status == types.SubscriptionStatusActive &&
				ctx.PlanTrialDays != nil &&
				leftoverTrialSeconds(ctx, now) > 0
		},
		decide: func(ctx *TrialContext, now int64) TrialDecision {
			full := *ctx.PlanTrialDays * 86400
			leftover := leftoverTrialSeconds(ctx, now)
			if leftover < full {
				full = leftover
			}
			return TrialDecision{
				Action:        TrialActionExtend,
				ExtendSeconds: full,
			}
		},
	},
}

func leftoverTrialSeconds(ctx *TrialContext, now int64) int64 {
	if ctx.PrevTrialEnd == 0 {
		return 0
	}
	return ctx.PrevTrialEnd - now
}

// EvaluateTrialPolicy runs the ordered trial rules against the context and
// returns the first matching decision.
func EvaluateTrialPolicy(ctx *TrialContext, now time.Time) TrialDecision {
	epoch := now.Unix()
	for _, rule := range trialRules {
		if rule.match(ctx, epoch) {
			return rule.decide(ctx, epoch)
		}
	}
	return TrialDecision{Action: TrialActionNone}
}
