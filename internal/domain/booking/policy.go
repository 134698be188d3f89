package booking

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ===============================
// Cancellation policy
// ===============================

// CancellationGracePeriod is how long after the start an appointment can
// still be cancelled under the policy (treated as zero notice).
const CancellationGracePeriod = 15 * time.Minute

// CancellationPolicyRule means: cancelling with ThresholdHours of notice or
// less costs FeePercentage of the service amount.
type CancellationPolicyRule struct {
	ThresholdHours float64 `json:"threshold_hours"`
	FeePercentage  float64 `json:"fee_percentage"`
}

type CancellationPolicy struct {
	Rules []CancellationPolicyRule `json:"rules"`
}

type PolicyOutcome string

const (
	OutcomeNoPolicy       PolicyOutcome = "no_policy"
	OutcomeCharge         PolicyOutcome = "charge"
	OutcomeNotCancellable PolicyOutcome = "not_cancellable"
)

type ChargeInfo struct {
	Percentage           float64 `json:"percentage"`
	Amount               float64 `json:"amount"`
	TimeUntilAppointment float64 `json:"time_until_appointment"`
}

type CancellationQuote struct {
	Outcome PolicyOutcome           `json:"outcome"`
	Charge  ChargeInfo              `json:"charge"`
	Rule    *CancellationPolicyRule `json:"rule,omitempty"`
	Reason  string                  `json:"reason,omitempty"`
}

// HasPolicy reports whether the professional configured a policy at all.
func (q CancellationQuote) HasPolicy() bool {
	return q.Outcome != OutcomeNoPolicy
}

// RequiresCharge is true only for a positive fee under an applicable policy.
func (q CancellationQuote) RequiresCharge() bool {
	return q.Outcome == OutcomeCharge && q.Charge.Amount > 0
}

// Validate checks the rules a professional is trying to save.
func (p *CancellationPolicy) Validate() error {
	if p == nil {
		return nil
	}
	seen := make(map[float64]struct{}, len(p.Rules))
	for _, r := range p.Rules {
		if r.ThresholdHours <= 0 {
			return fmt.Errorf("threshold_hours must be positive (got %v)", r.ThresholdHours)
		}
		if r.FeePercentage < 0 || r.FeePercentage > 100 {
			return fmt.Errorf("fee_percentage must be between 0 and 100 (got %v)", r.FeePercentage)
		}
		if _, dup := seen[r.ThresholdHours]; dup {
			return fmt.Errorf("duplicate threshold_hours %v", r.ThresholdHours)
		}
		seen[r.ThresholdHours] = struct{}{}
	}
	return nil
}

// Sorted returns the rules ordered by threshold, largest first.
func (p *CancellationPolicy) Sorted() []CancellationPolicyRule {
	if p == nil {
		return nil
	}
	out := append([]CancellationPolicyRule(nil), p.Rules...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ThresholdHours > out[j].ThresholdHours
	})
	return out
}

// EvaluateCancellation prices a cancellation made at now.
//
// Among the rules whose threshold covers the notice period (notice <= threshold)
// the smallest threshold wins. Notice above every threshold costs nothing.
func EvaluateCancellation(
	policy *CancellationPolicy,
	appointmentStart time.Time,
	now time.Time,
	serviceAmount float64,
) CancellationQuote {

	if appointmentStart.IsZero() {
		return CancellationQuote{Outcome: OutcomeNotCancellable, Reason: "invalid_start_time"}
	}

	hours := float64(appointmentStart.Sub(now).Milliseconds()) / 3600000
	charge := ChargeInfo{TimeUntilAppointment: hours}

	// applies with or without a policy
	if now.Sub(appointmentStart) > CancellationGracePeriod {
		return CancellationQuote{
			Outcome: OutcomeNotCancellable,
			Charge:  charge,
			Reason:  "appointment_already_started",
		}
	}

	if policy == nil || len(policy.Rules) == 0 {
		return CancellationQuote{Outcome: OutcomeNoPolicy, Charge: charge}
	}

	notice := math.Max(hours, 0)
	rules := policy.Sorted()

	var match *CancellationPolicyRule
	// descending order: the last covering rule is the tightest band
	for i := range rules {
		if notice <= rules[i].ThresholdHours {
			r := rules[i]
			match = &r
		}
	}

	if match != nil {
		charge.Percentage = match.FeePercentage
		charge.Amount = RoundCurrency(match.FeePercentage / 100 * serviceAmount)
	}

	return CancellationQuote{Outcome: OutcomeCharge, Charge: charge, Rule: match}
}

// EvaluateCancellationISO is EvaluateCancellation for an RFC 3339 start time.
func EvaluateCancellationISO(
	policy *CancellationPolicy,
	appointmentStartISO string,
	now time.Time,
	serviceAmount float64,
) CancellationQuote {
	start, err := time.Parse(time.RFC3339, appointmentStartISO)
	if err != nil {
		return CancellationQuote{Outcome: OutcomeNotCancellable, Reason: "invalid_start_time"}
	}
	return EvaluateCancellation(policy, start, now, serviceAmount)
}

// RoundCurrency rounds to cents.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

// MinorUnits converts an amount to cents for the payment processor.
func MinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}
