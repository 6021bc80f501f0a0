// Package pricing derives a booking price from base rates and the active
// pricing rules. Calculate is pure: it performs no I/O and the same Input
// always yields the same Breakdown.
package pricing

import (
	"math"
	"sort"
	"strconv"
	"time"
)

type AppliesTo string

const (
	AppliesToCourt     AppliesTo = "COURT"
	AppliesToEquipment AppliesTo = "EQUIPMENT"
	AppliesToCoach     AppliesTo = "COACH"
	AppliesToOverall   AppliesTo = "OVERALL"
)

func (a AppliesTo) Valid() bool {
	switch a {
	case AppliesToCourt, AppliesToEquipment, AppliesToCoach, AppliesToOverall:
		return true
	}
	return false
}

type RuleType string

const (
	RuleMultiplier RuleType = "MULTIPLIER"
	RuleFlat       RuleType = "FLAT"
)

func (t RuleType) Valid() bool {
	return t == RuleMultiplier || t == RuleFlat
}

// Rule is an active pricing rule. Nil filters match any booking.
type Rule struct {
	ID         uint
	Name       string
	AppliesTo  AppliesTo
	IsWeekend  *bool
	StartHour  *int
	EndHour    *int
	IndoorOnly *bool
	Type       RuleType
	Value      float64
}

type Court struct {
	HourlyRate float64
	Indoor     bool
}

type EquipmentLine struct {
	EquipmentTypeID uint
	Quantity        int
	UnitPrice       float64
}

type Input struct {
	Start     time.Time
	End       time.Time
	Court     Court
	Equipment []EquipmentLine
	// CoachHourlyRate is nil when no coach is booked.
	CoachHourlyRate *float64
	Rules           []Rule
	// Location is the facility time zone used to classify the start time.
	// Nil means UTC.
	Location *time.Location
}

type Adjustment struct {
	RuleID    uint      `json:"rule_id"`
	Name      string    `json:"name"`
	AppliesTo AppliesTo `json:"applies_to"`
	Amount    float64   `json:"amount"`
}

type Breakdown struct {
	BaseCourt     float64      `json:"base_court"`
	BaseEquipment float64      `json:"base_equipment"`
	BaseCoach     float64      `json:"base_coach"`
	Adjustments   []Adjustment `json:"adjustments"`
	Total         float64      `json:"total"`
}

// Calculate applies every matching rule as an independent adjustment on top
// of the three base amounts. Rules are evaluated in ascending ID order.
// Amounts accumulate at full precision and are rounded to cents on output.
func Calculate(in Input) Breakdown {
	hours := in.End.Sub(in.Start).Hours()

	baseCourt := in.Court.HourlyRate * hours
	baseEquipment := 0.0
	for _, line := range in.Equipment {
		baseEquipment += line.UnitPrice * float64(line.Quantity)
	}
	baseCoach := 0.0
	if in.CoachHourlyRate != nil {
		baseCoach = *in.CoachHourlyRate * hours
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	start := in.Start.In(loc)
	weekend := IsWeekend(start)
	hour := start.Hour()

	rules := make([]Rule, len(in.Rules))
	copy(rules, in.Rules)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	type applied struct {
		rule   Rule
		amount float64
	}
	var matched []applied
	for _, rule := range rules {
		if rule.IsWeekend != nil && *rule.IsWeekend != weekend {
			continue
		}
		if rule.StartHour != nil && rule.EndHour != nil {
			if hour < *rule.StartHour || hour >= *rule.EndHour {
				continue
			}
		}
		if rule.IndoorOnly != nil && *rule.IndoorOnly && !in.Court.Indoor {
			continue
		}

		var base float64
		switch rule.AppliesTo {
		case AppliesToCourt:
			base = baseCourt
		case AppliesToEquipment:
			base = baseEquipment
		case AppliesToCoach:
			base = baseCoach
		case AppliesToOverall:
			base = baseCourt + baseEquipment + baseCoach
		}
		if base <= 0 {
			continue
		}

		var amount float64
		switch rule.Type {
		case RuleMultiplier:
			amount = base * (rule.Value - 1)
		case RuleFlat:
			amount = rule.Value
		}
		if amount == 0 {
			continue
		}
		matched = append(matched, applied{rule: rule, amount: amount})
	}

	total := baseCourt + baseEquipment + baseCoach
	adjustments := make([]Adjustment, 0, len(matched))
	for _, m := range matched {
		total += m.amount
		adjustments = append(adjustments, Adjustment{
			RuleID:    m.rule.ID,
			Name:      m.rule.Name,
			AppliesTo: m.rule.AppliesTo,
			Amount:    Round2(m.amount),
		})
	}

	return Breakdown{
		BaseCourt:     Round2(baseCourt),
		BaseEquipment: Round2(baseEquipment),
		BaseCoach:     Round2(baseCoach),
		Adjustments:   adjustments,
		Total:         Round2(total),
	}
}

// IsWeekend reports whether t falls on a Saturday or Sunday in t's location.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Round2 rounds to two decimal places, halves away from zero. The tie is
// decided on v*100 snapped to six decimals, so 1.005 rounds to 1.01 even
// though its binary value is slightly below the tie.
func Round2(v float64) float64 {
	cents, err := strconv.ParseFloat(strconv.FormatFloat(v*100, 'f', 6, 64), 64)
	if err != nil {
		cents = v * 100
	}
	return math.Round(cents) / 100
}
