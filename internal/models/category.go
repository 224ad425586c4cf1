package models

import (
	"fmt"
	"strings"
)

// Category identifies one of the fixed study activity categories
type Category string

// PeriodPolicy decides whether a category's completion is tracked per day or per week
type PeriodPolicy int

const (
	CategorySleep     Category = "sleep"
	CategoryPhysical  Category = "physical"
	CategoryCognition Category = "cognition"
	CategoryDaily     Category = "daily"
)

const (
	// PeriodAlwaysDaily tracks completion per study day for the whole study
	PeriodAlwaysDaily PeriodPolicy = iota
	// PeriodWeeklyAfterFirstWeek tracks per day during week 1, per week afterwards
	PeriodWeeklyAfterFirstWeek
)

// Task variant identifiers, as delivered by the activity sync
const (
	VariantSleepCheckIn       = "Sleep Check-In"
	VariantDailyCheckIn       = "Daily Check-In"
	VariantTapping            = "Tapping"
	VariantTremor             = "Tremor"
	VariantKineticTremor      = "Kinetic Tremor"
	VariantGoNoGo             = "Go-No-Go"
	VariantSymbolSubstitution = "Symbol Substitution"
	VariantSpatialMemory      = "Spatial Memory"
	VariantNBack              = "N-Back"
	VariantTaskSwitch         = "Task Switch"
	VariantAttentionalBlink   = "Attentional Blink"
)

// CategorySpec is the behavior table row for a category.
// Variants are listed in rotation order: the first is due when the rotation
// counter leaves remainder 1, the last when it leaves remainder 0.
type CategorySpec struct {
	Category         Category
	KeyPrefix        string
	Title            string
	Variants         []string
	Policy           PeriodPolicy
	EstimatedMinutes int
	Reminder         ReminderType
}

var categoryOrder = []Category{CategorySleep, CategoryPhysical, CategoryCognition, CategoryDaily}

var categorySpecs = map[Category]CategorySpec{
	CategorySleep: {
		Category:         CategorySleep,
		KeyPrefix:        "Sleep",
		Title:            "Sleep Check-In",
		Variants:         []string{VariantSleepCheckIn},
		Policy:           PeriodAlwaysDaily,
		EstimatedMinutes: 1,
		Reminder:         ReminderSleep,
	},
	CategoryPhysical: {
		Category:         CategoryPhysical,
		KeyPrefix:        "Physical",
		Title:            "Physical Challenge",
		Variants:         []string{VariantTapping, VariantTremor, VariantKineticTremor},
		Policy:           PeriodWeeklyAfterFirstWeek,
		EstimatedMinutes: 3,
		Reminder:         ReminderPhysical,
	},
	CategoryCognition: {
		Category:  CategoryCognition,
		KeyPrefix: "Cognition",
		Title:     "Cognitive Challenge",
		Variants: []string{
			VariantGoNoGo,
			VariantSymbolSubstitution,
			VariantSpatialMemory,
			VariantNBack,
			VariantTaskSwitch,
			VariantAttentionalBlink,
		},
		Policy:           PeriodWeeklyAfterFirstWeek,
		EstimatedMinutes: 6,
		Reminder:         ReminderCognition,
	},
	CategoryDaily: {
		Category:         CategoryDaily,
		KeyPrefix:        "Daily",
		Title:            "Daily Check-In",
		Variants:         []string{VariantDailyCheckIn},
		Policy:           PeriodAlwaysDaily,
		EstimatedMinutes: 1,
		Reminder:         ReminderDaily,
	},
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Spec returns the behavior table row for the category.
func (c Category) Spec() (CategorySpec, bool) {
	spec, ok := categorySpecs[c]
	return spec, ok
}

// MustSpec is Spec for callers holding a category from Categories or ParseCategory.
func (c Category) MustSpec() CategorySpec {
	spec, ok := categorySpecs[c]
	if !ok {
		panic(fmt.Sprintf("unknown category %q", string(c)))
	}
	return spec
}

func (c Category) Valid() bool {
	_, ok := categorySpecs[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// ReminderType returns the reminder type configured for this category.
func (c Category) ReminderType() ReminderType {
	return c.MustSpec().Reminder
}

// ParseCategory accepts a category id case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid category: %s (must be sleep, physical, cognition, or daily)", s)
	}
	return c, nil
}

// CategoryForVariant finds the category that rotates through the given task variant.
func CategoryForVariant(variant string) (Category, bool) {
	for _, c := range categoryOrder {
		for _, v := range categorySpecs[c].Variants {
			if v == variant {
				return c, true
			}
		}
	}
	return "", false
}
