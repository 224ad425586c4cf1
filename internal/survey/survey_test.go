package survey

import (
	"strings"
	"testing"

	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/reminders"
)

func TestParseAnswers(t *testing.T) {
	res, err := Parse(strings.NewReader(`{
		"identifier": "Physical Reminder",
		"answers": {"physicalDoNotRemind": false, "physicalTime": "6:30 PM", "physicalDay": 7}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if dnr, ok := res.Bool("physicalDoNotRemind"); !ok || dnr {
		t.Errorf("physicalDoNotRemind = %v, %v", dnr, ok)
	}
	if tm, ok := res.String("physicalTime"); !ok || tm != "6:30 PM" {
		t.Errorf("physicalTime = %q, %v", tm, ok)
	}
	if day, ok := res.Int("physicalDay"); !ok || day != 7 {
		t.Errorf("physicalDay = %d, %v", day, ok)
	}
	if _, ok := res.Bool("dailyDoNotRemind"); ok {
		t.Error("dailyDoNotRemind should be absent")
	}
}

func TestParseStepHistory(t *testing.T) {
	res, err := Parse(strings.NewReader(`{
		"stepHistory": [
			{"identifier": "sleepDoNotRemind", "value": false},
			{"identifier": "sleepTime", "value": "9:00 AM"},
			{"identifier": "sleepTime", "value": "10:00 AM"},
			{"identifier": "instruction"}
		]
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if tm, _ := res.String("sleepTime"); tm != "9:00 AM" {
		t.Errorf("the first answer wins: got %q", tm)
	}
	if _, present := res.Answers["instruction"]; present {
		t.Error("steps without a value should be dropped")
	}

	if _, err := Parse(strings.NewReader(`{not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestIntAnswerTypes(t *testing.T) {
	res := NewResult("x").
		Set("a", 3).
		Set("b", float64(4)).
		Set("c", 4.5).
		Set("d", "5")

	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"a", 3, true},
		{"b", 4, true},
		{"c", 0, false},
		{"d", 0, false},
	}
	for _, tt := range tests {
		n, ok := res.Int(tt.key)
		if ok != tt.ok || (ok && n != tt.want) {
			t.Errorf("Int(%q) = %d, %v; want %d, %v", tt.key, n, ok, tt.want, tt.ok)
		}
	}
}

func TestReminderFormModelResult(t *testing.T) {
	weekly := reminders.NewStep(models.ReminderPhysical, 10, true, false)
	fm := NewReminderFormModel(weekly)
	if fm.Time != "6:30 PM" || fm.Day != int(models.Saturday) {
		t.Errorf("unexpected defaults: time %q day %d", fm.Time, fm.Day)
	}

	res := fm.Result(weekly)
	if day, ok := res.Int("physicalDay"); !ok || day != 7 {
		t.Errorf("physicalDay = %d, %v; want 7", day, ok)
	}

	daily := reminders.NewStep(models.ReminderPhysical, 3, true, false)
	res = NewReminderFormModel(daily).Result(daily)
	if _, ok := res.Int("physicalDay"); ok {
		t.Error("week 1 steps never send a weekday")
	}

	off := NewReminderFormModel(daily)
	off.Remind = false
	res = off.Result(daily)
	if dnr, _ := res.Bool("physicalDoNotRemind"); !dnr {
		t.Error("expected physicalDoNotRemind to be true")
	}
	if _, ok := res.String("physicalTime"); ok {
		t.Error("no time should be sent when reminders are off")
	}
}
