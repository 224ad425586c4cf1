package rotation

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/julianstephens/studyclock/internal/models"
)

func mustVariant(t *testing.T, c models.Category, day int) string {
	t.Helper()
	v, err := Variant(c, day)
	if err != nil {
		t.Fatalf("Variant(%s, %d) failed: %v", c, day, err)
	}
	return v
}

func expectVariant(t *testing.T, c models.Category, day int, want string) {
	t.Helper()
	if got := mustVariant(t, c, day); got != want {
		t.Errorf("Variant(%s, %d) = %q, want %q", c, day, got, want)
	}
}

func sameCategories(a, b []models.Category) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

func TestPhysicalRotation(t *testing.T) {
	t.Run("week 1 rotates daily", func(t *testing.T) {
		expectVariant(t, models.CategoryPhysical, 1, models.VariantTapping)
		expectVariant(t, models.CategoryPhysical, 2, models.VariantTremor)
		expectVariant(t, models.CategoryPhysical, 3, models.VariantKineticTremor)
		expectVariant(t, models.CategoryPhysical, 4, models.VariantTapping)
		expectVariant(t, models.CategoryPhysical, 7, models.VariantTapping)
	})

	t.Run("later weeks rotate weekly", func(t *testing.T) {
		for day := 8; day <= 14; day++ {
			expectVariant(t, models.CategoryPhysical, day, models.VariantTremor)
		}
		expectVariant(t, models.CategoryPhysical, 15, models.VariantKineticTremor)
		expectVariant(t, models.CategoryPhysical, 22, models.VariantTapping)
	})
}

func TestCognitionRotation(t *testing.T) {
	want := []string{
		models.VariantGoNoGo,
		models.VariantSymbolSubstitution,
		models.VariantSpatialMemory,
		models.VariantNBack,
		models.VariantTaskSwitch,
		models.VariantAttentionalBlink,
	}
	seen := map[string]bool{}
	for day := 1; day <= 6; day++ {
		got := mustVariant(t, models.CategoryCognition, day)
		if got != want[day-1] {
			t.Errorf("day %d: got %q, want %q", day, got, want[day-1])
		}
		seen[got] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct variants in week 1, got %d", len(seen))
	}
	expectVariant(t, models.CategoryCognition, 7, mustVariant(t, models.CategoryCognition, 1))

	// Week 2 uses week % 6 == 2.
	for day := 8; day <= 14; day++ {
		expectVariant(t, models.CategoryCognition, day, models.VariantSymbolSubstitution)
	}
	// Week 6 leaves remainder 0.
	expectVariant(t, models.CategoryCognition, 36, models.VariantAttentionalBlink)
}

func TestFixedCategories(t *testing.T) {
	for _, day := range []int{1, 5, 8, 30, 120} {
		expectVariant(t, models.CategorySleep, day, models.VariantSleepCheckIn)
		expectVariant(t, models.CategoryDaily, day, models.VariantDailyCheckIn)
	}
}

func TestVariantIsPure(t *testing.T) {
	for day := 1; day <= 60; day++ {
		for _, c := range models.Categories() {
			expectVariant(t, c, day, mustVariant(t, c, day))
		}
	}
}

func TestVariantEdgeInputs(t *testing.T) {
	first := mustVariant(t, models.CategoryPhysical, 1)
	expectVariant(t, models.CategoryPhysical, 0, first)
	expectVariant(t, models.CategoryPhysical, -3, first)

	if _, err := Variant(models.Category("nutrition"), 1); err == nil {
		t.Error("expected error for an unknown category")
	}
}

func TestScheduled(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	schedules := []models.ScheduledActivity{
		{GUID: "g1", ActivityIdentifier: models.VariantTapping, ScheduledOn: now},
		{GUID: "g2", ActivityIdentifier: models.VariantSleepCheckIn, ScheduledOn: now},
	}

	got, err := Scheduled(models.CategoryPhysical, 1, schedules)
	if err != nil {
		t.Fatal(err)
	}
	if got.GUID != "g1" {
		t.Errorf("expected g1, got %q", got.GUID)
	}

	if _, err := Scheduled(models.CategoryPhysical, 2, schedules); !errors.Is(err, ErrNoSchedule) {
		t.Errorf("expected ErrNoSchedule for Tremor, got %v", err)
	}
	if _, err := Scheduled(models.CategoryDaily, 2, nil); !errors.Is(err, ErrNoSchedule) {
		t.Errorf("expected ErrNoSchedule without schedules, got %v", err)
	}
}

func TestDailyAndWeeklyCategories(t *testing.T) {
	if got := DailyCategories(7); !sameCategories(got, models.Categories()) {
		t.Errorf("DailyCategories(7) = %v", got)
	}
	if got := WeeklyCategories(7); len(got) != 0 {
		t.Errorf("WeeklyCategories(7) = %v, want none", got)
	}

	if got := DailyCategories(8); !sameCategories(got, []models.Category{models.CategorySleep, models.CategoryDaily}) {
		t.Errorf("DailyCategories(8) = %v", got)
	}
	if got := WeeklyCategories(8); !sameCategories(got, []models.Category{models.CategoryPhysical, models.CategoryCognition}) {
		t.Errorf("WeeklyCategories(8) = %v", got)
	}
}

func TestEndOfStudyTasks(t *testing.T) {
	tasks := EndOfStudyTasks()
	if len(tasks) != 9 {
		t.Fatalf("expected 9 tasks, got %d", len(tasks))
	}
	if tasks[0] != models.VariantTapping || tasks[8] != models.VariantAttentionalBlink {
		t.Errorf("unexpected task order: %v", tasks)
	}
}
