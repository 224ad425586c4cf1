package endofstudy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/config"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/rotation"
	"github.com/julianstephens/studyclock/internal/storage/memory"
)

func setupTestContext(t *testing.T) *cli.Context {
	t.Helper()
	cfg := &config.Config{Storage: "memory", Notifier: config.NotifierLocal, Location: time.UTC}
	ctx, err := cli.New(cfg, memory.NewStore())
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	return ctx
}

func stubConfirm(t *testing.T, answer bool) *int {
	t.Helper()
	calls := 0
	orig := confirm
	confirm = func(string) (bool, error) {
		calls++
		return answer, nil
	}
	t.Cleanup(func() { confirm = orig })
	return &calls
}

func TestCompleteAndStatus(t *testing.T) {
	ctx := setupTestContext(t)
	bg := context.Background()

	if err := (&CompleteCmd{Task: models.VariantGoNoGo}).Run(ctx); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if err := (&CompleteCmd{Task: models.VariantGoNoGo}).Run(ctx); err != nil {
		t.Fatalf("completing twice failed: %v", err)
	}
	if err := (&StatusCmd{}).Run(ctx); err != nil {
		t.Fatalf("status failed: %v", err)
	}

	done, err := ctx.Engine.Tracker().IsEndOfStudyComplete(bg, models.VariantGoNoGo)
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("expected Go-No-Go to be complete")
	}

	results, err := ctx.Store.GetResults(bg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ActivityIdentifier != models.VariantGoNoGo || results[0].Category != models.CategoryCognition {
		t.Errorf("unexpected result: %+v", results[0])
	}

	if err := (&CompleteCmd{Task: models.VariantSleepCheckIn}).Run(ctx); err == nil {
		t.Error("expected error for a task outside the battery")
	}
}

func TestCompleteAll(t *testing.T) {
	ctx := setupTestContext(t)
	for _, task := range rotation.EndOfStudyTasks() {
		if err := (&CompleteCmd{Task: task}).Run(ctx); err != nil {
			t.Fatalf("complete %s failed: %v", task, err)
		}
	}
	all, err := ctx.Engine.Tracker().EndOfStudyAllComplete(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !all {
		t.Error("expected every challenge to be complete")
	}
}

func TestWithdrawRequiresChallenges(t *testing.T) {
	ctx := setupTestContext(t)
	bg := context.Background()
	if err := ctx.Store.Set(bg, "SleepDay1", "true"); err != nil {
		t.Fatal(err)
	}
	calls := stubConfirm(t, true)

	err := (&WithdrawCmd{}).Run(ctx)
	if !errors.Is(err, ErrChallengesOpen) {
		t.Fatalf("expected ErrChallengesOpen, got %v", err)
	}
	if *calls != 0 {
		t.Errorf("confirm should not run while challenges are open, ran %d times", *calls)
	}
	if _, ok, _ := ctx.Store.Get(bg, "SleepDay1"); !ok {
		t.Error("blocked withdrawal must keep data")
	}

	if err := (&WithdrawCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("forced withdrawal failed: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected one confirmation, got %d", *calls)
	}
	keys, err := ctx.Store.Keys(bg, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys after withdrawal, got %v", keys)
	}
}

func TestWithdraw(t *testing.T) {
	ctx := setupTestContext(t)
	bg := context.Background()
	for _, task := range rotation.EndOfStudyTasks() {
		if err := (&CompleteCmd{Task: task}).Run(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if err := ctx.Registry.Arm(bg, models.Trigger{Identifier: "sleep", Hour: 9, Recurring: true, Body: "Time for your sleep check-in"}); err != nil {
		t.Fatal(err)
	}

	calls := stubConfirm(t, false)
	if err := (&WithdrawCmd{}).Run(ctx); err == nil {
		t.Error("expected error when confirmation is declined")
	}
	if *calls != 1 {
		t.Errorf("expected one confirmation, got %d", *calls)
	}
	keys, err := ctx.Store.Keys(bg, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) == 0 {
		t.Error("cancelled withdrawal keeps data")
	}

	if err := (&WithdrawCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("withdrawal failed: %v", err)
	}
	if *calls != 1 {
		t.Errorf("--yes should skip confirmation, calls = %d", *calls)
	}

	keys, err = ctx.Store.Keys(bg, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys, got %v", keys)
	}
	triggers, err := ctx.Registry.List(bg)
	if err != nil {
		t.Fatal(err)
	}
	if len(triggers) != 0 {
		t.Errorf("expected no triggers, got %v", triggers)
	}
	results, err := ctx.Store.GetResults(bg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected results to be wiped, got %d", len(results))
	}
}
