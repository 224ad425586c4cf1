package endofstudy

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyclock/internal/cli"
)

// confirm asks before destructive operations; replaced in tests.
var confirm = func(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Withdraw").
		Negative("Cancel").
		Value(&ok).
		WithTheme(huh.ThemeDracula()).
		Run()
	return ok, err
}

type EndStudyCmd struct {
	Status   StatusCmd   `cmd:"" help:"Show end-of-study challenge progress." default:"1"`
	Complete CompleteCmd `cmd:"" help:"Mark an end-of-study challenge as done."`
	Withdraw WithdrawCmd `cmd:"" help:"Cancel all reminders and delete all participant data."`
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	tasks, err := ctx.Engine.EndOfStudyTasks(bg)
	if err != nil {
		return err
	}
	done := 0
	for _, t := range tasks {
		if t.Complete {
			done++
		}
		fmt.Printf("  %s %s\n", cli.FormatStatus(t.Complete), t.Identifier)
	}
	fmt.Printf("\n%d of %d challenges complete\n", done, len(tasks))
	return nil
}

type CompleteCmd struct {
	Task string `arg:"" help:"Challenge identifier, e.g. 'Go-No-Go'."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	if err := ctx.Engine.CompleteEndOfStudy(bg, c.Task); err != nil {
		return err
	}
	fmt.Printf("✓ %s complete\n", c.Task)

	all, err := ctx.Engine.Tracker().EndOfStudyAllComplete(bg)
	if err != nil {
		return err
	}
	if all {
		fmt.Println("🎉 All end-of-study challenges are done. Thank you for participating!")
	}
	return nil
}

// ErrChallengesOpen is returned by withdraw while end-of-study challenges remain.
var ErrChallengesOpen = errors.New("end-of-study challenges are not all complete (use --force to withdraw early)")

type WithdrawCmd struct {
	Yes   bool `help:"Do not ask for confirmation."`
	Force bool `help:"Withdraw before every end-of-study challenge is complete."`
}

func (c *WithdrawCmd) Run(ctx *cli.Context) error {
	if !c.Force {
		all, err := ctx.Engine.Tracker().EndOfStudyAllComplete(ctx.Background())
		if err != nil {
			return err
		}
		if !all {
			return ErrChallengesOpen
		}
	}
	if !c.Yes {
		ok, err := confirm("Withdraw from the study? All reminders and participant data will be deleted.")
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("withdrawal cancelled")
		}
	}
	if err := ctx.Engine.Withdraw(ctx.Background()); err != nil {
		return err
	}
	fmt.Println("✓ Withdrawn. All reminders were cancelled and participant data was deleted.")
	return nil
}
