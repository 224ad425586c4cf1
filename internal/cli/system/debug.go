package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/studyclock/internal/cli"
)

type DebugCmd struct {
	DBPath        DebugDBPathCmd        `cmd:"" help:"Show database path."`
	DumpKV        DebugDumpKVCmd        `cmd:"" name:"dump-kv" help:"Dump key-value entries as JSON."`
	DumpSchedules DebugDumpSchedulesCmd `cmd:"" help:"Dump delivered schedules as JSON."`
	DumpResults   DebugDumpResultsCmd   `cmd:"" help:"Dump activity results as JSON."`
	DumpTriggers  DebugDumpTriggersCmd  `cmd:"" help:"Dump armed reminder triggers as JSON."`
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpKVCmd struct {
	Prefix string `arg:"" optional:"" help:"Only dump keys starting with this prefix (e.g. 'Physical', 'trigger.')."`
}

func (cmd *DebugDumpKVCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	keys, err := ctx.Store.Keys(bg, cmd.Prefix)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := ctx.Store.Get(bg, k)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", k, err)
		}
		if ok {
			out[k] = v
		}
	}
	return printJSON(out)
}

type DebugDumpSchedulesCmd struct{}

func (cmd *DebugDumpSchedulesCmd) Run(ctx *cli.Context) error {
	schedules, err := ctx.Store.GetSchedules(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to get schedules: %w", err)
	}
	return printJSON(schedules)
}

type DebugDumpResultsCmd struct{}

func (cmd *DebugDumpResultsCmd) Run(ctx *cli.Context) error {
	results, err := ctx.Store.GetResults(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to get results: %w", err)
	}
	return printJSON(results)
}

type DebugDumpTriggersCmd struct{}

func (cmd *DebugDumpTriggersCmd) Run(ctx *cli.Context) error {
	triggers, err := ctx.Registry.List(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to list triggers: %w", err)
	}
	return printJSON(triggers)
}
