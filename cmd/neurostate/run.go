package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm"
	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/history"
	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/project"
)

var runCmd = &cobra.Command{
	Use:   "run <project-file>",
	Short: "Run a simulation to completion",
	Long: `Loads a project, starts a simulation at its start node, and steps
until the run completes, deadlocks, or hits the step limit. The audit log
is printed when the run ends.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		maxSteps, _ := cmd.Flags().GetUint64("max-steps")
		historyPath, _ := cmd.Flags().GetString("history")

		p, err := project.Load(args[0])
		if err != nil {
			fmt.Printf("Error loading project: %v\n", err)
			os.Exit(1)
		}

		opts := []fsm.Option{fsm.WithLogger(newLogger(cmd))}
		if historyPath != "" {
			store, err := history.NewSQLiteStore(historyPath)
			if err != nil {
				fmt.Printf("Error opening history store: %v\n", err)
				os.Exit(1)
			}
			defer store.Close()
			opts = append(opts, fsm.WithHistory(store))
		}

		ctx := context.Background()
		exec := fsm.NewExecutor(p.Graph(), opts...)
		if err := exec.Start(ctx); err != nil {
			fmt.Printf("Error starting simulation: %v\n", err)
			os.Exit(1)
		}

		outcome := fsm.OutcomeTransitioned
		for outcome == fsm.OutcomeTransitioned && exec.StepCount() < maxSteps {
			result, err := exec.Step(ctx)
			if err != nil {
				fmt.Printf("Error during step: %v\n", err)
				os.Exit(1)
			}
			outcome = result.Outcome
		}
		exec.Stop(ctx)

		for _, entry := range exec.Logs() {
			fmt.Printf("%s [%s] %s: %s\n",
				entry.Timestamp.Format("15:04:05.000"), entry.Level, entry.Source, entry.Message)
		}
		fmt.Printf("\nRun %s finished after %d step(s)\n", exec.RunID(), exec.StepCount())
		if outcome == fsm.OutcomeDeadlock {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Uint64("max-steps", 1000, "Maximum number of transitions before giving up")
	runCmd.Flags().String("history", "", "SQLite file to record run snapshots into")
}
