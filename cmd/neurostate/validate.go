package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/project"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project-file>",
	Short: "Check a project for structural problems",
	Long: `Loads a project and reports missing start nodes, unreachable nodes,
and deadlocked nodes. Exits nonzero when any problem is found.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := project.Load(args[0])
		if err != nil {
			fmt.Printf("Error loading project: %v\n", err)
			os.Exit(1)
		}

		g := p.Graph()
		problems := 0

		start, ok := g.FindStartNode()
		if !ok {
			fmt.Println("PROBLEM: no start node (add an Input node or label one START)")
			problems++
		} else {
			fmt.Printf("Start node: %s (%s)\n", start.Label, start.ID)
		}

		if unreachable := g.FindUnreachable(); len(unreachable) > 0 {
			fmt.Printf("PROBLEM: %d unreachable node(s):\n", len(unreachable))
			for _, id := range unreachable {
				if n, ok := g.Node(id); ok {
					fmt.Printf("  - %s (%s)\n", n.Label, id)
				}
			}
			problems++
		}

		if deadlocks := g.FindDeadlocks(); len(deadlocks) > 0 {
			fmt.Printf("PROBLEM: %d deadlocked node(s):\n", len(deadlocks))
			for _, id := range deadlocks {
				if n, ok := g.Node(id); ok {
					fmt.Printf("  - %s (%s)\n", n.Label, id)
				}
			}
			problems++
		}

		if problems > 0 {
			os.Exit(1)
		}
		fmt.Printf("OK: %d node(s), %d edge(s)\n", g.NodeCount(), g.EdgeCount())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
