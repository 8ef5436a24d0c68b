package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/quillworks/billing/scripts/internal"
)

// Command represents a script that can be run
type Command struct {
	Name        string
	Description string
	Run         func() error
}

var commands = []Command{
	{
		Name:        "seed-plans",
		Description: "Seed the plan catalog from a JSON file",
		Run:         internal.SeedPlans,
	},
}

func main() {
	var (
		listCommands bool
		cmdName      string
		plansFile    string
	)

	flag.BoolVar(&listCommands, "list", false, "List available commands")
	flag.StringVar(&cmdName, "cmd", "", "Command to run")
	flag.StringVar(&plansFile, "plans-file", "", "Path to the plans JSON file")
	flag.Parse()

	if listCommands {
		fmt.Println("Available commands:")
		for _, cmd := range commands {
			fmt.Printf("  %-16s %s\n", cmd.Name, cmd.Description)
		}
		return
	}

	if plansFile != "" {
		os.Setenv("QUILLWORKS_PLANS_FILE", plansFile)
	}

	for _, cmd := range commands {
		if cmd.Name == cmdName {
			if err := cmd.Run(); err != nil {
				log.Fatalf("command %s failed: %v", cmdName, err)
			}
			return
		}
	}

	log.Fatalf("unknown command %q, use -list to see available commands", cmdName)
}
