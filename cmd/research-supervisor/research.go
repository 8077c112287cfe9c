// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-supervisor/internal/cache"
)

var researchCmd = &cobra.Command{
	Use:   "research <task>",
	Short: "Run the research pipeline for one task and print the report",
	Long: `Research runs the same pipeline as POST /supervisor for the given task
and prints the report to stdout. A cached task is answered from the cache
without calling any external service.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().Bool("yaml", false, "print the report as YAML instead of JSON")
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	task := strings.TrimSpace(strings.Join(args, " "))

	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := newOrchestrator(store, nil).Run(cmd.Context(), task)
	if err != nil {
		return err
	}

	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
