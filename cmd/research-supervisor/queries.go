// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-supervisor/internal/cache"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List cached research tasks",
	RunE:  runQueries,
}

func init() {
	queriesCmd.Flags().Bool("json", false, `output {"past_queries": [...]} as JSON`)
	rootCmd.AddCommand(queriesCmd)
}

func runQueries(cmd *cobra.Command, args []string) error {
	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	tasks, err := store.ListTasks(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string][]string{"past_queries": tasks})
	}
	for _, task := range tasks {
		fmt.Println(task)
	}
	return nil
}
