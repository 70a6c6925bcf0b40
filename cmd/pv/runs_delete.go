package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/storage"
)

func init() {
	runsCmd.AddCommand(runsDeleteCmd)
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	id, err := db.ResolveID(args[0])
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) || errors.Is(err, storage.ErrAmbiguousID) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitError, "resolving run: %v", err)
	}
	if err := db.DeleteRun(id); err != nil {
		exitWithError(ExitError, "deleting run: %v", err)
	}

	if humanOutput {
		fmt.Printf("Deleted run %s\n", id)
		return nil
	}
	return outputJSON(map[string]string{"status": "deleted", "id": id})
}
