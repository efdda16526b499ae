package main

import (
	"errors"
	"fmt"

	"flex-design-backend/internal/realtime"
	systemsvc "flex-design-backend/internal/service/system"

	"github.com/spf13/cobra"
)

var wipeConfirmed bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all site content; user accounts and the tables themselves are kept",
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeConfirmed, "yes", false, "confirm the wipe")
}

func runWipe(cmd *cobra.Command, args []string) error {
	if !wipeConfirmed {
		return errors.New("refusing to wipe without --yes")
	}
	ctx := cmd.Context()
	tk, err := newToolkit(ctx)
	if err != nil {
		return err
	}
	defer tk.log.Sync()

	// Running servers pick the wipe up on their next read; nothing here is
	// subscribed to this bus.
	bus := realtime.NewMemoryBus()
	defer bus.Close()

	report, err := systemsvc.New(tk.db, bus, tk.log).WipeAll(ctx, "flexctl")
	out := cmd.OutOrStdout()
	for _, t := range report.Tables {
		if t.Err != nil {
			fmt.Fprintf(out, "failed   %-20s %v\n", t.Table, t.Err)
			continue
		}
		fmt.Fprintf(out, "cleared  %-20s %d\n", t.Table, t.Deleted)
	}
	fmt.Fprintf(out, "deleted %d records\n", report.Deleted())
	return err
}
