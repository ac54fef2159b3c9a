package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/quill/pkg/codec"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored pen sessions",
	Long:  `List, inspect, and remove pen sessions stored per anchor.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored anchors",
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := getBackend(cmd)
		if err != nil {
			return err
		}
		defer be.Close()

		anchors, err := be.Store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing anchors: %w", err)
		}

		if len(anchors) == 0 {
			fmt.Println("No stored sessions found.")
			return nil
		}

		fmt.Println("Stored Sessions:")
		for _, a := range anchors {
			fmt.Println("- " + a)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <anchor>",
	Short: "Print the decoded session of an anchor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		anchor := args[0]
		be, err := getBackend(cmd)
		if err != nil {
			return err
		}
		defer be.Close()

		blob, err := be.Store.Load(cmd.Context(), anchor)
		if err != nil {
			return fmt.Errorf("loading anchor '%s': %w", anchor, err)
		}
		state, err := codec.Unmarshal(blob)
		if err != nil {
			return fmt.Errorf("decoding anchor '%s': %w", anchor, err)
		}

		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <anchor>...",
	Short: "Remove one or more stored sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := getBackend(cmd)
		if err != nil {
			return err
		}
		defer be.Close()

		var errs []error
		for _, anchor := range args {
			if err := be.Store.Delete(cmd.Context(), anchor); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing '%s': %v\n", anchor, err)
				errs = append(errs, err)
				continue
			}
			fmt.Printf("Removed session '%s'\n", anchor)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
