package cmd

import (
	"fmt"

	"offer-reconciliation-service/cmd/goboctl/config"
	"offer-reconciliation-service/internal/filters"
	"offer-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
)

var hiddenStoreFile string

// hiddenCmd groups the persisted hidden group subcommands.
var hiddenCmd = &cobra.Command{
	Use:   "hidden",
	Short: "Manage persisted hidden groups",
	Long: `Hidden manages the "Label:Value" rules persisted in the state file.
Rules added here are picked up by "goboctl filter --store-file".

Loading migrates rules stored under legacy per-scope keys into the
global list the first time; the legacy keys are left in place.

Examples:
  goboctl hidden add --store-file state.json "Ship:Oasis of the Seas"
  goboctl hidden remove --store-file state.json "Ship:Oasis of the Seas"
  goboctl hidden list --store-file state.json`,
}

var hiddenAddCmd = &cobra.Command{
	Use:   "add GROUP",
	Short: "Add a hidden group rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runHiddenAdd,
}

var hiddenRemoveCmd = &cobra.Command{
	Use:   "remove GROUP",
	Short: "Remove a hidden group rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runHiddenRemove,
}

var hiddenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the persisted hidden group rules",
	Args:  cobra.NoArgs,
	RunE:  runHiddenList,
}

func init() {
	rootCmd.AddCommand(hiddenCmd)
	hiddenCmd.AddCommand(hiddenAddCmd, hiddenRemoveCmd, hiddenListCmd)

	hiddenCmd.PersistentFlags().StringVar(&hiddenStoreFile, "store-file", "", "state file holding the hidden groups (required)")
	hiddenCmd.MarkPersistentFlagRequired("store-file")
}

func openHiddenGroupStore() (*filters.HiddenGroupStore, error) {
	store, err := config.OpenStateStore(hiddenStoreFile)
	if err != nil {
		return nil, err
	}
	return filters.NewHiddenGroupStore(store, logger.GetGlobalLogger()), nil
}

func runHiddenAdd(cmd *cobra.Command, args []string) error {
	store, err := openHiddenGroupStore()
	if err != nil {
		exitWithError(err)
	}

	groups, err := store.Add(args[0])
	if err != nil {
		exitWithError(err)
	}

	fmt.Printf("Hidden groups: %d\n", len(groups))
	return nil
}

func runHiddenRemove(cmd *cobra.Command, args []string) error {
	store, err := openHiddenGroupStore()
	if err != nil {
		exitWithError(err)
	}

	groups, err := store.Remove(args[0])
	if err != nil {
		exitWithError(err)
	}

	fmt.Printf("Hidden groups: %d\n", len(groups))
	return nil
}

func runHiddenList(cmd *cobra.Command, args []string) error {
	store, err := openHiddenGroupStore()
	if err != nil {
		exitWithError(err)
	}

	groups, err := store.Load()
	if err != nil {
		exitWithError(err)
	}

	if len(groups) == 0 {
		fmt.Println("No hidden groups")
		return nil
	}
	for _, g := range groups {
		fmt.Println(g)
	}
	return nil
}
