package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"offer-reconciliation-service/cmd/goboctl/config"
	"offer-reconciliation-service/internal/profileid"
	"offer-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
)

// Flags for the ids command tree
var (
	idsStoreFile string
	idsAsJSON    bool
)

// idsCmd groups the profile id mapping subcommands.
var idsCmd = &cobra.Command{
	Use:   "ids",
	Short: "Manage the stable profile id mapping",
	Long: `Ids manages the persistent mapping from profile keys to small stable
numeric ids. Ids are assigned first-come, ids freed by removal are
reused smallest-first, and the whole mapping is persisted in the state
file so ids survive across runs.

Only keys carrying the profile key prefix participate; other keys are
ignored.

Examples:
  goboctl ids ensure --store-file state.json gobo-alice gobo-bob
  goboctl ids remove --store-file state.json gobo-alice
  goboctl ids show --store-file state.json --json`,
}

var idsEnsureCmd = &cobra.Command{
	Use:   "ensure KEY...",
	Short: "Assign ids to keys that do not have one yet",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIDsEnsure,
}

var idsRemoveCmd = &cobra.Command{
	Use:   "remove KEY...",
	Short: "Remove keys and free their ids for reuse",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIDsRemove,
}

var idsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current id mapping",
	Args:  cobra.NoArgs,
	RunE:  runIDsShow,
}

func init() {
	rootCmd.AddCommand(idsCmd)
	idsCmd.AddCommand(idsEnsureCmd, idsRemoveCmd, idsShowCmd)

	idsCmd.PersistentFlags().StringVar(&idsStoreFile, "store-file", "", "state file backing the id mapping (required)")
	idsCmd.MarkPersistentFlagRequired("store-file")

	idsShowCmd.Flags().BoolVar(&idsAsJSON, "json", false, "print the mapping as JSON")
}

// openAllocator opens the state store and returns a hydrated allocator.
// OpenStateStore loads the store eagerly, so no readiness channel is
// passed and the allocator hydrates inline; it is Ready before the first
// command touches it.
func openAllocator() (*profileid.Allocator, error) {
	store, err := config.OpenStateStore(idsStoreFile)
	if err != nil {
		return nil, err
	}
	log := logger.GetGlobalLogger()
	return profileid.NewAllocator(store, nil, log), nil
}

func runIDsEnsure(cmd *cobra.Command, args []string) error {
	allocator, err := openAllocator()
	if err != nil {
		exitWithError(err)
	}

	allocator.EnsureIDs(args)

	for _, key := range args {
		if id, ok := allocator.GetID(key); ok {
			fmt.Printf("%s\t%d\n", key, id)
		} else {
			fmt.Fprintf(os.Stderr, "%s\tignored (not a profile key)\n", key)
		}
	}
	return nil
}

func runIDsRemove(cmd *cobra.Command, args []string) error {
	allocator, err := openAllocator()
	if err != nil {
		exitWithError(err)
	}

	allocator.RemoveKeys(args)

	for _, key := range args {
		fmt.Printf("%s\tremoved\n", key)
	}
	return nil
}

func runIDsShow(cmd *cobra.Command, args []string) error {
	allocator, err := openAllocator()
	if err != nil {
		exitWithError(err)
	}

	snap := allocator.Dump()

	if idsAsJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(snap)
	}

	fmt.Printf("State: %s\n", snap.State)
	fmt.Printf("Next id: %d\n", snap.Next)
	if len(snap.Free) > 0 {
		fmt.Printf("Free ids: %v\n", snap.Free)
	}

	keys := make([]string, 0, len(snap.IDs))
	for k := range snap.IDs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("Mappings: %d\n", len(keys))
	for _, k := range keys {
		fmt.Printf("  %s -> %d\n", k, snap.IDs[k])
	}
	return nil
}
