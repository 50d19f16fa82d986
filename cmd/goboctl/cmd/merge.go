package cmd

import (
	"context"
	"fmt"
	"os"

	"offer-reconciliation-service/cmd/goboctl/config"
	"offer-reconciliation-service/internal/reconciler"
	"offer-reconciliation-service/internal/reporter"
	"offer-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the merge command
var (
	profileFileA string
	profileFileB string
	mergeFormat  string
	mergeOutput  string
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Consolidate two loyalty profiles",
	Long: `Merge consolidates two loyalty profiles belonging to the same
household into one. Sailings are paired across the profiles by
campaign, ship, date and guest-of flag; paired cabins are upgraded one
category, guest-of bookings are folded into a two-guest booking, and
unpaired sailings are dropped.

Offers advertising two rooms are never consolidated. The merged
profile records both source emails and the merge timestamp.

Examples:
  goboctl merge --profile-a primary.json --profile-b linked.json
  goboctl merge -A primary.json -B linked.json --output-format json -o merged.json`,

	PreRunE: validateMergeFlags,
	RunE:    runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVarP(&profileFileA, "profile-a", "A", "", "path to the primary profile JSON file (required)")
	mergeCmd.Flags().StringVarP(&profileFileB, "profile-b", "B", "", "path to the linked profile JSON file (required)")

	mergeCmd.Flags().StringVarP(&mergeFormat, "output-format", "f", "console", "output format: console, json, csv")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output-file", "o", "", "output file path (default: stdout)")

	mergeCmd.MarkFlagRequired("profile-a")
	mergeCmd.MarkFlagRequired("profile-b")
}

func validateMergeFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(profileFileA, "primary profile file"); err != nil {
		return err
	}
	if err := validateFileExists(profileFileB, "linked profile file"); err != nil {
		return err
	}

	if !reporter.OutputFormat(mergeFormat).IsValid() {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", mergeFormat)
	}

	return validateOutputDir(mergeOutput)
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Merging %s into %s\n", profileFileB, profileFileA)
	}

	service := reconciler.NewService(config.CreateServiceConfig(false), logger.GetGlobalLogger())

	result, err := service.Merge(ctx, &reconciler.MergeRequest{
		ProfileFileA: profileFileA,
		ProfileFileB: profileFileB,
	})
	if err != nil {
		exitWithError(err)
	}

	generator, err := newReportGenerator(mergeFormat)
	if err != nil {
		return err
	}

	output, closeOutput, err := openOutput(mergeOutput)
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := generator.GenerateMergeReport(result, output); err != nil {
		exitWithError(err)
	}

	if viper.GetBool("verbose") {
		s := result.Summary
		fmt.Fprintf(os.Stderr, "\nMerge completed: kept %d sailings (%d upgraded, %d consolidated), dropped %d unpaired and %d two-room.\n",
			s.Kept, s.Upgrades, s.Downgrades, s.DroppedUnpaired, s.DroppedTwoRoom)
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", result.ProcessingTime)
	}

	return nil
}
