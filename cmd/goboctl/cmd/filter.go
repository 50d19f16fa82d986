package cmd

import (
	"context"
	"fmt"
	"os"

	"offer-reconciliation-service/cmd/goboctl/config"
	"offer-reconciliation-service/internal/filters"
	"offer-reconciliation-service/internal/reconciler"
	"offer-reconciliation-service/internal/reporter"
	"offer-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the filter command
var (
	profileFile  string
	searchFile   string
	hideGroups   []string
	filterStore  string
	filterFormat string
	filterOutput string
)

// filterCmd represents the filter command
var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a profile's offer rows",
	Long: `Filter flattens a loyalty profile into offer/sailing rows and applies
the hidden-group and advanced-search filters to them.

Hidden groups are "Label:Value" rules; a row whose column value matches
a rule is dropped. Rules can be given inline with --hide, loaded from a
persisted state file with --store-file, or both. A saved advanced
search (--search-file) is applied after the hidden groups.

Examples:
  # Hide one ship's rows
  goboctl filter --profile-file profile.json --hide "Ship:Oasis of the Seas"

  # Apply the hidden groups persisted in a state file
  goboctl filter --profile-file profile.json --store-file state.json

  # Apply a saved advanced search, output as CSV
  goboctl filter --profile-file profile.json --search-file search.json \
    --output-format csv`,

	PreRunE: validateFilterFlags,
	RunE:    runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)

	filterCmd.Flags().StringVarP(&profileFile, "profile-file", "p", "", "path to profile JSON file (required)")
	filterCmd.Flags().StringVar(&searchFile, "search-file", "", "path to saved advanced-search state JSON file")
	filterCmd.Flags().StringArrayVar(&hideGroups, "hide", nil, "hidden group rule \"Label:Value\" (repeatable)")
	filterCmd.Flags().StringVar(&filterStore, "store-file", "", "state file holding persisted hidden groups")

	filterCmd.Flags().StringVarP(&filterFormat, "output-format", "f", "console", "output format: console, json, csv")
	filterCmd.Flags().StringVarP(&filterOutput, "output-file", "o", "", "output file path (default: stdout)")

	filterCmd.MarkFlagRequired("profile-file")
}

func validateFilterFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(profileFile, "profile file"); err != nil {
		return err
	}
	if searchFile != "" {
		if err := validateFileExists(searchFile, "search state file"); err != nil {
			return err
		}
	}

	if !reporter.OutputFormat(filterFormat).IsValid() {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", filterFormat)
	}

	return validateOutputDir(filterOutput)
}

func runFilter(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger.GetGlobalLogger()

	groups := append([]string(nil), hideGroups...)
	if filterStore != "" {
		stored, err := loadStoredHiddenGroups(filterStore, log)
		if err != nil {
			exitWithError(err)
		}
		groups = append(groups, stored...)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Filtering profile %s with %d hidden group rules\n",
			profileFile, len(groups))
	}

	service := reconciler.NewService(config.CreateServiceConfig(false), log)

	result, err := service.Filter(ctx, &reconciler.FilterRequest{
		ProfileFile:  profileFile,
		SearchFile:   searchFile,
		HiddenGroups: groups,
	})
	if err != nil {
		exitWithError(err)
	}

	generator, err := newReportGenerator(filterFormat)
	if err != nil {
		return err
	}

	output, closeOutput, err := openOutput(filterOutput)
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := generator.GenerateFilterReport(result, output); err != nil {
		exitWithError(err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nKept %d of %d rows (%d hidden, %d excluded by search).\n",
			len(result.Records), result.TotalRecords,
			result.HiddenExcluded, result.SearchExcluded)
	}

	return nil
}

func loadStoredHiddenGroups(path string, log logger.Logger) ([]string, error) {
	store, err := config.OpenStateStore(path)
	if err != nil {
		return nil, err
	}
	return filters.NewHiddenGroupStore(store, log).Load()
}
