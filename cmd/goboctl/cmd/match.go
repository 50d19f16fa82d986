package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"offer-reconciliation-service/cmd/goboctl/config"
	"offer-reconciliation-service/internal/reconciler"
	"offer-reconciliation-service/internal/reporter"
	"offer-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the match command
var (
	offersFile   string
	sailingsFile string
	outputFormat string
	outputFile   string
	strictLoad   bool
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match offers against the sailing inventory",
	Long: `Match runs every offer through the matching cascade against the
sailing inventory and reports which sailings each offer resolves to.

The cascade tries, in priority order: offer code, offer name, ship and
exact date, ship and date window, exact date, date window, and ship.
The first tier whose criteria are present decides the outcome.

Examples:
  # Basic matching with console output
  goboctl match --offers-file offers.json --sailings-file sailings.json

  # JSON report written to a file
  goboctl match -O offers.json -S sailings.json \
    --output-format json --output-file report.json

  # Fail on the first invalid inventory record
  goboctl match -O offers.json -S sailings.json --strict`,

	PreRunE: validateMatchFlags,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	// Required flags
	matchCmd.Flags().StringVarP(&offersFile, "offers-file", "O", "", "path to offers JSON file (required)")
	matchCmd.Flags().StringVarP(&sailingsFile, "sailings-file", "S", "", "path to sailings JSON file (required)")

	// Output flags
	matchCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	matchCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Loader flags
	matchCmd.Flags().BoolVar(&strictLoad, "strict", false, "fail on the first invalid inventory record")

	matchCmd.MarkFlagRequired("offers-file")
	matchCmd.MarkFlagRequired("sailings-file")

	// Bind flags to viper
	viper.BindPFlag("offers-file", matchCmd.Flags().Lookup("offers-file"))
	viper.BindPFlag("sailings-file", matchCmd.Flags().Lookup("sailings-file"))
	viper.BindPFlag("output-format", matchCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", matchCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("strict", matchCmd.Flags().Lookup("strict"))
}

func validateMatchFlags(cmd *cobra.Command, args []string) error {
	// Viper values win so the config file can override defaults
	offersFile = viper.GetString("offers-file")
	sailingsFile = viper.GetString("sailings-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	strictLoad = viper.GetBool("strict")

	if offersFile == "" {
		return fmt.Errorf("offers-file is required")
	}
	if sailingsFile == "" {
		return fmt.Errorf("sailings-file is required")
	}

	if err := validateFileExists(offersFile, "offers file"); err != nil {
		return err
	}
	if err := validateFileExists(sailingsFile, "sailings file"); err != nil {
		return err
	}

	if !reporter.OutputFormat(outputFormat).IsValid() {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	return validateOutputDir(outputFile)
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting offer matching...\n")
		fmt.Fprintf(os.Stderr, "Offers file: %s\n", offersFile)
		fmt.Fprintf(os.Stderr, "Sailings file: %s\n", sailingsFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
	}

	service := reconciler.NewService(config.CreateServiceConfig(strictLoad), logger.GetGlobalLogger())

	result, err := service.Match(ctx, &reconciler.MatchRequest{
		OffersFile:   offersFile,
		SailingsFile: sailingsFile,
	})
	if err != nil {
		exitWithError(err)
	}

	generator, err := newReportGenerator(outputFormat)
	if err != nil {
		return err
	}

	output, closeOutput, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := generator.GenerateMatchReport(result, output); err != nil {
		exitWithError(err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nMatching completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Processed %d offers and %d sailings.\n",
			result.TotalOffers, result.TotalSailings)
		fmt.Fprintf(os.Stderr, "Matched %d offers, %d left unmatched.\n",
			result.OffersMatched, result.OffersUnmatched)
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", result.ProcessingTime)
	}

	return nil
}

// exitWithError routes pipeline failures through the CLI error handler so
// the user sees the contextual message and the process exits with the
// category's exit code.
func exitWithError(err error) {
	os.Exit(NewCLIErrorHandler().HandleError(err))
}

func newReportGenerator(format string) (*reporter.ReportGenerator, error) {
	reportConfig, err := config.CreateReportConfig(format)
	if err != nil {
		return nil, err
	}
	return reporter.NewReportGenerator(reportConfig)
}

// openOutput opens the report destination. An empty path means stdout,
// which the returned close func leaves open.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func validateOutputDir(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
	}
	return nil
}
