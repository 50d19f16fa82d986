// Package reporter renders reconciliation results for people and programs.
//
// Three report families are supported, one per pipeline:
//   - Match reports: which sailings each offer applies to, with the tier
//     that admitted each match
//   - Filter reports: the surviving profile rows rendered through the
//     standard column set
//   - Merge reports: the consolidated profile and what the merge kept,
//     upgraded and dropped
//
// Each family renders to console (human-readable), JSON (programmatic) or
// CSV (spreadsheet) output.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"offer-reconciliation-service/internal/columns"
	"offer-reconciliation-service/internal/matcher"
	"offer-reconciliation-service/internal/reconciler"

	"github.com/shopspring/decimal"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation.
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeUnmatchedOffers lists offers that matched nothing in match
	// reports.
	IncludeUnmatchedOffers bool `json:"include_unmatched_offers"`
	// IncludeParseStats appends loader statistics to console reports.
	IncludeParseStats bool `json:"include_parse_stats"`

	// CSV options.
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                 FormatConsole,
		IncludeUnmatchedOffers: true,
		IncludeParseStats:      true,
		CSVDelimiter:           ',',
		CSVHeaders:             true,
	}
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// ReportGenerator renders pipeline results in the configured format.
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateMatchReport renders a matching run.
func (rg *ReportGenerator) GenerateMatchReport(result *reconciler.MatchResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("match result cannot be nil")
	}
	switch rg.config.Format {
	case FormatConsole:
		return rg.matchConsole(result, writer)
	case FormatJSON:
		return rg.matchJSON(result, writer)
	case FormatCSV:
		return rg.matchCSV(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// matchConsole renders a human-readable matching report.
func (rg *ReportGenerator) matchConsole(result *reconciler.MatchResult, writer io.Writer) error {
	fmt.Fprintf(writer, "OFFER MATCH REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(writer, "Processing Duration: %v\n\n", result.ProcessingTime)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Offers:            %d\n", result.TotalOffers)
	fmt.Fprintf(writer, "Sailings:          %d\n", result.TotalSailings)
	fmt.Fprintf(writer, "Offers matched:    %d\n", result.OffersMatched)
	fmt.Fprintf(writer, "Offers unmatched:  %d\n", result.OffersUnmatched)
	fmt.Fprintf(writer, "Total trade value: $%s\n\n", matchedTradeValue(result))

	fmt.Fprintf(writer, "=== MATCHES ===\n")
	for _, r := range result.Results {
		if len(r.Matches) == 0 {
			continue
		}
		fmt.Fprintf(writer, "%s (%s): %d sailing(s)\n", offerLabel(r), r.Offer.Name, len(r.Matches))
		for _, m := range r.Matches {
			departure := m.Sailing.DepartureDate
			if m.HasDeparture {
				departure = m.Departure.Format("2006-01-02")
			}
			fmt.Fprintf(writer, "  - %s  %s  [%s]\n", m.Sailing.ShipName, departure, m.Tier)
		}
	}

	if rg.config.IncludeUnmatchedOffers && result.OffersUnmatched > 0 {
		fmt.Fprintf(writer, "\n=== UNMATCHED OFFERS ===\n")
		for _, r := range result.Results {
			if len(r.Matches) == 0 {
				fmt.Fprintf(writer, "%s (%s)\n", offerLabel(r), r.Offer.Name)
			}
		}
	}

	if rg.config.IncludeParseStats {
		fmt.Fprintf(writer, "\n=== INPUT STATS ===\n")
		if result.OfferStats != nil {
			fmt.Fprintf(writer, "Offers:   %s\n", result.OfferStats)
		}
		if result.SailingStats != nil {
			fmt.Fprintf(writer, "Sailings: %s\n", result.SailingStats)
		}
	}
	return nil
}

// matchReportJSON is the JSON shape of a matching report.
type matchReportJSON struct {
	GeneratedAt     time.Time          `json:"generated_at"`
	TotalOffers     int                `json:"total_offers"`
	TotalSailings   int                `json:"total_sailings"`
	OffersMatched   int                `json:"offers_matched"`
	OffersUnmatched int                `json:"offers_unmatched"`
	TradeValue      string             `json:"matched_trade_value"`
	Offers          []matchedOfferJSON `json:"offers"`
}

type matchedOfferJSON struct {
	OfferCode string            `json:"offer_code,omitempty"`
	Name      string            `json:"name,omitempty"`
	Matches   []matchedSailJSON `json:"matches"`
}

type matchedSailJSON struct {
	ShipName  string `json:"ship_name"`
	Departure string `json:"departure,omitempty"`
	Tier      string `json:"tier"`
}

func (rg *ReportGenerator) matchJSON(result *reconciler.MatchResult, writer io.Writer) error {
	report := matchReportJSON{
		GeneratedAt:     time.Now().UTC(),
		TotalOffers:     result.TotalOffers,
		TotalSailings:   result.TotalSailings,
		OffersMatched:   result.OffersMatched,
		OffersUnmatched: result.OffersUnmatched,
		TradeValue:      matchedTradeValue(result).String(),
	}
	for _, r := range result.Results {
		if len(r.Matches) == 0 && !rg.config.IncludeUnmatchedOffers {
			continue
		}
		offer := matchedOfferJSON{
			OfferCode: r.Offer.OfferCode,
			Name:      r.Offer.Name,
			Matches:   make([]matchedSailJSON, 0, len(r.Matches)),
		}
		for _, m := range r.Matches {
			entry := matchedSailJSON{ShipName: m.Sailing.ShipName, Tier: m.Tier.String()}
			if m.HasDeparture {
				entry.Departure = m.Departure.Format("2006-01-02")
			}
			offer.Matches = append(offer.Matches, entry)
		}
		report.Offers = append(report.Offers, offer)
	}

	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (rg *ReportGenerator) matchCSV(result *reconciler.MatchResult, writer io.Writer) error {
	w := csv.NewWriter(writer)
	w.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := w.Write([]string{"offer_code", "offer_name", "ship_name", "departure", "tier"}); err != nil {
			return err
		}
	}
	for _, r := range result.Results {
		for _, m := range r.Matches {
			departure := ""
			if m.HasDeparture {
				departure = m.Departure.Format("2006-01-02")
			}
			row := []string{r.Offer.OfferCode, r.Offer.Name, m.Sailing.ShipName, departure, m.Tier.String()}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// GenerateFilterReport renders a profile filtering run as a row table.
func (rg *ReportGenerator) GenerateFilterReport(result *reconciler.FilterResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("filter result cannot be nil")
	}
	switch rg.config.Format {
	case FormatConsole:
		return rg.filterConsole(result, writer)
	case FormatJSON:
		return rg.filterJSON(result, writer)
	case FormatCSV:
		return rg.filterCSV(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) filterConsole(result *reconciler.FilterResult, writer io.Writer) error {
	fmt.Fprintf(writer, "PROFILE FILTER REPORT\n")
	fmt.Fprintf(writer, "Profile: %s\n", result.Profile.Data.Email)
	fmt.Fprintf(writer, "Rows: %d of %d (%d hidden, %d filtered by search)\n\n",
		len(result.Records), result.TotalRecords, result.HiddenExcluded, result.SearchExcluded)

	for _, rec := range result.Records {
		fmt.Fprintf(writer, "%s | %s | %s | %s | %s | %s\n",
			columns.Value(rec.Offer, rec.Sailing, columns.KeyOfferCode),
			columns.Value(rec.Offer, rec.Sailing, columns.KeyShip),
			columns.Value(rec.Offer, rec.Sailing, columns.KeySailDate),
			columns.Value(rec.Offer, rec.Sailing, columns.KeyCategory),
			columns.Value(rec.Offer, rec.Sailing, columns.KeyGuests),
			columns.Value(rec.Offer, rec.Sailing, columns.KeyTradeInValue),
		)
	}
	return nil
}

func (rg *ReportGenerator) filterJSON(result *reconciler.FilterResult, writer io.Writer) error {
	type rowJSON map[string]string
	report := struct {
		Email          string    `json:"email"`
		TotalRecords   int       `json:"total_records"`
		HiddenExcluded int       `json:"hidden_excluded"`
		SearchExcluded int       `json:"search_excluded"`
		Rows           []rowJSON `json:"rows"`
	}{
		Email:          result.Profile.Data.Email,
		TotalRecords:   result.TotalRecords,
		HiddenExcluded: result.HiddenExcluded,
		SearchExcluded: result.SearchExcluded,
		Rows:           make([]rowJSON, 0, len(result.Records)),
	}
	for _, rec := range result.Records {
		row := make(rowJSON, len(columns.DefaultHeaders))
		for _, h := range columns.DefaultHeaders {
			row[h.Key] = columns.Value(rec.Offer, rec.Sailing, h.Key)
		}
		report.Rows = append(report.Rows, row)
	}

	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (rg *ReportGenerator) filterCSV(result *reconciler.FilterResult, writer io.Writer) error {
	w := csv.NewWriter(writer)
	w.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		headers := make([]string, 0, len(columns.DefaultHeaders))
		for _, h := range columns.DefaultHeaders {
			headers = append(headers, h.Label)
		}
		if err := w.Write(headers); err != nil {
			return err
		}
	}
	for _, rec := range result.Records {
		row := make([]string, 0, len(columns.DefaultHeaders))
		for _, h := range columns.DefaultHeaders {
			row = append(row, columns.Value(rec.Offer, rec.Sailing, h.Key))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// GenerateMergeReport renders a consolidation run.
func (rg *ReportGenerator) GenerateMergeReport(result *reconciler.MergeResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("merge result cannot be nil")
	}
	switch rg.config.Format {
	case FormatConsole:
		return rg.mergeConsole(result, writer)
	case FormatJSON:
		// The merged profile is itself the report.
		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Merged)
	case FormatCSV:
		return rg.mergeCSV(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) mergeConsole(result *reconciler.MergeResult, writer io.Writer) error {
	fmt.Fprintf(writer, "PROFILE MERGE REPORT\n")
	fmt.Fprintf(writer, "Merged from: %v\n", result.Merged.MergedFrom)
	fmt.Fprintf(writer, "Processing Duration: %v\n\n", result.ProcessingTime)

	s := result.Summary
	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Sailings considered: %d\n", s.SailingsA)
	fmt.Fprintf(writer, "Sailings kept:       %d\n", s.Kept)
	fmt.Fprintf(writer, "Dropped (unpaired):  %d\n", s.DroppedUnpaired)
	fmt.Fprintf(writer, "Dropped (two room):  %d\n", s.DroppedTwoRoom)
	fmt.Fprintf(writer, "Upgrades:            %d\n", s.Upgrades)
	fmt.Fprintf(writer, "Downgrades:          %d\n", s.Downgrades)
	fmt.Fprintf(writer, "Offers pruned:       %d\n\n", s.OffersPruned)

	fmt.Fprintf(writer, "=== MERGED OFFERS ===\n")
	for _, offer := range result.Merged.Data.Offers {
		if offer == nil || offer.CampaignOffer == nil {
			continue
		}
		fmt.Fprintf(writer, "%s (%s): %d sailing(s)\n",
			offer.CampaignOffer.OfferCode, offer.CampaignOffer.Name, len(offer.CampaignOffer.Sailings))
		for _, sailing := range offer.CampaignOffer.Sailings {
			fmt.Fprintf(writer, "  - %s  %s  %s\n",
				sailing.ShipName, columns.FormatDate(sailing.SailDate), columns.CategoryText(sailing))
		}
	}
	return nil
}

func (rg *ReportGenerator) mergeCSV(result *reconciler.MergeResult, writer io.Writer) error {
	w := csv.NewWriter(writer)
	w.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := w.Write([]string{"offer_code", "offer_name", "ship_name", "sail_date", "category", "guests"}); err != nil {
			return err
		}
	}
	for _, offer := range result.Merged.Data.Offers {
		if offer == nil || offer.CampaignOffer == nil {
			continue
		}
		for _, sailing := range offer.CampaignOffer.Sailings {
			row := []string{
				offer.CampaignOffer.OfferCode,
				offer.CampaignOffer.Name,
				sailing.ShipName,
				sailing.SailDate,
				columns.CategoryText(sailing),
				columns.GuestsText(sailing),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// matchedTradeValue totals the trade-in value of every offer that matched
// at least one sailing.
func matchedTradeValue(result *reconciler.MatchResult) decimal.Decimal {
	total := decimal.Zero
	for _, r := range result.Results {
		if len(r.Matches) > 0 {
			total = total.Add(r.Offer.TradeInValue)
		}
	}
	return total
}

func offerLabel(r *matcher.Result) string {
	if r.Offer.OfferCode != "" {
		return r.Offer.OfferCode
	}
	return "(no code)"
}
