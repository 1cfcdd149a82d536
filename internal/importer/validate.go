package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"agency-crm/internal/models"
)

// DateFormat is the only accepted date layout in import sources
const DateFormat = "2006-01-02"

// Column headers of the past-sales import template
const (
	ColAddress               = "listing_address"
	ColSuburb                = "suburb"
	ColStatus                = "status"
	ColAppraisalValueLow     = "appraisal_value_low"
	ColAppraisalValueHigh    = "appraisal_value_high"
	ColListingPrice          = "listing_price"
	ColSaleValue             = "sale_value"
	ColFirstContactDate      = "first_contact_date"
	ColAppraisalDate         = "appraisal_date"
	ColListingSignedDate     = "listing_signed_date"
	ColListingLiveDate       = "listing_live_date"
	ColUnconditionalDate     = "unconditional_date"
	ColSettlementDate        = "settlement_date"
	ColLostDate              = "lost_date"
	ColLostReason            = "lost_reason"
	ColVendorName            = "vendor_name"
	ColVendorEmail           = "vendor_email"
	ColVendorPhone           = "vendor_phone"
	ColVendorMovedTo         = "vendor_moved_to"
	ColVendorReferralPartner = "vendor_referral_partner"
	ColBuyerName             = "buyer_name"
	ColBuyerEmail            = "buyer_email"
	ColBuyerPhone            = "buyer_phone"
	ColBuyerReferralPartner  = "buyer_referral_partner"
	ColLeadSource            = "lead_source"
)

// Severity splits row issues into blocking errors and review-only warnings
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding on a single row
type Issue struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

// ValidatedRow wraps a typed record with its validation outcome.
// Valid is true iff the row has zero hard errors; warnings never block commit.
type ValidatedRow struct {
	Line   int             `json:"line"`
	Record models.PastSale `json:"record"`
	Valid  bool            `json:"valid"`
	Issues []Issue         `json:"issues"`
}

// Errors returns the messages of all blocking issues
func (v ValidatedRow) Errors() []string {
	return v.messages(SeverityError)
}

// Warnings returns the messages of all non-blocking issues
func (v ValidatedRow) Warnings() []string {
	return v.messages(SeverityWarning)
}

func (v ValidatedRow) messages(sev Severity) []string {
	var out []string
	for _, issue := range v.Issues {
		if issue.Severity == sev {
			out = append(out, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
		}
	}
	return out
}

// HasWarnings reports whether the row carries at least one warning
func (v ValidatedRow) HasWarnings() bool {
	for _, issue := range v.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Validate maps one raw row to a typed past-sale record, applying per-field
// rules and the status-dependent conditional requirements. Pure and
// deterministic: identical input always yields identical output.
func Validate(row RawRow) ValidatedRow {
	out := ValidatedRow{Line: row.Line}
	rec := &out.Record

	addIssue := func(sev Severity, field, message string) {
		out.Issues = append(out.Issues, Issue{Severity: sev, Field: field, Message: message})
	}

	// Rule 1: status discriminator. Unrecognized or missing short-circuits the
	// status-dependent checks; generic checks below still run.
	statusRaw := strings.ToLower(row.Get(ColStatus))
	status := models.SaleStatus(statusRaw)
	statusKnown := status.IsValid()
	if statusKnown {
		rec.Status = status
	} else if statusRaw == "" {
		addIssue(SeverityError, ColStatus, "status is required")
	} else {
		addIssue(SeverityError, ColStatus, fmt.Sprintf("unrecognized status %q, expected sold or withdrawn", statusRaw))
	}

	// Rule 2: address is always required
	rec.Address = row.Get(ColAddress)
	if rec.Address == "" {
		addIssue(SeverityError, ColAddress, "address is required")
	}

	// Rule 3: date fields. Unparsable non-empty values are hard errors; empty
	// values only error when the current status requires the field.
	requiredDates := map[string]bool{}
	if statusKnown && status == models.SaleStatusSold {
		requiredDates[ColListingLiveDate] = true
		requiredDates[ColUnconditionalDate] = true
		requiredDates[ColSettlementDate] = true
	}

	dateFields := []struct {
		col  string
		dest **time.Time
	}{
		{ColFirstContactDate, &rec.FirstContactDate},
		{ColAppraisalDate, &rec.AppraisalDate},
		{ColListingSignedDate, &rec.ListingSignedDate},
		{ColListingLiveDate, &rec.ListingLiveDate},
		{ColUnconditionalDate, &rec.UnconditionalDate},
		{ColSettlementDate, &rec.SettlementDate},
		{ColLostDate, &rec.LostDate},
	}
	for _, f := range dateFields {
		raw := row.Get(f.col)
		if raw == "" {
			if requiredDates[f.col] {
				addIssue(SeverityError, f.col, "required when status is sold")
			}
			continue
		}
		parsed, err := time.Parse(DateFormat, raw)
		if err != nil {
			addIssue(SeverityError, f.col, fmt.Sprintf("invalid date %q, expected %s", raw, "YYYY-MM-DD"))
			continue
		}
		t := parsed
		*f.dest = &t
	}

	// Rule 4: numeric fields
	numericFields := []struct {
		col  string
		dest **float64
	}{
		{ColAppraisalValueLow, &rec.AppraisalValueLow},
		{ColAppraisalValueHigh, &rec.AppraisalValueHigh},
		{ColListingPrice, &rec.ListingPrice},
		{ColSaleValue, &rec.SaleValue},
	}
	for _, f := range numericFields {
		raw := row.Get(f.col)
		if raw == "" {
			continue
		}
		value, err := parseAmount(raw)
		if err != nil {
			addIssue(SeverityError, f.col, fmt.Sprintf("invalid number %q", raw))
			continue
		}
		v := value
		*f.dest = &v
	}
	if rec.AppraisalValueLow != nil && rec.AppraisalValueHigh != nil &&
		*rec.AppraisalValueLow > *rec.AppraisalValueHigh {
		addIssue(SeverityWarning, ColAppraisalValueLow, "appraisal low is greater than appraisal high")
	}

	// Rule 5: sold rows must carry a sale value (the required dates were
	// checked above)
	if statusKnown && status == models.SaleStatusSold && rec.SaleValue == nil && row.Get(ColSaleValue) == "" {
		addIssue(SeverityError, ColSaleValue, "required when status is sold")
	}

	// Rule 6: withdrawn rows without a lost reason are committed but nudged
	rec.LostReason = optionalString(row.Get(ColLostReason))
	if statusKnown && status == models.SaleStatusWithdrawn && rec.LostReason == nil {
		addIssue(SeverityWarning, ColLostReason, "lost reason is empty, consider recording why the listing was withdrawn")
	}

	// Rule 7: cross-field plausibility
	if rec.SettlementDate != nil && rec.ListingSignedDate != nil &&
		rec.SettlementDate.Before(*rec.ListingSignedDate) {
		addIssue(SeverityWarning, ColSettlementDate, "settlement date is earlier than listing signed date")
	}

	// Free-text contact fields, never validated
	rec.Suburb = optionalString(row.Get(ColSuburb))
	rec.VendorName = optionalString(row.Get(ColVendorName))
	rec.VendorEmail = optionalString(row.Get(ColVendorEmail))
	rec.VendorPhone = optionalString(row.Get(ColVendorPhone))
	rec.VendorMovedTo = optionalString(row.Get(ColVendorMovedTo))
	rec.VendorReferralPartner = parseFlag(row.Get(ColVendorReferralPartner))
	rec.BuyerName = optionalString(row.Get(ColBuyerName))
	rec.BuyerEmail = optionalString(row.Get(ColBuyerEmail))
	rec.BuyerPhone = optionalString(row.Get(ColBuyerPhone))
	rec.BuyerReferralPartner = parseFlag(row.Get(ColBuyerReferralPartner))
	rec.LeadSource = optionalString(row.Get(ColLeadSource))

	out.Valid = true
	for _, issue := range out.Issues {
		if issue.Severity == SeverityError {
			out.Valid = false
			break
		}
	}

	return out
}

// ValidateAll validates every row, preserving input order
func ValidateAll(rows []RawRow) []ValidatedRow {
	out := make([]ValidatedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, Validate(row))
	}
	return out
}

// parseAmount parses a money-ish cell, tolerating currency symbols and
// thousand separators
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

// parseFlag reads a loose boolean cell; anything unrecognized is false
func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
