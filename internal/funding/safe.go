package funding

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"equityfund/internal/domain"
)

// DefaultValuationCap applies when a campaign has no valuation cap set.
var DefaultValuationCap = decimal.NewFromInt(1_000_000)

const pitchExcerptLen = 200

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders a currency amount with thousands grouping and cents,
// e.g. "$1,575.00".
func FormatUSD(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return usdPrinter.Sprintf("$%v", number.Decimal(f,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// SAFETerms is the economic snapshot embedded into a generated agreement.
type SAFETerms struct {
	PurchaseAmount decimal.Decimal
	DiscountRate   decimal.Decimal
	ValuationCap   decimal.Decimal
	IssueDate      time.Time
}

// TermsFor derives the SAFE economic terms for an investment in the given
// campaign. The valuation cap falls back to DefaultValuationCap when the
// founder did not set one.
func TermsFor(campaign *domain.Campaign, amount decimal.Decimal, issueDate time.Time) SAFETerms {
	cap := DefaultValuationCap
	if campaign.ValuationCap != nil && campaign.ValuationCap.IsPositive() {
		cap = *campaign.ValuationCap
	}
	return SAFETerms{
		PurchaseAmount: amount,
		DiscountRate:   campaign.DiscountRate,
		ValuationCap:   cap,
		IssueDate:      issueDate,
	}
}

// GenerateSAFE renders the agreement document for an investment. The output
// is a pure function of its inputs: no randomness and no clock reads beyond
// the supplied issue date, so a document can be regenerated byte-identically
// for audit.
func GenerateSAFE(campaign *domain.Campaign, amount decimal.Decimal, issueDate time.Time) string {
	terms := TermsFor(campaign, amount, issueDate)

	var b strings.Builder
	b.WriteString("SIMPLE AGREEMENT FOR FUTURE EQUITY (SAFE)\n")
	b.WriteString("=========================================\n\n")
	fmt.Fprintf(&b, "Issue Date: %s\n\n", terms.IssueDate.Format("January 2, 2006"))
	fmt.Fprintf(&b, "Company: %s\n", campaign.CompanyName)
	fmt.Fprintf(&b, "Offering: %s\n\n", campaign.Title)
	fmt.Fprintf(&b, "About the Company: %s\n\n", pitchExcerpt(campaign.Pitch))

	b.WriteString("ECONOMIC TERMS\n")
	b.WriteString("--------------\n")
	fmt.Fprintf(&b, "Purchase Amount: %s\n", FormatUSD(terms.PurchaseAmount))
	fmt.Fprintf(&b, "Discount Rate: %s%%\n", terms.DiscountRate.String())
	fmt.Fprintf(&b, "Valuation Cap: %s\n\n", FormatUSD(terms.ValuationCap))

	b.WriteString("CONVERSION EVENTS\n")
	b.WriteString("-----------------\n")
	b.WriteString("This SAFE will convert into equity of the Company upon the earliest of:\n")
	b.WriteString("  1. Equity Financing: the next bona fide priced equity financing round,\n")
	b.WriteString("     at which point the Purchase Amount converts into preferred stock at\n")
	b.WriteString("     the lower of the Discount Price and the Valuation Cap Price.\n")
	b.WriteString("  2. Liquidity Event: a change of control or initial public offering, at\n")
	b.WriteString("     which point the Investor may elect to receive either the Purchase\n")
	b.WriteString("     Amount or the as-converted equity value.\n")
	b.WriteString("  3. Dissolution: a wind-down of the Company, in which case the Investor\n")
	b.WriteString("     is entitled to repayment of the Purchase Amount before any\n")
	b.WriteString("     distribution to holders of common stock.\n\n")

	b.WriteString("INVESTOR RIGHTS\n")
	b.WriteString("---------------\n")
	b.WriteString("  - Discount Conversion: the price per share at conversion is reduced by\n")
	b.WriteString("    the Discount Rate relative to new investors in the triggering round.\n")
	b.WriteString("  - Pro-Rata Rights: the Investor may participate in subsequent financing\n")
	b.WriteString("    rounds to maintain ownership percentage.\n")
	b.WriteString("  - Information Rights: the Investor receives regular business updates and\n")
	b.WriteString("    annual financial statements from the Company.\n\n")

	b.WriteString("This instrument is not a debt obligation and accrues no interest. It has\n")
	b.WriteString("no maturity date and remains outstanding until a conversion event occurs.\n")

	return b.String()
}

// ExportFilename is the canonical name for a persisted agreement document:
// SAFE_Agreement_<CompanyName>_<Amount>.txt.
func ExportFilename(companyName string, amount decimal.Decimal) string {
	return fmt.Sprintf("SAFE_Agreement_%s_%s.txt", sanitizeName(companyName), amount.String())
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	return unsafeChars.ReplaceAllString(name, "")
}

func pitchExcerpt(pitch string) string {
	pitch = strings.TrimSpace(pitch)
	if pitch == "" {
		return "(no pitch provided)"
	}
	runes := []rune(pitch)
	if len(runes) <= pitchExcerptLen {
		return pitch
	}
	return strings.TrimSpace(string(runes[:pitchExcerptLen])) + "..."
}
