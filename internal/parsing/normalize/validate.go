package normalize

import (
	"fmt"

	"cardparse/internal/domain"
)

// Validate checks the assembled statement for cross-field consistency and
// returns human-readable warnings. Validation never rejects a parse; it only
// annotates suspicious data.
func Validate(data *domain.StatementData) []string {
	var warnings []string
	if data == nil {
		return warnings
	}

	if data.StatementEndDate != nil && data.PaymentDueDate != nil {
		if !data.PaymentDueDate.Time.After(data.StatementEndDate.Time) {
			warnings = append(warnings, fmt.Sprintf(
				"payment due date %s is not after statement end date %s",
				data.PaymentDueDate, data.StatementEndDate,
			))
		}
	}

	if data.TotalBalance != nil && data.MinPaymentDue != nil {
		if *data.MinPaymentDue > *data.TotalBalance {
			warnings = append(warnings, fmt.Sprintf(
				"minimum payment %.2f exceeds total balance %.2f",
				*data.MinPaymentDue, *data.TotalBalance,
			))
		}
	}

	if data.CardLast4 != nil && len(*data.CardLast4) != 4 {
		warnings = append(warnings, fmt.Sprintf(
			"card last four digits %q does not have exactly four digits", *data.CardLast4,
		))
	}

	return warnings
}
