package strategy

import (
	"regexp"

	"cardparse/internal/domain"
)

// FieldKind selects which proximity search and normalization applies to a
// field.
type FieldKind string

const (
	KindDate   FieldKind = "date"
	KindAmount FieldKind = "amount"
	KindCard   FieldKind = "card"
)

// FieldSpec describes how to locate one statement field: anchored regex
// patterns tried first, then keyword proximity search, then pseudo-table
// lookup.
type FieldSpec struct {
	Name      string
	Kind      FieldKind
	Patterns  []*regexp.Regexp
	Keywords  []string
	TableKeys []string

	// SearchBackward flips the proximity window to the text preceding the
	// keyword, for layouts that print the value before its label.
	SearchBackward bool
}

// Statement field names, in extraction order.
const (
	FieldStatementEndDate = "statement_end_date"
	FieldPaymentDueDate   = "payment_due_date"
	FieldTotalBalance     = "total_balance"
	FieldMinPaymentDue    = "min_payment_due"
	FieldCardLast4        = "card_last_4_digits"
)

func res(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile("(?is)"+p))
	}
	return out
}

// providerFields holds the per-issuer extraction configuration. Issuers
// differ only in these tables; the cascade logic is shared.
var providerFields = map[domain.Provider][]FieldSpec{
	domain.ProviderAmex: {
		{
			Name: FieldStatementEndDate,
			Kind: KindDate,
			Patterns: res(
				`Closing\s*Date[:\s]+(\w+\.?\s+\d{1,2},?\s+\d{4})`,
				`Statement\s*(?:Closing\s*)?Date[:\s]+(\w+\.?\s+\d{1,2},?\s+\d{4})`,
				`Statement\s*End(?:ing)?[:\s]+(\w+\.?\s+\d{1,2},?\s+\d{4})`,
				`Closing\s*Date[:\s]+(\d{1,2}/\d{1,2}/\d{2,4})`,
			),
			Keywords:  []string{"closing date", "statement closing date", "statement end date", "statement date"},
			TableKeys: []string{"Closing Date", "Statement Date"},
		},
		{
			Name: FieldPaymentDueDate,
			Kind: KindDate,
			Patterns: res(
				`Payment\s*Due\s*Date[:\s]+(\w+\.?\s+\d{1,2},?\s+\d{4})`,
				`Due\s*Date[:\s]+(\w+\.?\s+\d{1,2},?\s+\d{4})`,
				`Pay(?:ment)?\s*By[:\s]+(\w+\.?\s+\d{1,2},?\s+\d{4})`,
				`Payment\s*Due\s*Date[:\s]+(\d{1,2}/\d{1,2}/\d{2,4})`,
			),
			Keywords:  []string{"payment due date", "due date", "payment due", "pay by"},
			TableKeys: []string{"Payment Due Date", "Due Date"},
		},
		{
			Name: FieldTotalBalance,
			Kind: KindAmount,
			Patterns: res(
				`New\s*Balance[:\s]+\$?\s*([\d,]+\.?\d{2})`,
				`Total\s*Balance[:\s]+\$?\s*([\d,]+\.?\d{2})`,
				`Balance\s*Due[:\s]+\$?\s*([\d,]+\.?\d{2})`,
				`Current\s*Balance[:\s]+\$?\s*([\d,]+\.?\d{2})`,
				`New\s*Balance[:\s]+.*?\$\s*([\d,]+\.\d{2})`,
			),
			Keywords:  []string{"new balance", "total balance", "balance due", "current balance", "amount due"},
			TableKeys: []string{"New Balance", "Total Balance", "Balance Due"},
		},
		{
			Name: FieldMinPaymentDue,
			Kind: KindAmount,
			Patterns: res(
				`Minimum\s*Payment\s*Due[:\s]+\$?\s*([\d,]+\.?\d{2})`,
				`Minimum\s*(?:Amount\s*)?Due[:\s]+\$?\s*([\d,]+\.?\d{2})`,
				`Min(?:imum)?\s*Payment[:\s]+\$?\s*([\d,]+\.?\d{2})`,
				`Minimum\s*Payment[:\s]+.*?\$\s*([\d,]+\.\d{2})`,
				// OCR sometimes reads $ as S
				`Minimum\s*Amount\s*Due\s*S\s*([\d,]+\.?\d{2})`,
			),
			Keywords:  []string{"minimum payment due", "minimum payment", "minimum amount due", "min payment"},
			TableKeys: []string{"Minimum Payment Due", "Minimum Payment", "Min Payment"},
		},
		{
			Name: FieldCardLast4,
			Kind: KindCard,
			Patterns: res(
				`Account\s*Ending\s*(?:in\s+)?[:\-]?\s*(\d{4,5})`,
				`Account\s*(?:Number\s*)?Ending\s*(?:in\s+)?[:\-]?\s*(\d{4,5})`,
				`Card\s*Ending\s*(?:in\s+)?[:\-]?\s*(\d{4,5})`,
				// 3750-123456-78900 style account numbers
				`\d{4,6}[\s\-]\d{6}[\s\-](\d{5})`,
				`[x×X*]{4,}[\s\-]?(\d{4})`,
			),
			Keywords:  []string{"account ending", "card ending", "account number", "card number"},
			TableKeys: []string{"Account Ending", "Card Number"},
		},
	},

	domain.ProviderChase: {
		{
			Name: FieldStatementEndDate,
			Kind: KindDate,
			Patterns: res(
				`Statement Period[:\s]+.*?through\s+(\d{1,2}/\d{1,2}/\d{2,4}|[\w\s,]+\d{4})`,
				`Closing Date\s+([\w\s,]+\d{4})`,
				`Statement (?:End(?:ing)?|Close)\s+Date[:\s]+([\w\s,]+\d{4})`,
			),
			Keywords:  []string{"statement period through", "closing date", "statement end"},
			TableKeys: []string{"Closing Date", "Statement End Date"},
		},
		{
			Name: FieldPaymentDueDate,
			Kind: KindDate,
			Patterns: res(
				`Payment Due Date[:\s]+([\w\s,]+\d{4})`,
				`Due Date[:\s]+([\w\s,]+\d{4})`,
				`Pay(?:ment)? By[:\s]+([\w\s,]+\d{4})`,
			),
			Keywords:  []string{"payment due date", "due date", "payment by"},
			TableKeys: []string{"Payment Due Date", "Due Date"},
		},
		{
			Name: FieldTotalBalance,
			Kind: KindAmount,
			Patterns: res(
				`New Balance\s+\$([\d,]+\.\d{2})`,
				`Total Balance\s+\$([\d,]+\.\d{2})`,
				`Balance Due\s+\$([\d,]+\.\d{2})`,
				`Current Balance\s+\$([\d,]+\.\d{2})`,
			),
			Keywords:  []string{"new balance", "total balance", "balance due", "current balance"},
			TableKeys: []string{"New Balance", "Total Balance"},
		},
		{
			Name: FieldMinPaymentDue,
			Kind: KindAmount,
			Patterns: res(
				`Minimum Payment Due\s+\$([\d,]+\.\d{2})`,
				`Minimum Payment\s+\$([\d,]+\.\d{2})`,
				`Min(?:imum)? Pay(?:ment)?\s+\$([\d,]+\.\d{2})`,
			),
			Keywords:  []string{"minimum payment due", "minimum payment", "min payment"},
			TableKeys: []string{"Minimum Payment Due", "Minimum Payment"},
		},
		{
			Name: FieldCardLast4,
			Kind: KindCard,
			Patterns: res(
				`Account Number[:\s]+.*?(\d{4})`,
				`Card (?:Number|Ending)[:\s]+.*?(\d{4})`,
				`Account Ending[:\s\-]+(\d{4})`,
			),
			Keywords:  []string{"account number", "card ending"},
			TableKeys: []string{"Account Number"},
		},
	},

	domain.ProviderCiti: {
		{
			Name: FieldStatementEndDate,
			Kind: KindDate,
			Patterns: res(
				`Statement Date[:\s]+([\w\s,]+\d{4})`,
				`Closing Date[:\s]+([\w\s,]+\d{4})`,
				`Statement (?:end|close)[:\s]+([\w\s,]+\d{4})`,
			),
			Keywords:  []string{"statement date", "closing date", "statement end"},
			TableKeys: []string{"Statement Date", "Closing Date"},
		},
		{
			Name: FieldPaymentDueDate,
			Kind: KindDate,
			Patterns: res(
				`Payment Due Date[:\s]+([\w\s,]+\d{4})`,
				`Due Date[:\s]+([\w\s,]+\d{4})`,
			),
			Keywords:  []string{"payment due date", "due date"},
			TableKeys: []string{"Payment Due Date", "Due Date"},
		},
		{
			Name: FieldTotalBalance,
			Kind: KindAmount,
			Patterns: res(
				`Total Amount Due[:\s]+\$([\d,]+\.\d{2})`,
				`New Balance[:\s]+\$([\d,]+\.\d{2})`,
				`Balance Due[:\s]+\$([\d,]+\.\d{2})`,
			),
			Keywords:  []string{"total amount due", "new balance", "balance due"},
			TableKeys: []string{"Total Amount Due", "New Balance"},
		},
		{
			Name: FieldMinPaymentDue,
			Kind: KindAmount,
			Patterns: res(
				`Minimum Payment[:\s]+\$([\d,]+\.\d{2})`,
				`Min(?:imum)? Pay(?:ment)?[:\s]+\$([\d,]+\.\d{2})`,
			),
			Keywords:  []string{"minimum payment", "min payment"},
			TableKeys: []string{"Minimum Payment"},
		},
		{
			Name: FieldCardLast4,
			Kind: KindCard,
			Patterns: res(
				`Account\s+#[:\s]+.*?(\d{4})`,
				`Card (?:Number|Ending)[:\s]+.*?(\d{4})`,
				`Account Ending[:\s\-]+(\d{4})`,
			),
			Keywords:  []string{"account #", "card ending", "account ending"},
			TableKeys: []string{"Account Number"},
		},
	},

	domain.ProviderCapitalOne: {
		{
			Name: FieldStatementEndDate,
			Kind: KindDate,
			Patterns: res(
				`Statement\s+(?:Closing|End(?:ing)?)\s+Date[:\s]+([\w\s,/]+\d{2,4})`,
				`Closing Date[:\s]+([\w\s,/]+\d{2,4})`,
				`Billing Period.*?(?:through|to|-)[:\s]+([\w\s,/]+\d{2,4})`,
			),
			Keywords:  []string{"statement closing date", "closing date", "billing period"},
			TableKeys: []string{"Closing Date", "Statement Date"},
		},
		{
			Name: FieldPaymentDueDate,
			Kind: KindDate,
			Patterns: res(
				`Payment Due Date[:\s]+([\w\s,/]+\d{2,4})`,
				`Due Date[:\s]+([\w\s,/]+\d{2,4})`,
			),
			Keywords:  []string{"payment due date", "due date"},
			TableKeys: []string{"Payment Due Date", "Due Date"},
		},
		{
			Name: FieldTotalBalance,
			Kind: KindAmount,
			Patterns: res(
				`New Balance[:\s]+\$([\d,]+\.\d{2})`,
				`Total Balance[:\s]+\$([\d,]+\.\d{2})`,
				`Balance Due[:\s]+\$([\d,]+\.\d{2})`,
			),
			Keywords:  []string{"new balance", "total balance", "balance due"},
			TableKeys: []string{"New Balance", "Total Balance"},
		},
		{
			Name: FieldMinPaymentDue,
			Kind: KindAmount,
			Patterns: res(
				`Minimum Payment\s+(?:Due\s+)?[:\s]*\$([\d,]+\.\d{2})`,
				`Min(?:imum)? Pay(?:ment)?[:\s]+\$([\d,]+\.\d{2})`,
			),
			Keywords:  []string{"minimum payment due", "minimum payment", "min payment"},
			TableKeys: []string{"Minimum Payment Due", "Minimum Payment"},
		},
		{
			Name: FieldCardLast4,
			Kind: KindCard,
			Patterns: res(
				`Account Ending(?:\s+in)?[:\s\-]+(\d{4})`,
				`Card (?:Number|Ending)[:\s]+.*?(\d{4})`,
				`Account\s+#[:\s]+.*?(\d{4})`,
			),
			Keywords:  []string{"account ending", "card ending", "account number"},
			TableKeys: []string{"Account Ending", "Account Number"},
		},
	},

	domain.ProviderBofA: {
		{
			Name: FieldStatementEndDate,
			Kind: KindDate,
			Patterns: res(
				`Closing Date[:\s]+([\w\s,]+\d{4})`,
				`Statement (?:End(?:ing)?|Close)\s+Date[:\s]+([\w\s,]+\d{4})`,
				`Statement Period.*?(?:through|to)[:\s]+([\w\s,/]+\d{2,4})`,
			),
			Keywords:  []string{"closing date", "statement end", "statement period"},
			TableKeys: []string{"Closing Date", "Statement Date"},
		},
		{
			Name: FieldPaymentDueDate,
			Kind: KindDate,
			Patterns: res(
				`Payment Due Date[:\s]+([\w\s,]+\d{4})`,
				`Due Date[:\s]+([\w\s,]+\d{4})`,
				`Payment By[:\s]+([\w\s,]+\d{4})`,
			),
			Keywords:  []string{"payment due date", "due date", "payment by"},
			TableKeys: []string{"Payment Due Date", "Due Date"},
		},
		{
			Name: FieldTotalBalance,
			Kind: KindAmount,
			Patterns: res(
				`New Balance\s+\$([\d,]+\.\d{2})`,
				`Total Balance\s+\$([\d,]+\.\d{2})`,
				`Balance Due\s+\$([\d,]+\.\d{2})`,
			),
			Keywords:  []string{"new balance", "total balance", "balance due"},
			TableKeys: []string{"New Balance", "Total Balance"},
		},
		{
			Name: FieldMinPaymentDue,
			Kind: KindAmount,
			Patterns: res(
				`Minimum Payment\s+(?:Due\s+)?\$([\d,]+\.\d{2})`,
				`Min(?:imum)? Pay(?:ment)?\s+\$([\d,]+\.\d{2})`,
			),
			Keywords:  []string{"minimum payment", "min payment"},
			TableKeys: []string{"Minimum Payment", "Minimum Payment Due"},
		},
		{
			Name: FieldCardLast4,
			Kind: KindCard,
			Patterns: res(
				`Account\s+#[:\s]+.*?(\d{4})`,
				`Card (?:Number|Ending)[:\s]+.*?(\d{4})`,
				`Account Ending[:\s\-]+(\d{4})`,
			),
			Keywords:  []string{"account #", "account number", "card ending"},
			TableKeys: []string{"Account Number"},
		},
	},
}

// ForProvider returns the field configuration for a provider. The second
// return is false when no configuration is registered.
func ForProvider(p domain.Provider) ([]FieldSpec, bool) {
	specs, ok := providerFields[p]
	return specs, ok
}
