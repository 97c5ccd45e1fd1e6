package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardparse/internal/domain"
)

func TestNew_AllProvidersRegistered(t *testing.T) {
	for _, p := range domain.SupportedProviders {
		e, ok := New(p, 150)
		require.True(t, ok, "provider %s", p)
		require.NotNil(t, e, "provider %s", p)
		assert.Equal(t, p, e.Provider())
	}
	_, ok := New(domain.Provider("Unknown Bank"), 150)
	assert.False(t, ok)
}

func TestFieldSpecs_Complete(t *testing.T) {
	want := []string{
		FieldStatementEndDate,
		FieldPaymentDueDate,
		FieldTotalBalance,
		FieldMinPaymentDue,
		FieldCardLast4,
	}
	for _, p := range domain.SupportedProviders {
		specs, ok := ForProvider(p)
		require.True(t, ok)
		var names []string
		for _, s := range specs {
			names = append(names, s.Name)
			assert.NotEmpty(t, s.Patterns, "%s/%s has no patterns", p, s.Name)
			assert.NotEmpty(t, s.Keywords, "%s/%s has no keywords", p, s.Name)
			assert.NotEmpty(t, s.TableKeys, "%s/%s has no table keys", p, s.Name)
		}
		assert.Equal(t, want, names, "provider %s", p)
	}
}

func TestExtract_AmexStatement(t *testing.T) {
	text := `AMERICAN EXPRESS
Prepared for JOHN DOE
Account Ending 1001
Closing Date 01/15/25
Payment Due Date: Feb 11, 2025
New Balance: $1,234.56
Minimum Payment Due: $35.00
`
	e, ok := New(domain.ProviderAmex, 150)
	require.True(t, ok)

	data := e.Extract(text)
	require.NotNil(t, data.StatementEndDate)
	assert.Equal(t, domain.NewDate(2025, 1, 15), *data.StatementEndDate)
	require.NotNil(t, data.PaymentDueDate)
	assert.Equal(t, domain.NewDate(2025, 2, 11), *data.PaymentDueDate)
	require.NotNil(t, data.TotalBalance)
	assert.InDelta(t, 1234.56, *data.TotalBalance, 0.001)
	require.NotNil(t, data.MinPaymentDue)
	assert.InDelta(t, 35.00, *data.MinPaymentDue, 0.001)
	require.NotNil(t, data.CardLast4)
	assert.Equal(t, "1001", *data.CardLast4)

	require.NotNil(t, data.Metadata)
	assert.Equal(t, "Amex", data.Metadata.Provider)
	assert.Equal(t, "hybrid_multi_strategy", data.Metadata.ExtractionMethod)
	assert.Empty(t, data.Metadata.Warnings)

	scores := data.Metadata.ConfidenceScores
	require.Len(t, scores, 5)
	assert.Equal(t, ConfidenceRegex, scores[FieldPaymentDueDate])
	assert.Equal(t, ConfidenceRegex, scores[FieldTotalBalance])
	assert.Equal(t, ConfidenceRegex, scores[FieldMinPaymentDue])
	assert.Equal(t, ConfidenceRegex, scores[FieldCardLast4])
}

func TestExtract_AmexEndingInPhrasing(t *testing.T) {
	text := `AMERICAN EXPRESS
Account ending in 1001
Closing Date Dec 31, 2025
Payment Due Date Jan 25, 2026
Total Balance $1,234.56
Minimum Payment Due $50.00
`
	e, ok := New(domain.ProviderAmex, 150)
	require.True(t, ok)

	data := e.Extract(text)
	require.NotNil(t, data.StatementEndDate)
	assert.Equal(t, domain.NewDate(2025, 12, 31), *data.StatementEndDate)
	require.NotNil(t, data.PaymentDueDate)
	assert.Equal(t, domain.NewDate(2026, 1, 25), *data.PaymentDueDate)
	require.NotNil(t, data.TotalBalance)
	assert.InDelta(t, 1234.56, *data.TotalBalance, 0.001)
	require.NotNil(t, data.MinPaymentDue)
	assert.InDelta(t, 50.00, *data.MinPaymentDue, 0.001)
	require.NotNil(t, data.CardLast4)
	assert.Equal(t, "1001", *data.CardLast4)
	assert.Empty(t, data.Metadata.Warnings)
}

func TestExtract_ChaseStatementPeriod(t *testing.T) {
	text := `CHASE
Account Number: **** **** **** 9876
Statement Period: 11/21/2025 through 12/20/2025
Payment Due Date: 01/15/2026
New Balance $500.00
Minimum Payment Due $25.00
`
	e, ok := New(domain.ProviderChase, 150)
	require.True(t, ok)

	data := e.Extract(text)
	require.NotNil(t, data.StatementEndDate)
	assert.Equal(t, domain.NewDate(2025, 12, 20), *data.StatementEndDate)
	require.NotNil(t, data.PaymentDueDate)
	assert.Equal(t, domain.NewDate(2026, 1, 15), *data.PaymentDueDate)
	require.NotNil(t, data.TotalBalance)
	assert.InDelta(t, 500.00, *data.TotalBalance, 0.001)
	require.NotNil(t, data.MinPaymentDue)
	assert.InDelta(t, 25.00, *data.MinPaymentDue, 0.001)
	require.NotNil(t, data.CardLast4)
	assert.Equal(t, "9876", *data.CardLast4)

	scores := data.Metadata.ConfidenceScores
	assert.Equal(t, ConfidenceRegex, scores[FieldStatementEndDate])
	// Slashed due dates fall through the anchored patterns to the
	// keyword window.
	assert.Equal(t, ConfidenceProximity, scores[FieldPaymentDueDate])
}

func TestExtract_CascadeConfidences(t *testing.T) {
	e, ok := New(domain.ProviderChase, 150)
	require.True(t, ok)

	t.Run("regex_tier", func(t *testing.T) {
		data := e.Extract("CHASE\nNew Balance $500.00\n")
		require.NotNil(t, data.TotalBalance)
		assert.Equal(t, ConfidenceRegex, data.Metadata.ConfidenceScores[FieldTotalBalance])
	})

	t.Run("proximity_tier", func(t *testing.T) {
		// No anchored pattern matches ("was" breaks them), but the amount
		// sits inside the keyword window.
		data := e.Extract("CHASE\nYour new balance was 500.00 as of the close\n")
		require.NotNil(t, data.TotalBalance)
		assert.InDelta(t, 500.00, *data.TotalBalance, 0.001)
		assert.Equal(t, ConfidenceProximity, data.Metadata.ConfidenceScores[FieldTotalBalance])
	})

	t.Run("table_tier", func(t *testing.T) {
		// Anchored patterns need a dollar sign and the tiny window starves
		// the proximity search, leaving only the table row.
		narrow, ok := New(domain.ProviderChase, 2)
		require.True(t, ok)
		data := narrow.Extract("CHASE\nNew Balance    1234.56\n")
		require.NotNil(t, data.TotalBalance)
		assert.InDelta(t, 1234.56, *data.TotalBalance, 0.001)
		assert.Equal(t, ConfidenceTable, data.Metadata.ConfidenceScores[FieldTotalBalance])
	})

	t.Run("absent", func(t *testing.T) {
		data := e.Extract("CHASE\nnothing useful here\n")
		assert.Nil(t, data.TotalBalance)
		assert.Equal(t, ConfidenceAbsent, data.Metadata.ConfidenceScores[FieldTotalBalance])
	})
}

func TestExtractField_AnchoredMatchSkipsLaterTiers(t *testing.T) {
	e, ok := New(domain.ProviderChase, 150)
	require.True(t, ok)

	var field FieldSpec
	for _, f := range e.fields {
		if f.Name == FieldTotalBalance {
			field = f
		}
	}
	require.NotEmpty(t, field.Name)

	text := "New Balance $500.00"
	r := &run{extractor: e, text: text, lower: strings.ToLower(text)}
	v, confidence := r.extractField(field)
	assert.Equal(t, "500.00", v)
	assert.Equal(t, ConfidenceRegex, confidence)
	// The pseudo-table is built lazily, so an untouched memo proves the
	// table tier never ran.
	assert.False(t, r.tableOnce)
	assert.Nil(t, r.table)
}

func TestExtract_MissingFieldsAreAbsentNotZero(t *testing.T) {
	e, ok := New(domain.ProviderCiti, 150)
	require.True(t, ok)

	data := e.Extract("CITIBANK\nNew Balance: $99.10\n")
	require.NotNil(t, data.TotalBalance)
	assert.Nil(t, data.MinPaymentDue)
	assert.Nil(t, data.StatementEndDate)
	assert.Nil(t, data.PaymentDueDate)
	assert.Nil(t, data.CardLast4)
}

func TestExtract_ValidationWarnings(t *testing.T) {
	text := `CHASE
Closing Date 02/11/2025
Payment Due Date: 01/15/2025
New Balance $100.00
Minimum Payment Due $250.00
`
	e, ok := New(domain.ProviderChase, 150)
	require.True(t, ok)

	data := e.Extract(text)
	require.NotNil(t, data.Metadata)
	assert.Len(t, data.Metadata.Warnings, 2)
}

func TestExtractTable(t *testing.T) {
	text := `Summary of Account
New Balance    $1,234.56
Payment Due Date    02/11/2025
New Balance    $9,999.99
minimum payment due    $35.00
Not A Table Line $1.00
`
	table := extractTable(text)
	// First occurrence wins and labels are title-cased.
	assert.Equal(t, "$1,234.56", table["New Balance"])
	assert.Equal(t, "02/11/2025", table["Payment Due Date"])
	assert.Equal(t, "$35.00", table["Minimum Payment Due"])
	assert.NotContains(t, table, "Not A Table Line")
}

func TestFindNearKeyword_Backward(t *testing.T) {
	e, ok := New(domain.ProviderChase, 150)
	require.True(t, ok)

	// Remittance slips print the value before its label.
	text := "$250.00 amount enclosed"
	r := &run{extractor: e, text: text, lower: strings.ToLower(text)}
	assert.Equal(t, "250.00", r.findNearKeyword("amount enclosed", amountPattern, true))
	assert.Equal(t, "", r.findNearKeyword("amount enclosed", amountPattern, false))
}

func TestFindNearKeyword_WindowBound(t *testing.T) {
	e, ok := New(domain.ProviderChase, 20)
	require.True(t, ok)

	// The amount sits past the 20-char window and the line is not a
	// two-space-separated table row, so nothing finds it.
	data := e.Extract("CHASE\nnew balance summary information continues 777.77\n")
	assert.Nil(t, data.TotalBalance)
}
