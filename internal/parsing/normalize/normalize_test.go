package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardparse/internal/domain"
	"cardparse/internal/parsing/normalize"
)

func TestParseDate_Formats(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want domain.Date
	}{
		{"short_us", "12/31/25", domain.NewDate(2025, 12, 31)},
		{"long_us", "12/31/2025", domain.NewDate(2025, 12, 31)},
		{"month_name_short", "Dec 31 2025", domain.NewDate(2025, 12, 31)},
		{"month_name_long", "December 31 2025", domain.NewDate(2025, 12, 31)},
		{"month_name_comma", "Dec 31, 2025", domain.NewDate(2025, 12, 31)},
		{"iso", "2025-12-31", domain.NewDate(2025, 12, 31)},
		{"day_first_dash", "31-12-2025", domain.NewDate(2025, 12, 31)},
		{"whitespace", "  12/31/2025  ", domain.NewDate(2025, 12, 31)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := normalize.ParseDate(tc.in)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseDate_AmbiguousPrefersMonthFirst(t *testing.T) {
	got, ok := normalize.ParseDate("03/04/2024")
	require.True(t, ok)
	assert.Equal(t, domain.NewDate(2024, 3, 4), got)
}

func TestParseDate_DayFirstWhenMonthImpossible(t *testing.T) {
	// 31 cannot be a month, so the day-first layout applies.
	got, ok := normalize.ParseDate("31/12/2025")
	require.True(t, ok)
	assert.Equal(t, domain.NewDate(2025, 12, 31), got)
}

func TestParseDate_RoundTrip(t *testing.T) {
	// A day past 12 keeps the day-first layouts unambiguous.
	ref := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	want := domain.NewDate(2025, 12, 31)

	layouts := []string{
		"1/2/06", "1/2/2006", "2/1/06", "2/1/2006",
		"Jan 2 2006", "January 2 2006", "2006-1-2", "2-1-2006",
	}
	for _, layout := range layouts {
		got, ok := normalize.ParseDate(ref.Format(layout))
		require.True(t, ok, "layout %q", layout)
		assert.Equal(t, want, got, "layout %q", layout)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "not a date", "13/45/99", "soon"} {
		_, ok := normalize.ParseDate(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$1,234.56", 1234.56},
		{"1234.56", 1234.56},
		{" 1234.56 ", 1234.56},
		{"$ 19.00", 19.00},
		{"0.01", 0.01},
		{"2,500,000.00", 2500000.00},
	}
	for _, tc := range cases {
		got, ok := normalize.ParseAmount(tc.in)
		require.True(t, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "$", "12.3.4"} {
		_, ok := normalize.ParseAmount(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestCardDigits(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1001", "1001"},
		{"**** **** **** 9876", "9876"},
		{"xxxx-1234", "1234"},
		{"3750-123456-78900", "8900"},
	}
	for _, tc := range cases {
		got, ok := normalize.CardDigits(tc.in)
		require.True(t, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestCardDigits_TooFew(t *testing.T) {
	// Short captures pass through so validation can flag them.
	got, ok := normalize.CardDigits("12-3")
	require.True(t, ok)
	assert.Equal(t, "123", got)

	for _, in := range []string{"", "abc", "----"} {
		_, ok := normalize.CardDigits(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestValidate(t *testing.T) {
	end := domain.NewDate(2025, 1, 15)
	due := domain.NewDate(2025, 2, 11)
	balance := 1234.56
	minDue := 35.00

	t.Run("consistent_data_no_warnings", func(t *testing.T) {
		card := "1001"
		data := &domain.StatementData{
			StatementEndDate: &end,
			PaymentDueDate:   &due,
			TotalBalance:     &balance,
			MinPaymentDue:    &minDue,
			CardLast4:        &card,
		}
		assert.Empty(t, normalize.Validate(data))
	})

	t.Run("due_before_end", func(t *testing.T) {
		data := &domain.StatementData{
			StatementEndDate: &due,
			PaymentDueDate:   &end,
		}
		warnings := normalize.Validate(data)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "not after statement end date")
	})

	t.Run("due_equal_end", func(t *testing.T) {
		data := &domain.StatementData{
			StatementEndDate: &end,
			PaymentDueDate:   &end,
		}
		assert.Len(t, normalize.Validate(data), 1)
	})

	t.Run("min_exceeds_balance", func(t *testing.T) {
		data := &domain.StatementData{
			TotalBalance:  &minDue,
			MinPaymentDue: &balance,
		}
		warnings := normalize.Validate(data)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "exceeds total balance")
	})

	t.Run("bad_card_digits", func(t *testing.T) {
		card := "123"
		data := &domain.StatementData{CardLast4: &card}
		assert.Len(t, normalize.Validate(data), 1)
	})

	t.Run("missing_fields_skip_checks", func(t *testing.T) {
		assert.Empty(t, normalize.Validate(&domain.StatementData{}))
		assert.Empty(t, normalize.Validate(nil))
	})
}
