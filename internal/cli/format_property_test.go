package cli

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrencyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("always contains a dollar sign and two decimals", prop.ForAll(
		func(amount float64) bool {
			s := FormatCurrency(amount)
			if !strings.Contains(s, "$") {
				return false
			}
			dot := strings.LastIndex(s, ".")
			return dot >= 0 && len(s)-dot-1 == 2
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("negative amounts carry a leading minus", prop.ForAll(
		func(amount float64) bool {
			return strings.HasPrefix(FormatCurrency(-amount), "-$")
		},
		gen.Float64Range(1, 1e9),
	))

	properties.Property("comma groups are exactly three digits", prop.ForAll(
		func(amount float64) bool {
			s := FormatCurrency(amount)
			intPart := strings.TrimPrefix(s[:strings.LastIndex(s, ".")], "$")
			groups := strings.Split(intPart, ",")
			for i, g := range groups {
				if i == 0 {
					if len(g) < 1 || len(g) > 3 {
						return false
					}
					continue
				}
				if len(g) != 3 {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 1e12),
	))

	properties.TestingRun(t)
}

func TestProgressBarProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("bar width is constant regardless of percentage", prop.ForAll(
		func(pct float64) bool {
			return len(ProgressBar(pct, 20)) == 22
		},
		gen.Float64Range(-50, 150),
	))

	properties.TestingRun(t)
}

func TestFormatCurrencyExamples(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "$999.99", FormatCurrency(999.99))
	assert.Equal(t, "$1,000.00", FormatCurrency(1000))
	assert.Equal(t, "$100,000.00", FormatCurrency(100000))
	assert.Equal(t, "$1,234,567.89", FormatCurrency(1234567.89))
	assert.Equal(t, "-$2,500.50", FormatCurrency(-2500.50))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 10))
	assert.Equal(t, "hel...", TruncateString("hello world", 6))
	assert.Equal(t, "he", TruncateString("hello", 2))
}

func TestProgressBarFill(t *testing.T) {
	assert.Equal(t, "[....................]", ProgressBar(0, 20))
	assert.Equal(t, "[##########..........]", ProgressBar(50, 20))
	assert.Equal(t, "[####################]", ProgressBar(100, 20))
	assert.Equal(t, "[####################]", ProgressBar(140, 20))
}
