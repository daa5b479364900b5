package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(run *domain.SimulationRun) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	JSONFormatter{},
}

// GetFormatterByName fetches a registered formatter, or nil.
func GetFormatterByName(name string) Formatter {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// WriteFormatted runs a formatter and writes its output to a timestamped file.
func WriteFormatted(f Formatter, run *domain.SimulationRun, ext string) (string, error) {
	data, err := f.Format(run)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("simulation_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// FormatCurrency renders a decimal as whole dollars with comma grouping.
func FormatCurrency(v decimal.Decimal) string {
	neg := v.IsNegative()
	s := v.Abs().Round(0).String()
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

// FormatPercent renders a ratio as a percentage with one decimal place.
func FormatPercent(v decimal.Decimal) string {
	return v.Mul(decimal.NewFromInt(100)).Round(1).String() + "%"
}
