package market

import (
	"fmt"
	"strings"
)

// FormatReport renders a report as a markdown research summary suitable for
// the synthesis prompt and for display to the reviewer.
func FormatReport(r Report) string {
	var sb strings.Builder

	name := r.Company.Name
	if name == "" {
		name = r.Ticker
	}
	fmt.Fprintf(&sb, "## Research Summary for %s - %s\n\n", r.Ticker, name)

	if r.Company.Sector != "" || r.Company.Industry != "" || r.Company.Description != "" {
		sb.WriteString("### Company Overview\n")
		writeField(&sb, "Sector", r.Company.Sector)
		writeField(&sb, "Industry", r.Company.Industry)
		if r.Company.Description != "" {
			desc := r.Company.Description
			if len(desc) > 200 {
				desc = desc[:200] + "..."
			}
			fmt.Fprintf(&sb, "- Description: %s\n", desc)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("### Current Price Data\n")
	fmt.Fprintf(&sb, "- Current Price: $%.2f\n", r.Price.Current)
	fmt.Fprintf(&sb, "- Day Range: $%.2f - $%.2f\n", r.Price.DayLow, r.Price.DayHigh)
	fmt.Fprintf(&sb, "- 52-Week Range: $%.2f - $%.2f\n", r.Price.Week52Low, r.Price.Week52High)
	fmt.Fprintf(&sb, "- Volume: %d (Avg: %d)\n\n", r.Price.Volume, r.Price.AvgVolume)

	sb.WriteString("### Fundamental Metrics\n")
	fmt.Fprintf(&sb, "- Market Cap: $%.0f\n", r.Fundamentals.MarketCap)
	writeMetric(&sb, "P/E Ratio", r.Fundamentals.PERatio)
	fmt.Fprintf(&sb, "- Dividend Yield: %.2f%%\n", r.Fundamentals.DividendYield*100)
	writeMetric(&sb, "Beta", r.Fundamentals.Beta)
	fmt.Fprintf(&sb, "- Profit Margin: %.2f%%\n\n", r.Fundamentals.ProfitMargin*100)

	sb.WriteString("### Performance Trends\n")
	fmt.Fprintf(&sb, "- 90-Day Return: %.2f%%\n", r.Trend.Return90D)
	fmt.Fprintf(&sb, "- Volatility: %.2f%%\n\n", r.Trend.Volatility)

	sb.WriteString("### Recent News\n")
	if len(r.News) == 0 {
		sb.WriteString("No recent news available.\n")
	}
	for i, article := range r.News {
		fmt.Fprintf(&sb, "%d. %s", i+1, article.Title)
		if article.Publisher != "" {
			fmt.Fprintf(&sb, " (%s)", article.Publisher)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatComparison renders two reports side by side for comparative
// analysis, summaries first then a metric table.
func FormatComparison(a, b Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Comparison: %s vs %s\n\n", a.Ticker, b.Ticker)
	sb.WriteString(FormatReport(a))
	sb.WriteString("\n---\n\n")
	sb.WriteString(FormatReport(b))

	sb.WriteString("\n### Head to Head\n")
	fmt.Fprintf(&sb, "| Metric | %s | %s |\n", a.Ticker, b.Ticker)
	sb.WriteString("| --- | --- | --- |\n")
	fmt.Fprintf(&sb, "| Price | $%.2f | $%.2f |\n", a.Price.Current, b.Price.Current)
	fmt.Fprintf(&sb, "| Market Cap | $%.0f | $%.0f |\n", a.Fundamentals.MarketCap, b.Fundamentals.MarketCap)
	fmt.Fprintf(&sb, "| P/E | %s | %s |\n", metric(a.Fundamentals.PERatio), metric(b.Fundamentals.PERatio))
	fmt.Fprintf(&sb, "| 90-Day Return | %.2f%% | %.2f%% |\n", a.Trend.Return90D, b.Trend.Return90D)
	fmt.Fprintf(&sb, "| Volatility | %.2f%% | %.2f%% |\n", a.Trend.Volatility, b.Trend.Volatility)

	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(sb, "- %s: %s\n", label, value)
	}
}

func writeMetric(sb *strings.Builder, label string, value float64) {
	fmt.Fprintf(sb, "- %s: %s\n", label, metric(value))
}

func metric(value float64) string {
	if value == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", value)
}
