package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
)

// columnProfile summarizes one dataset column for the EDA report.
type columnProfile struct {
	Name     string
	NonEmpty int
	Missing  int
	Distinct int
	Numeric  bool
	Min      float64
	Max      float64
	Mean     float64
}

// buildEDAReport renders per-column summary statistics for a CSV dataset as
// a standalone HTML document. The whole file is profiled, not just the
// preview rows.
func buildEDAReport(data []byte) (string, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	header, err := cr.Read()
	if err != nil {
		return "", fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	profiles := make([]columnProfile, len(header))
	distinct := make([]map[string]struct{}, len(header))
	sums := make([]float64, len(header))
	numericCounts := make([]int, len(header))
	for i, name := range header {
		profiles[i] = columnProfile{Name: name, Numeric: true}
		distinct[i] = map[string]struct{}{}
	}

	rowCount := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read csv row: %w", err)
		}
		rowCount++
		for i := range header {
			var v string
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			p := &profiles[i]
			if v == "" {
				p.Missing++
				continue
			}
			p.NonEmpty++
			distinct[i][v] = struct{}{}
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				p.Numeric = false
				continue
			}
			if numericCounts[i] == 0 || n < p.Min {
				p.Min = n
			}
			if numericCounts[i] == 0 || n > p.Max {
				p.Max = n
			}
			sums[i] += n
			numericCounts[i]++
		}
	}

	for i := range profiles {
		p := &profiles[i]
		p.Distinct = len(distinct[i])
		p.Numeric = p.Numeric && numericCounts[i] > 0
		if p.Numeric {
			p.Mean = sums[i] / float64(numericCounts[i])
		}
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString("<title>EDA Report</title>\n")
	sb.WriteString("<style>body{font-family:sans-serif;margin:2em}table{border-collapse:collapse}th,td{border:1px solid #ccc;padding:4px 10px;text-align:left}</style>\n")
	sb.WriteString("</head>\n<body>\n<h1>Dataset Summary</h1>\n")
	fmt.Fprintf(&sb, "<p>%d rows, %d columns</p>\n", rowCount, len(header))
	sb.WriteString("<table>\n<tr><th>Column</th><th>Non-empty</th><th>Missing</th><th>Distinct</th><th>Min</th><th>Max</th><th>Mean</th></tr>\n")
	for _, p := range profiles {
		min, max, mean := "-", "-", "-"
		if p.Numeric {
			min = strconv.FormatFloat(p.Min, 'g', -1, 64)
			max = strconv.FormatFloat(p.Max, 'g', -1, 64)
			mean = strconv.FormatFloat(p.Mean, 'g', 6, 64)
		}
		fmt.Fprintf(&sb, "<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(p.Name), p.NonEmpty, p.Missing, p.Distinct, min, max, mean)
	}
	sb.WriteString("</table>\n</body>\n</html>\n")
	return sb.String(), nil
}
