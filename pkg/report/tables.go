// Package report renders regression and evaluation results as aligned
// text tables and CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andeanstats/gdprev/pkg/eval"
	"github.com/andeanstats/gdprev/pkg/rationality"
)

// RenderRationality formats the battery report as an aligned text table,
// one block per horizon, one row per coefficient, with significance stars
// at the 10/5/1 percent levels.
func RenderRationality(r rationality.Report) string {
	var b strings.Builder

	lastHorizon := -1
	for _, res := range r.Results {
		if res.Horizon != lastHorizon {
			if lastHorizon != -1 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Horizon %d\n", res.Horizon)
			lastHorizon = res.Horizon
		}

		fmt.Fprintf(&b, "  %-18s n=%d", res.Spec, res.Fit.NObs)
		if res.Joint != nil {
			fmt.Fprintf(&b, "  joint chi2(%d)=%.3f p=%.3f", res.Joint.DF, res.Joint.Stat, res.Joint.PValue)
		}
		b.WriteString("\n")

		for _, c := range res.Fit.Coeffs {
			fmt.Fprintf(&b, "    %-10s %10.4f (%.4f)%s\n", c.Name, c.Value, c.SE, c.Stars)
		}
	}

	if len(r.Skips) > 0 {
		b.WriteString("\nSkipped:\n")
		for _, s := range r.Skips {
			fmt.Fprintf(&b, "  h=%d %s: %s\n", s.Horizon, s.Spec, s.Reason)
		}
	}

	return b.String()
}

// WriteRationalityCSV writes the battery coefficient tables in long
// format: one row per (horizon, spec, coefficient).
func WriteRationalityCSV(w io.Writer, r rationality.Report) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"horizon", "spec", "regressor", "coeff", "se", "tstat", "pvalue", "stars",
		"nobs", "joint_stat", "joint_pvalue"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, res := range r.Results {
		jointStat, jointPVal := "", ""
		if res.Joint != nil {
			jointStat = formatFloat(res.Joint.Stat)
			jointPVal = formatFloat(res.Joint.PValue)
		}
		for _, c := range res.Fit.Coeffs {
			record := []string{
				strconv.Itoa(res.Horizon),
				res.Spec,
				c.Name,
				formatFloat(c.Value),
				formatFloat(c.SE),
				formatFloat(c.TStat),
				formatFloat(c.PValue),
				c.Stars,
				strconv.Itoa(res.Fit.NObs),
				jointStat,
				jointPVal,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	return cw.Error()
}

// RenderEvaluation formats the forecast-evaluation results as an aligned
// text table.
func RenderEvaluation(results []eval.Result) string {
	var b strings.Builder
	b.WriteString("horizon  rel_rmse    dm_stat   enc_beta   enc_tstat  nobs\n")
	for _, r := range results {
		fmt.Fprintf(&b, "%7d  %8.2f  %9.3f  %9.4f  %10.3f  %4d\n",
			r.Horizon, r.RelativeRMSE, r.DMStat, r.EncBeta, r.EncTStat, r.NObs)
	}
	return b.String()
}

// WriteEvaluationCSV writes one row per horizon of evaluation statistics.
func WriteEvaluationCSV(w io.Writer, results []eval.Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"horizon", "relative_rmse", "dm_stat", "dm_pvalue",
		"encompassing_beta", "encompassing_tstat", "encompassing_pvalue", "nobs"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		record := []string{
			strconv.Itoa(r.Horizon),
			formatFloat(r.RelativeRMSE),
			formatFloat(r.DMStat),
			formatFloat(r.DMPValue),
			formatFloat(r.EncBeta),
			formatFloat(r.EncTStat),
			formatFloat(r.EncPValue),
			strconv.Itoa(r.NObs),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}
