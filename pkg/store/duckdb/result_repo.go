package duckdb

import (
	"context"
	"fmt"

	"github.com/andeanstats/gdprev/pkg/eval"
	"github.com/andeanstats/gdprev/pkg/rationality"
)

// ResultRepo persists battery and evaluation output keyed by run ID, so
// repeated analysis runs write to disjoint keys.
type ResultRepo struct {
	client *Client
}

// NewResultRepo creates a new result repository
func NewResultRepo(client *Client) *ResultRepo {
	return &ResultRepo{client: client}
}

// InsertRationality stores the battery coefficient tables for one run
func (r *ResultRepo) InsertRationality(ctx context.Context, runID string, report rationality.Report) error {
	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO rationality_results
			(run_id, horizon, spec, regressor, coeff, se, tstat, pvalue, stars, nobs, joint_stat, joint_pvalue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, horizon, spec, regressor) DO UPDATE SET
			coeff = EXCLUDED.coeff,
			se = EXCLUDED.se,
			tstat = EXCLUDED.tstat,
			pvalue = EXCLUDED.pvalue,
			stars = EXCLUDED.stars,
			nobs = EXCLUDED.nobs,
			joint_stat = EXCLUDED.joint_stat,
			joint_pvalue = EXCLUDED.joint_pvalue
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, res := range report.Results {
		var jointStat, jointPVal interface{}
		if res.Joint != nil {
			jointStat = res.Joint.Stat
			jointPVal = res.Joint.PValue
		}
		for _, c := range res.Fit.Coeffs {
			_, err := stmt.Exec(runID, res.Horizon, res.Spec, c.Name,
				c.Value, c.SE, c.TStat, c.PValue, c.Stars, res.Fit.NObs, jointStat, jointPVal)
			if err != nil {
				return fmt.Errorf("failed to insert rationality result: %w", err)
			}
		}
	}

	return tx.Commit()
}

// InsertEvaluation stores the forecast-evaluation summary for one run
func (r *ResultRepo) InsertEvaluation(ctx context.Context, runID string, results []eval.Result) error {
	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO evaluation_results
			(run_id, horizon, relative_rmse, dm_stat, dm_pvalue,
			 encompassing_beta, encompassing_tstat, encompassing_pvalue, nobs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, horizon) DO UPDATE SET
			relative_rmse = EXCLUDED.relative_rmse,
			dm_stat = EXCLUDED.dm_stat,
			dm_pvalue = EXCLUDED.dm_pvalue,
			encompassing_beta = EXCLUDED.encompassing_beta,
			encompassing_tstat = EXCLUDED.encompassing_tstat,
			encompassing_pvalue = EXCLUDED.encompassing_pvalue,
			nobs = EXCLUDED.nobs
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, res := range results {
		_, err := stmt.Exec(runID, res.Horizon, res.RelativeRMSE, res.DMStat, res.DMPValue,
			res.EncBeta, res.EncTStat, res.EncPValue, res.NObs)
		if err != nil {
			return fmt.Errorf("failed to insert evaluation result: %w", err)
		}
	}

	return tx.Commit()
}
