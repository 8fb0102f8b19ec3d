package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/balances"
)

// CreateRecalcCommand creates the recalc command.
func CreateRecalcCommand() *cobra.Command {
	var r recalcRunner
	c := &cobra.Command{
		Use:   "recalc",
		Short: "replay ledger rows into account balances",
		Long: `Recalculate current balances from opening balance plus posted ledger deltas.
Without flags every account is recalculated.`,
		Args: cobra.NoArgs,
		RunE: r.run,
	}
	r.setupFlags(c)
	return c
}

type recalcRunner struct {
	accounts  []int64
	subtypes  []string
	onlyDrift bool
}

func (r *recalcRunner) setupFlags(c *cobra.Command) {
	c.Flags().Int64SliceVarP(&r.accounts, "account", "a", nil, "account ids to recalculate")
	c.Flags().StringSliceVarP(&r.subtypes, "subtype", "s", nil, "account subtypes to recalculate, e.g. BANK,UPI,CASH")
	c.Flags().BoolVar(&r.onlyDrift, "drift-only", false, "print only accounts whose balance changed")
}

func (r *recalcRunner) scope() balances.Scope {
	return balances.Scope{AccountIDs: r.accounts, Subtypes: r.subtypes}
}

func (r *recalcRunner) run(cmd *cobra.Command, _ []string) (err error) {
	e, err := openEnv(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, e.Close()) }()

	module := accounting.NewModule(accounting.Deps{
		Pool:             e.pool,
		Redis:            e.redis,
		Logger:           e.logger,
		FiscalStartMonth: e.cfg.FiscalStartMonth,
		ReportCacheTTL:   e.cfg.ReportCacheTTL,
		RecalcLockTTL:    e.cfg.RecalcLockTTL,
	})
	results, err := module.Balances.Recalculate(cmd.Context(), r.scope())
	if err != nil {
		return err
	}
	if r.onlyDrift {
		results = balances.Drifted(results)
	}
	return printResults(cmd.OutOrStdout(), results)
}

func printResults(w io.Writer, results []balances.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ACCOUNT\tCODE\tPREVIOUS\tRECALCULATED\tDRIFT\tROWS\tREWRITTEN\t")
	for _, res := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t\n",
			res.AccountID, res.Code,
			res.Previous.StringFixed(2), res.Recalculated.StringFixed(2), res.Drift.StringFixed(2),
			res.Rows, res.RowsRewritten)
	}
	return tw.Flush()
}
