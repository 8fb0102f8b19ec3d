package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/razalrahmanp/palaka-sub014/jobs"
)

// CreateIntegrityCommand creates the integrity command.
func CreateIntegrityCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "integrity",
		Short: "scan the general ledger for broken invariants",
		Long:  `Check posted entries balance, ledger rows exist and balance, and cached balances match a replay. Exits non-zero on findings.`,
		Args:  cobra.NoArgs,
		RunE:  runIntegrity,
	}
	return c
}

func runIntegrity(cmd *cobra.Command, _ []string) (err error) {
	e, err := openEnv(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, e.Close()) }()

	report, err := jobs.CheckGLIntegrity(cmd.Context(), jobs.NewPGIntegritySource(e.pool), time.Now().UTC())
	printFindings(cmd.OutOrStdout(), report)
	return multierr.Append(err, report.Err())
}

func printFindings(w io.Writer, report jobs.IntegrityReport) {
	if len(report.Findings) == 0 {
		fmt.Fprintln(w, "ledger OK")
		return
	}
	for _, f := range report.Findings {
		fmt.Fprintln(w, f.Error())
	}
	fmt.Fprintf(w, "%d finding(s)\n", len(report.Findings))
}
