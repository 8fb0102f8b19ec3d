package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
)

type seedAccount struct {
	code    string
	name    string
	kind    accounts.AccountType
	subtype string
}

// defaultChart is the starter chart for a single furniture showroom.
var defaultChart = []seedAccount{
	{"1010", "Cash in Hand", accounts.AccountTypeAsset, accounts.SubtypeCash},
	{"1020", "Bank Current Account", accounts.AccountTypeAsset, accounts.SubtypeBank},
	{"1030", "UPI Collections", accounts.AccountTypeAsset, accounts.SubtypeUPI},
	{"1200", "Accounts Receivable", accounts.AccountTypeAsset, "RECEIVABLE"},
	{"1300", "Furniture Inventory", accounts.AccountTypeAsset, "INVENTORY"},
	{"1500", "Showroom Fixtures", accounts.AccountTypeAsset, "FIXED_ASSET"},
	{"2100", "Accounts Payable", accounts.AccountTypeLiability, "PAYABLE"},
	{"2200", "GST Payable", accounts.AccountTypeLiability, "TAX"},
	{"2300", "Customer Advances", accounts.AccountTypeLiability, ""},
	{"3100", "Owner's Capital", accounts.AccountTypeEquity, ""},
	{"3200", "Retained Earnings", accounts.AccountTypeEquity, ""},
	{"4100", "Furniture Sales", accounts.AccountTypeRevenue, ""},
	{"4200", "Delivery Charges Collected", accounts.AccountTypeRevenue, ""},
	{"4900", "Other Income", accounts.AccountTypeRevenue, ""},
	{"5100", "Cost of Goods Sold", accounts.AccountTypeExpense, ""},
	{"6100", "Showroom Rent", accounts.AccountTypeExpense, ""},
	{"6200", "Salaries and Wages", accounts.AccountTypeExpense, ""},
	{"6300", "Delivery and Freight", accounts.AccountTypeExpense, ""},
	{"6400", "Utilities", accounts.AccountTypeExpense, ""},
}

type accountCreator interface {
	Create(ctx context.Context, in accounts.CreateInput) (accounts.Account, error)
}

// CreateSeedCommand creates the seed command.
func CreateSeedCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "seed",
		Short: "create the default chart of accounts",
		Long:  `Insert the starter furniture-retail chart of accounts. Codes that already exist are left alone, so the command can be rerun.`,
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
	return c
}

func runSeed(cmd *cobra.Command, _ []string) (err error) {
	e, err := openEnv(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, e.Close()) }()

	service := accounts.NewService(accounts.NewRepository(e.pool))
	return seedChart(cmd.Context(), cmd.OutOrStdout(), service, defaultChart)
}

func seedChart(ctx context.Context, w io.Writer, creator accountCreator, chart []seedAccount) error {
	var created, skipped int
	for _, a := range chart {
		_, err := creator.Create(ctx, accounts.CreateInput{
			Code:    a.code,
			Name:    a.name,
			Type:    a.kind,
			Subtype: a.subtype,
		})
		switch {
		case errors.Is(err, shared.ErrConflict):
			skipped++
		case err != nil:
			return fmt.Errorf("seed account %s: %w", a.code, err)
		default:
			created++
		}
	}
	fmt.Fprintf(w, "%d account(s) created, %d already present\n", created, skipped)
	return nil
}
