package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	appledger "github.com/erp/cashbook/internal/application/ledger"
	"github.com/erp/cashbook/internal/domain/institution"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

func commands(s *session) []subcommands.Command {
	return []subcommands.Command{
		&reconcileCmd{s: s},
		&balanceCmd{s: s},
		&alertsCmd{s: s},
		&addCmd{s: s},
		&exportCmd{s: s},
		&institutionsCmd{s: s},
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// reconcileCmd runs one reconciliation pass in the foreground
type reconcileCmd struct {
	s *session
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "sync paid sales and purchases into the ledger" }
func (*reconcileCmd) Usage() string {
	return `cashbook reconcile

  Runs one reconciliation pass and prints what it created. The pass is refused
  while another one holds the reconciliation lock.
`
}
func (*reconcileCmd) SetFlags(*flag.FlagSet) {}

func (c *reconcileCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	a, err := c.s.App()
	if err != nil {
		c.s.fail("Error: %v", err)
		return subcommands.ExitFailure
	}

	summary, err := a.reconciler.Reconcile(ctx, ledger.RunTriggerManual)
	if errors.Is(err, appledger.ErrReconciliationInProgress) {
		c.s.fail("A reconciliation is already in progress.")
		return subcommands.ExitFailure
	}
	if err != nil {
		c.s.fail("Reconciliation failed: %v", err)
		return subcommands.ExitFailure
	}

	tw := newTable(c.s.out)
	fmt.Fprintf(tw, "Customers created\t%d\n", summary.CustomersCreated)
	fmt.Fprintf(tw, "Suppliers created\t%d\n", summary.SuppliersCreated)
	fmt.Fprintf(tw, "Sales synced\t%d\n", summary.SalesSynced)
	fmt.Fprintf(tw, "Purchases synced\t%d\n", summary.PurchasesSynced)
	fmt.Fprintf(tw, "Expenses synced\t%d\n", summary.ExpensesSynced)
	if len(summary.Failed) > 0 {
		fmt.Fprintf(tw, "Failed\t%s\n", strings.Join(summary.Failed, ", "))
	}
	_ = tw.Flush()
	return subcommands.ExitSuccess
}

// balanceCmd prints account balances
type balanceCmd struct {
	s       *session
	account string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show account balances" }
func (*balanceCmd) Usage() string {
	return `cashbook balance [-a <account>]

  Prints the balance of every account, or of a single account with -a.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Only show this account.")
}

func (c *balanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	a, err := c.s.App()
	if err != nil {
		c.s.fail("Error: %v", err)
		return subcommands.ExitFailure
	}

	if c.account != "" {
		b, err := a.transactions.AccountBalance(ctx, c.account)
		if err != nil {
			c.s.fail("Error: %v", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(c.s.out, "%s: %s\n", b.Account, appledger.FormatAmount(b.Balance, a.currency))
		return subcommands.ExitSuccess
	}

	accounts, err := a.transactions.Accounts(ctx)
	if err != nil {
		c.s.fail("Error: %v", err)
		return subcommands.ExitFailure
	}

	tw := newTable(c.s.out)
	fmt.Fprintln(tw, "ACCOUNT\tTYPE\tENTRIES\tBALANCE")
	for _, b := range accounts.Accounts {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", b.Account, b.AccountType, b.Transactions, appledger.FormatAmount(b.Balance, accounts.Currency))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\n", appledger.FormatAmount(accounts.Total, accounts.Currency))
	_ = tw.Flush()
	return subcommands.ExitSuccess
}

// alertsCmd prints the current dashboard alerts
type alertsCmd struct {
	s *session
}

func (*alertsCmd) Name() string     { return "alerts" }
func (*alertsCmd) Synopsis() string { return "show ledger alerts" }
func (*alertsCmd) Usage() string {
	return `cashbook alerts

  Evaluates the alert rules over the ledger. Exits with status 1 when an
  error-severity alert is active.
`
}
func (*alertsCmd) SetFlags(*flag.FlagSet) {}

func (c *alertsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	a, err := c.s.App()
	if err != nil {
		c.s.fail("Error: %v", err)
		return subcommands.ExitFailure
	}

	alerts, err := a.transactions.Alerts(ctx)
	if err != nil {
		c.s.fail("Error: %v", err)
		return subcommands.ExitFailure
	}
	if len(alerts) == 0 {
		fmt.Fprintln(c.s.out, "No alerts.")
		return subcommands.ExitSuccess
	}

	status := subcommands.ExitSuccess
	for _, alert := range alerts {
		fmt.Fprintf(c.s.out, "[%s] %s\n", alert.Severity, alert.Message)
		if alert.Severity == appledger.SeverityError {
			status = subcommands.ExitFailure
		}
	}
	return status
}

// addCmd records a manual entry
type addCmd struct {
	s   *session
	req appledger.TransactionRequest

	amount string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a manual ledger entry" }
func (*addCmd) Usage() string {
	return `cashbook add -type <inflow|outflow> -a <account> -amount <amount> -desc <text> [options]

  Records a manual entry. The date defaults to today. Cheque payments start
  as pending.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.req.Type, "type", "", "Entry type: inflow or outflow.")
	f.StringVar(&c.req.Account, "a", "", "Account name.")
	f.StringVar(&c.req.AccountType, "account-type", "", "Account type: cash, bank, mobile or digital.")
	f.StringVar(&c.req.InstitutionID, "institution", "", "Institution id, see 'cashbook institutions'.")
	f.StringVar(&c.amount, "amount", "", "Amount, a positive decimal.")
	f.StringVar(&c.req.Description, "desc", "", "Description.")
	f.StringVar(&c.req.Date, "d", "", "Date as YYYY-MM-DD. Defaults to today.")
	f.StringVar(&c.req.Reference, "ref", "", "Reference, unique across the ledger.")
	f.StringVar(&c.req.Category, "category", "", "Category.")
	f.StringVar(&c.req.PaymentMethod, "method", "", "Payment method: cash, mpesa, bank or cheque.")
	f.StringVar(&c.req.ChequeNumber, "cheque", "", "Cheque number.")
	f.StringVar(&c.req.Payee, "payee", "", "Cheque payee.")
	f.StringVar(&c.req.Bank, "bank", "", "Drawee bank.")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		c.s.fail("Error: -amount must be a decimal number")
		f.Usage()
		return subcommands.ExitUsageError
	}
	c.req.Amount = amount
	if c.req.Date == "" {
		c.req.Date = ledger.CalendarDate(time.Now()).Format(ledger.DateLayout)
	}

	a, err := c.s.App()
	if err != nil {
		c.s.fail("Error: %v", err)
		return subcommands.ExitFailure
	}

	txn, err := a.transactions.Create(ctx, c.req)
	if err != nil {
		c.s.fail("Error: %v", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(c.s.out, "Recorded %s %s %s on %s (%s)\n",
		txn.Type, appledger.FormatAmount(txn.Amount, a.currency), txn.Account, txn.Date, txn.ID)
	return subcommands.ExitSuccess
}

// exportCmd writes the ledger as CSV
type exportCmd struct {
	s       *session
	filter  appledger.TransactionListFilter
	output  string
	archive bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export transactions as CSV" }
func (*exportCmd) Usage() string {
	return `cashbook export [-o <file>] [-a <account>] [-type <type>] [-from <date>] [-to <date>] [-archive]

  Writes the matching transactions as CSV to stdout or a file. With -archive
  the export is uploaded to the configured bucket and a download link is printed.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file. Defaults to stdout.")
	f.StringVar(&c.filter.Account, "a", "", "Only this account.")
	f.StringVar(&c.filter.Type, "type", "", "Only inflow or outflow entries.")
	f.StringVar(&c.filter.Category, "category", "", "Only this category.")
	f.StringVar(&c.filter.FromDate, "from", "", "First date, YYYY-MM-DD.")
	f.StringVar(&c.filter.ToDate, "to", "", "Last date, YYYY-MM-DD.")
	f.BoolVar(&c.archive, "archive", false, "Upload to the export archive instead of writing locally.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	a, err := c.s.App()
	if err != nil {
		c.s.fail("Error: %v", err)
		return subcommands.ExitFailure
	}

	if c.archive {
		archived, err := a.exporter.Archive(ctx, c.filter)
		if err != nil {
			c.s.fail("Error: %v", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(c.s.out, "Archived %d rows to %s\n%s\n", archived.Rows, archived.Key, archived.URL)
		return subcommands.ExitSuccess
	}

	w := c.s.out
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			c.s.fail("Error: %v", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}

	rows, err := a.exporter.Export(ctx, c.filter, w)
	if err != nil {
		c.s.fail("Error: %v", err)
		return subcommands.ExitFailure
	}
	if c.output != "" {
		fmt.Fprintf(c.s.out, "Wrote %d rows to %s\n", rows, c.output)
	}
	return subcommands.ExitSuccess
}

// institutionsCmd lists the institution directory. It needs no database.
type institutionsCmd struct {
	s       *session
	typ     string
	country string
}

func (*institutionsCmd) Name() string     { return "institutions" }
func (*institutionsCmd) Synopsis() string { return "list known banks and wallets" }
func (*institutionsCmd) Usage() string {
	return `cashbook institutions [-type <bank|mobile_money|digital_wallet>] [-country <name>]

  Lists the institution directory.
`
}

func (c *institutionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "Only this institution type.")
	f.StringVar(&c.country, "country", "", "Only institutions operating in this country.")
}

func (c *institutionsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	items := institution.ListAll()
	if c.typ != "" {
		t := institution.Type(c.typ)
		if !t.IsValid() {
			c.s.fail("Error: unknown institution type %q", c.typ)
			return subcommands.ExitUsageError
		}
		items = institution.ListByType(t)
	}

	tw := newTable(c.s.out)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tCOUNTRY")
	for _, inst := range items {
		if c.country != "" && !inst.InCountry(c.country) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", inst.ID, inst.Name, inst.Type.DisplayName(), inst.Country)
	}
	_ = tw.Flush()
	return subcommands.ExitSuccess
}
