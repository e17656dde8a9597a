package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erp/cashbook/internal/domain/trade"
	"github.com/erp/cashbook/internal/infrastructure/config"
	"github.com/erp/cashbook/internal/infrastructure/persistence"
	"github.com/erp/cashbook/internal/infrastructure/persistence/models"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cli struct {
	s   *session
	out *bytes.Buffer
	err *bytes.Buffer
	db  *persistence.Database
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())

	cfg := &config.Config{}
	cfg.Ledger.Currency = "KES"

	c := &cli{out: new(bytes.Buffer), err: new(bytes.Buffer), db: db}
	c.s = &session{
		out:  c.out,
		errw: c.err,
		load: func() (*app, error) { return newApp(cfg, db, nil, nil, zap.NewNop()), nil },
	}
	t.Cleanup(c.s.Close)
	return c
}

func (c *cli) run(t *testing.T, name string, args ...string) subcommands.ExitStatus {
	t.Helper()
	c.out.Reset()
	c.err.Reset()
	for _, cmd := range commands(c.s) {
		if cmd.Name() != name {
			continue
		}
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		cmd.SetFlags(fs)
		require.NoError(t, fs.Parse(args))
		return cmd.Execute(context.Background(), fs)
	}
	t.Fatalf("unknown command %q", name)
	return subcommands.ExitUsageError
}

func TestInstitutionsCmd_NeedsNoDatabase(t *testing.T) {
	out := new(bytes.Buffer)
	s := &session{out: out, errw: new(bytes.Buffer), load: func() (*app, error) {
		t.Fatal("institutions must not open the database")
		return nil, nil
	}}
	cmd := &institutionsCmd{s: s}
	fs := flag.NewFlagSet("institutions", flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-type", "mobile_money", "-country", "uganda"}))

	status := cmd.Execute(context.Background(), fs)

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "mtn-momo")
	assert.NotContains(t, out.String(), "mpesa")
}

func TestInstitutionsCmd_UnknownType(t *testing.T) {
	c := newCLI(t)

	assert.Equal(t, subcommands.ExitUsageError, c.run(t, "institutions", "-type", "crypto"))
	assert.Contains(t, c.err.String(), "unknown institution type")
}

func TestAddAndBalance(t *testing.T) {
	c := newCLI(t)

	status := c.run(t, "add", "-type", "inflow", "-a", "Cash", "-amount", "2500", "-desc", "Till float")
	require.Equal(t, subcommands.ExitSuccess, status, c.err.String())
	assert.Contains(t, c.out.String(), "Recorded inflow")

	status = c.run(t, "add", "-type", "outflow", "-a", "Cash", "-amount", "400", "-desc", "Fuel")
	require.Equal(t, subcommands.ExitSuccess, status, c.err.String())

	require.Equal(t, subcommands.ExitSuccess, c.run(t, "balance"))
	assert.Contains(t, c.out.String(), "Cash")
	assert.Contains(t, c.out.String(), "TOTAL")

	require.Equal(t, subcommands.ExitSuccess, c.run(t, "balance", "-a", "Cash"))
	assert.True(t, strings.HasPrefix(c.out.String(), "Cash: "))
	assert.Contains(t, c.out.String(), "2,100")
}

func TestAddCmd_Errors(t *testing.T) {
	c := newCLI(t)

	assert.Equal(t, subcommands.ExitUsageError, c.run(t, "add", "-type", "inflow", "-a", "Cash", "-amount", "lots", "-desc", "x"))

	assert.Equal(t, subcommands.ExitFailure, c.run(t, "add", "-type", "inflow", "-a", "Cash", "-amount", "0", "-desc", "x"))
	assert.Contains(t, c.err.String(), "Amount must be positive")

	assert.Equal(t, subcommands.ExitFailure, c.run(t, "add", "-type", "inflow", "-a", "Cash", "-amount", "10", "-desc", "x", "-ref", "SALE-1"))
	assert.Contains(t, c.err.String(), "reserved")
}

func TestAlertsCmd(t *testing.T) {
	c := newCLI(t)

	require.Equal(t, subcommands.ExitSuccess, c.run(t, "alerts"))
	assert.Equal(t, "No alerts.\n", c.out.String())

	old := time.Now().AddDate(0, 0, -10).Format("2006-01-02")
	require.Equal(t, subcommands.ExitSuccess,
		c.run(t, "add", "-type", "outflow", "-a", "Bank", "-amount", "900", "-desc", "Supplier cheque",
			"-method", "cheque", "-cheque", "000123", "-d", old))

	// the cached snapshot is refreshed by the write
	assert.Equal(t, subcommands.ExitFailure, c.run(t, "alerts"))
	assert.Contains(t, c.out.String(), "[error]")
	assert.Contains(t, c.out.String(), "[info] 1 cheque(s) pending clearance")
}

func TestReconcileCmd(t *testing.T) {
	c := newCLI(t)
	date := time.Now()
	paid := func(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }
	require.NoError(t, c.db.DB.Create(models.SaleModelFromDomain(trade.Sale{
		ID: "S1", Customer: "Acme Ltd", Amount: paid(5000), Date: date, Status: trade.StatusPaid, Method: trade.PaymentMethodCash,
	})).Error)

	require.Equal(t, subcommands.ExitSuccess, c.run(t, "reconcile"), c.err.String())
	assert.Regexp(t, `Sales synced\s+1`, c.out.String())
	assert.Regexp(t, `Customers created\s+1`, c.out.String())

	require.Equal(t, subcommands.ExitSuccess, c.run(t, "reconcile"))
	assert.Regexp(t, `Sales synced\s+0`, c.out.String())
}

func TestExportCmd(t *testing.T) {
	c := newCLI(t)
	require.Equal(t, subcommands.ExitSuccess,
		c.run(t, "add", "-type", "inflow", "-a", "Cash", "-amount", "75", "-desc", `Sold "extra" stock`))

	require.Equal(t, subcommands.ExitSuccess, c.run(t, "export"))
	lines := strings.Split(strings.TrimSpace(c.out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Date,Type,Account,Description,Amount,Category,Reference,Institution", lines[0])
	assert.Contains(t, lines[1], `"Sold ""extra"" stock"`)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.Equal(t, subcommands.ExitSuccess, c.run(t, "export", "-o", path, "-type", "outflow"))
	assert.Equal(t, "Wrote 0 rows to "+path+"\n", c.out.String())
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(body), "\n"))

	assert.Equal(t, subcommands.ExitFailure, c.run(t, "export", "-archive"))
	assert.Contains(t, c.err.String(), "not configured")
}
