package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iho/atmledger/internal/domain"
)

func setSmallDataSet(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "data_files")
	t.Setenv("SOURCE_KIND", "file")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("GEN_SOURCES", "2")
	t.Setenv("GEN_ACCOUNTS", "3")
	t.Setenv("GEN_TRANSACTIONS", "5")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestGenerateCmd(t *testing.T) {
	dir := setSmallDataSet(t)

	out, err := execute(t, "generate")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(out, "Generated 2 sources") {
		t.Fatalf("unexpected output: %q", out)
	}

	content, err := os.ReadFile(filepath.Join(dir, "atm-01.dat"))
	if err != nil {
		t.Fatalf("expected atm-01.dat: %v", err)
	}
	if !strings.HasPrefix(string(content), "# Atm transactions from machine 01\n") {
		t.Fatalf("unexpected file content: %q", content)
	}

	out, err = execute(t, "generate")
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Fatalf("expected existing directory to be kept, got %q", out)
	}

	out, err = execute(t, "generate", "--force")
	if err != nil {
		t.Fatalf("forced generate failed: %v", err)
	}
	if !strings.Contains(out, "Generated 2 sources (file)") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestGenerateCmdCustomDir(t *testing.T) {
	setSmallDataSet(t)
	dir := filepath.Join(t.TempDir(), "custom")

	if _, err := execute(t, "generate", "--dir", dir); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "atm-02.dat")); err != nil {
		t.Fatalf("expected atm-02.dat in custom dir: %v", err)
	}
}

func TestRunCmd(t *testing.T) {
	setSmallDataSet(t)

	// The data directory is generated on first run.
	out, err := execute(t, "run")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, want := range []string{
		"01: balance = -240.65 (-$240.65)",
		"03: balance = -244.73 (-$244.73)",
		"Sources processed    = 2",
		"Transactions applied = 10",
		"Lines skipped        = 4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRunCmdVerifyFailsOnDifferentDataSet(t *testing.T) {
	setSmallDataSet(t)

	out, err := execute(t, "run", "--verify")
	if err == nil {
		t.Fatalf("expected verification to fail for a non-default data set")
	}
	if !strings.Contains(out, "of 20 balances wrong") {
		t.Fatalf("expected reconciliation summary, got:\n%s", out)
	}
}

func TestRunCmdCancelledPrintsNoBalances(t *testing.T) {
	setSmallDataSet(t)
	if _, err := execute(t, "generate"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := executeContext(t, ctx, "run")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if strings.Contains(out, "balance =") {
		t.Fatalf("expected no balances for a cancelled run, got:\n%s", out)
	}
}

func TestRunCmdUnknownSourceKind(t *testing.T) {
	setSmallDataSet(t)
	t.Setenv("SOURCE_KIND", "ftp")

	if _, err := execute(t, "run"); err == nil {
		t.Fatalf("expected configuration error")
	}
}

func TestMigrateCmdHasSubcommands(t *testing.T) {
	cmd := migrateCmd()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	if !names["up"] || !names["down"] {
		t.Fatalf("expected up and down subcommands, got %v", names)
	}
}

func TestPrintBalances(t *testing.T) {
	var buf bytes.Buffer

	printBalances(&buf, []domain.AccountBalance{
		{AccountID: 1, Balance: domain.MustParseMoney("59362.93")},
		{AccountID: 12, Balance: domain.MustParseMoney("-37512.97")},
	})

	expected := "01: balance = 59362.93 ($59,362.93)\n12: balance = -37512.97 (-$37,512.97)\n"
	if buf.String() != expected {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}
