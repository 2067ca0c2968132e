package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleFile = "$$HDRTFUK  0023602   20250827181254\n" +
	"H17000799572     20250827\n" +
	"H27000799572     ST0071007686\n" +
	"D1100 9780306406157 00001\n" +
	"D1100 9780306406164 00002\n" +
	"D120 0306406152 00001\n" +
	"D13 9791234567896 00001\n" +
	"$$EOFTFUK  0023602   20250827181254" + "0000006\n"

// execute runs the CLI with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// workspace writes a config and an input file, returning the config path and
// the input path.
func workspace(t *testing.T, extraConfig string) (string, string) {
	t.Helper()
	root := t.TempDir()

	cfgPath := filepath.Join(root, "config.yaml")
	cfg := "input_dir: " + filepath.Join(root, "input") + "\n" +
		"output_dir: " + filepath.Join(root, "output") + "\n" +
		"input_archive_dir: " + filepath.Join(root, "input_archive") + "\n" +
		"output_archive_dir: " + filepath.Join(root, "output_archive") + "\n" +
		"log_level: error\n" + extraConfig
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "input"), 0755))
	input := filepath.Join(root, "input", "orders.txt")
	require.NoError(t, os.WriteFile(input, []byte(sampleFile), 0644))

	return cfgPath, input
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "EDI Splitter")
	assert.Contains(t, out, "Version:    "+Version)
}

func TestSplitCommand(t *testing.T) {
	cfgPath, input := workspace(t, "")

	out, err := execute(t, "--config", cfgPath, "split", input)
	require.NoError(t, err)
	assert.Contains(t, out, "orders.txt -> orders_p1.txt (4 records)")

	part2, err := os.ReadFile(filepath.Join(filepath.Dir(input), "orders_p2.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(part2), "D13 9791234567896 00001\n")
}

func TestSplitCommand_OutDirAndFailure(t *testing.T) {
	cfgPath, input := workspace(t, "")
	outDir := t.TempDir()

	_, err := execute(t, "--config", cfgPath, "split", input, "--out", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "orders_p1.txt"))

	broken := filepath.Join(t.TempDir(), "broken.txt")
	require.NoError(t, os.WriteFile(broken, []byte("$$HDR\nH2\nD1A X 1\n$$EOF0000001\n"), 0644))

	out, err := execute(t, "--config", cfgPath, "split", broken)
	require.Error(t, err)
	assert.Contains(t, out, "H1 line not found in file")
}

func TestRemoveCommand(t *testing.T) {
	cfgPath, input := workspace(t, "rejection_format: csv\n")
	outDir := t.TempDir()

	out, err := execute(t, "--config", cfgPath, "remove", input, "--orders", " 20 ,3,20", "--status", "os", "--reject", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 record(s) from orders.txt")

	cleaned, err := os.ReadFile(filepath.Join(outDir, "orders_cleaned.txt"))
	require.NoError(t, err)
	assert.NotContains(t, string(cleaned), "D120 ")
	assert.True(t, strings.HasSuffix(string(cleaned), "0000004\n"))

	matches, err := filepath.Glob(filepath.Join(outDir, "PPO.M*.PPR"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	report, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t,
		"20,00001,0306406152,OS,Out of Stock\n"+
			"3,00001,9791234567896,OS,Out of Stock\n",
		string(report))
}

func TestRemoveCommand_RequiresOrders(t *testing.T) {
	cfgPath, input := workspace(t, "")

	_, err := execute(t, "--config", cfgPath, "remove", input, "--orders", " , ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no orders selected")
}

func TestOrdersCommand(t *testing.T) {
	cfgPath, input := workspace(t, "")
	xlsxPath := filepath.Join(t.TempDir(), "orders.xlsx")

	out, err := execute(t, "--config", cfgPath, "orders", input, "--search", "0", "--xlsx", xlsxPath)
	require.NoError(t, err)

	assert.Contains(t, out, "2 order(s)")
	assert.Less(t, strings.Index(out, "100 "), strings.Index(out, "20 "), "ids sort as strings")
	assert.NotContains(t, out, "\n3 ")

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestProcessCommand(t *testing.T) {
	cfgPath, input := workspace(t, "archive_on_success: true\nmax_concurrency: 2\n")
	root := filepath.Dir(cfgPath)
	require.NoError(t, os.WriteFile(filepath.Join(root, "input", "empty.txt"), []byte("$$HDR\nH1\nH2\n$$EOF0000000\n"), 0644))

	out, err := execute(t, "--config", cfgPath, "process")
	require.NoError(t, err)

	assert.Contains(t, out, "Found 2 file(s) to process")
	assert.Contains(t, out, "orders.txt -> orders_p1.txt, orders_p2.txt")
	assert.Contains(t, out, "Errors:          1")
	assert.NoFileExists(t, input)
	assert.FileExists(t, filepath.Join(root, "input_archive", "orders.txt"))

	summaries, err := filepath.Glob(filepath.Join(root, "output", "processing_summary_*.txt"))
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestProcessCommand_DryRun(t *testing.T) {
	cfgPath, input := workspace(t, "")

	out, err := execute(t, "--config", cfgPath, "process", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "orders.txt: valid (4 records)")
	assert.FileExists(t, input)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(cfgPath), "output", "orders_p1.txt"))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edisplit.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "split_footer_policy: emitted")

	_, err = execute(t, "config", "init", path)
	assert.Error(t, err, "existing files are not overwritten")
}

func TestConfigShow(t *testing.T) {
	cfgPath, _ := workspace(t, "default_status_code: OS\n")

	out, err := execute(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "default_status_code: OS")
}

func TestInvalidConfig(t *testing.T) {
	cfgPath, input := workspace(t, "rejection_format: pdf\n")

	_, err := execute(t, "--config", cfgPath, "split", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"os", "OS"},
		{" nf ", "NF"},
		{"Hold", "Hold"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeStatus(tt.raw), "input %q", tt.raw)
	}
}

func TestRemoveCommand_CustomStatusKeptVerbatim(t *testing.T) {
	cfgPath, input := workspace(t, "")
	outDir := t.TempDir()

	out, err := execute(t, "--config", cfgPath, "remove", input, "--orders", "3", "--status", "Hold", "--reject", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, `status code "Hold" is not a predefined code`)

	matches, err := filepath.Glob(filepath.Join(outDir, "PPO.M*.PPR"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	report, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "3,00001,9791234567896,Hold,Hold\n", string(report))
}
