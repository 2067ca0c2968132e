package processor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/edi-splitter/internal/config"
	"github.com/ginjaninja78/edi-splitter/internal/edi"
	"github.com/ginjaninja78/edi-splitter/internal/rejection"
	"github.com/ginjaninja78/edi-splitter/pkg/utils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	sampleFooterPrefix = "$$EOFTFUK  0023602   20250827181254"
	sample             = "$$HDRTFUK  0023602   20250827181254\n" +
		"H17000799572     20250827\n" +
		"H27000799572     ST0071007686\n" +
		"D1A 9780306406157 00001\n" +
		"D1A 9780306406164 00002\n" +
		"D1B 0306406152 00001\n" +
		"D1C 979000000000X 00001\n" +
		sampleFooterPrefix + "0000006\n"
)

var fixedClock = func() time.Time {
	return time.Date(2025, time.August, 27, 18, 12, 0, 0, time.UTC)
}

// testConfig returns a config rooted in a temp directory.
func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "output_archive")
	require.NoError(t, New(cfg, nil).EnsureDirectories())

	return cfg
}

func writeInput(t *testing.T, cfg *config.MainConfig, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.InputDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSplitFile(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "orders.txt", sample)

	result := New(cfg, zap.NewNop()).SplitFile(input)
	require.NoError(t, result.Error)
	require.True(t, result.Success)

	require.Equal(t, []string{
		filepath.Join(cfg.OutputDir, "orders_p1.txt"),
		filepath.Join(cfg.OutputDir, "orders_p2.txt"),
	}, result.OutputFiles)
	assert.Equal(t, 4, result.Stats.DetailCount)
	assert.Equal(t, 4, result.Stats.Part1Count)
	assert.Equal(t, 4, result.Stats.Part2Count)

	part1 := readFile(t, result.OutputFiles[0])
	assert.Contains(t, part1, "D1A 9780306406164 00002\n")
	assert.NotContains(t, part1, "D1B")
	assert.True(t, strings.HasSuffix(part1, sampleFooterPrefix+"0000004\n"))
}

func TestSplitFile_WithOutputDir(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "orders.txt", sample)
	out := filepath.Join(t.TempDir(), "elsewhere")

	p := New(cfg, nil, WithOutputDir(out))
	assert.Equal(t, out, p.OutputDir())

	result := p.SplitFile(input)
	require.True(t, result.Success)
	assert.FileExists(t, filepath.Join(out, "orders_p2.txt"))
}

func TestSplitFile_MissingSectionWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "broken.txt", strings.Replace(sample, "H27000799572     ST0071007686\n", "", 1))

	core, logs := observer.New(zap.InfoLevel)
	result := New(cfg, zap.New(core)).SplitFile(input)

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, edi.ErrMissingEnvelopeSection)
	assert.Empty(t, result.OutputFiles)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "broken_p1.txt"))

	entries := logs.FilterMessage("processing failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, input, entries[0].ContextMap()["file"])
	assert.NotEmpty(t, entries[0].ContextMap()["run_id"])
}

func TestSplitFile_MissingInput(t *testing.T) {
	cfg := testConfig(t)

	result := New(cfg, nil).SplitFile(filepath.Join(cfg.InputDir, "nope.txt"))
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, os.ErrNotExist)
}

func TestRemoveFromFile_WithRejectionCSV(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "orders.txt", sample)

	result := New(cfg, nil, WithClock(fixedClock)).RemoveFromFile(input, RemoveRequest{
		OrderIDs: []string{"B"},
		Reject:   true,
	})
	require.NoError(t, result.Error)
	require.True(t, result.Success)
	assert.Empty(t, result.Warnings)

	require.Equal(t, []string{
		filepath.Join(cfg.OutputDir, "orders_cleaned.txt"),
		filepath.Join(cfg.OutputDir, "PPO.M0827251812.PPR"),
	}, result.OutputFiles)
	assert.Equal(t, 1, result.Stats.RemovedCount)
	assert.Equal(t, 4, result.Stats.DetailCount)
	assert.Equal(t, 1, result.Stats.RejectionRows)

	cleaned := readFile(t, result.OutputFiles[0])
	assert.NotContains(t, cleaned, "D1B")
	assert.True(t, strings.HasSuffix(cleaned, sampleFooterPrefix+"0000005\n"))

	assert.Equal(t, "B,00001,0306406152,NF,Not Found\n", readFile(t, result.OutputFiles[1]))
}

func TestRemoveFromFile_RejectionFormats(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{config.RejectionFormatXLSX, []string{"orders_cleaned.txt", "PPO.M0827251812.xlsx"}},
		{config.RejectionFormatBoth, []string{"orders_cleaned.txt", "PPO.M0827251812.PPR", "PPO.M0827251812.xlsx"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.RejectionFormat = tt.format
			input := writeInput(t, cfg, "orders.txt", sample)

			result := New(cfg, nil, WithClock(fixedClock)).RemoveFromFile(input, RemoveRequest{
				OrderIDs:   []string{"A"},
				StatusCode: "OS",
				Reject:     true,
			})
			require.True(t, result.Success)
			assert.Equal(t, 2, result.Stats.RejectionRows)
			assert.Equal(t, tt.want, baseNames(result.OutputFiles))
		})
	}
}

func TestRemoveFromFile_Warnings(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "orders.txt", sample)

	result := New(cfg, nil, WithClock(fixedClock)).RemoveFromFile(input, RemoveRequest{
		OrderIDs:   []string{"C", "Z"},
		StatusCode: "XX",
		Reject:     true,
	})
	require.True(t, result.Success)
	assert.Equal(t, []string{
		"order Z not found in file",
		`status code "XX" is not a predefined code`,
	}, result.Warnings)
	assert.Equal(t, "C,00001,,XX,XX\n", readFile(t, result.OutputFiles[1]))
}

func TestRemoveFromFile_EmptySelection(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "orders.txt", sample)

	result := New(cfg, nil).RemoveFromFile(input, RemoveRequest{Reject: true})
	assert.True(t, result.Success)
	assert.Empty(t, result.OutputFiles)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], edi.ErrNoOrdersSelected.Error())
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "orders_cleaned.txt"))
}

func TestCheckFile(t *testing.T) {
	cfg := testConfig(t)
	good := writeInput(t, cfg, "good.txt", sample)
	bad := writeInput(t, cfg, "bad.txt", "$$HDR\nH1\n")

	p := New(cfg, nil)

	result := p.CheckFile(good)
	assert.True(t, result.Success)
	require.NotNil(t, result.Validation)
	assert.Equal(t, 4, result.Stats.DetailCount)

	result = p.CheckFile(bad)
	assert.False(t, result.Success)
	assert.Error(t, result.Error)
	assert.Positive(t, result.Validation.ErrorCount)
}

func TestRunBatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxConcurrency = 2
	cfg.ArchiveOnSuccess = true

	writeInput(t, cfg, "a.txt", sample)
	writeInput(t, cfg, "b.txt", "$$HDR\nH1\nH2\n$$EOF0000000\n")
	writeInput(t, cfg, "c.txt", sample)
	writeInput(t, cfg, "c_p1.txt", sample)

	p := New(cfg, nil)
	files, err := p.Discover()
	require.NoError(t, err)
	require.Len(t, files, 3)

	start := time.Now()
	results, err := p.RunBatch(context.Background(), files, BatchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.ErrorIs(t, results[1].Error, edi.ErrNoDetailRecords)
	assert.True(t, results[2].Success)

	assert.Equal(t, filepath.Join(cfg.InputArchiveDir, "a.txt"), results[0].ArchivePath)
	assert.NoFileExists(t, filepath.Join(cfg.InputDir, "a.txt"))
	assert.FileExists(t, filepath.Join(cfg.InputDir, "b.txt"), "failed inputs stay in place")
	assert.FileExists(t, filepath.Join(cfg.OutputArchiveDir, "c_p2.txt"))

	summary := p.Summarize(start, time.Now(), results)
	assert.Equal(t, p.RunID(), summary.RunID)
	assert.Equal(t, 3, summary.TotalFiles)
	assert.Equal(t, 2, summary.SuccessfulFiles)
	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, 8, summary.TotalDetails)
	assert.Equal(t, []string{"a_p1.txt", "a_p2.txt"}, summary.ProcessedFiles[0].OutputFiles)

	path, err := p.WriteSummary(summary)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestRunBatch_DryRun(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "a.txt", sample)

	p := New(cfg, nil)
	results, err := p.RunBatch(context.Background(), []string{input}, BatchOptions{DryRun: true})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.NotNil(t, results[0].Validation)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "a_p1.txt"))
	assert.FileExists(t, input)
}

func TestRunBatch_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "a.txt", sample)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New(cfg, nil).RunBatch(ctx, []string{input}, BatchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Error, context.Canceled)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "a_p1.txt"))
}

func TestRunBatch_ArchiveTimestampSubdirs(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArchiveOnSuccess = true
	cfg.ArchiveTimestampSubdirs = true
	input := writeInput(t, cfg, "a.txt", sample)

	p := New(cfg, nil, WithClock(fixedClock))
	results, err := p.RunBatch(context.Background(), []string{input}, BatchOptions{})
	require.NoError(t, err)
	require.True(t, results[0].Success)

	dated := filepath.Join("2025", "08", "27")
	assert.Equal(t, filepath.Join(cfg.InputArchiveDir, dated, "a.txt"), results[0].ArchivePath)
	assert.FileExists(t, filepath.Join(cfg.InputArchiveDir, dated, "a.txt"))
	assert.FileExists(t, filepath.Join(cfg.OutputArchiveDir, dated, "a_p1.txt"))
	assert.FileExists(t, filepath.Join(cfg.OutputArchiveDir, dated, "a_p2.txt"))
}

func TestSplitFile_FailedSecondPartRemovesFirst(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "orders.txt", sample)
	require.NoError(t, os.Mkdir(filepath.Join(cfg.OutputDir, "orders_p2.txt"), 0755))

	result := New(cfg, nil).SplitFile(input)
	assert.False(t, result.Success)
	assert.Error(t, result.Error)
	assert.Empty(t, result.OutputFiles)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "orders_p1.txt"))
}

func TestRemoveFromFile_ExistingRejectionFileIsKept(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "orders.txt", sample)
	p := New(cfg, nil, WithClock(fixedClock))

	first := p.RemoveFromFile(input, RemoveRequest{OrderIDs: []string{"B"}, Reject: true})
	require.True(t, first.Success)
	report := filepath.Join(cfg.OutputDir, "PPO.M0827251812.PPR")
	cleaned := filepath.Join(cfg.OutputDir, "orders_cleaned.txt")
	firstCleaned := readFile(t, cleaned)

	second := p.RemoveFromFile(input, RemoveRequest{OrderIDs: []string{"C"}, Reject: true})
	assert.False(t, second.Success)
	assert.ErrorIs(t, second.Error, utils.ErrOutputExists)
	assert.Empty(t, second.OutputFiles)

	assert.Equal(t, "B,00001,0306406152,NF,Not Found\n", readFile(t, report))
	assert.Equal(t, firstCleaned, readFile(t, cleaned), "cleaned file not rewritten")
}

func TestWriteRejection_ReportsPartialWrites(t *testing.T) {
	cfg := testConfig(t)
	cfg.RejectionFormat = config.RejectionFormatBoth
	p := New(cfg, nil, WithClock(fixedClock))

	names := p.rejectionNames()
	require.Equal(t, []string{"PPO.M0827251812.PPR", "PPO.M0827251812.xlsx"}, names)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.OutputDir, names[1]), []byte("old"), 0644))

	rows := []rejection.Row{{OrderID: "B", RecordNumber: "00001", StatusCode: "NF", Reason: "Not Found"}}
	written, err := p.writeRejection(rows, names)
	assert.ErrorIs(t, err, utils.ErrOutputExists)
	require.Equal(t, []string{filepath.Join(cfg.OutputDir, names[0])}, written)

	p.discard(p.logger, written)
	assert.NoFileExists(t, written[0])
	assert.Equal(t, "old", readFile(t, filepath.Join(cfg.OutputDir, names[1])))
}
