package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/texmtlx/internal/config"
	"github.com/backmassage/texmtlx/internal/logging"
	"github.com/backmassage/texmtlx/internal/material"
	"github.com/backmassage/texmtlx/internal/planner"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("data"), 0o644))
	return p
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

// --- Discover tests ---

func TestDiscover_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b_col.png", "a_rough.EXR", "notes.txt", "c.tx", "d.psd", "e.tif"} {
		touch(t, dir, n)
	}

	files, err := Discover([]string{dir}, DiscoverOptions{Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a_rough.EXR", "b_col.png", "c.tx", "e.tif"}, basenames(files))
}

func TestDiscover_AllTextureExtensions(t *testing.T) {
	dir := t.TempDir()
	exts := []string{".jpg", ".jpeg", ".png", ".tga", ".bmp", ".tiff", ".tif",
		".exr", ".hdr", ".hdri", ".dpx", ".pic", ".rat", ".tx"}
	for _, ext := range exts {
		touch(t, dir, "file"+ext)
	}
	touch(t, dir, "file.mkv")

	files, err := Discover([]string{dir}, DiscoverOptions{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, files, len(exts))
}

func TestDiscover_Recursion(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "top_col.png")
	touch(t, dir, "sub/deep_col.png")
	touch(t, dir, ".cache/hidden_col.png")
	touch(t, dir, ".hidden_col.png")

	files, err := Discover([]string{dir}, DiscoverOptions{Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"deep_col.png", "top_col.png"}, basenames(files))

	files, err = Discover([]string{dir}, DiscoverOptions{Recursive: false})
	require.NoError(t, err)
	assert.Equal(t, []string{"top_col.png"}, basenames(files))
}

func TestDiscover_Excludes(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "rock_col.png")
	touch(t, dir, "rock_col_preview.png")
	touch(t, dir, "old/rock_col.png")
	touch(t, dir, "wip/v1/rock_col.png")

	files, err := Discover([]string{dir}, DiscoverOptions{
		Recursive: true,
		Excludes:  []string{"*_preview.*", "old", "wip/**"},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "rock_col.png"), files[0])
}

func TestDiscover_BadExclude(t *testing.T) {
	_, err := Discover([]string{t.TempDir()}, DiscoverOptions{Excludes: []string{"[unclosed"}})
	assert.Error(t, err)
}

func TestDiscover_MultipleDirs(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	touch(t, a, "z_col.png")
	touch(t, b, "a_col.png")

	files, err := Discover([]string{a, b, a}, DiscoverOptions{Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"z_col.png", "a_col.png"}, basenames(files), "argument order, no duplicates")
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover([]string{filepath.Join(t.TempDir(), "nope")}, DiscoverOptions{})
	assert.Error(t, err)
}

func TestDropShadowed(t *testing.T) {
	in := []string{"t/a_col.png", "t/a_col.tx", "t/b_rough.tx", "t/c.TX", "t/c.exr"}
	assert.Equal(t, []string{"t/a_col.png", "t/b_rough.tx", "t/c.exr"}, DropShadowed(in, ".tx"))
}

// --- Run tests ---

type recordingConverter struct {
	mu   sync.Mutex
	jobs []planner.ConversionJob
	fail string
}

func (c *recordingConverter) Convert(_ context.Context, job planner.ConversionJob) error {
	c.mu.Lock()
	c.jobs = append(c.jobs, job)
	c.mu.Unlock()
	if filepath.Base(job.SourcePath) == c.fail {
		return errors.New("bad pixels")
	}
	return os.WriteFile(job.TargetPath, []byte("tiled"), 0o644)
}

func testCfg(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.InputDirs = []string{dir}
	cfg.ProjectRoot = dir
	cfg.CPUs = 2
	cfg.ColorMode = config.ColorNever
	return &cfg
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	past := time.Now().Add(-time.Hour)
	for _, n := range []string{
		"tex/brick_BaseColor_1001.exr",
		"tex/brick_BaseColor_1002.exr",
		"tex/brick_Normal.png",
		"tex/brick_Roughness.png",
		"tex/readme.png",
	} {
		p := touch(t, dir, n)
		require.NoError(t, os.Chtimes(p, past, past))
	}

	cfg := testCfg(dir)
	cfg.ReportFile = filepath.Join(dir, "out", "report.json")
	conv := &recordingConverter{fail: "brick_Normal.png"}

	var out, errOut bytes.Buffer
	res, err := run(context.Background(), cfg, logging.New(&out, &errOut, false), conv)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Stats.Files)
	assert.Equal(t, 4, res.Stats.Assets)
	assert.Equal(t, 1, res.Stats.Materials)
	assert.Equal(t, 1, res.Stats.Unassigned)
	assert.Equal(t, 5, res.Stats.Jobs)
	assert.Equal(t, 4, res.Stats.Converted)
	assert.Equal(t, 1, res.Stats.Failed)
	assert.False(t, res.Stats.OK())
	assert.Positive(t, res.Stats.TotalOutputBytes)

	require.Len(t, res.Materials, 1)
	bound := res.Materials[0].Bound()
	require.Len(t, bound, 3)
	assert.Equal(t, material.SlotBaseColor, bound[0].Slot)
	assert.Equal(t, "$JOB/tex/brick_BaseColor_<UDIM>.exr", bound[0].Asset.CanonicalPath)

	assert.Equal(t, 1, res.Report.Totals.Failed)
	assert.FileExists(t, cfg.ReportFile)
	assert.Contains(t, errOut.String(), "bad pixels")

	// Second run: converted targets are fresh, only the failure retries.
	conv2 := &recordingConverter{}
	res, err = run(context.Background(), cfg, logging.Discard(), conv2)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Stats.Files, "fresh .tx outputs are shadowed by their sources")
	assert.Equal(t, 4, res.Stats.Skipped)
	assert.Equal(t, 1, res.Stats.Converted)
	require.Len(t, conv2.jobs, 1)
	assert.Equal(t, "brick_Normal.png", filepath.Base(conv2.jobs[0].SourcePath))
}

func TestRun_NoConversion(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "rock_col.png")

	cfg := testCfg(dir)
	cfg.ConvertTX = false
	conv := &recordingConverter{}

	res, err := run(context.Background(), cfg, logging.Discard(), conv)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Jobs)
	assert.Empty(t, conv.jobs)
	assert.Len(t, res.Materials, 1)
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, dir, "rock_col.png")

	cfg := testCfg(dir)
	cfg.DryRun = true

	res, err := Run(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Converted)
	assert.NoFileExists(t, planner.TargetPath(src, ".tx"))
}

func TestRun_SystemicFailure(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "rock_col.png")

	cfg := testCfg(dir)
	cfg.WorkerBudget = 0

	_, err := run(context.Background(), cfg, logging.Discard(), &recordingConverter{})
	assert.Error(t, err)
}

func TestRun_DiscoverFailure(t *testing.T) {
	cfg := testCfg(filepath.Join(t.TempDir(), "missing"))
	_, err := Run(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestRunStats(t *testing.T) {
	s := RunStats{TotalInputBytes: 100, TotalOutputBytes: 250}
	assert.Equal(t, int64(150), s.SizeDelta())
	assert.True(t, s.OK())
	s.Failed = 1
	assert.False(t, s.OK())
}

func TestRun_TargetCollisionReported(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"brick_col.exr", "brick_col.png", "brick_normal.png"} {
		touch(t, dir, n)
	}

	cfg := testCfg(dir)
	conv := &recordingConverter{}
	var out bytes.Buffer
	res, err := run(context.Background(), cfg, logging.New(&out, &out, false), conv)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.Jobs)
	assert.Equal(t, 2, res.Stats.Warnings)
	assert.Equal(t, 2, res.Report.Totals.Warnings)
	assert.ElementsMatch(t, []string{"brick_col.exr", "brick_normal.png"}, func() []string {
		var names []string
		for _, j := range conv.jobs {
			names = append(names, filepath.Base(j.SourcePath))
		}
		return names
	}())

	require.Len(t, res.Report.Unassigned, 1)
	loser := res.Report.Unassigned[0]
	assert.Equal(t, "$JOB/brick_col.png", loser.Asset.Key())
	assert.Empty(t, loser.Results)

	var kinds []material.WarningKind
	for _, w := range loser.Warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Equal(t, []material.WarningKind{material.WarnSlotConflict, material.WarnTargetCollision}, kinds)
	assert.Contains(t, loser.Warnings[1].Message, "brick_col.exr")

	assert.Contains(t, out.String(), "Target collision")
	assert.Contains(t, out.String(), "(+2 B)", "size delta of two 4 B sources converted to 5 B targets")
}
