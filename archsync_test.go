package archsync

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/archsync/internal/config"
	"github.com/agentstation/archsync/internal/elftest"
	"github.com/agentstation/archsync/internal/store"
	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/differ"
	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/extract"
	"github.com/agentstation/archsync/pkg/logging"
	"github.com/agentstation/archsync/pkg/symbols"
)

func firmware() []byte {
	return (&elftest.Builder{Syms: []elftest.Sym{
		elftest.Func("UART_Tx", 0x401000, 16),
		elftest.Func("UART_Rx", 0x401010, 16),
		elftest.Func("SPI_Init", 0x401020, 8),
		elftest.Object("rx_buffer", 0x404000, 256),
	}}).Build()
}

// newWorkspace returns a workspace whose working copy holds two rows.
func newWorkspace(t *testing.T, opts ...Option) (Workspace, architecture.RowID, architecture.RowID) {
	t.Helper()
	ws, err := New(append([]Option{WithThreshold(60)}, opts...)...)
	require.NoError(t, err)

	var uart, spi architecture.RowID
	require.NoError(t, ws.Edit(func(s *architecture.Snapshot) error {
		var err error
		if uart, err = s.AddRow(map[string]architecture.Value{
			constants.ColumnPort: architecture.Text("UART_Transmit"),
			constants.ColumnType: architecture.Text("uint8"),
		}); err != nil {
			return err
		}
		spi, err = s.AddRow(map[string]architecture.Value{
			constants.ColumnPort: architecture.Text("SPI_Init"),
		})
		return err
	}))
	return ws, uart, spi
}

func approveAndCommit(t *testing.T, ws Workspace) {
	t.Helper()
	ws.Compare()
	_, err := ws.ResolveAll(differ.Approve)
	require.NoError(t, err)
	_, err = ws.Commit()
	require.NoError(t, err)
}

func TestNewOptions(t *testing.T) {
	_, err := New(WithThreshold(101))
	assert.True(t, errors.IsValidationError(err))

	_, err = New(WithBaseline(nil))
	assert.True(t, errors.IsValidationError(err))

	_, err = New(WithLogger(nil))
	assert.True(t, errors.IsValidationError(err))

	bad := config.Default()
	bad.Threshold = -1
	_, err = New(WithConfig(bad))
	assert.True(t, errors.IsValidationError(err))

	ws, err := New()
	require.NoError(t, err)
	assert.True(t, ws.Baseline().IsBaseline())
	assert.Equal(t, 0, ws.Current().Len())
	assert.Empty(t, ws.Dir())
	assert.Nil(t, ws.MatchRecord())
	assert.Nil(t, ws.Changes())
}

func TestWithBaselineCopies(t *testing.T) {
	s := architecture.New()
	_, err := s.AddRow(map[string]architecture.Value{constants.ColumnPort: architecture.Text("ADC_Read")})
	require.NoError(t, err)

	ws, err := New(WithBaseline(s))
	require.NoError(t, err)
	assert.False(t, s.IsBaseline(), "caller's snapshot stays editable")
	assert.Equal(t, 1, ws.Baseline().Len())
	assert.True(t, ws.Compare().IsEmpty())
}

func TestEditAllOrNothing(t *testing.T) {
	ws, uart, _ := newWorkspace(t)
	before := ws.Current().Revision()

	err := ws.Edit(func(s *architecture.Snapshot) error {
		if err := s.SetCell(uart, constants.ColumnType, architecture.Text("uint16")); err != nil {
			return err
		}
		return s.RemoveColumn(constants.ColumnType)
	})
	assert.True(t, errors.IsProtectedColumn(err))

	row, err := ws.Current().Row(uart)
	require.NoError(t, err)
	assert.Equal(t, "uint8", row.Cell(constants.ColumnType).String())
	assert.Equal(t, before, ws.Current().Revision())
}

func TestCurrentIsACopy(t *testing.T) {
	ws, uart, _ := newWorkspace(t)
	cp := ws.Current()
	require.NoError(t, cp.SetCell(uart, constants.ColumnType, architecture.Text("uint32")))

	row, err := ws.Current().Row(uart)
	require.NoError(t, err)
	assert.Equal(t, "uint8", row.Cell(constants.ColumnType).String())
}

func TestExtractAndMatch(t *testing.T) {
	ws, uart, spi := newWorkspace(t)
	data := firmware()

	catalog, err := ws.Extract(data)
	require.NoError(t, err)
	assert.Equal(t, 4, catalog.Len())

	var hooked *MatchReport
	ws.OnMatch(func(r *MatchReport) { hooked = r })

	report, err := ws.Match(catalog)
	require.NoError(t, err)
	assert.Same(t, report, hooked)
	assert.Equal(t, 2, report.Applied.Matched)
	assert.Nil(t, report.Delta)

	row, err := ws.Current().Row(uart)
	require.NoError(t, err)
	assert.Equal(t, "UART_Tx", row.MatchedSymbol())
	conf, ok := row.Confidence()
	require.True(t, ok)
	assert.Equal(t, 69, conf)
	assert.False(t, row.Confirmed)

	row, err = ws.Current().Row(spi)
	require.NoError(t, err)
	assert.Equal(t, "SPI_Init", row.MatchedSymbol())

	record := ws.MatchRecord()
	require.NotNil(t, record)
	assert.Equal(t, store.DigestBytes(data), record.Digest)
	assert.Equal(t, 60, record.Threshold)
	assert.Equal(t, 4, record.Symbols)
	assert.Equal(t, 2, record.Matched)
	assert.Same(t, catalog, ws.Catalog())

	_, err = ws.Match(nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestMatchKeepsConfirmed(t *testing.T) {
	ws, uart, _ := newWorkspace(t)
	require.NoError(t, ws.Edit(func(s *architecture.Snapshot) error {
		return s.SetMatch(uart, "UART_Rx", 100)
	}))

	catalog, err := ws.Extract(firmware())
	require.NoError(t, err)
	report, err := ws.Match(catalog)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied.SkippedConfirmed)

	row, err := ws.Current().Row(uart)
	require.NoError(t, err)
	assert.Equal(t, "UART_Rx", row.MatchedSymbol())

	ws2, uart2, _ := newWorkspace(t, WithOverwriteConfirmed(true))
	require.NoError(t, ws2.Edit(func(s *architecture.Snapshot) error {
		return s.SetMatch(uart2, "UART_Rx", 100)
	}))
	_, err = ws2.Match(catalog)
	require.NoError(t, err)
	row, err = ws2.Current().Row(uart2)
	require.NoError(t, err)
	assert.Equal(t, "UART_Tx", row.MatchedSymbol())
}

func TestMatchBrokenLink(t *testing.T) {
	ws, uart, _ := newWorkspace(t)
	first, err := ws.Extract(firmware())
	require.NoError(t, err)
	_, err = ws.Match(first)
	require.NoError(t, err)
	require.NoError(t, ws.Edit(func(s *architecture.Snapshot) error {
		return s.SetCell(uart, constants.ColumnReviewStatus, architecture.Text(constants.ReviewReviewed))
	}))

	rebuilt, err := ws.Extract((&elftest.Builder{Syms: []elftest.Sym{
		elftest.Func("UART_Tx", 0x401100, 32),
		elftest.Func("UART_Rx", 0x401010, 16),
		elftest.Func("SPI_Init", 0x401020, 8),
	}}).Build())
	require.NoError(t, err)

	report, err := ws.Match(rebuilt)
	require.NoError(t, err)
	require.NotNil(t, report.Delta)
	assert.Len(t, report.Delta.Changed, 1)
	assert.Len(t, report.Delta.Removed, 1)
	assert.Equal(t, 1, report.Applied.BrokenLinks)

	row, err := ws.Current().Row(uart)
	require.NoError(t, err)
	assert.Equal(t, constants.ReviewBrokenLink, row.ReviewStatus())
}

func TestExtractFile(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ws, err := New(WithLogger(tl.Logger), WithExtractOptions(extract.WithInclude("UART_*")))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fw.elf")
	require.NoError(t, os.WriteFile(path, firmware(), 0o644))

	catalog, err := ws.ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"UART_Rx", "UART_Tx"}, catalog.Names())
	tl.AssertContains(t, "Extracted symbol catalog")

	_, err = ws.Match(catalog)
	require.NoError(t, err)
	assert.Equal(t, path, ws.MatchRecord().Binary)

	notELF := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notELF, []byte("not a binary"), 0o644))
	_, err = ws.ExtractFile(context.Background(), notELF)
	assert.True(t, errors.IsMalformedBinary(err))

	_, err = ws.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "missing.elf"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ws.ExtractFile(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Threshold = 90
	cfg.Exclude = []string{"rx_*"}
	ws, err := New(WithConfig(cfg))
	require.NoError(t, err)

	catalog, err := ws.Extract(firmware())
	require.NoError(t, err)
	assert.Equal(t, []string{"SPI_Init", "UART_Rx", "UART_Tx"}, catalog.Names())

	require.NoError(t, ws.Edit(func(s *architecture.Snapshot) error {
		_, err := s.AddRow(map[string]architecture.Value{constants.ColumnPort: architecture.Text("UART_Transmit")})
		return err
	}))
	report, err := ws.Match(catalog)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Applied.Matched, "69 is below a threshold of 90")
}

func TestReviewWorkflow(t *testing.T) {
	ws, uart, spi := newWorkspace(t)

	var commits int
	var resolved []string
	ws.OnCommit(func(previous, next *architecture.Snapshot, changes *differ.Changeset) {
		commits++
		assert.Equal(t, 2, next.Len())
		if commits == 1 {
			assert.Equal(t, 0, previous.Len())
			assert.Equal(t, 2, changes.Summary().Approved)
		}
	})
	ws.OnResolve(func(c differ.Change) { resolved = append(resolved, c.ID) })

	_, err := ws.Resolve("r1", differ.Approve)
	assert.True(t, errors.IsNotFound(err), "no compare yet")

	_, err = ws.Commit()
	assert.True(t, errors.IsUnresolvedChanges(err))

	changes := ws.Compare()
	require.Equal(t, 2, changes.Len())
	assert.Equal(t, uart, changes.Changes[0].RowID)
	assert.Equal(t, spi, changes.Changes[1].RowID)
	assert.Equal(t, differ.KindAddedRow, changes.Changes[0].Kind)

	_, err = ws.Resolve("r1", differ.Approve)
	require.NoError(t, err)
	_, err = ws.Commit()
	assert.True(t, errors.IsUnresolvedChanges(err))

	n, err := ws.ResolveAll(differ.Approve)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"r1", "r2"}, resolved)

	baseline, err := ws.Commit()
	require.NoError(t, err)
	assert.Equal(t, 1, commits)
	assert.True(t, baseline.IsBaseline())
	assert.Same(t, baseline, ws.Baseline())
	assert.Nil(t, ws.Changes())
	assert.True(t, ws.Compare().IsEmpty())

	again, err := ws.Commit()
	require.NoError(t, err, "nothing edited since the commit")
	assert.Equal(t, 2, commits)
	assert.Same(t, again, ws.Baseline())
	assert.True(t, differ.Compare(baseline, again).IsEmpty())
}

func TestRejectRestoresWorkingCopy(t *testing.T) {
	ws, uart, spi := newWorkspace(t)
	approveAndCommit(t, ws)

	require.NoError(t, ws.Edit(func(s *architecture.Snapshot) error {
		if err := s.SetCell(uart, constants.ColumnType, architecture.Text("uint16")); err != nil {
			return err
		}
		return s.RemoveRow(spi)
	}))
	changes := ws.Compare()
	require.Equal(t, []string{"r1/cell/Type", "r2"}, []string{changes.Changes[0].ID, changes.Changes[1].ID})

	_, err := ws.ResolveAll(differ.Reject)
	require.NoError(t, err)
	assert.True(t, differ.Compare(ws.Baseline(), ws.Current()).IsEmpty())

	_, err = ws.Resolve("r2", differ.Approve)
	assert.ErrorIs(t, err, errors.ErrAlreadyResolved)

	_, err = ws.Commit()
	require.NoError(t, err)
}

func TestResolveStaleChangeset(t *testing.T) {
	ws, uart, _ := newWorkspace(t)
	ws.Compare()
	require.NoError(t, ws.Edit(func(s *architecture.Snapshot) error {
		return s.SetCell(uart, constants.ColumnType, architecture.Text("uint32"))
	}))

	_, err := ws.Resolve("r1", differ.Approve)
	assert.True(t, errors.IsValidationError(err))
	_, err = ws.ResolveAll(differ.Approve)
	assert.True(t, errors.IsValidationError(err))
}

func TestExportColumns(t *testing.T) {
	ws, _, spi := newWorkspace(t)
	require.NoError(t, ws.Edit(func(s *architecture.Snapshot) error {
		return s.SetEnabled(spi, false)
	}))
	cols := ws.ExportColumns()
	require.Len(t, cols[constants.ColumnPort], 1)
	assert.Equal(t, "UART_Transmit", cols[constants.ColumnPort][0].String())
}

func TestSaveAndOpen(t *testing.T) {
	mem, _, _ := newWorkspace(t)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, mem.Save(), &cfgErr)

	dir := filepath.Join(t.TempDir(), "project")
	ws, err := Init(dir, WithName("firmware"), WithThreshold(60))
	require.NoError(t, err)
	assert.Equal(t, dir, ws.Dir())

	_, err = Init(dir)
	assert.True(t, errors.IsValidationError(err))

	require.NoError(t, ws.Edit(func(s *architecture.Snapshot) error {
		_, err := s.AddRow(map[string]architecture.Value{constants.ColumnPort: architecture.Text("UART_Transmit")})
		return err
	}))
	catalog, err := ws.Extract(firmware())
	require.NoError(t, err)
	_, err = ws.Match(catalog)
	require.NoError(t, err)
	changes := ws.Compare()
	_, err = ws.Resolve(changes.Changes[0].ID, differ.Approve)
	require.NoError(t, err)
	require.NoError(t, ws.Save())

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, ws.MatchRecord().Digest, reopened.MatchRecord().Digest)
	assert.True(t, catalog.Equal(reopened.Catalog()))
	require.NotNil(t, reopened.Changes())
	assert.Equal(t, 0, reopened.Changes().Summary().Pending)
	assert.True(t, differ.Compare(ws.Current(), reopened.Current()).IsEmpty())

	next, err := reopened.Commit()
	require.NoError(t, err)
	assert.Equal(t, 1, next.Len())

	_, err = Open(filepath.Join(t.TempDir(), "nothing"))
	assert.True(t, errors.IsNotFound(err))
}

func TestConcurrentUse(t *testing.T) {
	ws, _, _ := newWorkspace(t)
	catalog := symbols.MustNewCatalog(symbols.Symbol{Name: "UART_Tx", Kind: symbols.KindFunction, Address: 0x10, Size: 4})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = ws.Match(catalog)
				return
			}
			_ = ws.Edit(func(s *architecture.Snapshot) error {
				_, err := s.AddRow(map[string]architecture.Value{constants.ColumnPort: architecture.Text("GPIO_Set")})
				return err
			})
			_ = ws.Compare()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 6, ws.Current().Len())
}
