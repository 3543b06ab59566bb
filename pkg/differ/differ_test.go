package differ

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
)

type fixture struct {
	baseline *architecture.Snapshot
	current  *architecture.Snapshot
	uart     architecture.RowID
	spi      architecture.RowID
	adc      architecture.RowID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := architecture.New()
	add := func(port, typ string) architecture.RowID {
		id, err := s.AddRow(map[string]architecture.Value{
			constants.ColumnPort: architecture.Text(port),
			constants.ColumnType: architecture.Text(typ),
		})
		require.NoError(t, err)
		return id
	}
	f := &fixture{
		uart: add("UART_Transmit", "uint8"),
		spi:  add("SPI_Init", "void"),
		adc:  add("ADC_Read", "uint16"),
	}
	f.baseline = s.Freeze()
	f.current = s.Clone()
	return f
}

func ids(cs *Changeset) []string {
	out := make([]string, len(cs.Changes))
	for i, c := range cs.Changes {
		out[i] = c.ID
	}
	return out
}

func TestCompareSelf(t *testing.T) {
	f := newFixture(t)
	assert.True(t, Compare(f.baseline, f.baseline).IsEmpty())
	assert.True(t, Compare(f.baseline, f.current).IsEmpty())
	assert.True(t, Compare(nil, nil).IsEmpty())
	assert.Equal(t, "No changes detected", Compare(f.baseline, f.current).String())
}

func TestCompareModifiedCell(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnType, architecture.Text("uint16")))

	cs := Compare(f.baseline, f.current)
	require.Len(t, cs.Changes, 1)

	c := cs.Changes[0]
	assert.Equal(t, KindModifiedCell, c.Kind)
	assert.Equal(t, f.uart, c.RowID)
	assert.Equal(t, constants.ColumnType, c.Column)
	assert.Equal(t, "uint8", c.OldValue.String())
	assert.Equal(t, "uint16", c.NewValue.String())
	assert.Equal(t, Pending, c.Disposition)
	assert.Equal(t, "r1/cell/Type", c.ID)
}

func TestCompareTypeAwareEquality(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnConfidence, architecture.Int(87)))
	baseline := f.current.Clone().Freeze()

	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnConfidence, architecture.Text("87.0")))
	assert.True(t, Compare(baseline, f.current).IsEmpty())

	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnConfidence, architecture.Text("")))
	assert.Len(t, Compare(baseline, f.current).Changes, 1)

	require.NoError(t, f.current.SetCell(f.spi, constants.ColumnType, architecture.ParseValue("9007199254740993")))
	baseline = f.current.Clone().Freeze()
	require.NoError(t, f.current.SetCell(f.spi, constants.ColumnType, architecture.ParseValue("9007199254740992")))
	assert.Equal(t, []string{"r2/cell/Type"}, ids(Compare(baseline, f.current)))
}

func TestCompareOrdering(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.AddColumn("Owner"))
	require.NoError(t, f.current.SetCell(f.spi, "Owner", architecture.Text("drivers")))
	require.NoError(t, f.current.SetCell(f.spi, constants.ColumnType, architecture.Text("int")))
	require.NoError(t, f.current.SetEnabled(f.spi, false))
	require.NoError(t, f.current.RemoveRow(f.uart))
	added, err := f.current.AddRow(map[string]architecture.Value{constants.ColumnPort: architecture.Text("GPIO_Write")})
	require.NoError(t, err)
	require.NoError(t, f.current.SetCell(f.adc, constants.ColumnType, architecture.Text("uint32")))

	cs := Compare(f.baseline, f.current)
	assert.Equal(t, []string{
		"r2/enabled",
		"r2/cell/Type",
		"r2/cell/Owner",
		"r3/cell/Type",
		"r4",
		"r1",
	}, ids(cs))

	assert.Equal(t, KindAddedRow, cs.Changes[4].Kind)
	assert.Equal(t, added, cs.Changes[4].RowID)
	assert.Equal(t, "GPIO_Write", cs.Changes[4].NewValue.String())
	assert.Equal(t, KindRemovedRow, cs.Changes[5].Kind)
	assert.Equal(t, "UART_Transmit", cs.Changes[5].OldValue.String())

	s := cs.Summary()
	assert.Equal(t, Summary{Total: 6, Pending: 6, AddedRows: 1, RemovedRows: 1, ModifiedCells: 3, EnabledToggles: 1}, s)
	assert.Len(t, cs.Filter(KindModifiedCell).Changes, 3)
	assert.Len(t, cs.Filter(KindAddedRow, KindRemovedRow).Changes, 2)
}

func TestCompareBaselineOnlyColumns(t *testing.T) {
	f := newFixture(t)
	editable := f.baseline.Clone()
	require.NoError(t, editable.AddColumn("Legacy"))
	require.NoError(t, editable.SetCell(f.adc, "Legacy", architecture.Text("yes")))
	baseline := editable.Freeze()

	cs := Compare(baseline, f.current)
	require.Len(t, cs.Changes, 1)
	assert.Equal(t, "r3/cell/Legacy", cs.Changes[0].ID)
	assert.True(t, cs.Changes[0].NewValue.IsEmpty())
}

func TestCompareTombstones(t *testing.T) {
	f := newFixture(t)

	t.Run("added then removed yields nothing", func(t *testing.T) {
		current := f.baseline.Clone()
		id, err := current.AddRow(nil)
		require.NoError(t, err)
		require.NoError(t, current.RemoveRow(id))
		assert.True(t, Compare(f.baseline, current).IsEmpty())
	})

	t.Run("removed on both sides yields nothing", func(t *testing.T) {
		current := f.baseline.Clone()
		require.NoError(t, current.RemoveRow(f.adc))
		committed := current.Clone().Freeze()
		assert.True(t, Compare(committed, current).IsEmpty())
	})

	t.Run("purged row is a removal", func(t *testing.T) {
		current := f.baseline.Clone()
		require.NoError(t, current.PurgeRow(f.spi))
		cs := Compare(f.baseline, current)
		require.Len(t, cs.Changes, 1)
		assert.Equal(t, KindRemovedRow, cs.Changes[0].Kind)
	})
}

func TestCompareIgnoredColumns(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnConfidence, architecture.Int(70)))
	assert.Len(t, Compare(f.baseline, f.current).Changes, 1)
	assert.True(t, Compare(f.baseline, f.current, WithIgnoredColumns(constants.ColumnConfidence)).IsEmpty())
}

func TestRemovedRowApproveAndCommit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.RemoveRow(f.spi))

	cs := Compare(f.baseline, f.current)
	require.Len(t, cs.Changes, 1)
	assert.Equal(t, KindRemovedRow, cs.Changes[0].Kind)

	_, err := Commit(f.baseline, f.current, cs)
	require.Error(t, err)
	assert.True(t, errors.IsUnresolvedChanges(err))

	change, err := cs.Resolve("r2", Approve, f.current)
	require.NoError(t, err)
	assert.Equal(t, Approved, change.Disposition)
	require.NotNil(t, change.ResolvedAt)

	next, err := Commit(f.baseline, f.current, cs)
	require.NoError(t, err)
	assert.True(t, next.IsBaseline())
	assert.Equal(t, 2, next.Len())
	_, err = next.Row(f.spi)
	assert.True(t, errors.IsNotFound(err))

	assert.True(t, Compare(next, f.current).IsEmpty())
}

func TestResolveReject(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnType, architecture.Text("uint16")))
	require.NoError(t, f.current.SetEnabled(f.spi, false))
	require.NoError(t, f.current.RemoveRow(f.adc))
	added, err := f.current.AddRow(map[string]architecture.Value{constants.ColumnPort: architecture.Text("GPIO_Write")})
	require.NoError(t, err)

	cs := Compare(f.baseline, f.current)
	require.Len(t, cs.Changes, 4)

	n, err := cs.ResolveAll(Reject, f.current)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	row, _ := f.current.Row(f.uart)
	assert.Equal(t, "uint8", row.Cell(constants.ColumnType).String())
	row, _ = f.current.Row(f.spi)
	assert.True(t, row.Enabled)
	row, err = f.current.Row(f.adc)
	require.NoError(t, err)
	assert.Equal(t, "ADC_Read", row.Port())
	_, ok := f.current.Lookup(added)
	assert.False(t, ok)

	assert.True(t, Compare(f.baseline, f.current).IsEmpty())
	assert.False(t, cs.Stale(f.current), "rejections keep the changeset current")

	next, err := f.current.AddRow(nil)
	require.NoError(t, err)
	assert.Greater(t, next, added, "purged ids are not reused")
}

func TestRejectMatchRestoresConfirmed(t *testing.T) {
	f := newFixture(t)
	_, err := f.current.ApplyMatches(map[architecture.RowID]architecture.Assignment{
		f.uart: {Symbol: "UART_Tx", Score: 69},
	})
	require.NoError(t, err)
	baseline := f.current.Clone().Freeze()

	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnMappedSymbol, architecture.Text("UART_Rx")))
	cs := Compare(baseline, f.current)
	require.Equal(t, []string{"r1/cell/Mapped Symbol"}, ids(cs))
	assert.False(t, cs.Changes[0].OldConfirmed)
	assert.True(t, cs.Changes[0].NewConfirmed)

	_, err = cs.Resolve("r1/cell/Mapped Symbol", Reject, f.current)
	require.NoError(t, err)
	row, _ := f.current.Row(f.uart)
	assert.Equal(t, "UART_Tx", row.MatchedSymbol())
	assert.False(t, row.Confirmed)
	assert.True(t, Compare(baseline, f.current).IsEmpty())

	report, err := f.current.ApplyMatches(map[architecture.RowID]architecture.Assignment{
		f.uart: {Symbol: "UART_Tx2", Score: 90},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Matched)
	assert.Zero(t, report.SkippedConfirmed)
	row, _ = f.current.Row(f.uart)
	assert.Equal(t, "UART_Tx2", row.MatchedSymbol())
}

func TestApplyApprovedCarriesConfirmed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnMappedSymbol, architecture.Text("UART_Rx")))
	cs := Compare(f.baseline, f.current)
	_, err := cs.ResolveAll(Approve, f.current)
	require.NoError(t, err)

	applied, err := cs.ApplyApproved(f.baseline)
	require.NoError(t, err)
	row, _ := applied.Row(f.uart)
	assert.Equal(t, "UART_Rx", row.MatchedSymbol())
	assert.True(t, row.Confirmed)
}

func TestResolveTerminal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnType, architecture.Text("uint16")))
	cs := Compare(f.baseline, f.current)

	_, err := cs.Resolve("r1/cell/Type", Reject, f.current)
	require.NoError(t, err)

	_, err = cs.Resolve("r1/cell/Type", Approve, f.current)
	assert.ErrorIs(t, err, errors.ErrAlreadyResolved)
	_, err = cs.Resolve("r1/cell/Type", Reject, f.current)
	assert.ErrorIs(t, err, errors.ErrAlreadyResolved)
	assert.Equal(t, Rejected, cs.Changes[0].Disposition)

	_, err = cs.Resolve("r9", Approve, f.current)
	assert.True(t, errors.IsNotFound(err))
}

func TestResolveValidation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnType, architecture.Text("uint16")))
	cs := Compare(f.baseline, f.current)

	_, err := cs.Resolve("r1/cell/Type", Reject, nil)
	assert.True(t, errors.IsValidationError(err))
	_, err = cs.Resolve("r1/cell/Type", Action("maybe"), f.current)
	assert.True(t, errors.IsValidationError(err))
	assert.True(t, cs.Changes[0].IsPending())
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.AddColumn("Owner"))
	require.NoError(t, f.current.SetCell(f.uart, "Owner", architecture.Text("drivers")))
	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnType, architecture.Text("uint16")))
	require.NoError(t, f.current.SetEnabled(f.spi, false))
	require.NoError(t, f.current.RemoveRow(f.adc))
	_, err := f.current.AddRow(map[string]architecture.Value{
		constants.ColumnPort: architecture.Text("GPIO_Write"),
		"Owner":              architecture.Text("io"),
	})
	require.NoError(t, err)
	_, err = f.current.AddRow(map[string]architecture.Value{constants.ColumnPort: architecture.Text("DMA_Start")})
	require.NoError(t, err)

	cs := Compare(f.baseline, f.current)
	require.Equal(t, []string{"r1/cell/Type", "r1/cell/Owner", "r2/enabled", "r4", "r5", "r3"}, ids(cs))

	decisions := map[string]Action{
		"r1/cell/Type":  Approve,
		"r1/cell/Owner": Reject,
		"r2/enabled":    Approve,
		"r4":            Approve,
		"r5":            Reject,
		"r3":            Reject,
	}
	for _, id := range ids(cs) {
		_, err := cs.Resolve(id, decisions[id], f.current)
		require.NoError(t, err, id)
	}

	applied, err := cs.ApplyApproved(f.baseline)
	require.NoError(t, err)
	assert.True(t, Compare(applied, f.current).IsEmpty(), "approved changes over the baseline reproduce the resolved current")

	next, err := Commit(f.baseline, f.current, cs)
	require.NoError(t, err)
	assert.True(t, Compare(next, applied).IsEmpty())
}

func TestCommitStaleChangeset(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnType, architecture.Text("uint16")))
	cs := Compare(f.baseline, f.current)
	_, err := cs.ResolveAll(Approve, f.current)
	require.NoError(t, err)

	require.NoError(t, f.current.SetCell(f.spi, constants.ColumnType, architecture.Text("int")))
	assert.True(t, cs.Stale(f.current))

	_, err = Commit(f.baseline, f.current, cs)
	var unresolved *errors.UnresolvedChangesError
	require.ErrorAs(t, err, &unresolved)
	assert.Len(t, unresolved.Pending, 2)

	_, err = Commit(f.baseline, f.current, nil)
	assert.True(t, errors.IsUnresolvedChanges(err))


	clean := f.baseline.Clone()
	next, err := Commit(f.baseline, clean, nil)
	require.NoError(t, err)
	assert.True(t, next.IsBaseline())
}

func TestCommitWithoutWorkingCopy(t *testing.T) {
	f := newFixture(t)

	next, err := Commit(f.baseline, nil, nil)
	require.NoError(t, err)
	assert.True(t, next.IsBaseline())
	assert.NotSame(t, f.baseline, next)
	assert.True(t, Compare(f.baseline, next).IsEmpty())

	empty, err := Commit(nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, empty.IsBaseline())
	assert.Zero(t, empty.Len())

	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnType, architecture.Text("uint16")))
	pending := Compare(f.baseline, f.current)
	_, err = Commit(f.baseline, nil, pending)
	assert.True(t, errors.IsUnresolvedChanges(err))
}

func TestChangesetPrint(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.current.SetCell(f.uart, constants.ColumnType, architecture.Text("uint16")))
	cs := Compare(f.baseline, f.current)

	var buf bytes.Buffer
	cs.Print(&buf)
	assert.Contains(t, buf.String(), "1 cells modified")
	assert.Contains(t, buf.String(), `r1/cell/Type: Type "uint8" → "uint16"`)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("approve")
	require.NoError(t, err)
	assert.Equal(t, Approve, a)
	a, err = ParseAction("r")
	require.NoError(t, err)
	assert.Equal(t, Reject, a)
	_, err = ParseAction("maybe")
	assert.Error(t, err)
}
