package architecture

import (
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
)

func TestDocumentRoundTrip(t *testing.T) {
	s, uart, spi := newTestSnapshot(t)
	require.NoError(t, s.AddColumn("Owner"))
	require.NoError(t, s.SetCell(uart, "Owner", Text("drivers")))
	require.NoError(t, s.SetCell(uart, constants.ColumnConfidence, Int(87)))
	require.NoError(t, s.SetEnabled(uart, false))
	require.NoError(t, s.SetMatch(spi, "SPI_Init", 100))
	require.NoError(t, s.RemoveRow(spi))
	s.Freeze()

	data, err := yaml.Marshal(s.Document())
	require.NoError(t, err)

	var doc Document
	require.NoError(t, yaml.Unmarshal(data, &doc))

	loaded, err := FromDocument(doc)
	require.NoError(t, err)

	assert.True(t, loaded.IsBaseline())
	assert.Equal(t, s.ColumnNames(), loaded.ColumnNames())
	assert.Equal(t, s.NextID(), loaded.NextID())
	assert.Equal(t, s.Revision(), loaded.Revision())

	all := loaded.AllRows()
	require.Len(t, all, 2)
	assert.False(t, all[0].Enabled)
	assert.Equal(t, "drivers", all[0].Cell("Owner").String())
	assert.Equal(t, KindNumber, all[0].Cell(constants.ColumnConfidence).Kind())
	assert.True(t, all[1].Removed)
	assert.True(t, all[1].Confirmed)
	assert.Equal(t, "SPI_Init", all[1].MatchedSymbol())
}

func TestFromDocument(t *testing.T) {
	t.Run("adds missing built-ins and fixes the id counter", func(t *testing.T) {
		s, err := FromDocument(Document{
			Columns: []Column{{Name: constants.ColumnPort}, {Name: "Owner"}},
			Rows:    []Row{{ID: 7, Enabled: true, Cells: map[string]Value{constants.ColumnPort: Text("ADC_Read")}}},
		})
		require.NoError(t, err)
		assert.True(t, s.HasColumn(constants.ColumnReviewStatus))
		assert.Equal(t, RowID(8), s.NextID())
		cols := s.Columns()
		assert.True(t, cols[0].BuiltIn)
		assert.False(t, cols[1].BuiltIn)
	})

	t.Run("rejects inconsistent documents", func(t *testing.T) {
		_, err := FromDocument(Document{Columns: []Column{{Name: "A"}, {Name: "A"}}})
		assert.True(t, errors.IsDuplicateColumn(err))

		_, err = FromDocument(Document{Rows: []Row{{ID: 1}, {ID: 1}}})
		assert.True(t, errors.IsValidationError(err))

		_, err = FromDocument(Document{Rows: []Row{{ID: 0}}})
		assert.True(t, errors.IsValidationError(err))

		_, err = FromDocument(Document{Rows: []Row{{ID: 1, Cells: map[string]Value{"Ghost": Text("x")}}}})
		assert.True(t, errors.IsNotFound(err))
	})
}
