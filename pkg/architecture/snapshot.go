// Package architecture holds the versioned architecture table: ordered rows
// of ports/interfaces, user-extensible columns, and per-row enable state.
//
// A Snapshot designated as a baseline is frozen; edits happen on a separate
// current Snapshot obtained with Clone. Every mutation validates its input
// before touching state, so a failed call leaves the Snapshot unchanged.
package architecture

import (
	"slices"
	"strings"
	"sync"

	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
)

// Snapshot is one version of the architecture table. It is safe for
// concurrent use.
type Snapshot struct {
	mu       sync.RWMutex
	columns  []Column
	rows     []*Row
	index    map[RowID]int
	nextID   RowID
	revision uint64
	baseline bool
}

// New returns an empty Snapshot with the built-in columns.
func New() *Snapshot {
	return &Snapshot{
		columns: BuiltInColumns(),
		index:   make(map[RowID]int),
		nextID:  1,
	}
}

// Freeze marks the snapshot as a baseline. Further edits fail with ReadOnlyError.
func (s *Snapshot) Freeze() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseline = true
	return s
}

// IsBaseline reports whether the snapshot is frozen.
func (s *Snapshot) IsBaseline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline
}

// Revision increases with every successful mutation.
func (s *Snapshot) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// NextID returns the ID the next added row will receive.
func (s *Snapshot) NextID() RowID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// Clone returns an editable deep copy. The copy is never a baseline.
func (s *Snapshot) Clone() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Snapshot{
		columns:  slices.Clone(s.columns),
		rows:     make([]*Row, len(s.rows)),
		index:    make(map[RowID]int, len(s.rows)),
		nextID:   s.nextID,
		revision: s.revision,
	}
	for i, r := range s.rows {
		cp := r.Clone()
		c.rows[i] = &cp
		c.index[r.ID] = i
	}
	return c
}

// Columns returns the column definitions in order.
func (s *Snapshot) Columns() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.columns)
}

// ColumnNames returns the column names in order.
func (s *Snapshot) ColumnNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column is defined.
func (s *Snapshot) HasColumn(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columnIndex(name) >= 0
}

// Len returns the number of live rows.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.rows {
		if r.Live() {
			n++
		}
	}
	return n
}

// Row returns a copy of a live row.
func (s *Snapshot) Row(id RowID) (Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.liveRow(id)
	if err != nil {
		return Row{}, err
	}
	return r.Clone(), nil
}

// Rows returns copies of all live rows, enabled or not, in order.
func (s *Snapshot) Rows() []Row {
	return s.collect(func(r *Row) bool { return r.Live() })
}

// EnabledRows returns copies of live, enabled rows in order.
func (s *Snapshot) EnabledRows() []Row {
	return s.collect(func(r *Row) bool { return r.Live() && r.Enabled })
}

// AllRows returns copies of every row including tombstones. Only the diff
// engine and persistence need these.
func (s *Snapshot) AllRows() []Row {
	return s.collect(func(*Row) bool { return true })
}

// Lookup returns a copy of any row, tombstoned or not.
func (s *Snapshot) Lookup(id RowID) (Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Row{}, false
	}
	return s.rows[i].Clone(), true
}

func (s *Snapshot) collect(keep func(*Row) bool) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		if keep(r) {
			rows = append(rows, r.Clone())
		}
	}
	return rows
}

// ExportColumns maps every column to the ordered cell values of the live,
// enabled rows.
func (s *Snapshot) ExportColumns() map[string][]Value {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]Value, len(s.columns))
	for _, c := range s.columns {
		out[c.Name] = make([]Value, 0, len(s.rows))
	}
	for _, r := range s.rows {
		if !r.Live() || !r.Enabled {
			continue
		}
		for _, c := range s.columns {
			out[c.Name] = append(out[c.Name], r.Cell(c.Name))
		}
	}
	return out
}

// AddColumn appends a custom column.
func (s *Snapshot) AddColumn(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.NewValidationError("column", name, "name must not be empty")
	}
	if s.columnIndex(name) >= 0 {
		return errors.NewDuplicateColumnError("add", name)
	}
	s.columns = append(s.columns, Column{Name: name, BuiltIn: IsBuiltIn(name)})
	s.revision++
	return nil
}

// RemoveColumn deletes a custom column and its cells, tombstoned rows included.
func (s *Snapshot) RemoveColumn(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	i := s.columnIndex(name)
	if i < 0 {
		return errors.NewNotFoundError("column", name)
	}
	if s.columns[i].BuiltIn {
		return errors.NewProtectedColumnError("remove", name)
	}
	s.columns = slices.Delete(s.columns, i, i+1)
	for _, r := range s.rows {
		delete(r.Cells, name)
	}
	s.revision++
	return nil
}

// RenameColumn renames a custom column, carrying its cells over.
func (s *Snapshot) RenameColumn(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	to = strings.TrimSpace(to)
	i := s.columnIndex(from)
	if i < 0 {
		return errors.NewNotFoundError("column", from)
	}
	if s.columns[i].BuiltIn {
		return errors.NewProtectedColumnError("rename", from)
	}
	if to == "" {
		return errors.NewValidationError("column", to, "name must not be empty")
	}
	if to == from {
		return nil
	}
	if IsBuiltIn(to) || s.columnIndex(to) >= 0 {
		return errors.NewDuplicateColumnError("rename", to)
	}
	s.columns[i].Name = to
	for _, r := range s.rows {
		if v, ok := r.Cells[from]; ok {
			r.Cells[to] = v
			delete(r.Cells, from)
		}
	}
	s.revision++
	return nil
}

// AddRow appends an enabled row and returns its new ID. Every key in cells
// must name a defined column. Review Status defaults to Not Reviewed.
func (s *Snapshot) AddRow(cells map[string]Value) (RowID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return 0, err
	}
	for name := range cells {
		if s.columnIndex(name) < 0 {
			return 0, errors.NewNotFoundError("column", name)
		}
	}

	row := &Row{ID: s.nextID, Cells: make(map[string]Value, len(cells)), Enabled: true}
	for name, v := range cells {
		setCell(row, name, v)
	}
	if row.Cell(constants.ColumnReviewStatus).IsEmpty() {
		setCell(row, constants.ColumnReviewStatus, Text(constants.ReviewNotReviewed))
	}

	s.nextID++
	s.index[row.ID] = len(s.rows)
	s.rows = append(s.rows, row)
	s.revision++
	return row.ID, nil
}

// RemoveRow tombstones a row. The row stays visible to AllRows for diffing.
func (s *Snapshot) RemoveRow(id RowID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	r, err := s.liveRow(id)
	if err != nil {
		return err
	}
	r.Removed = true
	s.revision++
	return nil
}

// SetCell sets one cell of a live row. Setting the Mapped Symbol by hand
// marks the match as user confirmed.
func (s *Snapshot) SetCell(id RowID, column string, v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	r, err := s.liveRow(id)
	if err != nil {
		return err
	}
	if s.columnIndex(column) < 0 {
		return errors.NewNotFoundError("column", column)
	}
	setCell(r, column, v)
	if column == constants.ColumnMappedSymbol {
		r.Confirmed = !v.IsEmpty()
	}
	s.revision++
	return nil
}

// SetEnabled enables or disables a live row.
func (s *Snapshot) SetEnabled(id RowID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	r, err := s.liveRow(id)
	if err != nil {
		return err
	}
	if r.Enabled != enabled {
		r.Enabled = enabled
		s.revision++
	}
	return nil
}

// SetMatch records a user-chosen symbol for a row. The match is confirmed and
// survives automatic re-matching. An empty symbol clears the match.
func (s *Snapshot) SetMatch(id RowID, symbol string, confidence int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	if confidence < constants.MinThreshold || confidence > constants.MaxThreshold {
		return errors.NewValidationError("confidence", confidence, "must be between 0 and 100")
	}
	r, err := s.liveRow(id)
	if err != nil {
		return err
	}
	if symbol == "" {
		setCell(r, constants.ColumnMappedSymbol, Empty())
		setCell(r, constants.ColumnConfidence, Empty())
		r.Confirmed = false
	} else {
		setCell(r, constants.ColumnMappedSymbol, Text(symbol))
		setCell(r, constants.ColumnConfidence, Int(confidence))
		r.Confirmed = true
	}
	s.revision++
	return nil
}

// RestoreCell writes a cell on any row, tombstoned or not, re-adding the
// column when it no longer exists. Used to revert or fold in diff changes.
func (s *Snapshot) RestoreCell(id RowID, column string, v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	i, ok := s.index[id]
	if !ok {
		return errors.NewNotFoundError("row", id.String())
	}
	s.ensureColumn(column)
	setCell(s.rows[i], column, v)
	s.revision++
	return nil
}

// RestoreMatch sets the Mapped Symbol cell of any row together with its
// confirmed flag.
func (s *Snapshot) RestoreMatch(id RowID, symbol Value, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	i, ok := s.index[id]
	if !ok {
		return errors.NewNotFoundError("row", id.String())
	}
	s.ensureColumn(constants.ColumnMappedSymbol)
	setCell(s.rows[i], constants.ColumnMappedSymbol, symbol)
	s.rows[i].Confirmed = confirmed && !symbol.IsEmpty()
	s.revision++
	return nil
}

// RestoreEnabled sets the enabled flag on any row, tombstoned or not.
func (s *Snapshot) RestoreEnabled(id RowID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	i, ok := s.index[id]
	if !ok {
		return errors.NewNotFoundError("row", id.String())
	}
	s.rows[i].Enabled = enabled
	s.revision++
	return nil
}

// RestoreRow puts row back as a live row, replacing a tombstone with the same
// ID or inserting it before the first row with a higher ID. Columns the row
// uses that are no longer defined are re-added.
func (s *Snapshot) RestoreRow(row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	cp := row.Clone()
	cp.Removed = false
	for name, v := range row.Cells {
		delete(cp.Cells, name)
		if !v.IsEmpty() {
			s.ensureColumn(name)
			cp.Cells[name] = v
		}
	}

	if i, ok := s.index[row.ID]; ok {
		s.rows[i] = &cp
	} else {
		pos := len(s.rows)
		for i, r := range s.rows {
			if r.ID > row.ID {
				pos = i
				break
			}
		}
		s.rows = slices.Insert(s.rows, pos, &cp)
		s.reindex()
	}
	if row.ID >= s.nextID {
		s.nextID = row.ID + 1
	}
	s.revision++
	return nil
}

// PurgeRow deletes a row outright, leaving no tombstone. Its ID is not reused.
func (s *Snapshot) PurgeRow(id RowID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	i, ok := s.index[id]
	if !ok {
		return errors.NewNotFoundError("row", id.String())
	}
	s.rows = slices.Delete(s.rows, i, i+1)
	s.reindex()
	s.revision++
	return nil
}

func (s *Snapshot) writable() error {
	if s.baseline {
		return &errors.ReadOnlyError{Resource: "baseline snapshot"}
	}
	return nil
}

func (s *Snapshot) columnIndex(name string) int {
	for i, c := range s.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (s *Snapshot) ensureColumn(name string) {
	if s.columnIndex(name) < 0 {
		s.columns = append(s.columns, Column{Name: name, BuiltIn: IsBuiltIn(name)})
	}
}

func (s *Snapshot) liveRow(id RowID) (*Row, error) {
	i, ok := s.index[id]
	if !ok || s.rows[i].Removed {
		return nil, errors.NewNotFoundError("row", id.String())
	}
	return s.rows[i], nil
}

func (s *Snapshot) reindex() {
	s.index = make(map[RowID]int, len(s.rows))
	for i, r := range s.rows {
		s.index[r.ID] = i
	}
}

// setCell stores non-empty values only; a missing key reads as Empty.
func setCell(r *Row, column string, v Value) {
	if r.Cells == nil {
		r.Cells = make(map[string]Value)
	}
	if v.IsEmpty() {
		delete(r.Cells, column)
		return
	}
	r.Cells[column] = v
}
