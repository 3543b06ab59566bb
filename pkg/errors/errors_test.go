package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/archsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestMalformedBinaryError(t *testing.T) {
	t.Run("with section", func(t *testing.T) {
		err := pkgerrors.NewMalformedBinaryError(".symtab", "truncated", nil)
		assert.Equal(t, "malformed binary: section .symtab: truncated", err.Error())
		assert.True(t, pkgerrors.IsMalformedBinary(err))
	})

	t.Run("container", func(t *testing.T) {
		cause := errors.New("bad magic number")
		err := pkgerrors.NewMalformedBinaryError("", "not an ELF file", cause)
		assert.Equal(t, "malformed binary: not an ELF file", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("extracting: %w", pkgerrors.NewMalformedBinaryError("", "empty", nil))
		assert.True(t, pkgerrors.IsMalformedBinary(err))
		assert.False(t, pkgerrors.IsDuplicateSymbol(err))
	})
}

func TestDuplicateSymbolError(t *testing.T) {
	err := &pkgerrors.DuplicateSymbolError{
		Name:          "UART_Tx",
		FirstAddress:  0x08000100,
		FirstSize:     16,
		SecondAddress: 0x08000200,
		SecondSize:    16,
	}
	assert.Contains(t, err.Error(), "UART_Tx")
	assert.Contains(t, err.Error(), "0x08000100")
	assert.Contains(t, err.Error(), "0x08000200")
	assert.True(t, pkgerrors.IsDuplicateSymbol(err))

	var target *pkgerrors.DuplicateSymbolError
	require.True(t, errors.As(fmt.Errorf("wrap: %w", err), &target))
	assert.Equal(t, "UART_Tx", target.Name)
}

func TestColumnError(t *testing.T) {
	t.Run("duplicate", func(t *testing.T) {
		err := pkgerrors.NewDuplicateColumnError("add", "Owner")
		assert.Equal(t, `cannot add column "Owner": duplicate column`, err.Error())
		assert.True(t, pkgerrors.IsDuplicateColumn(err))
		assert.False(t, pkgerrors.IsProtectedColumn(err))
	})

	t.Run("protected", func(t *testing.T) {
		err := pkgerrors.NewProtectedColumnError("remove", "Type")
		assert.True(t, pkgerrors.IsProtectedColumn(err))
		assert.False(t, pkgerrors.IsDuplicateColumn(err))
	})
}

func TestUnresolvedChangesError(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		err := &pkgerrors.UnresolvedChangesError{Pending: []string{"r1/cell/Type"}}
		assert.Equal(t, "cannot commit: change r1/cell/Type is still pending", err.Error())
		assert.True(t, pkgerrors.IsUnresolvedChanges(err))
	})

	t.Run("many", func(t *testing.T) {
		err := &pkgerrors.UnresolvedChangesError{Pending: []string{"r1", "r2", "r3"}}
		assert.Equal(t, "cannot commit: 3 changes are still pending", err.Error())
	})
}

func TestNotFoundError(t *testing.T) {
	err := pkgerrors.NewNotFoundError("row", "42")
	assert.Equal(t, "row 42 not found", err.Error())
	assert.True(t, pkgerrors.IsNotFound(err))

	wrapped := errors.Join(errors.New("failed"), err)
	assert.True(t, pkgerrors.IsNotFound(wrapped))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("threshold", 140, "must be between 0 and 100")
		assert.Equal(t, "validation failed for field threshold: must be between 0 and 100", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "empty project"}
		assert.Equal(t, "validation failed: empty project", err.Error())
	})
}

func TestReadOnlyError(t *testing.T) {
	err := &pkgerrors.ReadOnlyError{Resource: "baseline snapshot"}
	assert.Equal(t, "baseline snapshot is read only", err.Error())
	assert.True(t, pkgerrors.IsReadOnly(err))
}

func TestWrapHelpers(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "fw.elf", nil))
	assert.NoError(t, pkgerrors.WrapResource("load", "project", "", nil))
	assert.NoError(t, pkgerrors.WrapParse("yaml", "baseline.yaml", nil))
	assert.NoError(t, pkgerrors.WrapValidation("threshold", nil))

	base := errors.New("disk full")

	ioErr := pkgerrors.WrapIO("write", "baseline.yaml", base)
	assert.ErrorIs(t, ioErr, base)
	assert.Equal(t, "IO error during write of baseline.yaml: disk full", ioErr.Error())
	var asIO *pkgerrors.IOError
	require.ErrorAs(t, ioErr, &asIO)
	assert.Equal(t, "write", asIO.Operation)

	resErr := pkgerrors.WrapResource("save", "project", "demo", base)
	assert.ErrorIs(t, resErr, base)
	assert.Equal(t, "failed to save project demo: disk full", resErr.Error())

	parseErr := pkgerrors.WrapParse("yaml", "current.yaml", base)
	assert.ErrorIs(t, parseErr, base)
	assert.Equal(t, "parse error in yaml file current.yaml: disk full", parseErr.Error())
	var asParse *pkgerrors.ParseError
	require.ErrorAs(t, parseErr, &asParse)
	assert.Equal(t, "current.yaml", asParse.File)

	valErr := pkgerrors.WrapValidation("threshold", base)
	assert.True(t, pkgerrors.IsValidationError(valErr))
}

func TestConfigError(t *testing.T) {
	cause := errors.New("unknown key")
	err := pkgerrors.NewConfigError("matcher", "bad threshold", cause)
	assert.Equal(t, "configuration error in matcher: bad threshold", err.Error())
	assert.ErrorIs(t, err, cause)

	err = &pkgerrors.ConfigError{Message: "missing project"}
	assert.Equal(t, "configuration error: missing project", err.Error())
}
