package domain_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"ata/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := domain.NewError(domain.KindDecompressionFailure, "/tmp/mod.7z", "7z exited with status 2", fs.ErrPermission)

	assert.Equal(t, "decompression failed: /tmp/mod.7z: 7z exited with status 2: permission denied", err.Error())
	assert.Equal(t, "mod not found", domain.NewError(domain.KindModNotFound, "", "", nil).Error())
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("installing: %w", domain.NewError(domain.KindNotFound, "/tmp/a.zip", "", nil))

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, domain.NewError(domain.KindNotFound, "/tmp/a.zip", "", nil))
	assert.NotErrorIs(t, err, domain.NewError(domain.KindNotFound, "/tmp/b.zip", "", nil))
	assert.NotErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestError_UnwrapsCause(t *testing.T) {
	err := domain.NewError(domain.KindDestinationUnavailable, "/games/nier/data/pl", "", fs.ErrPermission)

	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestCopyError(t *testing.T) {
	err := fmt.Errorf("routing: %w", &domain.CopyError{
		File:   "/scratch/pl/pl.dtt",
		Copied: []string{"/games/nier/data/pl/pl.dat"},
		Err:    fs.ErrPermission,
	})

	assert.ErrorIs(t, err, domain.ErrCopyFailure)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.NotErrorIs(t, err, domain.ErrDestinationUnavailable)
	assert.Contains(t, err.Error(), "copying mod files failed: /scratch/pl/pl.dtt")

	var copyErr *domain.CopyError
	assert.True(t, errors.As(err, &copyErr))
	assert.Equal(t, []string{"/games/nier/data/pl/pl.dat"}, copyErr.Copied)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"nil", nil, domain.KindUnknown},
		{"plain", errors.New("boom"), domain.KindUnknown},
		{"domain", domain.NewError(domain.KindDuplicateMod, "", "2B", nil), domain.KindDuplicateMod},
		{"wrapped", fmt.Errorf("x: %w", domain.ErrInvalidGamePath), domain.KindInvalidGamePath},
		{"copy", &domain.CopyError{File: "a"}, domain.KindCopyFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.KindOf(tt.err))
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "folder does not contain a recognized mod", domain.KindNoRecognizedMod.String())
	assert.Equal(t, "error kind 99", domain.ErrorKind(99).String())
}

func TestDefaultGamePath(t *testing.T) {
	assert.Equal(t, "/home/op/.local/share/Steam/steamapps/common/NieRAutomata", domain.DefaultGamePath("/home/op"))
	assert.Contains(t, domain.DefaultRequiredFiles, domain.ExecutableName)
}
