package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrExternalSourceUnavailable", ErrExternalSourceUnavailable},
		{"ErrValidation", ErrValidation},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrLineageInvariant", ErrLineageInvariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestConfigError_IsConfiguration(t *testing.T) {
	err := error(&ConfigError{Field: "fdr_threshold", Reason: "must be in (0, 1]"})

	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "fdr_threshold")
	assert.Contains(t, err.Error(), "must be in (0, 1]")
}

func TestSourceError_UnwrapsBoth(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&SourceError{Source: "neighbors", Item: "TP53", Attempts: 3, Err: cause})

	assert.True(t, errors.Is(err, ErrExternalSourceUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "3 attempt(s)")
}

func TestLineageError_IsLineageInvariant(t *testing.T) {
	err := error(&LineageError{PathwayID: "REACTOME:R-HSA-1", PrimaryID: "KEGG:HSA04010"})

	assert.True(t, errors.Is(err, ErrLineageInvariant))
	assert.False(t, errors.Is(err, ErrConfiguration))

	var lerr *LineageError
	assert.True(t, errors.As(err, &lerr))
	assert.Equal(t, "KEGG:HSA04010", lerr.PrimaryID)
}
