package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/earlyedge/internal/pipeline/pipelinetest"
)

var first = pipelinetest.First

func requireKind(t *testing.T, want Kind, err error) *Error {
	t.Helper()
	require.Error(t, err)
	var pe *Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, want, pe.Kind, "error: %v", err)
	return pe
}
