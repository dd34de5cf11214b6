package capture

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterFuncDelegatesWrite(t *testing.T) {
	called := false
	writer := writerFunc(func(b []byte) (int, error) {
		called = true
		require.Equal(t, []byte{1, 2, 3}, b)
		return len(b), nil
	})

	n, err := writer.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.True(t, called)
}
