package runlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireIsExclusive(t *testing.T) {
	dir := t.TempDir()

	a := New(dir)
	release, err := a.Acquire()
	require.NoError(t, err)

	b := New(dir)
	_, err = b.Acquire()
	assert.ErrorIs(t, err, ErrBusy)

	release()

	release2, err := b.Acquire()
	require.NoError(t, err)
	release2()
}
