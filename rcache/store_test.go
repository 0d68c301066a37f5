package rcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreWriteReadDelete(t *testing.T) {
	clk := newTestClock()
	fsys := newTestFS(clk)
	lay := newLayout("/root")
	fsys.MkdirAll(lay.payloadDir, 0o755)
	st := newStore(fsys, lay)

	_, ok, err := st.read("missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, st.write("k1", []byte("hello")))
	data, ok, err := st.read("k1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), data)

	assert.NoError(t, st.delete("k1"))
	_, ok, err = st.read("k1")
	assert.NoError(t, err)
	assert.False(t, ok)

	// Deleting an already-missing key is not an error.
	assert.NoError(t, st.delete("k1"))
}

func TestStoreListByAge(t *testing.T) {
	clk := newTestClock()
	fsys := newTestFS(clk)
	lay := newLayout("/root")
	fsys.MkdirAll(lay.payloadDir, 0o755)
	st := newStore(fsys, lay)

	assert.NoError(t, st.write("old", []byte("a")))
	clk.advance(time.Minute)
	assert.NoError(t, st.write("new", []byte("bb")))

	files, err := st.listByAge()
	assert.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, "old", files[0].key)
	assert.Equal(t, "new", files[1].key)

	total, err := st.totalSize()
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestStoreSetMtime(t *testing.T) {
	clk := newTestClock()
	fsys := newTestFS(clk)
	lay := newLayout("/root")
	fsys.MkdirAll(lay.payloadDir, 0o755)
	st := newStore(fsys, lay)

	assert.NoError(t, st.write("k1", []byte("x")))
	future := clk.Now().Add(time.Hour)
	assert.NoError(t, st.setMtime("k1", future))

	files, err := st.list()
	assert.NoError(t, err)
	assert.True(t, files[0].mtime.Equal(future))
}
