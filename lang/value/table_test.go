package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func internedString(s string) *ObjString {
	return &ObjString{Chars: s, Hash: HashString(s)}
}

func TestTableSetGetDelete(t *testing.T) {
	tbl := NewTable()
	a := internedString("a")
	b := internedString("b")

	require.True(t, tbl.Set(a, Number(1)))
	require.False(t, tbl.Set(a, Number(2))) // overwrite, not new
	v, ok := tbl.Get(a)
	require.True(t, ok)
	require.Equal(t, Number(2), v)

	_, ok = tbl.Get(b)
	require.False(t, ok)

	require.True(t, tbl.Delete(a))
	_, ok = tbl.Get(a)
	require.False(t, ok)
	require.False(t, tbl.Delete(a))
}

func TestTableGrowsAndKeepsAllEntries(t *testing.T) {
	tbl := NewTable()
	var keys []*ObjString
	for i := 0; i < 200; i++ {
		k := internedString(string(rune('a')) + itoa(i))
		keys = append(keys, k)
		tbl.Set(k, Number(float64(i)))
	}
	for i, k := range keys {
		v, ok := tbl.Get(k)
		require.True(t, ok)
		require.Equal(t, Number(float64(i)), v)
	}
	require.Equal(t, len(keys), tbl.Len())
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf []byte
	for i > 0 {
		buf = append([]byte{byte('0' + i%10)}, buf...)
		i /= 10
	}
	return string(buf)
}

func TestTableTombstoneProbingContinuesPastDeletedSlot(t *testing.T) {
	tbl := NewTable()
	a := internedString("a")
	// "i" hashes to the same home slot as "a" at capacity 8, so it is
	// stored one slot further along and its lookup must probe past a's slot.
	b := internedString("i")
	tbl.Set(a, Number(1))
	tbl.Set(b, Number(2))
	require.True(t, tbl.Delete(a))
	v, ok := tbl.Get(b)
	require.True(t, ok)
	require.Equal(t, Number(2), v)
}

func TestFindString(t *testing.T) {
	tbl := NewTable()
	a := internedString("hello")
	tbl.Set(a, Bool(true))

	got := tbl.FindString("hello", HashString("hello"))
	require.Same(t, a, got)

	require.Nil(t, tbl.FindString("missing", HashString("missing")))
}

func TestRemoveWhite(t *testing.T) {
	tbl := NewTable()
	marked := internedString("kept")
	marked.Hdr.Marked = true
	unmarked := internedString("swept")

	tbl.Set(marked, Bool(true))
	tbl.Set(unmarked, Bool(true))
	tbl.RemoveWhite()

	require.NotNil(t, tbl.FindString("kept", HashString("kept")))
	require.Nil(t, tbl.FindString("swept", HashString("swept")))
}

func TestValueEqualityAndTruthiness(t *testing.T) {
	require.True(t, Equal(Nil, Nil))
	require.True(t, Equal(Number(1), Number(1)))
	require.False(t, Equal(Number(1), Number(2)))
	require.True(t, Equal(Bool(true), Bool(true)))
	require.False(t, Equal(Number(0), Nil))

	require.True(t, Nil.IsFalsey())
	require.True(t, Bool(false).IsFalsey())
	require.False(t, Bool(true).IsFalsey())
	require.False(t, Number(0).IsFalsey())

	s := internedString("")
	require.False(t, FromObj(s).IsFalsey())
}
