package criterion

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnott/dircomp/internal/fsport"
)

func fileDesc(size int64, mtime time.Time, content []byte) *fsport.Descriptor {
	return &fsport.Descriptor{
		Kind:     fsport.KindFile,
		Size:     size,
		ModTime:  mtime,
		HashFunc: func() ([]byte, error) { return pseudoHash(content), nil },
	}
}

// pseudoHash is a stand-in digest: equal content, equal digest.
func pseudoHash(content []byte) []byte {
	sum := make([]byte, 8)
	for i, b := range content {
		sum[i%8] ^= b
	}
	return sum
}

func TestSize(t *testing.T) {
	now := time.Now()
	a := fileDesc(4, now, []byte("aaaa"))
	b := fileDesc(4, now, []byte("bbbb"))
	c := fileDesc(5, now, []byte("ccccc"))

	equal, err := Size{}.Equal(a, b)
	require.NoError(t, err)
	assert.True(t, equal, "same size should compare equal")

	equal, err = Size{}.Equal(a, c)
	require.NoError(t, err)
	assert.False(t, equal, "different size should compare unequal")
}

func TestMtime(t *testing.T) {
	now := time.Now()
	a := fileDesc(4, now, []byte("aaaa"))
	b := fileDesc(9, now, []byte("bbbbbbbbb"))
	later := fileDesc(4, now.Add(time.Second), []byte("aaaa"))

	equal, err := Mtime{}.Equal(a, b)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = Mtime{}.Equal(a, later)
	require.NoError(t, err)
	assert.False(t, equal)
}

// Same size but different content: size says equal, hash says changed.
func TestHash_SameSizeDifferentContent(t *testing.T) {
	now := time.Now()
	a := fileDesc(4, now, []byte("aaaa"))
	b := fileDesc(4, now, []byte("bbbb"))

	equal, err := Size{}.Equal(a, b)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = Hash{}.Equal(a, b)
	require.NoError(t, err)
	assert.False(t, equal)
}

func TestHash_EqualContent(t *testing.T) {
	now := time.Now()
	a := fileDesc(4, now, []byte("same"))
	b := fileDesc(4, now.Add(time.Hour), []byte("same"))

	equal, err := Hash{}.Equal(a, b)
	require.NoError(t, err)
	assert.True(t, equal)
}

// Differing sizes must short-circuit before any content is read.
func TestHash_SizeFastPath(t *testing.T) {
	hashed := false
	a := &fsport.Descriptor{
		Kind: fsport.KindFile,
		Size: 4,
		HashFunc: func() ([]byte, error) {
			hashed = true
			return []byte{1}, nil
		},
	}
	b := &fsport.Descriptor{
		Kind: fsport.KindFile,
		Size: 5,
		HashFunc: func() ([]byte, error) {
			hashed = true
			return []byte{2}, nil
		},
	}

	equal, err := Hash{}.Equal(a, b)
	require.NoError(t, err)
	assert.False(t, equal)
	assert.False(t, hashed, "no content should be read when sizes already differ")
}

func TestHash_ReadError(t *testing.T) {
	readErr := errors.New("disk on fire")
	a := &fsport.Descriptor{
		Kind:     fsport.KindFile,
		Size:     4,
		HashFunc: func() ([]byte, error) { return nil, readErr },
	}
	b := fileDesc(4, time.Now(), []byte("good"))

	_, err := Hash{}.Equal(a, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
}

func TestHash_Symlinks(t *testing.T) {
	a := &fsport.Descriptor{Kind: fsport.KindSymlink, LinkTarget: "target"}
	b := &fsport.Descriptor{Kind: fsport.KindSymlink, LinkTarget: "target"}
	c := &fsport.Descriptor{Kind: fsport.KindSymlink, LinkTarget: "elsewhere"}

	equal, err := Hash{}.Equal(a, b)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = Hash{}.Equal(a, c)
	require.NoError(t, err)
	assert.False(t, equal)
}

// countingCriterion records whether it ran.
type countingCriterion struct {
	calls  *int
	result bool
}

func (c countingCriterion) Name() string { return "counting" }

func (c countingCriterion) Equal(_, _ *fsport.Descriptor) (bool, error) {
	*c.calls++
	return c.result, nil
}

func TestComposite_ShortCircuits(t *testing.T) {
	first, second := 0, 0
	crit := Composite{
		countingCriterion{calls: &first, result: false},
		countingCriterion{calls: &second, result: true},
	}

	equal, err := crit.Equal(nil, nil)
	require.NoError(t, err)
	assert.False(t, equal)
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second, "second criterion must not run after the first reported unequal")
}

func TestComposite_AllEqual(t *testing.T) {
	first, second := 0, 0
	crit := Composite{
		countingCriterion{calls: &first, result: true},
		countingCriterion{calls: &second, result: true},
	}

	equal, err := crit.Equal(nil, nil)
	require.NoError(t, err)
	assert.True(t, equal)
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestComposite_Name(t *testing.T) {
	assert.Equal(t, "size+hash", Composite{Size{}, Hash{}}.Name())
}

func TestByName(t *testing.T) {
	for _, name := range []string{"size", "hash", "mtime", "ctime", "atime", "exact"} {
		crit, err := ByName(name)
		require.NoError(t, err, name)
		require.NotNil(t, crit, name)
	}

	_, err := ByName("bogus")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	crit, err := Parse("size")
	require.NoError(t, err)
	assert.Equal(t, "size", crit.Name())

	crit, err = Parse("size, mtime")
	require.NoError(t, err)
	assert.Equal(t, "size+mtime", crit.Name())

	_, err = Parse("")
	assert.Error(t, err)

	_, err = Parse("size,bogus")
	assert.Error(t, err)
}
