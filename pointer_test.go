package ptrpatch

import (
	"testing"

	"github.com/eluv-io/errors-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointer(t *testing.T) {
	tests := []struct {
		in   string
		want Pointer
	}{
		{"", Pointer{}},
		{"/", Pointer{""}},
		{"/foo", Pointer{"foo"}},
		{"/foo/0", Pointer{"foo", "0"}},
		{"/a~1b/c~0d", Pointer{"a/b", "c~d"}},
		{"/~01", Pointer{"~1"}},
		{"/foo//bar", Pointer{"foo", "", "bar"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePointer(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParsePointerInvalid(t *testing.T) {
	for _, in := range []string{"foo", "foo/bar", "/a~", "/a~2b", "#/foo"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParsePointer(in)
			require.Error(t, err)
			assert.True(t, IsInvalidPointer(err), "err=%v", err)
			assert.True(t, errors.IsKind(errors.K.Invalid, err))
		})
	}
}

func TestPointerParentAndLast(t *testing.T) {
	p := NewPointer("a", "b", "c")
	assert.Equal(t, Pointer{"a", "b"}, p.Parent())
	assert.Equal(t, "c", p.Last())
	assert.False(t, p.IsRoot())

	root := NewPointer()
	assert.True(t, root.IsRoot())
	assert.Equal(t, "", root.Last())
	assert.True(t, root.Parent().IsRoot())
	assert.Equal(t, "/a/b/c", p.String())
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		tok  string
		idx  int
		isOk bool
	}{
		{"0", 0, true},
		{"7", 7, true},
		{"42", 42, true},
		{"", 0, false},
		{"-", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"01", 0, false},
		{"1e3", 0, false},
		{"foo", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		idx, ok := parseIndex(tt.tok)
		assert.Equal(t, tt.isOk, ok, "token %q", tt.tok)
		if tt.isOk {
			assert.Equal(t, tt.idx, idx, "token %q", tt.tok)
		}
	}
}
