package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKinds(t *testing.T) {
	v, err := Parse([]byte(`{"a":null,"b":true,"c":1.5,"d":"x","e":[1,2],"f":{}}`))
	require.NoError(t, err)
	require.True(t, v.IsObject())

	want := map[string]Kind{
		"a": KindNull,
		"b": KindBool,
		"c": KindNumber,
		"d": KindString,
		"e": KindArray,
		"f": KindObject,
	}
	for key, kind := range want {
		got, ok := v.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, kind, got.Kind(), key)
	}
	assert.Equal(t, 6, v.Len())
}

func TestParseKeepsMemberOrder(t *testing.T) {
	v, err := Parse([]byte(`{"z":1,"a":2,"m":3}`))
	require.NoError(t, err)

	var keys []string
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)
}

func TestParseDuplicateKeyLastWins(t *testing.T) {
	v, err := Parse([]byte(`{"k":1,"k":2}`))
	require.NoError(t, err)
	assert.Equal(t, 2, v.IntOr("k", 0))
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty":      ``,
		"truncated":  `{"a":`,
		"trailing":   `{} {}`,
		"bad token":  `{"a":tru}`,
		"bad number": `[1e999]`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsDeepNesting(t *testing.T) {
	input := strings.Repeat("[", maxDepth+1) + strings.Repeat("]", maxDepth+1)
	_, err := Parse([]byte(input))
	assert.ErrorIs(t, err, errTooDeep)
}

func TestDefaultsOnMissingOrWrongShape(t *testing.T) {
	v, err := Parse([]byte(`{"count":"three","name":7,"flag":1,"scale":"big","half":2.5}`))
	require.NoError(t, err)

	assert.Equal(t, -1, v.IntOr("missing", -1))
	assert.Equal(t, -1, v.IntOr("count", -1))
	assert.Equal(t, -1, v.IntOr("half", -1), "non-integral numbers are not ints")
	assert.Equal(t, "def", v.StringOr("name", "def"))
	assert.False(t, v.BoolOr("flag", false))
	assert.Equal(t, float32(1), v.Float32Or("scale", 1))
	assert.Equal(t, float32(2.5), v.Float32Or("half", 0))
}

func TestAccessorsOnNonContainers(t *testing.T) {
	var null Value
	assert.True(t, null.IsNull())
	assert.Equal(t, 0, null.Len())
	assert.Nil(t, null.Elems())
	assert.Nil(t, null.Members())
	assert.Equal(t, 3, null.IntOr("x", 3))

	_, ok := null.Index(0)
	assert.False(t, ok)
	_, ok = null.Get("x")
	assert.False(t, ok)
}

func TestNumericArrays(t *testing.T) {
	v, err := Parse([]byte(`{"t":[1,2,3],"mixed":[1,"2"],"ints":[0,4,9],"frac":[1,2.5]}`))
	require.NoError(t, err)

	f, ok := v.Field("t").Float32s()
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, f)

	_, ok = v.Field("mixed").Float32s()
	assert.False(t, ok)

	n, ok := v.Field("ints").Ints()
	require.True(t, ok)
	assert.Equal(t, []int{0, 4, 9}, n)

	_, ok = v.Field("frac").Ints()
	assert.False(t, ok)
}

func TestIndex(t *testing.T) {
	v, err := Parse([]byte(`["a","b"]`))
	require.NoError(t, err)

	e, ok := v.Index(1)
	require.True(t, ok)
	s, _ := e.AsString()
	assert.Equal(t, "b", s)

	_, ok = v.Index(2)
	assert.False(t, ok)
	_, ok = v.Index(-1)
	assert.False(t, ok)
}
