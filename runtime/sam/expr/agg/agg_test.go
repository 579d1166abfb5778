package agg

import (
	"testing"

	"github.com/brimdata/gather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, name string, vals ...string) gather.Value {
	t.Helper()
	pattern, err := NewPattern(name)
	require.NoError(t, err)
	f := pattern()
	for _, v := range vals {
		f.Consume(gather.MustParse(v))
	}
	return f.Result()
}

func TestAggregates(t *testing.T) {
	cases := []struct {
		name     string
		vals     []string
		expected string
	}{
		{"LENGTH", []string{"1", "null", `"a"`}, "3"},
		{"count", nil, "0"},
		{"MIN", []string{"null", "3", "1", "2"}, "1"},
		{"MIN", []string{"null"}, "null"},
		{"MAX", []string{"3", `"a"`, "null"}, `"a"`},
		{"SUM", []string{"1", "2", "null", `"x"`, "4"}, "7"},
		{"SUM", nil, "0"},
		{"AVERAGE", []string{"1", "2", "null", "6"}, "3"},
		{"AVG", []string{"null"}, "null"},
		{"COUNT_DISTINCT", []string{"1", "1", "2", "null", "[1]", "[1,null]"}, "3"},
		{"UNIQUE", []string{"3", "1", "3", "null", "2"}, "[3,1,2]"},
		{"SORTED_UNIQUE", []string{"3", "1", "3", "null", "2"}, "[1,2,3]"},
		{"PUSH", []string{"3", "null", "3"}, "[3,null,3]"},
		{"VARIANCE_POPULATION", []string{"1", "2", "3", "4"}, "1.25"},
		{"VARIANCE_SAMPLE", []string{"1", "2", "3", "4", "5"}, "2.5"},
		{"VARIANCE_SAMPLE", []string{"1"}, "null"},
		{"STDDEV", []string{"2", "4", "4", "4", "5", "5", "7", "9"}, "2"},
		{"STDDEV_SAMPLE", nil, "null"},
		{"BIT_AND", []string{"7", "null", "3"}, "3"},
		{"BIT_OR", []string{"1", "2", "4"}, "7"},
		{"BIT_XOR", []string{"5", "1"}, "4"},
		{"BIT_OR", []string{"1", "-1"}, "null"},
		{"BIT_OR", nil, "null"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, run(t, c.name, c.vals...).String())
		})
	}
}

func TestCanonical(t *testing.T) {
	name, ok := Canonical("count_unique")
	assert.True(t, ok)
	assert.Equal(t, "COUNT_DISTINCT", name)
	_, ok = Canonical("IS_NUMBER")
	assert.False(t, ok)
	_, err := NewPattern("CONCAT")
	assert.ErrorContains(t, err, "unknown aggregate function")
}

func TestSizeGrows(t *testing.T) {
	pattern, err := NewPattern("PUSH")
	require.NoError(t, err)
	f := pattern()
	before := f.Size()
	f.Consume(gather.NewString("a long enough string"))
	assert.Greater(t, f.Size(), before)
}
