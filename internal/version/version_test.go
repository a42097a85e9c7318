package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pyvm/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Semantic
	}{
		{"3.12.1", Semantic{Major: 3, Minor: 12, Patch: 1}},
		{"Python 3.12.1", Semantic{Major: 3, Minor: 12, Patch: 1}},
		{"Python 3.10\n", Semantic{Major: 3, Minor: 10}},
		{"Download Python 3.14.0", Semantic{Major: 3, Minor: 14}},
		{"3.11.4 (main, Jun  7 2023, 00:00:00) [GCC 12.2.0]", Semantic{Major: 3, Minor: 11, Patch: 4}},
		{"(build 2.7.18) Python 3.9.6", Semantic{Major: 3, Minor: 9, Patch: 6}},
		{"3.13.0rc2", Semantic{Major: 3, Minor: 13, PreLabel: "rc", PreNumber: 2}},
		{"3.13.0a1", Semantic{Major: 3, Minor: 13, PreLabel: "a", PreNumber: 1}},
		{"3.13.0b3", Semantic{Major: 3, Minor: 13, PreLabel: "b", PreNumber: 3}},
		{"3.13.0alpha4", Semantic{Major: 3, Minor: 13, PreLabel: "a", PreNumber: 4}},
		{"3.13.0beta1", Semantic{Major: 3, Minor: 13, PreLabel: "b", PreNumber: 1}},
		{"3.13.0c1", Semantic{Major: 3, Minor: 13, PreLabel: "rc", PreNumber: 1}},
		{"3.13.0rc", Semantic{Major: 3, Minor: 13, PreLabel: "rc"}},
		{"Python 3.12.1+", Semantic{Major: 3, Minor: 12, Patch: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{"", "Python", "three.twelve", "3", "(3.12.1)", "99999999999999999999.1"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrMalformedVersion), "got %v", err)
			assert.Equal(t, "MalformedVersion", errors.Kind(err))
		})
	}
}

func TestParseExact(t *testing.T) {
	v, err := ParseExact(" 3.12.1 ")
	require.NoError(t, err)
	assert.Equal(t, "3.12.1", v.String())

	for _, raw := range []string{"3.12", "3.13.0rc1", "Python 3.12.1", "v3.12.1", "3.12.1.1"} {
		_, err := ParseExact(raw)
		assert.True(t, errors.Is(err, errors.ErrMalformedVersion), raw)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want Ordering
	}{
		{"3.9", "3.10", Less},
		{"3.10.0", "3.9.18", Greater},
		{"3.12", "3.12.0", Equal},
		{"Python 3.12.3", "3.12.3", Equal},
		{"3.12.3", "3.14.0", Less},
		{"3.14.0", "3.14.0", Equal},
		{"3.13.0rc1", "3.13.0", Less},
		{"3.13.0a1", "3.13.0b1", Less},
		{"3.13.0b2", "3.13.0rc1", Less},
		{"3.13.0a2", "3.13.0a10", Less},
		{"3.13.0rc2", "3.12.9", Greater},
		{"2.7.18", "3.0.0a1", Less},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			assert.Equal(t, tt.want, Compare(a, b))
			assert.Equal(t, -tt.want, Compare(b, a), "antisymmetry")
		})
	}
}

func TestCompare_TotalOrder(t *testing.T) {
	raws := []string{
		"2.7.18", "3.0.0", "3.9", "3.9.18", "3.10.0a1", "3.10.0b1", "3.10.0rc1",
		"3.10.0", "3.10.13", "3.12.3", "3.13.0rc2", "3.14.0",
	}
	vs := make([]Semantic, len(raws))
	for i, r := range raws {
		vs[i] = MustParse(r)
	}

	for i, a := range vs {
		assert.Equal(t, Equal, a.Compare(a), "reflexive %s", a)
		for j, b := range vs {
			// raws is sorted ascending
			want := Equal
			switch {
			case i < j:
				want = Less
			case i > j:
				want = Greater
			}
			assert.Equal(t, want, a.Compare(b), "%s vs %s", a, b)

			for _, c := range vs {
				if a.Less(b) && b.Less(c) {
					assert.True(t, a.Less(c), "transitivity %s < %s < %s", a, b, c)
				}
			}
		}
	}
}

func TestSemantic_Formatting(t *testing.T) {
	v := MustParse("Python 3.13.0rc2")
	assert.Equal(t, "3.13.0rc2", v.String())
	assert.Equal(t, "3.13", v.MajorMinor())
	assert.Equal(t, "3130rc2", v.Compact())
	assert.True(t, v.IsPrerelease())
	assert.Equal(t, MustParse("3.13"), v.Branch())

	final := MustParse("3.12.1")
	assert.Equal(t, "3121", final.Compact())
	assert.False(t, final.IsPrerelease())
	assert.False(t, final.IsZero())
	assert.True(t, Semantic{}.IsZero())
}

func TestSemantic_Text(t *testing.T) {
	b, err := MustParse("3.12.1").MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "3.12.1", string(b))

	var v Semantic
	require.NoError(t, v.UnmarshalText([]byte("3.11")))
	assert.Equal(t, "3.11.0", v.String())
	assert.Error(t, v.UnmarshalText([]byte("latest")))
}

func TestOrdering_String(t *testing.T) {
	assert.Equal(t, "lt", Less.String())
	assert.Equal(t, "eq", Equal.String())
	assert.Equal(t, "gt", Greater.String())
}
