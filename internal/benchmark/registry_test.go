package benchmark

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constCase(name string) *Case {
	return New(name, func() int { return 1 })
}

func names(r *Registry) []string {
	var out []string
	for c := range r.All() {
		out = append(out, c.Name())
	}
	return out
}

func TestRegistryPreservesOrder(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(constCase(n)))
	}

	assert.Equal(t, []string{"c", "a", "b"}, names(r))
	// All is restartable.
	assert.Equal(t, []string{"c", "a", "b"}, names(r))
	assert.Equal(t, 3, r.Len())
}

func TestRegistryDuplicateName(t *testing.T) {
	r := NewRegistry()
	first := constCase("dup")
	require.NoError(t, r.Register(first))

	err := r.Register(constCase("dup"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateName))
	assert.Contains(t, err.Error(), `"dup"`)

	assert.Equal(t, 1, r.Len())
	got, ok := r.Lookup("dup")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestRegistryRejectsInvalidCases(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(constCase("")))
	assert.Zero(t, r.Len())
}

func TestRegistryCasesIsACopy(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(constCase("a"), constCase("b"))

	cases := r.Cases()
	cases[0] = constCase("mutated")

	assert.Equal(t, []string{"a", "b"}, names(r))
}

func TestRegistryAllStopsEarly(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(constCase("a"), constCase("b"), constCase("c"))

	var seen []string
	for c := range r.All() {
		seen = append(seen, c.Name())
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestRegistryFilter(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(constCase("SHA256Hash"), constCase("MD5Hash"), constCase("CustomHash"))

	filtered, err := r.Filter("Hash$")
	require.NoError(t, err)
	assert.Equal(t, []string{"SHA256Hash", "MD5Hash", "CustomHash"}, names(filtered))

	filtered, err = r.Filter("^(MD5|Custom)")
	require.NoError(t, err)
	assert.Equal(t, []string{"MD5Hash", "CustomHash"}, names(filtered))

	filtered, err = r.Filter("")
	require.NoError(t, err)
	assert.Equal(t, 3, filtered.Len())

	_, err = r.Filter("(")
	assert.Error(t, err)
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.MustRegister(constCase("x"), constCase("x"))
	})
}
