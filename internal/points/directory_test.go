package points

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	labels  []Labeled
	classes map[string]string
	err     error
}

func (f fakeSource) Labels(context.Context) ([]Labeled, error) { return f.labels, f.err }

func (f fakeSource) ClassOf(_ context.Context, id string) (string, bool) {
	c, ok := f.classes[id]
	return c, ok
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory()

	_, ok := d.ResolveLabel("anything")
	assert.False(t, ok, "empty directory resolves nothing")

	src := fakeSource{
		labels: []Labeled{
			{ID: "urn:a", Label: "A_Cool_SP"},
			{ID: "urn:b", Label: "B_Unclassed"},
		},
		classes: map[string]string{"urn:a": "brick:Cooling_Setpoint"},
	}
	require.NoError(t, d.Rebuild(ctx, src))

	t.Run("resolve label", func(t *testing.T) {
		id, ok := d.ResolveLabel("A_Cool_SP")
		assert.True(t, ok)
		assert.Equal(t, "urn:a", id)

		_, ok = d.ResolveLabel("missing")
		assert.False(t, ok)
	})

	t.Run("unresolved class is empty", func(t *testing.T) {
		assert.Equal(t, "brick:Cooling_Setpoint", d.ResolveClass("urn:a"))
		assert.Equal(t, "", d.ResolveClass("urn:b"))
		assert.Equal(t, "", d.ResolveClass("urn:missing"))
	})

	t.Run("label lookup and ordering", func(t *testing.T) {
		label, ok := d.Label("urn:b")
		assert.True(t, ok)
		assert.Equal(t, "B_Unclassed", label)
		all := d.All()
		require.Len(t, all, 2)
		assert.Equal(t, "urn:a", all[0].ID)
	})

	t.Run("failed rebuild keeps previous snapshot", func(t *testing.T) {
		err := d.Rebuild(ctx, fakeSource{err: errors.New("oracle down")})
		require.Error(t, err)
		_, ok := d.ResolveLabel("A_Cool_SP")
		assert.True(t, ok)
	})
}
