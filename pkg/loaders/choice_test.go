package loaders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmalden/vellum/pkg/loaders"
)

func TestChoiceLoader_FirstHitWins(t *testing.T) {
	first := loaders.NewMapLoader(map[string]string{"index": "from first"})
	second := loaders.NewMapLoader(map[string]string{
		"index": "from second",
		"other": "only in second",
	})

	loader := loaders.NewChoiceLoader(first, second)
	ctx := context.Background()

	t.Run("overlapping name resolves to first loader", func(t *testing.T) {
		source, err := loader.Load(ctx, "index")
		require.NoError(t, err)
		assert.Equal(t, "from first", source.Contents)
	})

	t.Run("falls through to later loaders", func(t *testing.T) {
		source, err := loader.Load(ctx, "other")
		require.NoError(t, err)
		assert.Equal(t, "only in second", source.Contents)
	})

	t.Run("miss in every loader is ErrNotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "nowhere")
		assert.ErrorIs(t, err, loaders.ErrNotFound)
	})
}

type failingLoader struct{ err error }

func (l failingLoader) Load(ctx context.Context, name string) (loaders.Source, error) {
	return loaders.Source{}, l.err
}

func TestChoiceLoader_PropagatesHardErrors(t *testing.T) {
	boom := errors.New("backend unavailable")
	loader := loaders.NewChoiceLoader(
		failingLoader{err: boom},
		loaders.NewMapLoader(map[string]string{"index": "never reached"}),
	)

	_, err := loader.Load(context.Background(), "index")
	assert.ErrorIs(t, err, boom)
}
