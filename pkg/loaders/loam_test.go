package loaders_test

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmalden/vellum/internal/testutils"
	"github.com/tmalden/vellum/pkg/loaders"
	"github.com/tmalden/vellum/pkg/loaders/tests"
)

func setupLoamLoader(t *testing.T) *loaders.LoamLoader {
	t.Helper()

	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()

	docs := []core.Document{
		{
			ID: "index.md",
			Content: `---
description: landing page
---
Hello {{ you }}`,
		},
		{
			ID: "heading.md",
			Content: `---
name: heading
---
<h1>{{ some }}</h1>`,
		},
		{
			ID: "wip.md",
			Content: `---
draft: true
---
not ready`,
		},
	}
	for _, doc := range docs {
		require.NoError(t, repo.Save(ctx, doc))
	}

	return loaders.NewLoamLoader(loam.NewTypedRepository[loaders.TemplateMeta](repo))
}

func TestLoamLoader_Contract(t *testing.T) {
	loader := setupLoamLoader(t)

	tests.LoaderContractTest(t, loader, map[string]string{
		"index.md":   "Hello {{ you }}",
		"heading.md": "<h1>{{ some }}</h1>",
	})
}

func TestLoamLoader_DraftsAreHidden(t *testing.T) {
	loader := setupLoamLoader(t)

	_, err := loader.Load(context.Background(), "wip.md")
	assert.ErrorIs(t, err, loaders.ErrNotFound)
}

func TestLoamLoader_List(t *testing.T) {
	loader := setupLoamLoader(t)

	names, err := loader.List(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"index", "heading"}, names)
}
