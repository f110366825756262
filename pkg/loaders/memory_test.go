package loaders_test

import (
	"context"
	"testing"

	"github.com/tmalden/vellum/pkg/loaders"
	"github.com/tmalden/vellum/pkg/loaders/tests"
)

func TestMapLoader_Contract(t *testing.T) {
	data := map[string]string{
		"index":   "<HTML>{% include 'heading' %}</HTML>",
		"heading": "<h1>{{ some }}</h1>",
	}
	tests.LoaderContractTest(t, loaders.NewMapLoader(data), data)
}

func TestMapLoader_CopiesInput(t *testing.T) {
	data := map[string]string{"index": "v1"}
	loader := loaders.NewMapLoader(data)

	data["index"] = "v2"

	source, err := loader.Load(context.Background(), "index")
	if err != nil {
		t.Fatal(err)
	}
	if source.Contents != "v1" {
		t.Errorf("loader observed caller mutation: got %q", source.Contents)
	}
}
