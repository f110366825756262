package vellum_test

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/tmalden/vellum"
	"github.com/tmalden/vellum/pkg/host"
)

// Caller-supplied keys must win over processor-contributed keys for any
// number of processors, any registration order, and any overlap between
// the key sets.
func TestBuildContext_CallerPrecedenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	genKeys := gen.SliceOfN(5, gen.AlphaString().SuchThat(func(s string) bool { return s != "" }))

	properties.Property("caller keys survive any processor stack", prop.ForAll(
		func(callerKeys []string, processorKeys []string, processorCount int) bool {
			app := host.New("prop")
			for i := 0; i < processorCount; i++ {
				value := i
				app.ContextProcessor(func() map[string]any {
					out := make(map[string]any, len(processorKeys))
					for _, k := range processorKeys {
						out[k] = value
					}
					return out
				})
			}

			renderer, err := vellum.New(
				vellum.WithApp(app),
				vellum.WithContextProcessors(true),
			)
			require.NoError(t, err)

			vars := make(map[string]any, len(callerKeys))
			for _, k := range callerKeys {
				vars[k] = "caller"
			}

			merged := renderer.BuildContext(context.Background(), vars)

			for _, k := range callerKeys {
				if merged[k] != "caller" {
					return false
				}
			}
			return true
		},
		genKeys,
		genKeys,
		gen.IntRange(0, 8),
	))

	properties.TestingRun(t)
}
