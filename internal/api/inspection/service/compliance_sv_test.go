package inspectionService

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"uniform-inspection/internal/entity"
)

func TestEvaluateCompliance_PartitionsChecklist(t *testing.T) {
	cases := [][]string{
		{},
		{"casco"},
		{"casco", "casco", "casco"},
		{"drone", "ladder"},
		{"botas", "gafas", "guantes", "casco", "camisa", "polo", "pantalon", "carnet"},
		{"carnet", "botas", "unknown", "polo"},
	}

	for _, detected := range cases {
		verdict := EvaluateCompliance(detected)

		require.Len(t, append(verdict.Present, verdict.Missing...), len(entity.UniformChecklist))

		seen := map[string]int{}
		for _, item := range verdict.Present {
			seen[item]++
		}
		for _, item := range verdict.Missing {
			seen[item]++
		}
		for _, item := range entity.UniformChecklist {
			require.Equal(t, 1, seen[item], "item %q must appear exactly once", item)
		}
	}
}

func TestEvaluateCompliance_Percentage(t *testing.T) {
	verdict := EvaluateCompliance([]string{"botas", "casco"})
	require.Equal(t, []string{"botas", "casco"}, verdict.Present)
	require.InDelta(t, 25.0, verdict.Percentage, 0.001)

	full := EvaluateCompliance([]string{"botas", "gafas", "guantes", "casco", "camisa", "polo", "pantalon", "carnet"})
	require.InDelta(t, 100.0, full.Percentage, 0.001)
	require.Empty(t, full.Missing)

	empty := EvaluateCompliance(nil)
	require.Zero(t, empty.Percentage)
	require.Empty(t, empty.Present)
	require.Len(t, empty.Missing, 8)
}

func TestEvaluateCompliance_DuplicatesDoNotInflate(t *testing.T) {
	verdict := EvaluateCompliance([]string{"polo", "polo", "polo", "polo"})
	require.Equal(t, []string{"polo"}, verdict.Present)
	require.InDelta(t, 12.5, verdict.Percentage, 0.001)
}

func TestEvaluateCompliance_UnknownNamesIgnored(t *testing.T) {
	verdict := EvaluateCompliance([]string{"casco", "chaleco", "radio", "mochila"})
	require.Equal(t, []string{"casco"}, verdict.Present)
	require.InDelta(t, 12.5, verdict.Percentage, 0.001)
}

func TestEvaluateCompliance_OutputOrderIsDeterministic(t *testing.T) {
	detected := []string{"carnet", "polo", "casco", "botas"}
	expected := EvaluateCompliance(detected)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), detected...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		verdict := EvaluateCompliance(shuffled)
		require.Equal(t, expected.Present, verdict.Present)
		require.Equal(t, expected.Missing, verdict.Missing)
	}

	// Present/missing always follow checklist order, never detection order.
	require.Equal(t, []string{"botas", "casco", "polo", "carnet"}, expected.Present)
	require.Equal(t, []string{"gafas", "guantes", "camisa", "pantalon"}, expected.Missing)
}

func TestEvaluateCompliance_CascoPoloScenario(t *testing.T) {
	verdict := EvaluateCompliance([]string{"casco", "polo"})

	require.InDelta(t, 25.0, verdict.Percentage, 0.001)
	require.Equal(t, []string{"casco", "polo"}, verdict.Present)
	require.Equal(t, []string{"botas", "gafas", "guantes", "camisa", "pantalon", "carnet"}, verdict.Missing)
}
