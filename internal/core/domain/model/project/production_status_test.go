package project_test

import (
	"testing"

	"flowerstand/internal/core/domain/model/project"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionStatus_Next(t *testing.T) {
	t.Run("should follow the single ordered list", func(t *testing.T) {
		current := project.ProductionUnset
		var visited []project.ProductionStatus
		for {
			next, ok := current.Next()
			if !ok {
				break
			}
			visited = append(visited, next)
			current = next
		}

		assert.Equal(t, project.ProductionSteps(), visited)
		assert.Equal(t, project.ProductionCompleted, current)
	})

	t.Run("should only accept ACCEPTED from UNSET", func(t *testing.T) {
		for _, s := range project.ProductionSteps() {
			assert.Equal(t, s == project.ProductionAccepted, project.ProductionUnset.IsNext(s), s.String())
		}
	})

	t.Run("should reject repeats and backward moves", func(t *testing.T) {
		steps := project.ProductionSteps()
		for i, current := range steps {
			for j, requested := range steps {
				assert.Equal(t, j == i+1, current.IsNext(requested), "%s -> %s", current, requested)
			}
		}
	})

	t.Run("should have no successor after COMPLETED", func(t *testing.T) {
		_, ok := project.ProductionCompleted.Next()
		assert.False(t, ok)
	})
}

func TestProductionStatus_StepAndProgress(t *testing.T) {
	testCases := []struct {
		status   project.ProductionStatus
		step     int
		progress int
	}{
		{project.ProductionUnset, -1, 0},
		{project.ProductionAccepted, 0, 0},
		{project.ProductionProcessing, 1, 25},
		{project.ProductionDelivering, 2, 50},
		{project.ProductionDelivered, 3, 75},
		{project.ProductionCompleted, 4, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.step, tc.status.Step())
			assert.Equal(t, tc.progress, tc.status.Progress())
			assert.NotEmpty(t, tc.status.Label())
		})
	}
}

func TestProductionSteps_ReturnsCopy(t *testing.T) {
	steps := project.ProductionSteps()
	steps[0] = project.ProductionCompleted

	assert.Equal(t, project.ProductionAccepted, project.ProductionSteps()[0])
}

func TestProductionStatus_Text(t *testing.T) {
	t.Run("should round trip through text", func(t *testing.T) {
		for _, s := range append(project.ProductionSteps(), project.ProductionUnset) {
			text, err := s.MarshalText()
			require.NoError(t, err)

			var parsed project.ProductionStatus
			require.NoError(t, parsed.UnmarshalText(text))
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("should reject unknown names", func(t *testing.T) {
		var parsed project.ProductionStatus
		err := parsed.UnmarshalText([]byte("SHIPPED"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "productionStatus")
	})

	t.Run("should refuse to marshal the zero value", func(t *testing.T) {
		_, err := project.ProductionUnknown.MarshalText()
		require.Error(t, err)
	})
}
