package project_test

import (
	"testing"

	"flowerstand/internal/core/domain/model/project"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundingStatus(t *testing.T) {
	testCases := []struct {
		status    project.FundingStatus
		name      string
		terminal  bool
		fundraise bool
	}{
		{project.FundingDraft, "DRAFT", false, false},
		{project.FundingPendingApproval, "PENDING_APPROVAL", false, false},
		{project.FundingFundraising, "FUNDRAISING", false, true},
		{project.FundingRejected, "REJECTED", false, false},
		{project.FundingCancelled, "CANCELLED", true, true},
		{project.FundingCompleted, "COMPLETED", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.status.Validate())
			assert.Equal(t, tc.name, tc.status.String())
			assert.Equal(t, tc.terminal, tc.status.IsTerminal())
			assert.Equal(t, tc.fundraise, tc.status.HasStartedFundraising())

			parsed, err := project.ParseFundingStatus(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.status, parsed)
		})
	}

	t.Run("should reject unknown values", func(t *testing.T) {
		require.Error(t, project.FundingUnknown.Validate())
		assert.Equal(t, "UNKNOWN", project.FundingStatus(99).String())

		_, err := project.ParseFundingStatus("ARCHIVED")
		require.Error(t, err)
	})
}
