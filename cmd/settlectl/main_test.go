package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	httpapi "flowerstand/internal/adapters/in/http"
	"flowerstand/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "absent.env")))
	err := root.Execute()
	return out.String(), err
}

func TestEstimate(t *testing.T) {
	args := []string{
		"estimate",
		"--collected", "45000",
		"--material", "4500",
		"--delivery", "2026-05-15T10:00:00Z",
		"--as-of", "2026-05-10T10:00:00Z",
	}

	t.Run("should print a table with grouped amounts", func(t *testing.T) {
		out, err := run(t, args...)

		require.NoError(t, err)
		assert.Contains(t, out, "50% (4-7 days)")
		assert.Contains(t, out, "45,000")
		assert.Contains(t, out, "27,000")
		assert.Contains(t, out, "18,000")
	})

	t.Run("should print json", func(t *testing.T) {
		out, err := run(t, append(args, "-o", "json")...)
		require.NoError(t, err)

		var view estimateView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Equal(t, 5, view.DaysRemaining)
		assert.Equal(t, "PREPARATION", view.Tier)
		assert.Equal(t, "0.5", view.CancellationRate)
		assert.Equal(t, int64(22500), view.BaseFee)
		assert.Equal(t, int64(27000), view.TotalFee)
		assert.Equal(t, int64(18000), view.RefundAmount)
	})

	t.Run("should print yaml", func(t *testing.T) {
		out, err := run(t, append(args, "-o", "yaml")...)
		require.NoError(t, err)

		var view map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &view))
		assert.Equal(t, "PREPARATION", view["tier"])
		assert.Equal(t, 18000, view["refundAmount"])
	})

	t.Run("should cap the fee at the collected amount", func(t *testing.T) {
		out, err := run(t,
			"estimate", "--collected", "45000", "--material", "10000",
			"--delivery", "2026-05-12T10:00:00Z", "--as-of", "2026-05-10T10:00:00Z", "-o", "json")
		require.NoError(t, err)

		var view estimateView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Equal(t, "LAST_MINUTE", view.Tier)
		assert.Equal(t, int64(45000), view.TotalFee)
		assert.Equal(t, int64(0), view.RefundAmount)
	})

	t.Run("should reject a negative collected amount", func(t *testing.T) {
		_, err := run(t, "estimate", "--collected", "-1", "--delivery", "2026-05-15T10:00:00Z")

		require.Error(t, err)
	})

	t.Run("should reject a malformed delivery", func(t *testing.T) {
		_, err := run(t, "estimate", "--collected", "100", "--delivery", "next friday")

		require.ErrorContains(t, err, "--delivery")
	})
}

func TestTiers(t *testing.T) {
	out, err := run(t, "tiers", "-o", "json")
	require.NoError(t, err)

	var views []tierView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 3)
	assert.Equal(t, "EARLY", views[0].Tier)
	assert.Equal(t, "0", views[0].Rate)
	require.NotNil(t, views[0].MinDays)
	assert.Equal(t, 8, *views[0].MinDays)
	assert.Equal(t, "LAST_MINUTE", views[2].Tier)
	assert.Equal(t, "1", views[2].Rate)
	assert.Nil(t, views[2].MinDays)
	require.NotNil(t, views[2].MaxDays)
	assert.Equal(t, 3, *views[2].MaxDays)
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "flowerstand-cli")
	actorID := kernel.NewUUID()

	out, err := run(t, "token", "--actor", actorID.String(), "--role", "operator")
	require.NoError(t, err)

	claims := &httpapi.Claims{}
	_, err = jwt.ParseWithClaims(string(bytes.TrimSpace([]byte(out))), claims, func(*jwt.Token) (any, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, actorID.String(), claims.Subject)
	assert.Equal(t, "flowerstand-cli", claims.Issuer)
	assert.Equal(t, []string{"operator"}, claims.Roles)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "tiers", "-o", "xml")

	require.ErrorContains(t, err, "xml")
}

func TestFormatAmount(t *testing.T) {
	testCases := map[int64]string{
		0:          "0",
		999:        "999",
		45000:      "45,000",
		1234567890: "1,234,567,890",
		-27000:     "-27,000",
	}
	for in, want := range testCases {
		assert.Equal(t, want, formatAmount(in))
	}
}
