package obs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSamplerRespectsRatio(t *testing.T) {
	require.Contains(t, sampler(0).Description(), "root:AlwaysOnSampler")
	require.Contains(t, sampler(1).Description(), "root:AlwaysOnSampler")
	require.Contains(t, sampler(0.25).Description(), "root:TraceIDRatioBased{0.25}")
}
