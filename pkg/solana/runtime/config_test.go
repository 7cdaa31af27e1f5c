package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithEnvConfigs(t *testing.T) {
	ctx := context.Background()

	conf := WithEnvConfigs()()
	assert.EqualValues(t, defaultComputeUnitLimit, conf.computeUnitLimit.Get(ctx))
	assert.EqualValues(t, defaultLamportsPerSignature, conf.lamportsPerSignature.Get(ctx))
	assert.EqualValues(t, defaultMaxInvokeDepth, conf.maxInvokeDepth.Get(ctx))
	assert.EqualValues(t, defaultStatusCacheSize, conf.statusCacheSize.Get(ctx))

	t.Setenv(ComputeUnitLimitConfigEnvName, "1234")
	t.Setenv(LamportsPerSignatureConfigEnvName, "0")
	t.Setenv(MaxInvokeDepthConfigEnvName, "invalid")

	conf = WithEnvConfigs()()
	assert.EqualValues(t, 1234, conf.computeUnitLimit.Get(ctx))
	assert.EqualValues(t, 0, conf.lamportsPerSignature.Get(ctx))
	assert.EqualValues(t, defaultMaxInvokeDepth, conf.maxInvokeDepth.Get(ctx))
}

func TestWithDefaultConfigs(t *testing.T) {
	ctx := context.Background()
	t.Setenv(ComputeUnitLimitConfigEnvName, "1234")

	conf := WithDefaultConfigs()()
	assert.EqualValues(t, defaultComputeUnitLimit, conf.computeUnitLimit.Get(ctx))
}
