package runtime

import (
	"github.com/code-payments/code-vault/pkg/config"
	"github.com/code-payments/code-vault/pkg/config/env"
	"github.com/code-payments/code-vault/pkg/config/memory"
	"github.com/code-payments/code-vault/pkg/config/wrapper"
)

const (
	envConfigPrefix = "SOLANA_RUNTIME_"

	ComputeUnitLimitConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_LIMIT"
	defaultComputeUnitLimit       = 200_000

	LamportsPerSignatureConfigEnvName = envConfigPrefix + "LAMPORTS_PER_SIGNATURE"
	defaultLamportsPerSignature       = 5_000

	MaxInvokeDepthConfigEnvName = envConfigPrefix + "MAX_INVOKE_DEPTH"
	defaultMaxInvokeDepth       = 4

	StatusCacheSizeConfigEnvName = envConfigPrefix + "STATUS_CACHE_SIZE"
	defaultStatusCacheSize       = 100_000
)

type conf struct {
	computeUnitLimit     config.Uint64
	lamportsPerSignature config.Uint64
	maxInvokeDepth       config.Uint64
	statusCacheSize      config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			computeUnitLimit:     env.NewUint64Config(ComputeUnitLimitConfigEnvName, defaultComputeUnitLimit),
			lamportsPerSignature: env.NewUint64Config(LamportsPerSignatureConfigEnvName, defaultLamportsPerSignature),
			maxInvokeDepth:       env.NewUint64Config(MaxInvokeDepthConfigEnvName, defaultMaxInvokeDepth),
			statusCacheSize:      env.NewUint64Config(StatusCacheSizeConfigEnvName, defaultStatusCacheSize),
		}
	}
}

// WithDefaultConfigs returns the default configuration, ignoring the
// environment.
func WithDefaultConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			computeUnitLimit:     wrapper.NewUint64Config(config.NoopConfig, defaultComputeUnitLimit),
			lamportsPerSignature: wrapper.NewUint64Config(config.NoopConfig, defaultLamportsPerSignature),
			maxInvokeDepth:       wrapper.NewUint64Config(config.NoopConfig, defaultMaxInvokeDepth),
			statusCacheSize:      wrapper.NewUint64Config(config.NoopConfig, defaultStatusCacheSize),
		}
	}
}

type testOverrides struct {
	computeUnitLimit     uint64
	lamportsPerSignature uint64
	maxInvokeDepth       uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			computeUnitLimit:     wrapper.NewUint64Config(memory.NewConfig(overrides.computeUnitLimit), defaultComputeUnitLimit),
			lamportsPerSignature: wrapper.NewUint64Config(memory.NewConfig(overrides.lamportsPerSignature), defaultLamportsPerSignature),
			maxInvokeDepth:       wrapper.NewUint64Config(memory.NewConfig(overrides.maxInvokeDepth), defaultMaxInvokeDepth),
			statusCacheSize:      wrapper.NewUint64Config(memory.NewConfig(uint64(1000)), defaultStatusCacheSize),
		}
	}
}
