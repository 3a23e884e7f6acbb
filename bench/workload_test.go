package bench

import (
	"testing"

	"github.com/buddyalloc/buddyalloc/config"
	"github.com/buddyalloc/buddyalloc/pool"
	"github.com/stretchr/testify/require"
)

func newTestHarness(t *testing.T, cfg config.Config) *Harness {
	t.Helper()
	p, err := pool.Construct(cfg.MinOrder, cfg.MaxOrder, nil)
	require.NoError(t, err)
	t.Cleanup(p.Destroy)
	return New(p, nil, cfg, nil)
}

func baseCfg() config.Config {
	cfg := config.Defaults()
	cfg.MinOrder = 6
	cfg.MaxOrder = 16
	cfg.MinBlockSize = 32
	cfg.MaxBlockSize = 256
	cfg.BlockSize = 64
	cfg.Threads = 2
	cfg.Ops = 200
	return cfg
}

func TestRunSequential_LeavesPoolFullyFree(t *testing.T) {
	cfg := baseCfg()
	cfg.Test = config.WorkloadSequential
	h := newTestHarness(t, cfg)

	require.NoError(t, h.RunSequential())
	require.Equal(t, 1.0, h.Pool.Fragmentation())
	require.NoError(t, h.Pool.Validate())
	require.EqualValues(t, cfg.Ops, h.Pool.TotalAllocations())
}

func TestRunRandom_LeavesPoolFullyFree(t *testing.T) {
	cfg := baseCfg()
	cfg.Test = config.WorkloadRandom
	h := newTestHarness(t, cfg)

	require.NoError(t, h.RunRandom())
	require.Equal(t, 1.0, h.Pool.Fragmentation())
	require.NoError(t, h.Pool.Validate())
}

func TestRunMixed_LeavesPoolFullyFree(t *testing.T) {
	cfg := baseCfg()
	cfg.Test = config.WorkloadMixed
	h := newTestHarness(t, cfg)

	require.NoError(t, h.RunMixed())
	require.Equal(t, 1.0, h.Pool.Fragmentation())
	require.NoError(t, h.Pool.Validate())
}

func TestRunThroughput_CompletesWithinDeadline(t *testing.T) {
	cfg := baseCfg()
	cfg.Test = config.WorkloadSequential
	cfg.DurationSecs = 0.05
	h := newTestHarness(t, cfg)

	require.NoError(t, h.RunThroughput())
	require.Equal(t, 1.0, h.Pool.Fragmentation())
	require.NoError(t, h.Pool.Validate())
}

func TestRunStress_LeavesNoLiveAllocations(t *testing.T) {
	cfg := baseCfg()
	cfg.Test = config.WorkloadStress
	cfg.DurationSecs = 0.05
	h := newTestHarness(t, cfg)

	require.NoError(t, h.RunStress())
	require.Equal(t, 1.0, h.Pool.Fragmentation())
	require.NoError(t, h.Pool.Validate())
}

func TestHarness_Run_RejectsUnknownWorkloadKind(t *testing.T) {
	cfg := baseCfg()
	cfg.Ops = 20
	cfg.Test = config.WorkloadKind("bogus")
	h := newTestHarness(t, cfg)

	err := h.Run()
	require.Error(t, err)
}

func TestDivideOpsAndRandomSize(t *testing.T) {
	require.Equal(t, 10, divideOps(100, 10))
	require.Equal(t, 100, divideOps(100, 0))

	require.Equal(t, 5, randomSize(nil, 5, 5))
}
