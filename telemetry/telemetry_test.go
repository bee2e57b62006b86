package telemetry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"homereport/models"
)

// MockProbe is a mock implementation of the Probe interface
type MockProbe struct {
	mock.Mock
}

func (m *MockProbe) DiskUsage(ctx context.Context, path string) (float64, uint64, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(float64), args.Get(1).(uint64), args.Error(2)
}

func (m *MockProbe) MemoryUsedPercent(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockProbe) UptimeSeconds(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockProbe) LoadAverage(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func newTestCollector(probe *MockProbe) *Collector {
	c := NewCollector(probe, "/")
	c.now = func() time.Time { return time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC) }
	return c
}

func TestCollectDeclaredOrder(t *testing.T) {
	probe := new(MockProbe)
	probe.On("DiskUsage", mock.Anything, "/").Return(42.0, uint64(5000000000), nil)
	probe.On("MemoryUsedPercent", mock.Anything).Return(63.2, nil)
	probe.On("UptimeSeconds", mock.Anything).Return(uint64(86400), nil)
	probe.On("LoadAverage", mock.Anything).Return(0.42, nil)

	samples, err := newTestCollector(probe).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 5)

	names := make([]string, 0, len(samples))
	for _, sample := range samples {
		names = append(names, sample.Name)
	}
	assert.Equal(t, []string{
		MetricDiskUsed, MetricDiskFree, MetricMemoryUsed, MetricUptime, MetricLoad1,
	}, names)

	assert.Equal(t, models.TelemetrySample{
		Name:      MetricDiskUsed,
		Value:     42.0,
		Unit:      "%",
		Timestamp: time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC),
	}, samples[0])
	assert.Equal(t, 5000000000.0, samples[1].Value)
	assert.Equal(t, "bytes", samples[1].Unit)

	probe.AssertExpectations(t)
}

func TestCollectSkipsFailedSource(t *testing.T) {
	probe := new(MockProbe)
	probe.On("DiskUsage", mock.Anything, "/").Return(0.0, uint64(0), fmt.Errorf("statfs: permission denied"))
	probe.On("MemoryUsedPercent", mock.Anything).Return(63.2, nil)
	probe.On("UptimeSeconds", mock.Anything).Return(uint64(86400), nil)
	probe.On("LoadAverage", mock.Anything).Return(0.42, nil)

	samples, err := newTestCollector(probe).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, MetricMemoryUsed, samples[0].Name)
	assert.Equal(t, MetricUptime, samples[1].Name)
	assert.Equal(t, MetricLoad1, samples[2].Name)
}

func TestCollectAllSourcesFailed(t *testing.T) {
	probe := new(MockProbe)
	boom := fmt.Errorf("boom")
	probe.On("DiskUsage", mock.Anything, "/").Return(0.0, uint64(0), boom)
	probe.On("MemoryUsedPercent", mock.Anything).Return(0.0, boom)
	probe.On("UptimeSeconds", mock.Anything).Return(uint64(0), boom)
	probe.On("LoadAverage", mock.Anything).Return(0.0, boom)

	samples, err := newTestCollector(probe).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, samples)
}
