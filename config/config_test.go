package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayhive/shipper/transmit"
)

func TestDefaultAppliesFieldDefaults(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "https://api.honeycomb.io/", c.APIHost)
	assert.Equal(t, 1, c.SampleRate)
	assert.Equal(t, 50, c.BatchSizeTrigger)
	assert.Equal(t, 100*time.Millisecond, c.BatchTimeTrigger)
	assert.Equal(t, 10, c.MaxConcurrentBatches)
	assert.Equal(t, 10000, c.PendingWorkCapacity)
	assert.Equal(t, 60*time.Second, c.Timeout)
	assert.Equal(t, TransmissionBase, c.Transmission)
	assert.Equal(t, "logrus", c.Logger.Backend)
	assert.Equal(t, "null", c.Metrics.Backend)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shipper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
write_key: abcd1234
dataset: myapp
batch_size_trigger: 5
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", c.WriteKey)
	assert.Equal(t, "myapp", c.Dataset)
	assert.Equal(t, 5, c.BatchSizeTrigger)
	assert.Equal(t, "https://api.honeycomb.io/", c.APIHost, "unset fields still get field defaults")
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shipper.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
write_key = "abcd1234"
dataset = "myapp"
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", c.WriteKey)
	assert.Equal(t, "myapp", c.Dataset)
}

func TestLoadRejectsUnrecognizedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shipper.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRequiresWriteKey(t *testing.T) {
	c := &Config{}
	err := c.Validate()
	assert.Error(t, err)
}

func TestValidateClassicKeyRequiresDataset(t *testing.T) {
	c := &Config{WriteKey: "12345678901234567890123456789012"}
	require.Len(t, c.WriteKey, classicKeyLength)

	err := c.Validate()
	assert.Error(t, err)

	c.Dataset = "myapp"
	assert.NoError(t, c.Validate())
}

func TestValidateDefaultsDatasetForNonClassicKey(t *testing.T) {
	c := &Config{WriteKey: "short-key"}
	require.NoError(t, c.Validate())
	assert.Equal(t, "unknown_dataset", c.Dataset)
}

func TestIsClassicKey(t *testing.T) {
	c := &Config{WriteKey: "12345678901234567890123456789012"}
	assert.True(t, c.IsClassicKey())
	c.WriteKey = "hcaik_abc"
	assert.False(t, c.IsClassicKey())
}

func TestBuildSenderHonorsDisabled(t *testing.T) {
	c := &Config{Disabled: true}
	sender, err := c.BuildSender("1.0", nil, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, transmit.NullSender{}, sender)
}

func TestBuildSenderResolvesEachTransmissionKind(t *testing.T) {
	cases := []struct {
		kind Transmission
		want any
	}{
		{TransmissionNull, transmit.NullSender{}},
		{TransmissionMock, &transmit.MockSender{}},
		{TransmissionConsole, &transmit.WriterSender{}},
	}
	for _, tc := range cases {
		c := &Config{Transmission: tc.kind}
		sender, err := c.BuildSender("1.0", nil, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, tc.want, sender)
	}
}

func TestBuildSenderRejectsUnknownTransmission(t *testing.T) {
	c := &Config{Transmission: "bogus"}
	_, err := c.BuildSender("1.0", nil, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownTransmission)
}

func TestNewResponseRingSizedByMaxResponseQueueSize(t *testing.T) {
	c := &Config{MaxResponseQueueSize: 2}
	ring := c.NewResponseRing()

	ring.Callback(transmit.Outcome{Metadata: 1})
	ring.Callback(transmit.Outcome{Metadata: 2})
	ring.Callback(transmit.Outcome{Metadata: 3})

	got := ring.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Metadata)
	assert.Equal(t, 3, got[1].Metadata)
}

func TestBuildSenderBaseUsesBatchOptions(t *testing.T) {
	c := &Config{
		Transmission:         TransmissionBase,
		BatchSizeTrigger:     5,
		BatchTimeTrigger:     10 * time.Millisecond,
		MaxConcurrentBatches: 2,
		PendingWorkCapacity:  100,
		Timeout:              time.Second,
	}
	sender, err := c.BuildSender("1.0", nil, nil, nil)
	require.NoError(t, err)
	_, ok := sender.(*transmit.BaseSender)
	assert.True(t, ok)
}
