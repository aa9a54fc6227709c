package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_NoEndpoints(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestNewClientFromEnv_Unset(t *testing.T) {
	t.Setenv("PLAYBOOKLAB_REGISTRY_ENDPOINTS", "")

	client, err := NewClientFromEnv()
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestClientTLS_Disabled(t *testing.T) {
	cfg, err := clientTLS(nil)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	cfg, err = clientTLS(&TLSConfig{Enabled: false, CertFile: "x"})
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestClientTLS_MissingFiles(t *testing.T) {
	_, err := clientTLS(&TLSConfig{Enabled: true, CertFile: "cert.pem"})
	assert.Error(t, err)
}

func TestNewInstance(t *testing.T) {
	a := NewInstance("api", "studio", "1.0.0", "localhost:8080")
	b := NewInstance("api", "studio", "1.0.0", "localhost:8081")

	assert.Equal(t, "api", a.Role)
	assert.Equal(t, "studio", a.Name)
	assert.NotEmpty(t, a.InstanceID)
	assert.NotEqual(t, a.InstanceID, b.InstanceID)
	assert.False(t, a.StartedAt.IsZero())
}

func TestBuildKey(t *testing.T) {
	c := &Client{namespace: "playbooklab"}
	key := c.buildKey("api", "studio", "abc-123")
	assert.Equal(t, "/playbooklab/api/studio/abc-123", key)
}
