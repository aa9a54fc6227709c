package serve

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbooklab/sdk/registry"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.GracefulTimeout)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	api, _ := testAPI(t)

	srv, err := NewServer(&Config{Port: 0}, api)
	require.NoError(t, err)
	require.NotZero(t, srv.Port())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	// The listener is live before Serve returns; poll until a request
	// succeeds.
	url := "http://127.0.0.1:" + strconv.Itoa(srv.Port()) + "/health"
	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get(url)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// fakeRegistry records register and deregister calls.
type fakeRegistry struct {
	mu           sync.Mutex
	registered   []registry.Instance
	deregistered []registry.Instance
}

func (f *fakeRegistry) Register(ctx context.Context, inst registry.Instance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, inst)
	return nil
}

func (f *fakeRegistry) Deregister(ctx context.Context, inst registry.Instance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deregistered = append(f.deregistered, inst)
	return nil
}

func (f *fakeRegistry) Discover(ctx context.Context, role, name string) ([]registry.Instance, error) {
	return nil, nil
}

func (f *fakeRegistry) DiscoverAll(ctx context.Context, role string) ([]registry.Instance, error) {
	return nil, nil
}

func (f *fakeRegistry) Watch(ctx context.Context, role, name string) (<-chan []registry.Instance, error) {
	return nil, nil
}

func (f *fakeRegistry) Close() error { return nil }

func TestServer_RegistersAndDeregistersInstance(t *testing.T) {
	api, _ := testAPI(t)
	reg := &fakeRegistry{}

	srv, err := NewServer(&Config{
		Port:     0,
		Registry: reg,
		Instance: registry.NewInstance("api", "studio", "1.0.0", ""),
	}, api)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	port := strconv.Itoa(srv.Port())
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + port + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		return len(reg.registered) == 1
	}, 2*time.Second, 20*time.Millisecond)

	reg.mu.Lock()
	inst := reg.registered[0]
	reg.mu.Unlock()

	assert.Equal(t, "api", inst.Role)
	assert.NotEmpty(t, inst.InstanceID)
	// The empty endpoint is filled in from the listener.
	assert.Contains(t, inst.Endpoint, ":"+port)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	require.Len(t, reg.deregistered, 1)
	assert.Equal(t, inst.InstanceID, reg.deregistered[0].InstanceID)
}
