// Package registry provides service discovery for playbook studio deployments.
//
// A studio deployment may run several API instances behind a load balancer.
// Each instance registers itself in etcd on startup, maintains presence
// through lease keepalives, and deregisters on graceful shutdown. Operators
// and peer instances use Discover and Watch to see what is running.
//
// Single-instance deployments do not need a registry at all; NewClientFromEnv
// returns (nil, nil) when no endpoints are configured.
package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Instance describes a registered studio instance.
//
// Multiple instances of the same role can run simultaneously, each with a
// unique InstanceID.
type Instance struct {
	// Role identifies what the instance serves: "api" or "worker".
	Role string `json:"role"`

	// Name is the deployment name (e.g., "studio", "studio-staging").
	Name string `json:"name"`

	// Version is the semantic version of the running binary.
	Version string `json:"version"`

	// InstanceID uniquely identifies this instance, typically a UUID.
	InstanceID string `json:"instance_id"`

	// Endpoint is the address where the instance can be reached,
	// "host:port".
	Endpoint string `json:"endpoint"`

	// Metadata carries custom key-value attributes (region, catalog
	// revision, feature flags).
	Metadata map[string]string `json:"metadata,omitempty"`

	// StartedAt is when the instance started.
	StartedAt time.Time `json:"started_at"`
}

// NewInstance builds an Instance with a fresh InstanceID and StartedAt set
// to now.
func NewInstance(role, name, version, endpoint string) Instance {
	return Instance{
		Role:       role,
		Name:       name,
		Version:    version,
		InstanceID: uuid.NewString(),
		Endpoint:   endpoint,
		StartedAt:  time.Now().UTC(),
	}
}

// Registry is the registration and discovery interface.
//
// Implementations must be safe for concurrent use. Entries are tied to etcd
// leases with a TTL so crashed instances disappear automatically.
type Registry interface {
	// Register adds this instance to the registry and starts renewing its
	// lease in the background. Re-registering the same InstanceID updates
	// the existing entry.
	Register(ctx context.Context, inst Instance) error

	// Deregister removes this instance. Deregistering an unknown instance
	// is a no-op.
	Deregister(ctx context.Context, inst Instance) error

	// Discover returns all instances with the given role and name. The
	// slice may be empty; order is arbitrary.
	Discover(ctx context.Context, role, name string) ([]Instance, error)

	// DiscoverAll returns all instances with the given role.
	DiscoverAll(ctx context.Context, role string) ([]Instance, error)

	// Watch emits the current instance list for a role and name whenever
	// it changes. The initial state is sent immediately. The channel
	// closes when ctx is cancelled or the registry is closed.
	Watch(ctx context.Context, role, name string) (<-chan []Instance, error)

	// Close stops keepalives and watches and releases the connection.
	Close() error
}

// Config holds registry connection configuration.
type Config struct {
	// Endpoints is the list of etcd endpoints, e.g. ["host1:2379",
	// "host2:2379"].
	Endpoints []string `json:"endpoints" yaml:"endpoints"`

	// Namespace is the etcd key prefix. Entries live under
	// /{namespace}/{role}/{name}/{instance-id}. Default: "playbooklab".
	Namespace string `json:"namespace" yaml:"namespace"`

	// TTL is the lease time-to-live in seconds. An instance that fails to
	// renew within this interval is removed. Default: 30.
	TTL int `json:"ttl" yaml:"ttl"`

	// TLS configures mutual TLS for the etcd connection. Nil disables TLS.
	TLS *TLSConfig `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// TLSConfig holds certificate paths for secure registry communication.
type TLSConfig struct {
	// Enabled determines whether TLS is active.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// CertFile is the path to the client certificate (PEM).
	CertFile string `json:"cert_file" yaml:"cert_file"`

	// KeyFile is the path to the client private key (PEM).
	KeyFile string `json:"key_file" yaml:"key_file"`

	// CAFile is the path to the certificate authority bundle (PEM).
	CAFile string `json:"ca_file" yaml:"ca_file"`
}
