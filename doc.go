// Package sdk is the root of the Playbook Studio SDK: a Go toolkit for
// AI-tool discovery and playbook composition.
//
// The SDK is organized around a Studio, which wires together the tool and
// playbook catalogs, the search index, the optimization-suggestion map, a
// session store, and a logo resolver:
//
//	studio, err := sdk.NewStudio(
//	    sdk.WithLogger(logger),
//	    sdk.WithStore(redisStore),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer studio.Close()
//
//	session := studio.CreateSession()
//	session.Seed(...)
//
// Subpackages:
//
//   - catalog: immutable tool and playbook reference data
//   - search: case-insensitive substring search with CEL filters
//   - optimize: tool-alternative suggestions and edge styling
//   - canvas: the live playbook graph (place, connect, rate, delete, seed)
//   - store: session snapshot and published-playbook persistence
//   - serve: the JSON/HTTP API and server lifecycle
//   - logo: tool logo resolution
//   - registry: etcd-based instance discovery for multi-instance deployments
package sdk
