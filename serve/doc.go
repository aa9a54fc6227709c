// Package serve exposes the studio over JSON/HTTP.
//
// The package provides three pieces:
//
//   - API: an http.Handler with the discovery, search, and session
//     endpoints under /api/v1.
//   - Server: lifecycle management around an http.Server with graceful
//     shutdown on SIGINT/SIGTERM.
//   - Observability helpers: an OpenTelemetry tracer provider builder and
//     request counters.
//
// A minimal server:
//
//	api := serve.NewAPI(serve.APIConfig{
//	    Catalog:  catalog.Default(),
//	    Index:    search.NewIndex(catalog.Default()),
//	    Sessions: sessions,
//	})
//	srv, err := serve.NewServer(nil, api)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv.Serve(context.Background())
package serve
