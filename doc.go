// Package fetch materializes artifacts identified by URIs into a local
// directory through interchangeable retrieval plugins.
//
// A [Fetcher] owns a fixed, ordered set of plugins. Each fetch request is
// routed to the first plugin whose scheme predicate accepts the URI, or to
// an explicitly named plugin. The built-in plugins cover plain HTTP(S)
// downloads ("curl"), hadoop-client-backed transfers ("hadoop"), local file
// copies ("copy"), and Docker-compatible registries ("docker").
//
// # Quick Start
//
// Download a file over HTTP:
//
//	f, err := fetch.New()
//	if err != nil {
//	    return err
//	}
//	err = f.Fetch(ctx, uri.HTTPS("example.com", "/artifacts/app.tar.gz", 0), dir)
//
// Fetch a whole container image (manifest plus every layer blob) from a
// registry:
//
//	u := uri.DockerImage("library/busybox", "latest", "registry-1.docker.io")
//	err = f.Fetch(ctx, u, dir)
//
// The destination directory must already exist; the fetcher never creates
// or removes it. Refetching into the same directory overwrites existing
// files. On failure, files written before the failure are left in place.
package fetch
