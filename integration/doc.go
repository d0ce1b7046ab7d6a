// Package integration contains end-to-end tests that exercise the fetcher
// against a real registry container. Build with the "integration" tag;
// tests skip when SKIP_DOCKER_TESTS=1.
package integration
