package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/fetch/uri"
)

// fakePlugin is a configurable test plugin with function fields.
type fakePlugin struct {
	name    string
	matches func(u *uri.URI) bool
	fetch   func(ctx context.Context, u *uri.URI, dir string) error
	calls   int
}

func (p *fakePlugin) Name() string {
	return p.name
}

func (p *fakePlugin) Matches(u *uri.URI) bool {
	if p.matches != nil {
		return p.matches(u)
	}
	return false
}

func (p *fakePlugin) Fetch(ctx context.Context, u *uri.URI, dir string) error {
	p.calls++
	if p.fetch != nil {
		return p.fetch(ctx, u, dir)
	}
	return nil
}

func matchScheme(scheme string) func(u *uri.URI) bool {
	return func(u *uri.URI) bool { return u.Scheme == scheme }
}

func TestFetchDispatchesFirstMatch(t *testing.T) {
	first := &fakePlugin{name: "first", matches: matchScheme("test")}
	second := &fakePlugin{name: "second", matches: matchScheme("test")}

	f, err := New(WithPlugin(first), WithPlugin(second))
	require.NoError(t, err)

	u := &uri.URI{Scheme: "test", Path: "/x"}
	require.NoError(t, f.Fetch(context.Background(), u, t.TempDir()))

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestFetchUnsupportedScheme(t *testing.T) {
	f, err := New()
	require.NoError(t, err)

	u := &uri.URI{Scheme: "gopher", Path: "/x"}
	err = f.Fetch(context.Background(), u, t.TempDir())
	require.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestFetchByNameIgnoresMatchOrder(t *testing.T) {
	first := &fakePlugin{name: "first", matches: matchScheme("test")}
	second := &fakePlugin{name: "second", matches: matchScheme("test")}

	f, err := New(WithPlugin(first), WithPlugin(second))
	require.NoError(t, err)

	u := &uri.URI{Scheme: "test", Path: "/x"}
	require.NoError(t, f.Fetch(context.Background(), u, t.TempDir(), WithPluginName("second")))

	assert.Equal(t, 0, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestFetchUnknownPlugin(t *testing.T) {
	matching := &fakePlugin{name: "matching", matches: matchScheme("test")}

	f, err := New(WithPlugin(matching))
	require.NoError(t, err)

	// An unregistered name fails even though a registered plugin matches
	// the scheme.
	u := &uri.URI{Scheme: "test", Path: "/x"}
	err = f.Fetch(context.Background(), u, t.TempDir(), WithPluginName("nope"))
	require.ErrorIs(t, err, ErrUnknownPlugin)
	assert.Equal(t, 0, matching.calls)
}

func TestFetchByNameStillValidatesURI(t *testing.T) {
	f, err := New()
	require.NoError(t, err)

	// Explicit naming does not waive URI validity: copy cannot handle http.
	u := uri.HTTP("example.com", "/x", 0)
	err = f.Fetch(context.Background(), u, t.TempDir(), WithPluginName("copy"))
	require.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestFetchNilURI(t *testing.T) {
	f, err := New()
	require.NoError(t, err)

	err = f.Fetch(context.Background(), nil, t.TempDir())
	require.ErrorIs(t, err, uri.ErrInvalid)
}

func TestFetchPluginErrorsPassThrough(t *testing.T) {
	sentinel := errors.New("plugin exploded")
	p := &fakePlugin{
		name:    "boom",
		matches: matchScheme("test"),
		fetch: func(context.Context, *uri.URI, string) error {
			return sentinel
		},
	}

	f, err := New(WithPlugin(p))
	require.NoError(t, err)

	err = f.Fetch(context.Background(), &uri.URI{Scheme: "test", Path: "/x"}, t.TempDir())
	require.ErrorIs(t, err, sentinel)
}

func TestNewConfiguredHadoopClientMustProbe(t *testing.T) {
	failing := func(context.Context, string, ...string) ([]byte, error) {
		return []byte("not a hadoop client"), errors.New("exit status 1")
	}

	_, err := New(WithHadoopClient("/opt/hadoop/bin/hadoop"), WithHadoopRunner(failing))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestNewDefaultHadoopClientOptional(t *testing.T) {
	// Default construction must succeed on hosts without a hadoop client.
	t.Setenv("HADOOP_HOME", "")
	t.Setenv("PATH", t.TempDir())

	f, err := New()
	require.NoError(t, err)
	assert.NotContains(t, f.Plugins(), "hadoop")
}

func TestPluginsOrder(t *testing.T) {
	custom := &fakePlugin{name: "custom"}

	f, err := New(
		WithPlugin(custom),
		WithHadoopClient("hadoop"),
		WithHadoopRunner(okRunner),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"custom", "curl", "hadoop", "copy", "docker"}, f.Plugins())
}

func TestRegisterDuplicateNameIgnored(t *testing.T) {
	shadow := &fakePlugin{name: "curl", matches: matchScheme("shadow")}

	f, err := New(WithPlugin(shadow))
	require.NoError(t, err)

	// The custom plugin took the name first; the built-in was dropped.
	names := f.Plugins()
	assert.Equal(t, 1, countOf(names, "curl"))

	u := &uri.URI{Scheme: "shadow", Path: "/x"}
	require.NoError(t, f.Fetch(context.Background(), u, t.TempDir(), WithPluginName("curl")))
	assert.Equal(t, 1, shadow.calls)
}

func okRunner(context.Context, string, ...string) ([]byte, error) {
	return nil, nil
}

func countOf(names []string, want string) int {
	n := 0
	for _, name := range names {
		if name == want {
			n++
		}
	}
	return n
}
