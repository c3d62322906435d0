package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sergey/internal/config"
	"git.home.luguber.info/inful/sergey/internal/foundation/errors"
)

func parse(t *testing.T, args ...string) (*kong.Context, *CLI, *bytes.Buffer) {
	t.Helper()
	cli := &CLI{}
	logs := &bytes.Buffer{}
	g := &Global{Stderr: logs}
	parser, err := kong.New(cli,
		kong.Name("sergey"),
		kong.Bind(g, cli),
		kong.Vars{"version": "test"},
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx, cli, logs
}

func newSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"_imports/nav.html": `<nav><sergey-link to="/">Home</sergey-link></nav>`,
		"index.html":        `<sergey-import src="nav" /><p>hi</p>`,
	}
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	// Keep the default config lookup away from the working directory.
	t.Chdir(root)
	return root
}

func TestBuildIsDefaultCommand(t *testing.T) {
	ctx, cli, _ := parse(t, "--root", "x", "--exclude", "a,b")
	assert.Equal(t, "build", ctx.Command())
	assert.Equal(t, "x", cli.Build.Root)
	assert.Equal(t, []string{"a", "b"}, cli.Build.Exclude)
}

func TestEnvironmentBinding(t *testing.T) {
	t.Setenv("SERGEY_OUTPUT", "dist")
	t.Setenv("SERGEY_ACTIVE_CLASS", "current")
	t.Setenv("SERGEY_PORT", "9000")

	_, cli, _ := parse(t, "serve")
	assert.Equal(t, "dist", cli.Serve.Output)
	assert.Equal(t, "current", cli.Serve.ActiveClass)
	assert.Equal(t, 9000, cli.Serve.Port)
}

func TestBuildCommand(t *testing.T) {
	root := newSite(t)

	ctx, _, logs := parse(t, "build", "--root", root, "--log-format", "json")
	require.NoError(t, ctx.Run())

	out, err := os.ReadFile(filepath.Join(root, "public", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, `<nav><a href="/" class="active" aria-current="page">Home</a></nav><p>hi</p>`, string(out))
	assert.Contains(t, logs.String(), `"msg":"Compiled"`)
}

func TestBuildCommand_ConfigFile(t *testing.T) {
	root := newSite(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "site.yaml"),
		[]byte("output: dist\nactive_class: here\n"), 0o644))

	ctx, _, _ := parse(t, "-c", filepath.Join(root, "site.yaml"), "build", "--root", root)
	require.NoError(t, ctx.Run())

	out, err := os.ReadFile(filepath.Join(root, "dist", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `class="here"`)
}

func TestBuildCommand_MissingConfigFile(t *testing.T) {
	root := newSite(t)
	ctx, _, _ := parse(t, "-c", filepath.Join(root, "nope.yaml"), "build")
	err := ctx.Run()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestBuildCommand_MissingImports(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)

	ctx, _, _ := parse(t, "build", "--root", root)
	err := ctx.Run()
	require.Error(t, err)
	assert.Equal(t, 4, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestInvalidLogFormat(t *testing.T) {
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Bind(&Global{Stderr: &bytes.Buffer{}}, cli), kong.Vars{"version": "test"})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"--log-format", "xml", "build"})
	require.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sergey.yaml")

	ctx, _, logs := parse(t, "-c", path, "init")
	require.NoError(t, ctx.Run())
	assert.Contains(t, logs.String(), "Wrote "+path)

	cfg, err := config.Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.Output)

	ctx, _, _ = parse(t, "-c", path, "init")
	require.Error(t, ctx.Run())

	ctx, _, _ = parse(t, "-c", path, "init", "--force")
	require.NoError(t, ctx.Run())
}
