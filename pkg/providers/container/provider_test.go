package container

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modoterra/svcpanel/internal/testutil"
	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/settings"
)

const (
	dockerPS     = "docker ps -a --format '{{.ID}} | {{.Status}} | {{.Names}}'"
	dockerImages = "docker images --format '{{.ID}} | {{.Repository}} | {{.Tag}}'"
	podmanPS     = "podman ps -a --format '{{.ID}} | {{.Status}} | {{.Names}}'"
)

const psOutput = `a1b2c3 | Exited (0) 2 hours ago | old-db
d4e5f6 | Up 3 minutes | web,web-alias
g7h8i9 | Created |
j1k2l3 | Up 2 days (healthy) | cache
`

const imagesOutput = `sha1 | nginx | latest
sha2 | <none> | <none>
`

func ids(items []core.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestParseContainers(t *testing.T) {
	items := ParseContainers(psOutput)
	require.Len(t, items, 4)

	assert.Equal(t, core.Item{ID: "a1b2c3", Names: []string{"old-db"}, IsEnabled: true, CanBeEnabled: true}, items[0])
	assert.Equal(t, []string{"web", "web-alias"}, items[1].Names)
	assert.True(t, items[1].IsRunning)
	assert.Empty(t, items[2].Names)
	assert.False(t, items[2].IsRunning)
	assert.True(t, items[3].IsRunning)
}

func TestParseContainersSkipsMalformedRows(t *testing.T) {
	items := ParseContainers("garbage\n\nabc | Up 1 second | x\nonly | two\n")
	require.Len(t, items, 1)
	assert.Equal(t, "abc", items[0].ID)
}

func TestParseContainersEmptyTrailingNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no trailing space", "g7h8i9 | Created |"},
		{"trailing space", "g7h8i9 | Created | "},
		{"tight separators", "g7h8i9|Created|"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ParseContainers(tt.in)
			require.Len(t, items, 1)
			assert.Equal(t, "g7h8i9", items[0].ID)
			assert.Empty(t, items[0].Names)
			assert.False(t, items[0].IsRunning)
		})
	}
}

func TestParseImages(t *testing.T) {
	items := ParseImages(imagesOutput)
	require.Len(t, items, 2)
	assert.Equal(t, core.Item{ID: "sha1", Names: []string{"nginx:latest"}}, items[0])
	assert.Equal(t, []string{"<none>:<none>"}, items[1].Names)
}

func TestSortRunningFirstIsStable(t *testing.T) {
	items := []core.Item{
		{ID: "s1"}, {ID: "r1", IsRunning: true}, {ID: "s2"}, {ID: "r2", IsRunning: true}, {ID: "s3"},
	}
	SortRunningFirst(items)
	assert.Equal(t, []string{"r1", "r2", "s1", "s2", "s3"}, ids(items))
}

func TestGetContainers(t *testing.T) {
	runner := testutil.NewFakeRunner().On(dockerPS, psOutput)
	repo := NewDocker(runner, settings.NewMemory(nil), testutil.DiscardLogger())

	items, err := repo.GetContainers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"d4e5f6", "j1k2l3", "a1b2c3", "g7h8i9"}, ids(items))
}

func TestGetContainersEmpty(t *testing.T) {
	runner := testutil.NewFakeRunner().On(dockerPS, "")
	repo := NewDocker(runner, settings.NewMemory(nil), testutil.DiscardLogger())

	_, err := repo.GetContainers(context.Background())
	assert.ErrorIs(t, err, core.ErrNoItemsFound)
	assert.Equal(t, "No container found!", err.Error())
}

func TestGetImagesEmpty(t *testing.T) {
	runner := testutil.NewFakeRunner().On(dockerImages, "\n")
	repo := NewDocker(runner, settings.NewMemory(nil), testutil.DiscardLogger())

	_, err := repo.GetImages(context.Background())
	assert.ErrorIs(t, err, core.ErrNoItemsFound)
	assert.Equal(t, "No image found!", err.Error())
}

func TestGetItemsCombines(t *testing.T) {
	runner := testutil.NewFakeRunner().On(dockerPS, psOutput).On(dockerImages, imagesOutput)
	repo := NewDocker(runner, settings.NewMemory(nil), testutil.DiscardLogger())

	items, err := repo.GetItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"d4e5f6", "j1k2l3", "a1b2c3", "g7h8i9", "sha1", "sha2"}, ids(items))
	for _, item := range items[4:] {
		assert.False(t, item.IsEnabled)
		assert.False(t, item.CanBeEnabled)
		assert.False(t, item.IsRunning)
	}
}

func TestGetItemsImagesHidden(t *testing.T) {
	runner := testutil.NewFakeRunner().On(dockerPS, psOutput)
	repo := NewDocker(runner, settings.NewMemory(map[string]any{settings.DockerShowImages: false}), testutil.DiscardLogger())

	items, err := repo.GetItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 4)

	executed, _ := runner.Calls()
	assert.Equal(t, []string{dockerPS}, executed)
}

func TestGetItemsPartialFailure(t *testing.T) {
	runner := testutil.NewFakeRunner().
		Fail(dockerPS, 1, "permission denied").
		On(dockerImages, imagesOutput)
	repo := NewDocker(runner, settings.NewMemory(nil), testutil.DiscardLogger())

	items, err := repo.GetItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sha1", "sha2"}, ids(items))
}

func TestGetItemsNothing(t *testing.T) {
	runner := testutil.NewFakeRunner().On(dockerPS, "").On(dockerImages, "")
	repo := NewDocker(runner, settings.NewMemory(nil), testutil.DiscardLogger())

	_, err := repo.GetItems(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoItemsFound))
	assert.Equal(t, "No item found!", err.Error())
}

func TestPodmanUsesOwnBinaryAndPreference(t *testing.T) {
	runner := testutil.NewFakeRunner().On(podmanPS, psOutput)
	repo := NewPodman(runner, settings.NewMemory(map[string]any{
		settings.PodmanShowImages: false,
		settings.DockerShowImages: true,
	}), testutil.DiscardLogger())

	items, err := repo.GetItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, "podman", repo.Engine().Binary)
}

func TestMutators(t *testing.T) {
	runner := testutil.NewFakeRunner()
	repo := NewPodman(runner, settings.NewMemory(nil), testutil.DiscardLogger())
	ctx := context.Background()

	require.NoError(t, repo.Start(ctx, "abc"))
	require.NoError(t, repo.Restart(ctx, "abc"))
	require.NoError(t, repo.Stop(ctx, "abc"))
	require.NoError(t, repo.Remove(ctx, "abc"))

	_, launched := runner.Calls()
	assert.Equal(t, []string{"podman start abc", "podman restart abc", "podman stop abc", "podman rm abc"}, launched)
}

func TestIsInstalled(t *testing.T) {
	runner := testutil.NewFakeRunner().Install("podman")
	assert.False(t, NewDocker(runner, settings.NewMemory(nil), testutil.DiscardLogger()).IsInstalled())
	assert.True(t, NewPodman(runner, settings.NewMemory(nil), testutil.DiscardLogger()).IsInstalled())
}
