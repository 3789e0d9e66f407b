package context

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, view := range []View{ViewTree, ViewBlob, ViewCommit, ViewHistory} {
		nav, err := New(view, nil, Request{RepoName: "demo"}, Options{Page: 2, PageSize: 5})
		require.NoError(t, err)
		require.Equal(t, view, nav.View())
	}

	nav, err := New(ViewHistory, nil, Request{}, Options{Page: 2, PageSize: 5})
	require.NoError(t, err)
	h := nav.(*HistoryContext)
	require.Equal(t, 2, h.Page)
	require.Equal(t, 5, h.PageSize)

	_, err = New("blame", nil, Request{}, Options{})
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	root, _ := newRoot(t)

	nav, err := Load(ViewTree, RootOpener(root), Request{RepoName: "demo"}, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, nav.(*TreeContext).Tree.Entries)

	_, err = Load(ViewBlob, RootOpener(root), Request{RepoName: "demo", Path: "missing"}, Options{})
	require.True(t, IsNotFound(err))
}
