package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDocRequestValidate(t *testing.T) {
	blankParent := "  "
	req := CreateDocRequest{Title: "  Notes ", ParentID: &blankParent}
	req.Normalize()
	assert.Equal(t, "Notes", req.Title)
	assert.Nil(t, req.ParentID)
	assert.NoError(t, req.Validate())

	assert.Error(t, CreateDocRequest{Title: ""}.Validate())
	assert.Error(t, CreateDocRequest{Title: strings.Repeat("a", MaxTitleLength+1)}.Validate())
	assert.NoError(t, CreateDocRequest{Title: strings.Repeat("ü", MaxTitleLength)}.Validate())
}

func TestUpdateDocRequest(t *testing.T) {
	assert.Error(t, UpdateDocRequest{}.Validate())

	blank := " "
	assert.Error(t, UpdateDocRequest{Title: &blank}.Validate())

	title, published := " Final ", true
	req := UpdateDocRequest{Title: &title, IsPublished: &published}
	require.NoError(t, req.Validate())

	patch := req.Patch()
	require.NotNil(t, patch.Title)
	assert.Equal(t, "Final", *patch.Title)
	assert.True(t, *patch.IsPublished)
	assert.Nil(t, patch.Icon)
	assert.False(t, patch.IsEmpty())
}

func TestDocumentPatchApply(t *testing.T) {
	parent, icon, cover := "p", "i", "c"
	doc := Document{Title: "Old", ParentID: &parent, Icon: &icon, CoverImage: &cover}

	archived := true
	DocumentPatch{IsArchived: &archived, ClearParent: true, ClearIcon: true}.Apply(&doc)

	assert.True(t, doc.IsArchived)
	assert.Nil(t, doc.ParentID)
	assert.Nil(t, doc.Icon)
	require.NotNil(t, doc.CoverImage)
	assert.Equal(t, "c", *doc.CoverImage)
	assert.Equal(t, "Old", doc.Title)
	assert.True(t, DocumentPatch{}.IsEmpty())
}
