package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown_Menu(t *testing.T) {
	md := Markdown(&domain.Response{
		Type:         domain.ScreenMenu,
		Title:        "Case Claim",
		Breadcrumbs:  []string{"Case Claim"},
		Notification: domain.Info("Case claim successful"),
		Commands: []domain.CommandView{
			{Index: 0, ID: "m1-f0", Title: "Visit"},
			{Index: 1, ID: "m1-f1", Title: "Close"},
		},
	})
	assert.Contains(t, md, "# Case Claim")
	assert.Contains(t, md, "> ℹ Case claim successful")
	assert.Contains(t, md, "0. Visit\n1. Close\n")
}

func TestMarkdown_EntityList(t *testing.T) {
	md := Markdown(&domain.Response{
		Type:     domain.ScreenEntity,
		Title:    "Follow Up",
		Headers:  []string{"Name", "District"},
		Entities: []domain.EntityView{{ID: "c-1", Data: []string{"Ada", "north"}}},
		Actions:  []string{"Open Cases", "Search All Cases"},
		Page:     &domain.Page{PageSize: 1, TotalCount: 2, PageCount: 2},
	})
	assert.Contains(t, md, "| id | Name | District |")
	assert.Contains(t, md, "|---|---|---|")
	assert.Contains(t, md, "| c-1 | Ada | north |")
	assert.Contains(t, md, "Page 1 of 2 (2 total)")
	assert.Contains(t, md, "`action 1`: Search All Cases")
}

func TestMarkdown_QueryAndFailure(t *testing.T) {
	md := Markdown(&domain.Response{
		Type:         domain.ScreenQuery,
		QueryKey:     "case_search.m1",
		Notification: domain.Failure("Query failed with message status 500"),
		Displays:     []domain.QueryPrompt{{Key: "district", Label: "District", Default: "north"}},
	})
	assert.Contains(t, md, "⚠ Query failed")
	assert.Contains(t, md, "**District** (`district`): north")
}

func TestRenderer(t *testing.T) {
	r, err := NewRenderer("notty")
	require.NoError(t, err)

	out, err := r.RenderDetail(&domain.EntityDetail{Title: "Ada", Fields: []domain.EntityField{{Header: "Age", Value: "36"}}})
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "36")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.3.0\n")
	assert.Contains(t, buf.String(), "v0.3.0")
}
