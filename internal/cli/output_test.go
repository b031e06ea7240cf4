package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_JSON(t *testing.T) {
	var b bytes.Buffer
	p, err := NewPrinter(&b, true, "")
	require.NoError(t, err)

	require.NoError(t, p.Response(&domain.Response{Type: domain.ScreenMenu, SessionID: "s-1", Title: "Case Claim"}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	assert.Equal(t, "menu", got["type"])
	assert.Equal(t, "s-1", got["session_id"])
}

func TestPrinter_Markdown(t *testing.T) {
	var b bytes.Buffer
	p, err := NewPrinter(&b, false, "notty")
	require.NoError(t, err)

	require.NoError(t, p.Response(&domain.Response{
		Type:     domain.ScreenMenu,
		Title:    "Follow Up",
		Commands: []domain.CommandView{{Index: 0, ID: "m1-f0", Title: "Visit"}},
	}))
	assert.Contains(t, b.String(), "Follow Up")
	assert.Contains(t, b.String(), "Visit")

	b.Reset()
	require.NoError(t, p.Detail(&domain.EntityDetail{
		ID:     "c-1",
		Title:  "Patients",
		Fields: []domain.EntityField{{Header: "Name", Value: "Ada"}},
	}))
	assert.Contains(t, b.String(), "Ada")
}
