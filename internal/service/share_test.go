package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildShareLinks(t *testing.T) {
	links := BuildShareLinks("https://encuestas.example.com", "665f1c2a9b1e8a0012345678")

	assert.Equal(t, "https://encuestas.example.com/survey?id=665f1c2a9b1e8a0012345678", links.URL)
	assert.Equal(t,
		`<iframe src="https://encuestas.example.com/survey?id=665f1c2a9b1e8a0012345678" width="100%" height="600px" frameborder="0"></iframe>`,
		links.EmbedCode)
}

func TestBuildShareLinks_EscapesID(t *testing.T) {
	links := BuildShareLinks("http://localhost:3000", `a"b&c`)

	assert.Equal(t, "http://localhost:3000/survey?id=a%22b%26c", links.URL)
	assert.NotContains(t, links.EmbedCode, `a"b`)
}
