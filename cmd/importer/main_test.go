package main

import (
	"testing"

	"hireflow/internal/infrastructure/gmail"

	"github.com/stretchr/testify/assert"
)

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, "subject:(Backend Engineer)", searchQuery(" Backend Engineer ", ""))
	assert.Equal(t, "subject:(Backend) newer_than:7d", searchQuery("Backend", "newer_than:7d"))
	assert.Equal(t, "from:jobs@example.com", searchQuery("", "from:jobs@example.com"))
	assert.Equal(t, "", searchQuery("", " "))
}

func TestUploadsCarrySenderHint(t *testing.T) {
	got := uploads([]gmail.Attachment{
		{MessageID: "m1", Sender: "Jane Doe", Filename: "CV.pdf", Data: []byte("x")},
	})
	if assert.Len(t, got, 1) {
		assert.Equal(t, "CV.pdf", got[0].Filename)
		assert.Equal(t, "Jane Doe", got[0].NameHint)
	}
}
