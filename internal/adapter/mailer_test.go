package adapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/k-experience/service-reservation/internal/adapter"
)

func TestSurveyLink(t *testing.T) {
	link := adapter.SurveyLink("https://k-experience.example.com", "b3f1c2d4")
	assert.Equal(t, "https://k-experience.example.com/?page=survey&id=b3f1c2d4", link)
}

func TestReceiptLink(t *testing.T) {
	link := adapter.ReceiptLink("https://k-experience.example.com", "b3f1c2d4")
	assert.Equal(t, "https://k-experience.example.com/?page=account&reservation=b3f1c2d4", link)
}
