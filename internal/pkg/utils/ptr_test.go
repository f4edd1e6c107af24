package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPtr(t *testing.T) {
	p := Ptr("Hiring")
	assert.Equal(t, "Hiring", *p)

	n := 3
	q := Ptr(n)
	n = 4
	assert.Equal(t, 3, *q, "Ptr must copy the value")
}
