package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidProjectStatus(t *testing.T) {
	assert.True(t, IsValidProjectStatus(ProjectStatusPlanning))
	assert.True(t, IsValidProjectStatus(ProjectStatusInDevelopment))
	assert.True(t, IsValidProjectStatus(ProjectStatusReleased))
	assert.True(t, IsValidProjectStatus(ProjectStatusCancelled))

	assert.False(t, IsValidProjectStatus(""))
	assert.False(t, IsValidProjectStatus("shipped"))
	assert.False(t, IsValidProjectStatus("Planning"))
}
