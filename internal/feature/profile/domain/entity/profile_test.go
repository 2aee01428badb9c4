package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestProfile_Apply(t *testing.T) {
	t.Parallel()

	p := &Profile{Name: "Alice", Email: "a@example.com", Bio: "hi", AvatarURL: "https://img"}

	p.Apply(Fields{Bio: ptr("updated"), AvatarURL: ptr("")})

	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "a@example.com", p.Email)
	assert.Equal(t, "updated", p.Bio)
	assert.Empty(t, p.AvatarURL)
}

func TestProfile_ApplyNothing(t *testing.T) {
	t.Parallel()

	p := &Profile{Name: "Alice"}
	p.Apply(Fields{})

	assert.Equal(t, "Alice", p.Name)
}

func TestFields_Columns(t *testing.T) {
	t.Parallel()

	cols := Fields{Name: ptr("Alice"), AvatarURL: ptr("")}.Columns()

	assert.Equal(t, map[string]any{"name": "Alice", "avatar_url": ""}, cols)
	assert.Empty(t, Fields{}.Columns())
}
