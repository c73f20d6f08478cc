package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("light group")

	assert.Equal(t, "light group", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(2))
	assert.Nil(t, p.Sampler(3))
	assert.Zero(t, p.IndexCount())
}

func TestReleaseOnEmptyProvider(t *testing.T) {
	p := NewBindGroupProvider("empty")
	p.SetIndexCount(36)
	p.SetBuffer(0, nil)

	assert.NotPanics(t, p.Release)
	assert.Zero(t, p.IndexCount())
	assert.Nil(t, p.Buffer(0))
}
