package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/engine/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filterCheck mirrors the device context check with the default filter.
func filterCheck(err error) error {
	if err == nil || !device.DefaultDebugFilter().Allow(wgpu.LogLevelError, err.Error()) {
		return nil
	}
	return err
}

func benignError() error {
	return errors.New("wgpu.(*RenderPassEncoder).End(): " + device.BenignBarrierMismatch)
}

func TestClosePassEndErrorSkipsFinish(t *testing.T) {
	endErr := errors.New("wgpu.(*RenderPassEncoder).End(): encoder is invalid")
	finished := false

	err := closePass(
		func() error { return endErr },
		func() error { finished = true; return nil },
		filterCheck,
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, endErr)
	assert.Contains(t, err.Error(), "failed to end render pass")
	assert.False(t, finished)
}

func TestClosePassBenignEndErrorIsDropped(t *testing.T) {
	finished := false

	err := closePass(
		benignError,
		func() error { finished = true; return nil },
		filterCheck,
	)
	require.NoError(t, err)
	assert.True(t, finished)
}

func TestClosePassFinishError(t *testing.T) {
	finishErr := errors.New("wgpu.(*CommandEncoder).Finish(): invalid")

	err := closePass(nil, func() error { return finishErr }, filterCheck)
	require.Error(t, err)
	assert.ErrorIs(t, err, finishErr)
	assert.Contains(t, err.Error(), "failed to finish command encoder")
}

func TestWriteAll(t *testing.T) {
	lights := bind_group_provider.NewBindGroupProvider("lights")
	lights.SetBuffer(0, &wgpu.Buffer{})
	lights.SetBuffer(1, &wgpu.Buffer{})
	lights.SetBuffer(2, &wgpu.Buffer{})
	unbound := bind_group_provider.NewBindGroupProvider("unbound")

	writeErr := errors.New("wgpu.(*Queue).WriteBuffer(): buffer destroyed")
	var issued []int
	write := func(_ *wgpu.Buffer, w bind_group_provider.BufferWrite) error {
		issued = append(issued, w.Binding)
		switch w.Binding {
		case 0:
			return writeErr
		case 1:
			return benignError()
		}
		return nil
	}

	err := writeAll([]bind_group_provider.BufferWrite{
		{Provider: lights, Binding: 0, Data: []byte{1}},
		{Provider: unbound, Binding: 0, Data: []byte{2}},
		{Provider: lights, Binding: 1, Data: []byte{3}},
		{Provider: lights, Binding: 2, Data: []byte{4}},
	}, write, filterCheck)

	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)
	assert.Contains(t, err.Error(), "lights binding 0")
	assert.NotContains(t, err.Error(), "binding 1")
	assert.Equal(t, []int{0, 1, 2}, issued)
}

func TestWriteAllWithoutErrors(t *testing.T) {
	p := bind_group_provider.NewBindGroupProvider("camera")
	p.SetBuffer(0, &wgpu.Buffer{})

	err := writeAll([]bind_group_provider.BufferWrite{{Provider: p, Binding: 0, Data: []byte{1}}},
		func(*wgpu.Buffer, bind_group_provider.BufferWrite) error { return nil }, filterCheck)
	assert.NoError(t, err)
}
