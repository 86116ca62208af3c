package http2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingValidate(t *testing.T) {
	tests := []struct {
		setting  Setting
		wantCode ErrCode
		wantErr  bool
	}{
		{Setting{SettingEnablePush, 0}, 0, false},
		{Setting{SettingEnablePush, 1}, 0, false},
		{Setting{SettingEnablePush, 2}, ErrCodeProtocol, true},
		{Setting{SettingInitialWindowSize, MaxWindowSize}, 0, false},
		{Setting{SettingInitialWindowSize, MaxWindowSize + 1}, ErrCodeFlowControl, true},
		{Setting{SettingMaxFrameSize, 16384}, 0, false},
		{Setting{SettingMaxFrameSize, 16383}, ErrCodeProtocol, true},
		{Setting{SettingMaxFrameSize, 1<<24 - 1}, 0, false},
		{Setting{SettingMaxFrameSize, 1 << 24}, ErrCodeProtocol, true},
		{Setting{SettingHeaderTableSize, 0}, 0, false},
		{Setting{SettingMaxConcurrentStreams, 0}, 0, false},
		{Setting{SettingMaxHeaderListSize, 1 << 31}, 0, false},
		{Setting{SettingID(0x42), 0xffffffff}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.setting.String(), func(t *testing.T) {
			err := tt.setting.Validate()
			if !tt.wantErr {
				assert.Nil(t, err)
				return
			}
			connErr, ok := err.(*ConnectionError)
			if !ok {
				t.Fatalf("expected *ConnectionError, got %T", err)
			}
			assert.Equal(t, tt.wantCode, connErr.Code)
		})
	}
}

func TestValidateSettingsFirstViolation(t *testing.T) {
	assert.Nil(t, ValidateSettings(nil))
	assert.Nil(t, ValidateSettings([]Setting{
		{SettingEnablePush, 1},
		{SettingMaxFrameSize, 65536},
	}))

	err := ValidateSettings([]Setting{
		{SettingHeaderTableSize, 4096},
		{SettingInitialWindowSize, 1 << 31},
		{SettingEnablePush, 7},
	})
	connErr, ok := err.(*ConnectionError)
	if !ok {
		t.Fatalf("expected *ConnectionError, got %T", err)
	}
	// the INITIAL_WINDOW_SIZE violation comes first in wire order
	assert.Equal(t, ErrCodeFlowControl, connErr.Code)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, uint32(4096), s.HeaderTableSize)
	assert.True(t, s.EnablePush)
	assert.Nil(t, s.MaxConcurrentStreams)
	assert.Equal(t, uint32(65535), s.InitialWindowSize)
	assert.Equal(t, uint32(16384), s.MaxFrameSize)
	assert.Nil(t, s.MaxHeaderListSize)
}

func TestApplyLastWriteWins(t *testing.T) {
	s := DefaultSettings().Apply([]Setting{
		{SettingInitialWindowSize, 100},
		{SettingInitialWindowSize, 200},
	})
	assert.Equal(t, uint32(200), s.InitialWindowSize)
}

func TestApply(t *testing.T) {
	s := DefaultSettings().Apply([]Setting{
		{SettingEnablePush, 0},
		{SettingMaxConcurrentStreams, 128},
		{SettingMaxHeaderListSize, 8 << 10},
		{SettingMaxFrameSize, 65536},
		{SettingID(0x42), 12345}, // unknown, silently ignored
	})
	assert.False(t, s.EnablePush)
	if assert.NotNil(t, s.MaxConcurrentStreams) {
		assert.Equal(t, uint32(128), *s.MaxConcurrentStreams)
	}
	if assert.NotNil(t, s.MaxHeaderListSize) {
		assert.Equal(t, uint32(8<<10), *s.MaxHeaderListSize)
	}
	assert.Equal(t, uint32(65536), s.MaxFrameSize)
	// untouched parameters keep their previous values
	assert.Equal(t, uint32(4096), s.HeaderTableSize)
}

func TestSettingStrings(t *testing.T) {
	assert.Equal(t, "ENABLE_PUSH", SettingEnablePush.String())
	assert.Equal(t, "UNKNOWN_SETTING_66", SettingID(0x42).String())
	assert.Equal(t, "[MAX_FRAME_SIZE = 16384]", Setting{SettingMaxFrameSize, 16384}.String())
	assert.False(t, SettingID(0x42).Known())
	assert.True(t, SettingMaxHeaderListSize.Known())
}
