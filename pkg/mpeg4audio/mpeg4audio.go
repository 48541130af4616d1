// Package mpeg4audio contains utilities to work with MPEG-4 audio configurations.
package mpeg4audio

import (
	"fmt"
	"strconv"

	mcbits "github.com/bluenviron/mediacommon/v2/pkg/bits"
	mcmpeg4audio "github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"
)

// sample rate index that introduces an explicit 24-bit sample rate.
const explicitSampleRateIndex = 0x0F

// offset of the first AudioSpecificConfig inside a StreamMuxConfig:
// audioMuxVersion, allStreamsSameTimeFraming, numSubFrames, numProgram, numLayer.
const streamMuxConfigASCOffset = 1 + 1 + 6 + 4 + 3

// AudioSpecificConfig is a MPEG-4 AudioSpecificConfig.
type AudioSpecificConfig struct {
	Type            mcmpeg4audio.ObjectType
	SampleRateIndex int

	// zero when the sample rate is explicit.
	SampleRate   int
	ChannelCount int

	// the encoded configuration, as it is placed inside the esds box.
	Config []byte
}

// Unmarshal decodes an AudioSpecificConfig from bytes.
func (c *AudioSpecificConfig) Unmarshal(buf []byte) error {
	var mc mcmpeg4audio.AudioSpecificConfig
	err := mc.Unmarshal(buf)
	if err != nil {
		return err
	}

	return c.fill(&mc, buf, 0, append([]byte(nil), buf...))
}

func (c *AudioSpecificConfig) fill(
	mc *mcmpeg4audio.AudioSpecificConfig,
	buf []byte,
	offset int,
	config []byte,
) error {
	// the sample rate index is not exposed by mediacommon
	pos := offset + 5
	idx, err := mcbits.ReadBits(buf, &pos, 4)
	if err != nil {
		return err
	}

	c.Type = mc.Type
	c.SampleRateIndex = int(idx)
	c.SampleRate = mc.SampleRate
	c.Config = config

	if c.SampleRateIndex == explicitSampleRateIndex {
		c.SampleRate = 0
	}

	switch {
	case mc.ChannelConfig >= 1 && mc.ChannelConfig <= 6:
		c.ChannelCount = int(mc.ChannelConfig)

	case mc.ChannelConfig == 7:
		c.ChannelCount = 8

	default:
		c.ChannelCount = 0
	}

	return nil
}

// Codec returns the RFC6381 codec string.
func (c AudioSpecificConfig) Codec() string {
	return "mp4a.40." + strconv.Itoa(int(c.Type))
}

// StreamMuxConfig is a LATM StreamMuxConfig (MP4A-LATM).
// Only the configuration of the first layer of the first program is kept.
type StreamMuxConfig struct {
	AudioSpecificConfig
}

// Unmarshal decodes a StreamMuxConfig.
func (c *StreamMuxConfig) Unmarshal(buf []byte) error {
	var mc mcmpeg4audio.StreamMuxConfig
	err := mc.Unmarshal(buf)
	if err != nil {
		return err
	}

	if len(mc.Programs) == 0 || len(mc.Programs[0].Layers) == 0 ||
		mc.Programs[0].Layers[0].AudioSpecificConfig == nil {
		return fmt.Errorf("StreamMuxConfig doesn't contain an AudioSpecificConfig")
	}

	asc := mc.Programs[0].Layers[0].AudioSpecificConfig

	config, err := asc.Marshal()
	if err != nil {
		return err
	}

	return c.AudioSpecificConfig.fill(asc, buf, streamMuxConfigASCOffset, config)
}
