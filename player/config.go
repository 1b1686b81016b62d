package player

import (
	"time"

	"github.com/arflix-cli/arflix/key"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Config is the playback policy an engine is constructed with.
type Config struct {
	// PreferHighestOnStart selects the highest quality once tracks are known, before AutoPlay.
	PreferHighestOnStart bool
	AutoPlay             bool
	Volume               float64
	Muted                bool
	PreferredAudioLang   string
	PreferredTextLang    string
	// EnableABR lets the engine switch bitrates on its own. Disabled pins the top variant.
	EnableABR bool
	// MaxBufferSize is in megabytes, 0 keeps the engine default.
	MaxBufferSize int
	// MaxBufferLength is in seconds, 0 keeps the engine default.
	MaxBufferLength int

	SubtitleOffset time.Duration
	// LoadTimeout bounds how long PlayRanked waits for a source to become ready. 0 waits forever.
	LoadTimeout time.Duration
	// PlaceholderDuration marks shorter sources as placeholders to skip. 0 disables the check.
	PlaceholderDuration time.Duration
}

// DefaultConfig returns the policy used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		PreferHighestOnStart: true,
		AutoPlay:             true,
		Volume:               1,
		EnableABR:            true,
		LoadTimeout:          30 * time.Second,
	}
}

// ConfigFromViper reads the player section of the configuration.
func ConfigFromViper() Config {
	return Config{
		PreferHighestOnStart: viper.GetBool(key.PlayerPreferHighest),
		AutoPlay:             viper.GetBool(key.PlayerAutoPlay),
		Volume:               clamp(viper.GetFloat64(key.PlayerVolume)),
		Muted:                viper.GetBool(key.PlayerMuted),
		PreferredAudioLang:   viper.GetString(key.PlayerAudioLang),
		PreferredTextLang:    viper.GetString(key.PlayerTextLang),
		EnableABR:            viper.GetBool(key.PlayerABR),
		MaxBufferSize:        viper.GetInt(key.PlayerBufferSize),
		MaxBufferLength:      viper.GetInt(key.PlayerBufferLength),
		SubtitleOffset:       viper.GetDuration(key.SubtitlesOffset),
		LoadTimeout:          viper.GetDuration(key.PlayerLoadTimeout),
		PlaceholderDuration:  viper.GetDuration(key.PlayerPlaceholderDuration),
	}
}

// ConfigUpdate is a partial Config. Absent fields keep their current value.
type ConfigUpdate struct {
	PreferHighestOnStart mo.Option[bool]
	AutoPlay             mo.Option[bool]
	Volume               mo.Option[float64]
	Muted                mo.Option[bool]
	PreferredAudioLang   mo.Option[string]
	PreferredTextLang    mo.Option[string]
	EnableABR            mo.Option[bool]
	MaxBufferSize        mo.Option[int]
	MaxBufferLength      mo.Option[int]
	SubtitleOffset       mo.Option[time.Duration]
	LoadTimeout          mo.Option[time.Duration]
	PlaceholderDuration  mo.Option[time.Duration]
}

// Diff returns the update turning c into next.
func (c Config) Diff(next Config) ConfigUpdate {
	var u ConfigUpdate
	set := func(changed bool, apply func()) {
		if changed {
			apply()
		}
	}

	set(c.PreferHighestOnStart != next.PreferHighestOnStart, func() { u.PreferHighestOnStart = mo.Some(next.PreferHighestOnStart) })
	set(c.AutoPlay != next.AutoPlay, func() { u.AutoPlay = mo.Some(next.AutoPlay) })
	set(c.Volume != next.Volume, func() { u.Volume = mo.Some(next.Volume) })
	set(c.Muted != next.Muted, func() { u.Muted = mo.Some(next.Muted) })
	set(c.PreferredAudioLang != next.PreferredAudioLang, func() { u.PreferredAudioLang = mo.Some(next.PreferredAudioLang) })
	set(c.PreferredTextLang != next.PreferredTextLang, func() { u.PreferredTextLang = mo.Some(next.PreferredTextLang) })
	set(c.EnableABR != next.EnableABR, func() { u.EnableABR = mo.Some(next.EnableABR) })
	set(c.MaxBufferSize != next.MaxBufferSize, func() { u.MaxBufferSize = mo.Some(next.MaxBufferSize) })
	set(c.MaxBufferLength != next.MaxBufferLength, func() { u.MaxBufferLength = mo.Some(next.MaxBufferLength) })
	set(c.SubtitleOffset != next.SubtitleOffset, func() { u.SubtitleOffset = mo.Some(next.SubtitleOffset) })
	set(c.LoadTimeout != next.LoadTimeout, func() { u.LoadTimeout = mo.Some(next.LoadTimeout) })
	set(c.PlaceholderDuration != next.PlaceholderDuration, func() { u.PlaceholderDuration = mo.Some(next.PlaceholderDuration) })

	return u
}

// Apply returns c with every present field of u applied.
func (c Config) Apply(u ConfigUpdate) Config {
	c.PreferHighestOnStart = u.PreferHighestOnStart.OrElse(c.PreferHighestOnStart)
	c.AutoPlay = u.AutoPlay.OrElse(c.AutoPlay)
	c.Volume = clamp(u.Volume.OrElse(c.Volume))
	c.Muted = u.Muted.OrElse(c.Muted)
	c.PreferredAudioLang = u.PreferredAudioLang.OrElse(c.PreferredAudioLang)
	c.PreferredTextLang = u.PreferredTextLang.OrElse(c.PreferredTextLang)
	c.EnableABR = u.EnableABR.OrElse(c.EnableABR)
	c.MaxBufferSize = u.MaxBufferSize.OrElse(c.MaxBufferSize)
	c.MaxBufferLength = u.MaxBufferLength.OrElse(c.MaxBufferLength)
	c.SubtitleOffset = u.SubtitleOffset.OrElse(c.SubtitleOffset)
	c.LoadTimeout = u.LoadTimeout.OrElse(c.LoadTimeout)
	c.PlaceholderDuration = u.PlaceholderDuration.OrElse(c.PlaceholderDuration)
	return c
}

func clamp(v float64) float64 {
	return max(0, min(v, 1))
}
