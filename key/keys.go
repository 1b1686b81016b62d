// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Logging Infrastructure - these keys manage the application's internal diagnostics system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Host Capabilities - these keys override or refine the detected decode support matrix.
const (
	PlatformOverride     = "platform.override"
	CapabilityProbe      = "capability.probe"
	CapabilityMaxHeight  = "capability.max_height"
	CapabilityContainers = "capability.containers"
	CapabilityAudioAllow = "capability.audio_allow"
	CapabilityAudioDeny  = "capability.audio_deny"
	CapabilityVideoAllow = "capability.video_allow"
	CapabilityVideoDeny  = "capability.video_deny"
)

// Classification Weights - these keys tune the relative magnitudes of the stream score.
const (
	WeightContainerSupported   = "classify.weights.container_supported"
	WeightContainerUnsupported = "classify.weights.container_unsupported"
	WeightAudioUnsupported     = "classify.weights.audio_unsupported"
	WeightVideoSupported       = "classify.weights.video_supported"
	WeightVideoUnsupported     = "classify.weights.video_unsupported"
	WeightResolutionMultiplier = "classify.weights.resolution_multiplier"
	WeightCamPenalty           = "classify.weights.cam_penalty"
	WeightAdsPenalty           = "classify.weights.ads_penalty"
	WeightAudioDefault         = "classify.weights.audio_default"
	WeightAudioPreference      = "classify.weights.audio_preference"
	WeightContainerPreference  = "classify.weights.container_preference"
	WeightHDRUnsupported       = "classify.weights.hdr_unsupported"
	WeightSeedBonusCap         = "classify.weights.seed_bonus_cap"
)

// Media Playback - these keys configure the engine startup policy and fallback behavior.
const (
	PlayerPreferHighest       = "player.prefer_highest"
	PlayerAutoPlay            = "player.autoplay"
	PlayerVolume              = "player.volume"
	PlayerMuted               = "player.muted"
	PlayerAudioLang           = "player.audio_lang"
	PlayerTextLang            = "player.text_lang"
	PlayerABR                 = "player.abr"
	PlayerBufferSize          = "player.buffer_size"
	PlayerBufferLength        = "player.buffer_length"
	PlayerLoadTimeout         = "player.load_timeout"
	PlayerPlaceholderDuration = "player.placeholder_duration"
	PlayerMPVPath             = "player.mpv_path"
)

// Subtitles - these keys configure external subtitle fetching and overlay rendering.
const (
	SubtitlesOffset        = "subtitles.offset"
	SubtitlesOverlay       = "subtitles.overlay"
	SubtitlesCacheLifetime = "subtitles.cache_lifetime"
)

// Resolvers - these keys manage the Lua scripts that produce stream candidates.
const (
	DefaultResolvers       = "resolvers.default"
	ResolversCacheLifetime = "resolvers.cache_lifetime"
	ResolversTimeout       = "resolvers.timeout"
)
