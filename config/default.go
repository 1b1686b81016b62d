// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Arflix + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes the current value next to the default.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func register(k string, v any, desc string) {
	if _, exists := Default[k]; exists {
		panic("duplicate config key: " + k)
	}
	Default[k] = Field{Key: k, Value: v, Description: desc}
	EnvExposed = append(EnvExposed, k)
}

func init() {
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")

	register(key.PlatformOverride, "", "Force the host platform instead of detecting it.\nAvailable options are: web, android, apple, desktop")
	register(key.CapabilityProbe, true, "Probe the local decoder to refine max resolution and HDR support")
	register(key.CapabilityMaxHeight, 0, "Cap the maximum decodable height. 0 keeps the detected value")
	register(key.CapabilityContainers, []string{}, "Replace the container allow-list of the platform baseline")
	register(key.CapabilityAudioAllow, []string{}, "Replace the audio codec allow-list of the platform baseline")
	register(key.CapabilityAudioDeny, []string{}, "Extra audio codecs to deny on top of the platform baseline")
	register(key.CapabilityVideoAllow, []string{}, "Replace the video codec allow-list of the platform baseline")
	register(key.CapabilityVideoDeny, []string{}, "Extra video codecs to deny on top of the platform baseline")

	register(key.WeightContainerSupported, 100, "Score bonus for a supported container")
	register(key.WeightContainerUnsupported, -1000, "Score penalty for a detected but unsupported container")
	register(key.WeightAudioUnsupported, -500, "Score penalty for a detected but unsupported audio codec")
	register(key.WeightVideoSupported, 30, "Score bonus for a supported video codec")
	register(key.WeightVideoUnsupported, -500, "Score penalty for a detected but unsupported video codec")
	register(key.WeightResolutionMultiplier, 5, "Multiplier applied to the resolution bonus (height / 10)")
	register(key.WeightCamPenalty, -5000, "Score penalty for cam or telesync releases")
	register(key.WeightAdsPenalty, -2000, "Score penalty for releases with embedded advertisements")
	register(key.WeightAudioDefault, 10, "Score bonus for a supported audio codec without its own preference")
	register(key.WeightAudioPreference, []string{}, "Per-codec audio bonuses as codec=score, overlaid on the built-in ones (e.g. opus=60)")
	register(key.WeightContainerPreference, []string{}, "Per-container bonuses as container=score, overlaid on the built-in ones (e.g. mkv=5)")
	register(key.WeightHDRUnsupported, -50, "Score penalty for HDR streams on a host without HDR output")
	register(key.WeightSeedBonusCap, 10, "Upper bound of the torrent seed bonus")

	register(key.PlayerPreferHighest, true, "Select the highest quality once the engine reports its tracks")
	register(key.PlayerAutoPlay, true, "Start playback as soon as the source is loaded")
	register(key.PlayerVolume, 1.0, "Initial volume, from 0 to 1")
	register(key.PlayerMuted, false, "Start muted")
	register(key.PlayerAudioLang, "", "Preferred audio language (e.g. en, jpn)")
	register(key.PlayerTextLang, "", "Preferred subtitle language (e.g. en, jpn)")
	register(key.PlayerABR, true, "Let the engine switch bitrates adaptively")
	register(key.PlayerBufferSize, 0, "Maximum demuxer buffer in megabytes. 0 keeps the engine default")
	register(key.PlayerBufferLength, 0, "Maximum buffered seconds. 0 keeps the engine default")
	register(key.PlayerLoadTimeout, "30s", "Wall-clock time a source may take to become ready before falling back to the next one")
	register(key.PlayerPlaceholderDuration, "0s", "Sources shorter than this are treated as placeholders and skipped. 0s disables the check")
	register(key.PlayerMPVPath, "mpv", "Path to the mpv executable")

	register(key.SubtitlesOffset, "0s", "Manual subtitle offset (e.g. -1.5s)")
	register(key.SubtitlesOverlay, true, "Mirror subtitle cues into the terminal status view")
	register(key.SubtitlesCacheLifetime, "1h", "How long fetched subtitle files are cached")

	register(key.DefaultResolvers, []string{}, "Default resolvers to use.\nWill prompt if not set.\nType \"arflix resolvers list\" to show available resolvers")
	register(key.ResolversCacheLifetime, "10m", "How long responses of cached resolver requests are kept")
	register(key.ResolversTimeout, "30s", "Maximum time a resolver may take to produce its streams")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
