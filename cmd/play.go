package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/config"
	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/icon"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/player"
	"github.com/arflix-cli/arflix/resolver"
	"github.com/arflix-cli/arflix/selector"
	"github.com/arflix-cli/arflix/source"
	"github.com/arflix-cli/arflix/style"
	"github.com/arflix-cli/arflix/subtitle"
	"github.com/arflix-cli/arflix/tui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringArrayP("url", "u", []string{}, "Play these URLs instead of asking the resolvers")
	playCmd.Flags().StringP("input", "i", "", "Read stream candidates as a JSON array from a file, - for stdin")
	playCmd.MarkFlagsMutuallyExclusive("url", "input")

	playCmd.Flags().StringArrayP("subtitle", "s", []string{}, "Attach an external subtitle (srt, vtt or ass) by URL")
	playCmd.Flags().String("subtitle-lang", "", "Language of the attached subtitles")
	playCmd.Flags().String("subtitle-format", "", "Format of the attached subtitles when the URL has no extension")
	lo.Must0(playCmd.RegisterFlagCompletionFunc("subtitle-format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(subtitle.Formats(), func(f subtitle.Format, _ int) string {
			return string(f)
		}), cobra.ShellCompDirectiveNoFileComp
	}))

	playCmd.Flags().BoolP("choose", "c", false, "Pick the source manually instead of the best ranked one")
	playCmd.Flags().Bool("headless", false, "Play without the status view")

	playCmd.SetOut(os.Stdout)
}

// playCmd resolves, ranks and plays the best stream for a query.
var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Resolve streams for a query and play the best one this device supports",
	Long: `Resolve streams for a query with the configured resolvers, rank them against the
capabilities of this device and play the best one, falling back to the next on failure.`,
	Example: `  arflix play "big buck bunny"
  arflix play -u https://cdn.example/movie.m3u8 -s https://cdn.example/movie.en.vtt
  arflix resolvers run mysite "title" --json | arflix play -i -`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		handleErr(runPlay(ctx, cmd, strings.Join(args, " ")))
	},
}

func runPlay(ctx context.Context, cmd *cobra.Command, query string) error {
	candidates, err := gatherCandidates(ctx, cmd, query)
	if err != nil {
		return err
	}

	caps := capability.Get()
	ranked := selector.Rank(candidates, caps)

	if lo.Must(cmd.Flags().GetBool("choose")) {
		choice, err := chooseSource(selector.ClassifyAll(candidates, caps), "Choose a source")
		if err != nil {
			return err
		}
		ranked = []selector.Classified{choice}
	} else if len(ranked) == 0 {
		return fmt.Errorf("%w: none of %d candidates is supported on %s", player.ErrExhausted, len(candidates), caps.Platform)
	}

	subs, err := subtitleOptions(cmd)
	if err != nil {
		return err
	}

	if dep, err := engineDependency(caps.Platform); err != nil {
		printMissingDependencyError(dep)
		return fmt.Errorf("%s: %w", dep, err)
	}

	headless := lo.Must(cmd.Flags().GetBool("headless")) || !term.IsTerminal(int(os.Stdout.Fd()))

	var overlay subtitle.Overlay
	if headless && viper.GetBool(key.SubtitlesOverlay) {
		overlay = subtitle.NewWriterOverlay(os.Stderr)
	}

	core, err := player.NewCore(caps.Platform, player.ConfigFromViper(), player.Options{
		Fetcher: subtitle.NewFetcher(),
		Overlay: overlay,
		MPVPath: viper.GetString(key.PlayerMPVPath),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := core.Destroy(); err != nil {
			log.Warnf("destroy player: %v", err)
		}
	}()

	watchConfig(core)

	play := func(ranked []selector.Classified) error {
		if headless {
			return playHeadless(ctx, cmd.OutOrStdout(), core, ranked, subs, overlay)
		}
		return tui.Run(ctx, &tui.Options{
			Controller: core,
			Ranked:     ranked,
			Subtitles:  subs,
			Cues:       viper.GetBool(key.SubtitlesOverlay),
		})
	}

	err = play(ranked)
	if !errors.Is(err, player.ErrExhausted) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return err
	}

	log.Warnf("every ranked source failed: %v", err)
	_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), err)

	choice, chooseErr := chooseSource(selector.ClassifyAll(candidates, caps), "Every ranked source failed. Try another one?")
	if chooseErr != nil {
		return err
	}
	return play([]selector.Classified{choice})
}

// gatherCandidates collects candidates from --url, --input or the resolvers, in that order.
func gatherCandidates(ctx context.Context, cmd *cobra.Command, query string) ([]*source.Candidate, error) {
	if urls := lo.Must(cmd.Flags().GetStringArray("url")); len(urls) > 0 {
		return lo.Map(urls, func(url string, i int) *source.Candidate {
			c := source.New(url, url)
			c.Index = i
			return c
		}), nil
	}

	if input := lo.Must(cmd.Flags().GetString("input")); input != "" {
		return readCandidates(cmd.InOrStdin(), input)
	}

	if query == "" {
		return nil, errors.New("a query, --url or --input is required")
	}

	names, err := resolverNames()
	if err != nil {
		return nil, err
	}

	resolvers, err := resolver.LoadAll(names)
	if err != nil {
		return nil, err
	}
	defer lo.ForEach(resolvers, func(r *resolver.Resolver, _ int) { r.Close() })

	return resolver.Resolve(ctx, lo.Map(resolvers, func(r *resolver.Resolver, _ int) source.Resolver {
		return r
	}), query)
}

func readCandidates(stdin io.Reader, path string) ([]*source.Candidate, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = filesystem.API().ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var candidates []*source.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}

	candidates = lo.Filter(candidates, func(c *source.Candidate, _ int) bool {
		return c != nil
	})
	for i, c := range candidates {
		c.Index = i
	}

	if len(candidates) == 0 {
		return nil, errors.New("no candidates in input")
	}
	return candidates, nil
}

// resolverNames returns the configured resolvers, asking for them when none are set.
func resolverNames() ([]string, error) {
	if names := viper.GetStringSlice(key.DefaultResolvers); len(names) > 0 {
		return names, nil
	}

	available := resolver.Names()
	switch len(available) {
	case 0:
		return nil, errors.New(`no resolvers installed, see "arflix resolvers gen" or "arflix resolvers install"`)
	case 1:
		return available, nil
	}

	var names []string
	err := survey.AskOne(&survey.MultiSelect{
		Message: "Select resolvers",
		Options: available,
	}, &names, survey.WithValidator(survey.MinItems(1)))
	return names, err
}

// chooseSource asks for one of the classified candidates. Playable candidates are listed first.
func chooseSource(classified []selector.Classified, message string) (selector.Classified, error) {
	if len(classified) == 0 {
		return selector.Classified{}, errors.New("no candidates to choose from")
	}

	classified = slices.Clone(classified)
	slices.SortStableFunc(classified, func(a, b selector.Classified) int {
		if a.Playable != b.Playable {
			return lo.Ternary(a.Playable, -1, 1)
		}
		return selector.ByScore(a, b)
	})

	options := lo.Map(classified, func(c selector.Classified, i int) string {
		mark := lo.Ternary(c.Playable, icon.Playable, icon.Unplayable)
		label := fmt.Sprintf("%d. %s %s", i+1, icon.Get(mark), c.Candidate.DisplayTitle())
		if !c.Playable && len(c.Reasons) > 0 {
			label += " " + style.Fg(color.Red)("("+strings.Join(c.Reasons, ", ")+")")
		}
		return label
	})

	var index int
	if err := survey.AskOne(&survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 15,
	}, &index); err != nil {
		return selector.Classified{}, err
	}

	return classified[index], nil
}

func subtitleOptions(cmd *cobra.Command) ([]tui.Subtitle, error) {
	var (
		urls      = lo.Must(cmd.Flags().GetStringArray("subtitle"))
		lang      = lo.Must(cmd.Flags().GetString("subtitle-lang"))
		rawFormat = lo.Must(cmd.Flags().GetString("subtitle-format"))
	)

	subs := make([]tui.Subtitle, 0, len(urls))
	for _, url := range urls {
		var (
			format subtitle.Format
			err    error
		)
		if rawFormat != "" {
			format, err = subtitle.ParseFormat(rawFormat)
		} else {
			format, err = subtitle.FormatOf(url)
		}
		if err != nil {
			return nil, fmt.Errorf("subtitle %s: %w", url, err)
		}

		subs = append(subs, tui.Subtitle{URL: url, Format: format, Lang: lang})
	}
	return subs, nil
}

// watchConfig pushes edits of the config file to the running player.
func watchConfig(core *player.Core) {
	current := core.Config()
	config.Watch(func() {
		next := player.ConfigFromViper()
		core.UpdateConfig(current.Diff(next))
		current = next
	})
}

// playHeadless plays without the status view, printing lifecycle changes to out
// until playback ends, every source has failed or ctx is done.
func playHeadless(ctx context.Context, out io.Writer, core *player.Core, ranked []selector.Classified, subs []tui.Subtitle, overlay subtitle.Overlay) error {
	ended := make(chan struct{})
	failed := make(chan error, 1)
	replaced := make(chan *selector.Classified, 1)

	listener := core.On(func(ev player.Event) {
		switch ev.Type {
		case player.EventStateChanged:
			log.Debugf("player %s", ev.State.Phase)
			if ev.State.Phase == player.PhaseEnded {
				select {
				case <-ended:
				default:
					close(ended)
				}
			}
		case player.EventError:
			_, _ = fmt.Fprintf(out, "%s %v\n", icon.Get(icon.Fail), ev.Err)
			if errors.Is(ev.Err, player.ErrExhausted) {
				select {
				case failed <- ev.Err:
				default:
				}
			}
		case player.EventSource:
			select {
			case replaced <- ev.Source:
			default:
			}
		}
	})
	defer core.Off(listener)

	if overlay != nil {
		defer core.Off(player.Mirror(core, overlay))
	}

	choice, err := core.PlayRanked(ctx, ranked)
	if err != nil {
		return err
	}

	for {
		announce(ctx, out, core, choice, subs)

		select {
		case choice = <-replaced:
		case err := <-failed:
			return err
		case <-ended:
			_, _ = fmt.Fprintf(out, "%s finished\n", icon.Get(icon.Ended))
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// announce prints the playing source and attaches the external subtitles to it.
func announce(ctx context.Context, out io.Writer, core *player.Core, choice *selector.Classified, subs []tui.Subtitle) {
	_, _ = fmt.Fprintf(out, "%s %s %s\n",
		icon.Get(icon.Play),
		style.Fg(color.Purple)(choice.Candidate.DisplayTitle()),
		style.Faint(fmt.Sprintf("(%s, score %d)", core.Kind(), choice.Score)),
	)

	for _, s := range subs {
		track, err := core.AttachExternalSubtitle(ctx, s.URL, s.Format, s.Lang, s.Label)
		if err != nil {
			_, _ = fmt.Fprintf(out, "%s subtitle %s: %v\n", icon.Get(icon.Fail), s.URL, err)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", icon.Get(icon.Subtitle), lo.CoalesceOrEmpty(track.Label, track.Lang, track.ID))
	}
}
