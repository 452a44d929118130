package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/vetchat/internal/client"
	"github.com/zhouzirui/vetchat/internal/model/locale"
	"github.com/zhouzirui/vetchat/internal/preference"
	localestate "github.com/zhouzirui/vetchat/internal/service/locale"
	"github.com/zhouzirui/vetchat/internal/service/orchestrator"
	"github.com/zhouzirui/vetchat/internal/service/playback"
	"github.com/zhouzirui/vetchat/internal/terminal"
	"github.com/zhouzirui/vetchat/pkg/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vetchat",
		Short: "Terminal client for the veterinary chatbot",
		Long: `Ask the veterinary chatbot questions from a terminal.

Answers are formatted and revealed character by character unless
--mode=instant is given. Type /help for the available commands.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().String("server", "http://localhost:10000", "Base URL of the chatbot API")
	rootCmd.Flags().String("mode", string(playback.ModePaced), "Playback mode: paced or instant")
	rootCmd.Flags().Duration("interval", playback.DefaultInterval, "Reveal interval in paced mode")
	rootCmd.Flags().String("lang", "", "Language code, persisted for later sessions")
	rootCmd.Flags().String("prefs", preference.DefaultPath, "Preference file")
	rootCmd.Flags().Int("max-query-length", orchestrator.DefaultMaxQueryLength, "Maximum query length in characters")
	rootCmd.Flags().Bool("greetings", true, "Answer greetings locally")
	rootCmd.Flags().String("log-level", "warn", "Log level")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	server, _ := flags.GetString("server")
	rawMode, _ := flags.GetString("mode")
	interval, _ := flags.GetDuration("interval")
	lang, _ := flags.GetString("lang")
	prefsPath, _ := flags.GetString("prefs")
	maxQuery, _ := flags.GetInt("max-query-length")
	greetings, _ := flags.GetBool("greetings")
	level, _ := flags.GetString("log-level")

	if err := logging.SetupWriter(os.Stderr, level, "console"); err != nil {
		return err
	}

	mode, err := playback.ParseMode(rawMode, interval)
	if err != nil {
		return errors.Wrap(err, "invalid --mode")
	}

	catalog, err := locale.DefaultCatalog("en")
	if err != nil {
		return err
	}

	prefs, err := preference.OpenFileStore(prefsPath)
	if err != nil {
		return errors.Wrap(err, "open preferences")
	}
	state := localestate.New(prefs, catalog)
	if lang != "" {
		if err := state.SetLanguage(lang); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(server, client.WithTimeout(45*time.Second))
	out := cmd.OutOrStdout()
	sink := terminal.NewSink(out, "vet> ", "…")
	engine := orchestrator.New(orchestrator.Config{
		MaxQueryLength:   maxQuery,
		GreetingsEnabled: greetings,
		Mode:             mode,
	}, orchestrator.Deps{
		Transport: api,
		Sink:      sink,
		Locale:    state,
		Indicator: sink,
	})

	log.Debug().Str("server", server).Str("language", state.Current()).Str("prefs", prefs.Path()).Msg("terminal chat ready")

	r := &repl{
		in:       cmd.InOrStdin(),
		out:      out,
		engine:   engine,
		sink:     sink,
		feedback: api,
	}
	return r.run(ctx)
}
