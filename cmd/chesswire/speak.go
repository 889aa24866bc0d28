package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chesswire/internal/config"
	"chesswire/internal/logging"
	"chesswire/internal/speech"
)

func newSpeakCommand(configFlag *string) *cobra.Command {
	var voiceMode, tone, out string

	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Synthesize one narration line to an audio file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: os.Stderr,
			})
			if err != nil {
				return err
			}

			cache := speech.NewCache(cfg.Speech.CacheDir, cfg.Speech.CacheMaxEntries, logger)
			vendor := speech.NewClient(speech.ClientConfig{
				APIKey:         cfg.Speech.APIKey,
				BaseURL:        cfg.Speech.BaseURL,
				VoiceID:        cfg.Speech.VoiceID,
				TimeoutSeconds: cfg.Speech.TimeoutSeconds,
			})
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			svc := speech.NewService(cache, vendor, rng, logger)

			text := strings.Join(args, " ")
			audio, err := svc.Synthesize(cmd.Context(), text, speech.Mode(voiceMode), tone)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, audio, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes to %s\n", len(audio), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&voiceMode, "voice-mode", "", "Voice mode (calm, dramatic, excited, melancholy, intense); auto-detected when empty")
	cmd.Flags().StringVar(&tone, "tone", "", "Narration tone")
	cmd.Flags().StringVarP(&out, "out", "o", "narration.mp3", "Output audio file")
	return cmd
}
