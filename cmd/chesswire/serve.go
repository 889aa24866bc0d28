package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"chesswire/internal/config"
	"chesswire/internal/emotion"
	"chesswire/internal/handlers"
	"chesswire/internal/logging"
	"chesswire/internal/narrative"
	"chesswire/internal/replay"
	"chesswire/internal/services/llm"
	"chesswire/internal/speech"
	"chesswire/internal/storage"
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the narration HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return err
			}

			var store *storage.Store
			if cfg.Database.DSN != "" {
				db, err := storage.New(cfg.Database.DSN)
				if err != nil {
					return fmt.Errorf("open database: %w", err)
				}
				store = storage.NewStore(db)
			} else {
				logger.Info("no database configured, analysis cache disabled")
			}

			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			classifier := emotion.NewClassifier(rng, logger)
			adapter := narrative.NewAdapter(logger)

			cache := speech.NewCache(cfg.Speech.CacheDir, cfg.Speech.CacheMaxEntries, logger)
			vendor := speech.NewClient(speech.ClientConfig{
				APIKey:         cfg.Speech.APIKey,
				BaseURL:        cfg.Speech.BaseURL,
				VoiceID:        cfg.Speech.VoiceID,
				TimeoutSeconds: cfg.Speech.TimeoutSeconds,
			})
			speechSvc := speech.NewService(cache, vendor, rng, logger)

			hub := replay.NewHub(replay.TimerScheduler{}, speechSvc, logger)

			story := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			})

			h := handlers.NewHandler(handlers.Handler{
				Classifier: classifier,
				Adapter:    adapter,
				Speech:     speechSvc,
				Hub:        hub,
				Store:      store,
				Story:      story,
				Replay: replay.Config{
					VoiceNarration: cfg.Replay.VoiceNarration,
					CinematicMode:  cfg.Replay.CinematicMode,
					VoiceMode:      speech.Mode(cfg.Replay.VoiceMode),
					BaseDelay:      time.Duration(cfg.Replay.BaseDelayMS) * time.Millisecond,
				},
				Style:  narrative.Style(cfg.Replay.Style),
				Logger: logger,
			})

			mux := http.NewServeMux()
			mux.HandleFunc("/analyze", h.HandleAnalyze)
			mux.HandleFunc("/narrate", h.HandleNarrate)
			mux.HandleFunc("/speak", h.HandleSpeak)
			mux.HandleFunc("/story", h.HandleStory)
			mux.HandleFunc("/stats", h.HandleStats)
			mux.HandleFunc("/replay/new", h.HandleReplayNew)
			mux.HandleFunc("/replay/sse/", h.HandleReplaySSE)
			mux.HandleFunc("/replay/play/", h.HandleReplayCommand("play"))
			mux.HandleFunc("/replay/pause/", h.HandleReplayCommand("pause"))
			mux.HandleFunc("/replay/seek/", h.HandleReplayCommand("seek"))
			mux.HandleFunc("/replay/speed/", h.HandleReplayCommand("speed"))

			logger.Info("chesswire listening", slog.String("bind", cfg.Server.Bind))
			return http.ListenAndServe(cfg.Server.Bind, mux)
		},
	}
}
