// Package handlers exposes the narration pipeline over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chesswire/internal/emotion"
	"chesswire/internal/logging"
	"chesswire/internal/narrative"
	"chesswire/internal/pgn"
	"chesswire/internal/replay"
	"chesswire/internal/services/llm"
	"chesswire/internal/speech"
	"chesswire/internal/storage"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Classifier *emotion.Classifier
	Adapter    *narrative.Adapter
	Speech     *speech.Service
	Hub        *replay.Hub
	Store      *storage.Store
	Story      *llm.Client
	Replay     replay.Config
	Style      narrative.Style
	Logger     *slog.Logger
}

// NewHandler creates a new handler instance
func NewHandler(h Handler) *Handler {
	h.Logger = logging.WithComponent(h.Logger, "http")
	return &h
}

type analyzeRequest struct {
	PGN string `json:"pgn"`
}

// HandleAnalyze classifies a game into its emotion heatmap, consulting the
// analysis cache first when a database is configured.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	extraction := pgn.Extract(req.PGN)
	if !extraction.IsValid {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "invalid pgn"})
		return
	}

	hm, cached := h.analyzeCached(r.Context(), req.PGN, extraction.Moves)
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"cached":   cached,
		"gameInfo": extraction.GameInfo,
		"heatmap":  hm,
	})
}

// analyzeCached runs the classifier behind the content-addressed analysis
// cache. Cache failures degrade to a plain re-analysis.
func (h *Handler) analyzeCached(ctx context.Context, pgnText string, moves []pgn.Move) (emotion.Heatmap, bool) {
	key := storage.AnalysisKey("heatmap", pgnText)
	if payload, err := h.Store.GetAnalysis(ctx, key); err == nil {
		var hm emotion.Heatmap
		if err := json.Unmarshal(payload, &hm); err == nil {
			return hm, true
		}
		h.Logger.Warn("cached analysis payload unreadable, re-analyzing", slog.String("key", key))
	}

	hm := h.Classifier.AnalyzeGame(moves)
	if payload, err := json.Marshal(hm); err == nil {
		if err := h.Store.PutAnalysis(ctx, key, "heatmap", payload); err != nil {
			h.Logger.Warn("failed to cache analysis", slog.String("key", key), logging.Error(err))
		}
	}
	return hm, false
}

type narrateRequest struct {
	Content string `json:"content"`
	PGN     string `json:"pgn,omitempty"`
	Style   string `json:"style,omitempty"`
}

// HandleNarrate adapts content into all four narrative styles plus snippets.
// When PGN is supplied its heatmap conditions the framing.
func (h *Handler) HandleNarrate(w http.ResponseWriter, r *http.Request) {
	var req narrateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "missing content"})
		return
	}

	var hm *emotion.Heatmap
	if req.PGN != "" {
		if extraction := pgn.Extract(req.PGN); extraction.IsValid {
			analyzed, _ := h.analyzeCached(r.Context(), req.PGN, extraction.Moves)
			hm = &analyzed
		}
	}

	style := narrative.Style(req.Style)
	if style == "" {
		style = h.Style
	}

	adaptation := h.Adapter.Adapt(req.Content, hm)
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"adaptation": adaptation,
		"rendered":   adaptation.Render(style),
		"snippets":   h.Adapter.Snippets(req.Content, hm),
	})
}

type speakRequest struct {
	Text      string `json:"text"`
	VoiceMode string `json:"voiceMode,omitempty"`
	Tone      string `json:"tone,omitempty"`
}

// HandleSpeak synthesizes one narration unit and streams the audio back.
func (h *Handler) HandleSpeak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "missing text"})
		return
	}

	audio, err := h.Speech.Synthesize(r.Context(), req.Text, speech.Mode(req.VoiceMode), req.Tone)
	if err != nil {
		h.Logger.Warn("synthesis failed", logging.Error(err))
		WriteJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": "synthesis failed"})
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

type replayNewRequest struct {
	PGN    string          `json:"pgn"`
	Config json.RawMessage `json:"config,omitempty"`
}

// HandleReplayNew creates a replay session for a PGN, annotating it with the
// game's heatmap so playback can narrate each move. The request config is
// decoded over a copy of the server defaults, so keys a client leaves out
// keep their configured values.
func (h *Handler) HandleReplayNew(w http.ResponseWriter, r *http.Request) {
	var req replayNewRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	cfg := h.Replay
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
			return
		}
	}

	var hm *emotion.Heatmap
	if extraction := pgn.Extract(req.PGN); extraction.IsValid {
		analyzed, _ := h.analyzeCached(r.Context(), req.PGN, extraction.Moves)
		hm = &analyzed
	}

	session, err := h.Hub.Create(req.PGN, hm, cfg)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "invalid pgn"})
		return
	}
	h.Logger.Info("replay session created",
		slog.String("id", session.ID), slog.String("client", ClientIP(r)))
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": session.ID, "state": session.State()})
}

// HandleReplaySSE streams session state and narration events.
func (h *Handler) HandleReplaySSE(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/replay/sse/")
	session, err := h.Hub.Get(id)
	if err != nil {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan []byte, 16)
	session.Subscribe(ch)
	defer session.Unsubscribe(ch)

	initial, _ := json.Marshal(session.State())
	_, _ = fmt.Fprintf(w, "data: %s\n\n", initial)
	flusher.Flush()

	session.Touch()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// heartbeat
			_, _ = w.Write([]byte("data: {}\n\n"))
			flusher.Flush()
		case msg := <-ch:
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(msg)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

type seekRequest struct {
	Index int `json:"index"`
}

type speedRequest struct {
	Multiplier float64 `json:"multiplier"`
}

// HandleReplayCommand dispatches the transport commands: play, pause, seek,
// and speed, addressed as /replay/{command}/{id}.
func (h *Handler) HandleReplayCommand(command string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/replay/"+command+"/")
		session, err := h.Hub.Get(id)
		if err != nil {
			WriteJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "unknown session"})
			return
		}
		session.Touch()

		var snap replay.Snapshot
		switch command {
		case "play":
			snap = session.Play()
		case "pause":
			snap = session.Pause()
		case "seek":
			var req seekRequest
			if !DecodeJSON(w, r, &req) {
				return
			}
			snap = session.Seek(req.Index)
		case "speed":
			var req speedRequest
			if !DecodeJSON(w, r, &req) {
				return
			}
			snap = session.SetSpeed(req.Multiplier)
		default:
			WriteJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "unknown command"})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "state": snap})
	}
}

type storyRequest struct {
	PGN string `json:"pgn"`
}

// HandleStory generates a long-form story for a game via the LLM. Returns
// 503 when no LLM is configured.
func (h *Handler) HandleStory(w http.ResponseWriter, r *http.Request) {
	if !h.Story.Enabled() {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "story generation not configured"})
		return
	}
	var req storyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	extraction := pgn.Extract(req.PGN)
	if !extraction.IsValid {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "invalid pgn"})
		return
	}
	hm, _ := h.analyzeCached(r.Context(), req.PGN, extraction.Moves)

	story, err := h.Story.GenerateStory(r.Context(), extraction.GameInfo, &hm)
	if err != nil {
		h.Logger.Warn("story generation failed", logging.Error(err))
		WriteJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": "story generation failed"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "story": story})
}

// HandleStats reports analysis-cache counts.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.FetchStats(r.Context())
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "stats unavailable"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": stats})
}
