package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"family-feud/internal/directory"

	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const (
	qrSize                  = 320
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"games":  s.store.Count(),
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	sess := s.createGame(r.Context())
	writeJSON(w, http.StatusCreated, map[string]string{
		"game_id":   sess.ID(),
		"join_code": sess.Code(),
	})
}

// handleGetGame returns the spectator projection: no hidden answers.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.GetGame(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, errGameNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot().ForViewer(""))
}

func (s *Server) joinURL(code string) string {
	return strings.TrimRight(s.cfg.PublicURL, "/") + "/join/" + code
}

func (s *Server) handleGameQR(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.GetGame(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	png, err := qrcode.Encode(s.joinURL(sess.Code()), qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("game_id", sess.ID()).Msg("qr generation failed")
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) handleFindRoom(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
	gameID, err := s.dir.Lookup(r.Context(), code)
	if errors.Is(err, directory.ErrNotFound) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("join_code", code).Msg("room lookup failed")
		writeError(w, http.StatusServiceUnavailable, "room lookup failed")
		return
	}
	sess, ok := s.store.GetGame(gameID)
	if !ok {
		// Registered by another instance, or stale.
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	snap := sess.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"roomId":     sess.ID(),
		"roomCode":   sess.Code(),
		"clients":    len(snap.Players),
		"maxClients": s.rules.MaxPlayers,
		"phase":      snap.Phase,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxLeaderboardLimit)
	}
	if s.db == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entries": []leaderboardRow{}})
		return
	}
	entries, err := topEntries(r.Context(), s.db, limit)
	if err != nil {
		log.Error().Err(err).Msg("load leaderboard")
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handlePlayerRank(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotFound, "leaderboard unavailable")
		return
	}
	row, rank, err := playerRank(r.Context(), s.db, r.PathValue("accountID"))
	if errors.Is(err, errEntryNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load player rank")
		writeError(w, http.StatusInternalServerError, "failed to load rank")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rank":  rank,
		"entry": row,
	})
}
