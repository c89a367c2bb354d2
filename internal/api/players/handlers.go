// internal/api/players/handlers.go
package players

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/courtline/courtline/internal/api/apiutil"
	"github.com/courtline/courtline/internal/db"
)

var database *db.DB

func InitHandlers(d *db.DB) {
	database = d
}

// PlayerView is the JSON shape returned for a player.
type PlayerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type createPlayerRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// HandlePlayers serves the player collection: GET lists, POST creates,
// DELETE removes by `id` query parameter.
func HandlePlayers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		handleList(w, r)
	case http.MethodPost:
		handleCreate(w, r)
	case http.MethodDelete:
		handleDelete(w, r)
	default:
		apiutil.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func handleList(w http.ResponseWriter, r *http.Request) {
	players, err := database.ListPlayers(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to list players", err)
		return
	}

	views := make([]PlayerView, 0, len(players))
	for _, player := range players {
		views = append(views, toView(player))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, views)
}

func handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		apiutil.WriteError(w, r, http.StatusBadRequest, "name is required", apiutil.FieldError{Field: "name", Reason: "is required"})
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	player := db.Player{
		ID:   req.ID,
		Name: req.Name,
	}
	if req.Email != "" {
		player.Email = sql.NullString{String: req.Email, Valid: true}
	}

	if err := database.CreatePlayer(r.Context(), player); err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to create player", err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("player_id", player.ID).
		Str("name", player.Name).
		Msg("Player created")

	_ = apiutil.WriteJSON(w, http.StatusCreated, toView(player))
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		apiutil.WriteError(w, r, http.StatusBadRequest, "id is required", nil)
		return
	}

	if err := database.DeletePlayer(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apiutil.WriteError(w, r, http.StatusNotFound, "player not found", err)
			return
		}
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to delete player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toView(player db.Player) PlayerView {
	view := PlayerView{
		ID:   player.ID,
		Name: player.Name,
	}
	if player.Email.Valid {
		view.Email = player.Email.String
	}
	return view
}
