package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/sheepfold/internal/engine"
	"github.com/vovakirdan/sheepfold/internal/flock"
	"github.com/vovakirdan/sheepfold/internal/pasture"
	"github.com/vovakirdan/sheepfold/internal/scene"
)

// sheepResponse reports prayer counters as they stand now: a count left
// over from an earlier day reads as zero.
type sheepResponse struct {
	flock.Sheep
	StatusText   string `json:"status_text"`
	Relationship string `json:"relationship"`
	PrayedToday  int    `json:"prayed_today"`
	PrayersLeft  int    `json:"prayers_left"`
}

type profileResponse struct {
	flock.Profile
	Sheep     int            `json:"sheep"`
	Counts    map[string]int `json:"counts"`
	LocalOnly bool           `json:"local_only"`
}

type adoptRequest struct {
	Name string `json:"name"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type planRequest struct {
	Time     *time.Time `json:"time"` // RFC 3339; null clears the plan
	Location string     `json:"location"`
	Content  string     `json:"content"`
}

// Pointers for PATCH: nil means leave as is.
type annotateRequest struct {
	Name     *string      `json:"name"`
	Note     *string      `json:"note"`
	Maturity *string      `json:"maturity"`
	Plan     *planRequest `json:"plan"`
}

type prayResponse struct {
	Sheep   sheepResponse  `json:"sheep"`
	Outcome engine.Outcome `json:"outcome"`
}

func (a *api) toSheepResponse(s flock.Sheep) sheepResponse {
	eng := a.manager.Engine()
	now := time.Now()

	prayed := eng.EffectivePrayedCount(s, now)
	s.PrayedCount = prayed
	s.ResurrectionProgress = eng.EffectiveResurrection(s, now)

	left := 0
	if s.Status.Alive() {
		left = max(eng.Rules().Care.DailyLimit-prayed, 0)
	}
	return sheepResponse{
		Sheep:        s,
		StatusText:   flock.StatusText(s),
		Relationship: flock.Relationship(s.Name),
		PrayedToday:  prayed,
		PrayersLeft:  left,
	}
}

func (a *api) pasture(w http.ResponseWriter, r *http.Request) (*pasture.Pasture, bool) {
	ownerID := strings.TrimSpace(chi.URLParam(r, "ownerID"))
	if ownerID == "" {
		http.Error(w, "owner id is required", http.StatusBadRequest)
		return nil, false
	}
	p, err := a.manager.Open(r.Context(), ownerID)
	if err != nil {
		a.writeError(w, err)
		return nil, false
	}
	return p, true
}

func (a *api) getProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := a.pasture(w, r)
	if !ok {
		return
	}
	snap := p.Snapshot()
	counts := make(map[string]int)
	for status, n := range snap.Counts() {
		counts[status.String()] = n
	}
	writeJSON(w, http.StatusOK, profileResponse{
		Profile:   snap.Profile,
		Sheep:     snap.Len(),
		Counts:    counts,
		LocalOnly: p.LocalOnly(),
	})
}

func (a *api) renameProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := a.pasture(w, r)
	if !ok {
		return
	}
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	prof, err := p.Rename(r.Context(), req.Name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

func (a *api) getScene(w http.ResponseWriter, r *http.Request) {
	ownerID := strings.TrimSpace(chi.URLParam(r, "ownerID"))
	writeJSON(w, http.StatusOK, scene.GenerateWithParams(ownerID, a.params))
}

func (a *api) listSheep(w http.ResponseWriter, r *http.Request) {
	p, ok := a.pasture(w, r)
	if !ok {
		return
	}
	snap := p.Snapshot()
	out := make([]sheepResponse, 0, snap.Len())
	for _, s := range snap.Sheep {
		out = append(out, a.toSheepResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) getSheep(w http.ResponseWriter, r *http.Request) {
	p, ok := a.pasture(w, r)
	if !ok {
		return
	}
	s, found := p.Snapshot().Find(chi.URLParam(r, "sheepID"))
	if !found {
		http.Error(w, "sheep not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a.toSheepResponse(s))
}

func (a *api) adoptSheep(w http.ResponseWriter, r *http.Request) {
	p, ok := a.pasture(w, r)
	if !ok {
		return
	}
	var req adoptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	s, err := p.Adopt(req.Name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.toSheepResponse(s))
}

func (a *api) annotateSheep(w http.ResponseWriter, r *http.Request) {
	p, ok := a.pasture(w, r)
	if !ok {
		return
	}
	var req annotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	ann := engine.Annotation{Name: req.Name, Note: req.Note, Maturity: req.Maturity}
	if req.Plan != nil {
		ann.Plan = &flock.Plan{
			Time:     req.Plan.Time,
			Location: req.Plan.Location,
			Content:  req.Plan.Content,
		}
	}

	s, err := p.Annotate(chi.URLParam(r, "sheepID"), ann)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.toSheepResponse(s))
}

func (a *api) praySheep(w http.ResponseWriter, r *http.Request) {
	p, ok := a.pasture(w, r)
	if !ok {
		return
	}
	s, out, err := p.Pray(chi.URLParam(r, "sheepID"), engine.PrayOptions{Admin: a.isAdmin(r)})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prayResponse{Sheep: a.toSheepResponse(s), Outcome: out})
}

func (a *api) deleteSheep(w http.ResponseWriter, r *http.Request) {
	p, ok := a.pasture(w, r)
	if !ok {
		return
	}
	if err := p.Delete(r.Context(), chi.URLParam(r, "sheepID")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, flock.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, flock.ErrLimitReached):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, flock.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		a.logger.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
