package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dayloop-io/dayloop/internal/auth"
	"github.com/dayloop-io/dayloop/internal/goals"
	"github.com/go-chi/chi/v5"
)

type createGoalRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
	Text string `json:"text"`
	Sort int    `json:"sort"`
}

func (api *Api) CreateGoalHandler(w http.ResponseWriter, r *http.Request) {
	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondFieldErrors(w, map[string]string{"date": "must be YYYY-MM-DD"})
		return
	}

	goal, err := api.goals.Create(r.Context(), person, goals.CreateGoalInput{
		Date: date,
		Text: req.Text,
		Sort: req.Sort,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, goal)
}

func (api *Api) ListGoalsHandler(w http.ResponseWriter, r *http.Request) {
	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		respondFieldErrors(w, map[string]string{"date": "query parameter is required"})
		return
	}
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		respondFieldErrors(w, map[string]string{"date": "must be YYYY-MM-DD"})
		return
	}

	list, err := api.goals.ListDate(r.Context(), person.Key, date)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (api *Api) ListTodayGoalsHandler(w http.ResponseWriter, r *http.Request) {
	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	list, err := api.goals.ListToday(r.Context(), person.Key)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

type updateGoalRequest struct {
	Text      *string `json:"text"`
	Sort      *int    `json:"sort"`
	Completed *bool   `json:"completed"`
	Archived  *bool   `json:"archived"`
}

func (api *Api) UpdateGoalHandler(w http.ResponseWriter, r *http.Request) {
	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req updateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal, err := api.goals.Update(r.Context(), person.Key, chi.URLParam(r, "goalKey"), goals.UpdateGoalInput{
		Text:      req.Text,
		Sort:      req.Sort,
		Completed: req.Completed,
		Archived:  req.Archived,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, goal)
}

func (api *Api) DeleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := api.goals.Delete(r.Context(), person.Key, chi.URLParam(r, "goalKey")); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
