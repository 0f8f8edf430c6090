package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hightouchio/portmanager/log"
	"github.com/hightouchio/portmanager/profile"
	"github.com/pkg/errors"
)

func (s API) ConfigureWebRoutes(router *mux.Router) {
	router.HandleFunc("/profiles", s.handleWebListProfiles).Methods(http.MethodGet)
	router.HandleFunc("/profiles/{name}", s.handleWebGetProfile).Methods(http.MethodGet)
	router.HandleFunc("/profiles/{name}", s.handleWebUpsertProfile).Methods(http.MethodPut)
	router.HandleFunc("/profiles/{name}", s.handleWebDeleteProfile).Methods(http.MethodDelete)
	router.HandleFunc("/profiles/{name}/forwards", s.handleWebAddForward).Methods(http.MethodPost)
	router.HandleFunc("/profiles/{name}/command", s.handleWebGetCommand).Methods(http.MethodGet)
	router.HandleFunc("/profiles/{name}/check", s.handleWebCheckProfile).Methods(http.MethodPost)
	router.HandleFunc("/active", s.handleWebListActive).Methods(http.MethodGet)
}

func (s API) handleWebListProfiles(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.ListProfiles())
}

func (s API) handleWebGetProfile(w http.ResponseWriter, r *http.Request) {
	response, err := s.GetProfile(mux.Vars(r)["name"])
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, response)
}

func (s API) handleWebGetCommand(w http.ResponseWriter, r *http.Request) {
	response, err := s.GetProfile(mux.Vars(r)["name"])
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, response.Command)
}

func (s API) handleWebUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req UpsertProfileRequest
	if err := read(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Name = mux.Vars(r)["name"]

	response, err := s.UpsertProfile(req)
	log.Request(s.Logger, "upsert_profile", req, response, err)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, response)
}

func (s API) handleWebDeleteProfile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	err := s.DeleteProfile(name)
	log.Request(s.Logger, "delete_profile", name, nil, err)
	if err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s API) handleWebAddForward(w http.ResponseWriter, r *http.Request) {
	var fwd profile.Forward
	if err := read(r, &fwd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, err := s.AddForward(mux.Vars(r)["name"], fwd)
	log.Request(s.Logger, "add_forward", fwd, response, err)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, response)
}

func (s API) handleWebCheckProfile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	response, err := s.CheckProfile(r.Context(), name)
	log.Request(s.Logger, "check_profile", name, response, err)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, response)
}

func (s API) handleWebListActive(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.ListActive())
}

func read(r *http.Request, req interface{}) error {
	return json.NewDecoder(r.Body).Decode(req)
}

func respond(w http.ResponseWriter, status int, ret interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ret)
}

func respondError(w http.ResponseWriter, err error) {
	var reqErr requestError
	switch {
	case errors.Is(err, ErrProfileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &reqErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
