package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/xtding233/beanmachine/internal/galton"
	"github.com/xtding233/beanmachine/internal/machine"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errBadRequest = errors.New("bad request")

type errResp struct {
	Err string `json:"err"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, galton.ErrInvalidConfiguration),
		errors.Is(err, galton.ErrInvalidLevels),
		errors.Is(err, galton.ErrInvalidProb),
		errors.Is(err, galton.ErrInvalidBallCount),
		errors.Is(err, machine.ErrInvalidSpeed),
		errors.Is(err, machine.ErrInvalidPacing):
		return http.StatusBadRequest
	case errors.Is(err, machine.ErrNoRun):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errResp{Err: err.Error()})
}

func badParam(key string) error {
	return fmt.Errorf("%w: invalid %s", errBadRequest, key)
}

func parseFloat(r *http.Request, key string) (float64, bool, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, badParam(key)
	}
	return v, true, nil
}

func parseInt(r *http.Request, key string) (int, bool, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, badParam(key)
	}
	return v, true, nil
}

func parseUint(r *http.Request, key string) (uint64, bool, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, badParam(key)
	}
	return v, true, nil
}

func requireFloat(r *http.Request, key string) (float64, error) {
	v, ok, err := parseFloat(r, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: missing param %s", errBadRequest, key)
	}
	return v, nil
}

func requireLevels(r *http.Request) (int, error) {
	levels, err := requireInt(r, "levels")
	if err != nil {
		return 0, err
	}
	if levels > MaxLevels {
		return 0, badParam("levels")
	}
	return levels, nil
}

func requireInt(r *http.Request, key string) (int, error) {
	v, ok, err := parseInt(r, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: missing param %s", errBadRequest, key)
	}
	return v, nil
}
