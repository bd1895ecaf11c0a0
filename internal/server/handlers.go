package server

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/xtding233/beanmachine/internal/config"
	"github.com/xtding233/beanmachine/internal/galton"
	"github.com/xtding233/beanmachine/internal/machine"
)

type distributionResp struct {
	galton.Distribution
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// GET /distribution?levels=&p=
func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	levels, err := requireLevels(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := requireFloat(r, "p")
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := galton.ExpectedDistribution(levels, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, distributionResp{Distribution: d, Mean: d.Mean(), Variance: d.Variance()})
}

// GET /simulate?levels=&balls=&p=[&seed=]
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	levels, err := requireLevels(r)
	if err != nil {
		writeError(w, err)
		return
	}
	balls, err := requireInt(r, "balls")
	if err != nil {
		writeError(w, err)
		return
	}
	if balls > MaxBatchBalls {
		writeError(w, badParam("balls"))
		return
	}
	p, err := requireFloat(r, "p")
	if err != nil {
		writeError(w, err)
		return
	}
	seed, seeded, err := parseUint(r, "seed")
	if err != nil {
		writeError(w, err)
		return
	}
	rng := s.newRNG()
	if seeded {
		rng = galton.NewSeededRNG(seed)
	}
	res, err := galton.RunBatch(galton.BoardConfig{Levels: levels, BallCount: balls, RightProbability: p}, rng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type startReq struct {
	Preset string   `json:"preset"`
	Levels *int     `json:"levels"`
	Balls  *int     `json:"balls"`
	P      *float64 `json:"p"`
	Speed  *float64 `json:"speed"`
}

type startResp struct {
	RunID    string              `json:"run_id"`
	Version  string              `json:"version,omitempty"`
	Config   galton.BoardConfig  `json:"config"`
	Expected galton.Distribution `json:"expected"`
	Speed    float64             `json:"speed"`
}

// POST /runs
// Body fields are optional; missing ones come from the preset files.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, badParam("body"))
		return
	}
	o := config.Overrides{Levels: req.Levels, Balls: req.Balls, P: req.P, Speed: req.Speed}

	preset := req.Preset
	if preset == "" {
		preset = s.defPreset
	}
	_, settings, err := s.loader.Resolve(preset, o)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		id       string
		startErr error
		expected galton.Distribution
	)
	if err := s.call(r.Context(), func() {
		id, startErr = s.start(settings)
		if startErr != nil {
			return
		}
		s.preset, s.overrides = preset, o
		if run, ok := s.mach.Current(); ok {
			expected = run.Expected
		}
	}); err != nil {
		writeError(w, err)
		return
	}
	if startErr != nil {
		writeError(w, startErr)
		return
	}
	s.log.Info("run requested", zap.String("run", id), zap.String("preset", preset))
	writeJSON(w, http.StatusCreated, startResp{
		RunID:    id,
		Version:  settings.Version,
		Config:   settings.Board,
		Expected: expected,
		Speed:    settings.Speed,
	})
}

// GET /runs/current
func (s *Server) handleCurrentRun(w http.ResponseWriter, r *http.Request) {
	var (
		snap machine.Snapshot
		ok   bool
	)
	if err := s.call(r.Context(), func() { snap, ok = s.mach.Snapshot() }); err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, machine.ErrNoRun)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// DELETE /runs/current
func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	var cancelErr error
	if err := s.call(r.Context(), func() { cancelErr = s.mach.Cancel() }); err != nil {
		writeError(w, err)
		return
	}
	if cancelErr != nil {
		writeError(w, cancelErr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type speedReq struct {
	Speed *float64 `json:"speed"`
}

type speedResp struct {
	Speed float64 `json:"speed"`
}

// PUT /speed
func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req speedReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Speed == nil {
		writeError(w, badParam("speed"))
		return
	}
	var setErr error
	if err := s.call(r.Context(), func() { setErr = s.mach.SetSpeed(*req.Speed) }); err != nil {
		writeError(w, err)
		return
	}
	if setErr != nil {
		writeError(w, setErr)
		return
	}
	writeJSON(w, http.StatusOK, speedResp{Speed: *req.Speed})
}

// GET /speed
func (s *Server) handleGetSpeed(w http.ResponseWriter, r *http.Request) {
	var speed float64
	if err := s.call(r.Context(), func() { speed = s.mach.Speed() }); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, speedResp{Speed: speed})
}

// GET /healthz renders the gRPC health status as protojson.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp, err := s.health.Check(r.Context(), &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := protojson.Marshal(resp)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
