package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/wrldbldr/pkg/config"
	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/httputil"
	"github.com/matzehuels/wrldbldr/pkg/pipeline"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

// MatchResponse is the body of /v1/tiles/match.
type MatchResponse struct {
	Mask     int     `json:"mask"`
	Tile     string  `json:"tile"`
	Visual   string  `json:"visual"`
	Index    int     `json:"index"`
	Rotation int     `json:"rotation"`
	Degrees  float64 `json:"degrees"`

	// Slots lists the neighbors the tile requires in its matched rotation.
	Slots []world.Direction `json:"slots"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	p, err := s.readProject(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{Formats: []string{pipeline.FormatJSON}}
	if v := q.Get("format"); v != "" {
		opts.Formats = []string{v}
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			httputil.WriteError(w, wberrors.Wrap(wberrors.ErrCodeInvalidInput, err, "invalid seed %q", v))
			return
		}
		opts.Seed = &seed
	}
	for name, dst := range map[string]*bool{
		"detailed": &opts.Detailed,
		"regions":  &opts.Regions,
		"refresh":  &opts.Refresh,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				httputil.WriteError(w, wberrors.Wrap(wberrors.ErrCodeInvalidInput, err, "invalid %s %q", name, v))
				return
			}
			*dst = b
		}
	}

	res, err := s.runner.Execute(r.Context(), p, opts)
	if err != nil {
		s.logger.Warn("generate failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("X-Run-ID", res.Layout.RunID)
	w.Header().Set("X-Layout-Hash", res.LayoutHash)
	w.Header().Set("X-Cache", cacheStatus(res.CacheInfo.LayoutHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// readProject decodes the request body. An empty body means the default
// project.
func (s *Server) readProject(w http.ResponseWriter, r *http.Request) (*config.Project, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, wberrors.New(wberrors.ErrCodeInvalidInput, "request body exceeds %d bytes", mbe.Limit)
		}
		return nil, wberrors.Wrap(wberrors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return config.Default(), nil
	}
	format, err := config.FormatFromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return config.Parse(data, format)
}

func (s *Server) handleTiles(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.tiles)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query().Get("mask")
	mask, err := strconv.ParseInt(v, 0, 32)
	if err != nil || mask < 0 || mask >= 1<<tiles.BitWidth {
		httputil.WriteError(w, wberrors.New(wberrors.ErrCodeInvalidInput,
			"mask must be an integer in [0, %d), got %q", 1<<tiles.BitWidth, v))
		return
	}

	m, err := s.tiles.Match(int(mask))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MatchResponse{
		Mask:     int(mask),
		Tile:     m.Tile.Name,
		Visual:   m.Tile.VisualHandle(),
		Index:    m.Index,
		Rotation: m.Rotation,
		Degrees:  m.Degrees,
		Slots:    m.Slots(),
	})
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
