package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-industrial/library"
	"go-industrial/logger"
	"go-industrial/midi"
	"go-industrial/song"
)

// maxRenderBody caps the JSON accepted by POST /api/render
const maxRenderBody = 1 << 20

// RenderRequest is the body of POST /api/render. Omitted parameters take
// their defaults; a preset wins over explicit sections.
type RenderRequest struct {
	Preset     string         `json:"preset,omitempty"`
	Sections   []song.Section `json:"sections,omitempty"`
	Tempo      *int           `json:"tempo,omitempty"`
	Intensity  *int           `json:"intensity,omitempty"`
	Distortion *int           `json:"distortion,omitempty"`
	Seed       *uint32        `json:"seed,omitempty"`
	Save       bool           `json:"save,omitempty"`
}

// Params overlays the request onto the default parameters
func (r RenderRequest) Params() song.Params {
	p := song.DefaultParams()
	if r.Tempo != nil {
		p.Tempo = *r.Tempo
	}
	if r.Intensity != nil {
		p.Intensity = *r.Intensity
	}
	if r.Distortion != nil {
		p.Distortion = *r.Distortion
	}
	if r.Seed != nil {
		p.Seed = *r.Seed
	}
	return p
}

// Arrangement resolves the sections to render
func (r RenderRequest) Arrangement() ([]song.Section, error) {
	if r.Preset == "" {
		return r.Sections, nil
	}
	sections, ok := song.Preset(r.Preset)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q: %w", r.Preset, song.ErrInvalidParameter)
	}
	return sections, nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": s.version,
		"history": s.history != nil,
	})
}

func (s *Server) presets(c *gin.Context) {
	out := gin.H{}
	for _, name := range song.Presets() {
		sections, _ := song.Preset(name)
		out[name] = gin.H{
			"sections":   sections,
			"totalBeats": song.TotalBeats(sections),
		}
	}
	c.JSON(http.StatusOK, gin.H{"default": song.DefaultPreset, "presets": out})
}

func (s *Server) render(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRenderBody)
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sections, err := req.Arrangement()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := req.Params()

	data, err := midi.Encode(sections, p)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, song.ErrInvalidParameter) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	fields := logger.WithRequest(c)
	fields["preset"] = req.Preset
	fields["bytes"] = len(data)
	fields["summary"] = midi.Describe(sections, p)
	logger.Info("Rendered arrangement", fields)

	if req.Save {
		if err := s.save(c, req.Preset, sections, p, data); err != nil {
			logger.Error("Failed to save render", err, fields)
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.Header("Content-Disposition", `attachment; filename="industrial.mid"`)
	c.Data(http.StatusOK, "audio/midi", data)
}

// save writes the render to the export dir and records it in the history
func (s *Server) save(c *gin.Context, preset string, sections []song.Section, p song.Params, data []byte) error {
	if s.exportDir == "" {
		return fmt.Errorf("no export directory configured: %w", song.ErrFileWriteFailed)
	}
	id := uuid.New().String()
	path := filepath.Join(s.exportDir, id+".mid")
	if err := midi.WriteFile(path, data); err != nil {
		return err
	}
	c.Header("X-Export-Path", path)

	if s.history == nil {
		return nil
	}
	_, err := s.history.Record(library.Export{
		ID:         id,
		Path:       path,
		Preset:     preset,
		Sections:   len(sections),
		Tempo:      p.Tempo,
		Intensity:  p.Intensity,
		Distortion: p.Distortion,
		Seed:       p.Seed,
		Bytes:      len(data),
	})
	return err
}

func (s *Server) listHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"exports": []library.Export{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	exports, err := s.history.List(limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if exports == nil {
		exports = []library.Export{}
	}
	c.JSON(http.StatusOK, gin.H{"exports": exports})
}

func (s *Server) playback(c *gin.Context) {
	snap := *s.engine.Snapshot()
	if c.Query("spectrum") != "1" {
		snap.Frequencies = nil
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) transport(c *gin.Context) {
	switch action := c.Param("action"); action {
	case "play":
		s.engine.Play()
	case "pause":
		s.engine.Pause()
	case "stop":
		s.engine.Stop()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown action %q", action)})
		return
	}
	snap := *s.engine.Snapshot()
	snap.Frequencies = nil
	c.JSON(http.StatusOK, snap)
}
