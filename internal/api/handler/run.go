package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/relohub/relohub/internal/logger"
	"github.com/relohub/relohub/internal/pipeline"
)

// RunHandler triggers pipeline runs on demand. Runs execute in the
// background; the endpoints only confirm that the run started.
type RunHandler struct {
	pipeline *pipeline.Pipeline
	log      *logger.Logger
}

// NewRunHandler creates a new run handler.
// Parameters:
//   - p: wired pipeline service.
//   - log: structured logger for background run outcomes.
// Returns:
//   - *RunHandler: handler instance.
func NewRunHandler(p *pipeline.Pipeline, log *logger.Logger) *RunHandler {
	return &RunHandler{pipeline: p, log: log}
}

// RunSearch kicks off a full search fan-out in the background.
func (h *RunHandler) RunSearch(c *gin.Context) {
	h.start(c, "search", h.pipeline.RunSearchAll)
}

// RunProcess kicks off detail resolution over pending stubs in the background.
func (h *RunHandler) RunProcess(c *gin.Context) {
	h.start(c, "process", h.pipeline.RunProcessAll)
}

func (h *RunHandler) start(c *gin.Context, name string, run func(context.Context) error) {
	log := h.log.WithField("run", name)

	go func() {
		// The run outlives the HTTP request.
		ctx := log.WithContext(context.Background())
		if err := run(ctx); err != nil {
			log.WithError(err).Error("Run failed")
			return
		}
		log.Info("Run completed")
	}()

	c.JSON(http.StatusAccepted, gin.H{"run": name, "status": "started"})
}
