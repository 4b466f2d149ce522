package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"btcdraw/internal/blocksource"
	"btcdraw/internal/models"
	"btcdraw/internal/records"
	"btcdraw/internal/report"
	"btcdraw/internal/services"
	"btcdraw/internal/store"
)

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	service *services.DrawService
	blocks  *blocksource.Client
	store   *store.Store
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.DrawService, blocks *blocksource.Client, st *store.Store) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		blocks:  blocks,
		store:   st,
	}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)
	router.POST("/api/draws", h.RunDraw)
	router.GET("/api/draws", h.ListDraws)
	router.GET("/api/draws/:id", h.GetDraw)
}

// Health reports service liveness.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunDraw executes a draw from an uploaded participants file. The form
// mirrors the CLI: participants (file), ticket_distribution, winners, and
// block_hash or block_height. Finalized draws are archived; a pending draw
// returns its round-1 commitment and is not stored.
func (h *HTTPHandler) RunDraw(c *gin.Context) {
	upload, header, err := c.Request.FormFile("participants")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing participants file"})
		return
	}
	defer upload.Close()

	raw, err := io.ReadAll(upload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading participants file: " + err.Error()})
		return
	}
	file, err := records.FromBytes(header.Filename, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dist := models.TicketDistribution(c.DefaultPostForm("ticket_distribution", string(models.DistributionUniform)))
	winners, err := strconv.Atoi(c.DefaultPostForm("winners", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "winners must be an integer"})
		return
	}

	pool, err := services.Normalize(file.Text, dist)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := report.Input{
		Distribution: dist,
		File:         file,
	}
	seed, ok := h.seedMaterial(c, &in)
	if !ok {
		return
	}

	outcome, err := h.service.Execute(services.DrawRequest{
		Pool:    pool,
		Winners: winners,
		Seed:    seed,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep := report.Build(in, outcome)
	if outcome.Status == models.StatusPending {
		c.JSON(http.StatusOK, gin.H{"report": rep, "outcome": outcome})
		return
	}

	record, err := h.store.SaveDraw(rep, outcome)
	if err != nil {
		logger.Errorf("archiving draw: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to archive draw"})
		return
	}
	logger.Infof("draw %s finalized: %d winner(s) from %d participant(s)",
		record.ID, outcome.WinnersCount, outcome.ParticipantsCount)
	c.JSON(http.StatusOK, record)
}

// seedMaterial resolves the block_hash/block_height form fields into seed
// material, writing the error response itself when resolution fails.
func (h *HTTPHandler) seedMaterial(c *gin.Context, in *report.Input) (services.SeedMaterial, bool) {
	blockHash := c.PostForm("block_hash")
	blockHeight := c.PostForm("block_height")

	switch {
	case blockHash != "" && blockHeight != "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide block_hash or block_height, not both"})
		return services.SeedMaterial{}, false
	case blockHash != "":
		blockHash = strings.ToLower(strings.TrimSpace(blockHash))
		if !services.ValidBlockHash(blockHash) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "block_hash must be 64 hex chars"})
			return services.SeedMaterial{}, false
		}
		in.BlockSource = "hash"
		in.BlockHash = blockHash
		return services.ReadySeed(blockHash), true
	case blockHeight != "":
		height, err := strconv.Atoi(blockHeight)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "block_height must be an integer"})
			return services.SeedMaterial{}, false
		}
		in.BlockSource = "height"
		in.BlockHeight = height
		res := h.blocks.ResolveHeight(height)
		switch res.State {
		case blocksource.Ready:
			in.BlockHash = res.Hash
			if info, err := h.blocks.BlockInfo(res.Hash); err == nil {
				in.BlockInfo = info
			} else {
				logger.Infof("block info unavailable for %s: %v", res.Hash, err)
			}
			return services.ReadySeed(res.Hash), true
		case blocksource.NotYetAvailable:
			return services.PendingSeed(services.ReasonBlockNotFoundYet), true
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": res.Err.Error()})
			return services.SeedMaterial{}, false
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide block_hash or block_height"})
		return services.SeedMaterial{}, false
	}
}

// GetDraw returns one archived draw.
func (h *HTTPHandler) GetDraw(c *gin.Context) {
	record, err := h.store.GetDraw(c.Param("id"))
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "draw not found"})
		return
	}
	if err != nil {
		logger.Errorf("loading draw %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load draw"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListDraws returns all archived draws.
func (h *HTTPHandler) ListDraws(c *gin.Context) {
	list, err := h.store.ListDraws()
	if err != nil {
		logger.Errorf("listing draws: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list draws"})
		return
	}
	if list == nil {
		list = []*store.DrawRecord{}
	}
	c.JSON(http.StatusOK, list)
}
