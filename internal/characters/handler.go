package characters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"loremaker/internal/loremaker"
	"loremaker/internal/snapshot"
	"loremaker/pkg/logger"
	"loremaker/pkg/models"
)

// statusClientClosed is logged when the caller goes away mid-load.
const statusClientClosed = 499

type Handler struct {
	Library   *Library
	Snapshots *snapshot.Repo
	CacheTTL  time.Duration
	CacheSWR  time.Duration
	Now       func() time.Time
	Logger    *logger.Logger
}

func NewHandler(lib *Library, snaps *snapshot.Repo, ttl, swr time.Duration, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		Library:   lib,
		Snapshots: snaps,
		CacheTTL:  ttl,
		CacheSWR:  swr,
		Now:       time.Now,
		Logger:    log.With("component", "characters-api"),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)              // GET /characters
	rg.GET("/featured", h.featured) // GET /characters/featured
	rg.GET("/:slug", h.get)         // GET /characters/:slug
}

// RegisterAdminRoutes expects rg to be behind the admin auth middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/snapshots", h.saveSnapshot)
	rg.GET("/snapshots", h.listSnapshots)
	rg.GET("/snapshots/:id", h.getSnapshot)
}

type listResponse struct {
	Characters []models.Character `json:"characters"`
	Total      int                `json:"total"`
	Error      *string            `json:"error"`
	Source     string             `json:"source"`
	LoadedAt   time.Time          `json:"loaded_at"`
}

// list runs the pipeline once per call; the cache header lets the edge
// absorb repeat page loads.
func (h *Handler) list(c *gin.Context) {
	b, err := h.Library.Reload(c.Request.Context())
	if err != nil {
		h.aborted(c, err)
		return
	}

	items := filterCharacters(b.Characters, c.Query("q"), c.Query("faction"), c.Query("tag"))
	resp := listResponse{
		Characters: items,
		Total:      len(items),
		Source:     b.Source,
		LoadedAt:   b.LoadedAt,
	}
	if b.Error != "" {
		msg := b.Error
		resp.Error = &msg
	}

	c.Header("Cache-Control", h.cacheControl())
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.Library.CurrentOrLoad(c.Request.Context())
	if err != nil {
		h.aborted(c, err)
		return
	}

	ch, ok := b.Find(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"character": ch,
		"allies":    loremaker.Allies(b, ch),
	})
}

func (h *Handler) featured(c *gin.Context) {
	b, err := h.Library.CurrentOrLoad(c.Request.Context())
	if err != nil {
		h.aborted(c, err)
		return
	}

	ch, ok := loremaker.Featured(b.Characters, h.now())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no characters"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":      loremaker.DayKey(h.now()),
		"character": ch,
	})
}

func (h *Handler) saveSnapshot(c *gin.Context) {
	b, err := h.Library.CurrentOrLoad(c.Request.Context())
	if err != nil {
		h.aborted(c, err)
		return
	}

	snap, err := h.Snapshots.Save(c.Request.Context(), b)
	if err != nil {
		h.Logger.Error("save snapshot failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	h.Logger.Info("snapshot saved", "id", snap.ID, "count", snap.CharacterCount)
	c.JSON(http.StatusCreated, snap)
}

func (h *Handler) listSnapshots(c *gin.Context) {
	items, err := h.Snapshots.List(c.Request.Context(), parseInt(c.Query("limit"), 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) getSnapshot(c *gin.Context) {
	id := c.Param("id")
	snap, err := h.Snapshots.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	chars, err := h.Snapshots.Characters(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap, "characters": chars})
}

// aborted handles a load stopped by the caller: nothing is written.
func (h *Handler) aborted(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		h.Logger.Debug("load aborted by client", "path", c.FullPath(), "error", err)
		c.AbortWithStatus(statusClientClosed)
		return
	}
	h.Logger.Error("load failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
}

func (h *Handler) cacheControl() string {
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
		int(h.CacheTTL.Seconds()), int(h.CacheSWR.Seconds()))
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// filterCharacters keeps characters whose name or alias contains q and that
// carry the given faction and tag. Empty filters match everything.
func filterCharacters(chars []models.Character, q, faction, tag string) []models.Character {
	q = strings.ToLower(strings.TrimSpace(q))
	faction = strings.TrimSpace(faction)
	tag = strings.TrimSpace(tag)

	out := make([]models.Character, 0, len(chars))
	for _, c := range chars {
		if q != "" && !matchesQuery(c, q) {
			continue
		}
		if faction != "" && !containsFold(c.Faction, faction) {
			continue
		}
		if tag != "" && !containsFold(c.Tags, tag) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesQuery(c models.Character, q string) bool {
	if strings.Contains(strings.ToLower(c.Name), q) {
		return true
	}
	for _, a := range c.Alias {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
