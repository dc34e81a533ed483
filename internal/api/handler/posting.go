package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/relohub/relohub/internal/api/middleware"
	"github.com/relohub/relohub/internal/domain"
	"github.com/relohub/relohub/internal/repository"
)

// PostingHandler exposes the review workflow over scraped postings.
type PostingHandler struct {
	postings *repository.PostingRepository
}

// NewPostingHandler creates a new posting handler.
// Parameters:
//   - postings: posting repository.
// Returns:
//   - *PostingHandler: handler instance.
func NewPostingHandler(postings *repository.PostingRepository) *PostingHandler {
	return &PostingHandler{postings: postings}
}

// ListPostings returns postings filtered by lifecycle status, paginated.
// Query parameters: status (default WAIT_FOR_REVIEW), page, per_page.
func (h *PostingHandler) ListPostings(c *gin.Context) {
	status := domain.StatusWaitingForReview
	if raw := c.Query("status"); raw != "" {
		parsed, err := domain.ParsePostingStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + raw})
			return
		}
		status = parsed
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	postings, err := h.postings.ListByStatus(c.Request.Context(), status, perPage, (page-1)*perPage)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Failed to list postings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list postings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"postings": postings,
		"page":     page,
		"per_page": perPage,
		"count":    len(postings),
	})
}

// GetPosting returns a single posting by ID.
func (h *PostingHandler) GetPosting(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid posting id"})
		return
	}

	posting, err := h.postings.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "posting not found"})
		return
	}

	c.JSON(http.StatusOK, posting)
}

// Stats returns posting counts grouped by lifecycle status.
func (h *PostingHandler) Stats(c *gin.Context) {
	counts, err := h.postings.CountByStatus(c.Request.Context())
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Failed to count postings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count postings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"by_status": counts})
}

// Approve moves a reviewed posting from WAIT_FOR_REVIEW to APPROVED.
func (h *PostingHandler) Approve(c *gin.Context) {
	h.transition(c, domain.StatusApproved)
}

// Publish moves an approved posting to LISTED.
func (h *PostingHandler) Publish(c *gin.Context) {
	h.transition(c, domain.StatusListed)
}

func (h *PostingHandler) transition(c *gin.Context, to domain.PostingStatus) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid posting id"})
		return
	}

	posting, err := h.postings.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "posting not found"})
		return
	}

	if err := h.postings.Transition(c.Request.Context(), posting, to); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		middleware.GetLogger(c).WithError(err).Error("Failed to transition posting")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update posting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     posting.ID,
		"status": posting.Status,
	})
}
