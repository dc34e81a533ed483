package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/relohub/relohub/internal/dispatch"
	"github.com/relohub/relohub/internal/domain"
	"github.com/relohub/relohub/internal/logger"
	"github.com/relohub/relohub/internal/pipeline"
	"github.com/relohub/relohub/internal/repository"
)

func testRouter(t *testing.T) (http.Handler, *repository.PostingRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	postings := repository.NewPostingRepository(db)
	log := logger.New(nil)
	pipe := pipeline.New(pipeline.Repos{
		Credentials: repository.NewCredentialRepository(db),
		Locations:   repository.NewLocationRepository(db),
		Titles:      repository.NewTitleRepository(db),
		Companies:   repository.NewCompanyRepository(db),
		Skills:      repository.NewSkillRepository(db),
		Postings:    postings,
	}, nil, nil, dispatch.NewDispatcher(dispatch.NewMemoryLocker(), log), log, pipeline.Config{})

	return SetupRouter(postings, pipe, log, "test"), postings, db
}

func seedPosting(t *testing.T, db *gorm.DB, postings *repository.PostingRepository, status domain.PostingStatus) *domain.Posting {
	t.Helper()
	ctx := context.Background()

	location := &domain.Location{Title: "Berlin", ISOCode: "DE", LinkedInGeoID: "geo-1"}
	require.NoError(t, repository.NewLocationRepository(db).Create(ctx, location))

	posting, _, err := postings.GetOrCreateStub(ctx, "job-1", "Go Engineer", location.ID)
	require.NoError(t, err)
	if status != domain.StatusPartiallyProceeded {
		posting.Status = status
		require.NoError(t, postings.Save(ctx, posting))
	}
	return posting
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestApproveEndpoint(t *testing.T) {
	router, postings, db := testRouter(t)
	posting := seedPosting(t, db, postings, domain.StatusWaitingForReview)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/postings/1/approve", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	reloaded, err := postings.GetByID(context.Background(), posting.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, reloaded.Status)
}

func TestApproveRejectsInvalidTransition(t *testing.T) {
	router, postings, db := testRouter(t)
	seedPosting(t, db, postings, domain.StatusRejected)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/postings/1/approve", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListPostingsFiltersByStatus(t *testing.T) {
	router, postings, db := testRouter(t)
	seedPosting(t, db, postings, domain.StatusWaitingForReview)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/postings?status=WAIT_FOR_REVIEW", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/postings?status=NOPE", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router, postings, db := testRouter(t)
	seedPosting(t, db, postings, domain.StatusWaitingForReview)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ByStatus map[string]int64 `json:"by_status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.ByStatus["WAIT_FOR_REVIEW"])
}
