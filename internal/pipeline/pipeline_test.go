package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/relohub/relohub/internal/dispatch"
	"github.com/relohub/relohub/internal/domain"
	"github.com/relohub/relohub/internal/linkedin"
	"github.com/relohub/relohub/internal/logger"
	"github.com/relohub/relohub/internal/repository"
)

// fakeClient scripts the external API per test.
type fakeClient struct {
	searchPages  [][]linkedin.SearchResult
	searchCalls  []int
	details      map[string]*linkedin.JobDetail
	skills       map[string]*linkedin.SkillMatches
	imageData    []byte
	detailCalls  int
	skillsCalled int
}

func (f *fakeClient) SearchJobs(ctx context.Context, geoID string, titleIDs []string, offset, limit int, listedWithin time.Duration) ([]linkedin.SearchResult, error) {
	f.searchCalls = append(f.searchCalls, offset)
	page := offset / limit
	if page >= len(f.searchPages) {
		return nil, nil
	}
	return f.searchPages[page], nil
}

func (f *fakeClient) GetJob(ctx context.Context, jobID string) (*linkedin.JobDetail, error) {
	f.detailCalls++
	detail, ok := f.details[jobID]
	if !ok {
		return nil, fmt.Errorf("no scripted detail for %s", jobID)
	}
	return detail, nil
}

func (f *fakeClient) GetJobSkills(ctx context.Context, jobID string) (*linkedin.SkillMatches, error) {
	f.skillsCalled++
	if skills, ok := f.skills[jobID]; ok {
		return skills, nil
	}
	return &linkedin.SkillMatches{}, nil
}

func (f *fakeClient) FetchImage(ctx context.Context, url string) ([]byte, error) {
	return f.imageData, nil
}

type testEnv struct {
	pipe     *Pipeline
	repos    Repos
	client   *fakeClient
	location *domain.Location
	title    *domain.Title
	cred     *domain.Credential
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	repos := Repos{
		Credentials: repository.NewCredentialRepository(db),
		Locations:   repository.NewLocationRepository(db),
		Titles:      repository.NewTitleRepository(db),
		Companies:   repository.NewCompanyRepository(db),
		Skills:      repository.NewSkillRepository(db),
		Postings:    repository.NewPostingRepository(db),
	}

	ctx := context.Background()
	location := &domain.Location{Title: "Berlin", ISOCode: "DE", LinkedInGeoID: "geo-1"}
	require.NoError(t, repos.Locations.Create(ctx, location))
	title := &domain.Title{Name: "Engineer", LinkedInID: "t-1"}
	require.NoError(t, repos.Titles.Save(ctx, title))
	cred := &domain.Credential{Username: "scraper@example.com", Password: "pw"}
	require.NoError(t, repos.Credentials.Create(ctx, cred))

	client := &fakeClient{
		details: map[string]*linkedin.JobDetail{},
		skills:  map[string]*linkedin.SkillMatches{},
	}
	factory := func(ctx context.Context, cred *domain.Credential) (Client, error) {
		return client, nil
	}

	log := logger.New(nil)
	dispatcher := dispatch.NewDispatcher(dispatch.NewMemoryLocker(), log)
	pipe := New(repos, factory, nil, dispatcher, log, cfg)

	return &testEnv{pipe: pipe, repos: repos, client: client, location: location, title: title, cred: cred}
}

func searchPage(ids ...string) []linkedin.SearchResult {
	page := make([]linkedin.SearchResult, 0, len(ids))
	for _, id := range ids {
		page = append(page, linkedin.SearchResult{
			TrackingURN: "urn:li:jobPosting:" + id,
			Title:       "Job " + id,
		})
	}
	return page
}

func listedDetail(companyID string) *linkedin.JobDetail {
	raw := fmt.Sprintf(`{"companyResolutionResult":{"entityUrn":"urn:li:fs_normalized_company:%s","name":"Acme","universalName":"acme"}}`, companyID)
	return &linkedin.JobDetail{
		JobState:          linkedin.JobStateListed,
		Description:       linkedin.JobDescription{Text: "plain role"},
		CompanyDetails:    map[string]json.RawMessage{"decoration": json.RawMessage(raw)},
		FormattedLocation: "Berlin, Germany",
		ListedAt:          json.Number("1710500000"),
	}
}

func TestSearchStopsOnShortPage(t *testing.T) {
	env := newTestEnv(t, Config{SearchPageSize: 2, SearchOffsetCap: 10})
	env.client.searchPages = [][]linkedin.SearchResult{
		searchPage("1", "2"),
		searchPage("3"),
	}
	ctx := context.Background()

	require.NoError(t, env.pipe.Search(ctx, env.cred, env.location, env.title))

	assert.Equal(t, []int{0, 2}, env.client.searchCalls, "a short page ends pagination")

	ids, err := env.repos.Postings.ListIDsByStatus(ctx, domain.StatusPartiallyProceeded)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestSearchStopsAtOffsetCap(t *testing.T) {
	env := newTestEnv(t, Config{SearchPageSize: 2, SearchOffsetCap: 6})
	full := searchPage("1", "2")
	env.client.searchPages = [][]linkedin.SearchResult{full, searchPage("3", "4"), searchPage("5", "6"), searchPage("7", "8")}

	require.NoError(t, env.pipe.Search(context.Background(), env.cred, env.location, env.title))

	assert.Equal(t, []int{0, 2, 4}, env.client.searchCalls, "offset cap bounds pagination")
}

func TestSearchUpsertKeepsExistingStub(t *testing.T) {
	env := newTestEnv(t, Config{SearchPageSize: 20, SearchOffsetCap: 200})
	env.client.searchPages = [][]linkedin.SearchResult{searchPage("1")}
	ctx := context.Background()

	require.NoError(t, env.pipe.Search(ctx, env.cred, env.location, env.title))
	require.NoError(t, env.pipe.Search(ctx, env.cred, env.location, env.title))

	ids, err := env.repos.Postings.ListIDsByStatus(ctx, domain.StatusPartiallyProceeded)
	require.NoError(t, err)
	assert.Len(t, ids, 1, "re-seen result must not create a second record")
}

func TestProcessExpiresDelistedPosting(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	posting, _, err := env.repos.Postings.GetOrCreateStub(ctx, "1", "Job 1", env.location.ID)
	require.NoError(t, err)
	env.client.details["1"] = &linkedin.JobDetail{JobState: "SUSPENDED"}

	require.NoError(t, env.pipe.Process(ctx, env.cred, []uint{posting.ID}))

	reloaded, err := env.repos.Postings.GetByID(ctx, posting.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, reloaded.Status)
	assert.Equal(t, 0, env.client.skillsCalled, "an expired posting is not enriched further")
}

func TestProcessDeletesPostingWithoutCompany(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	posting, _, err := env.repos.Postings.GetOrCreateStub(ctx, "1", "Job 1", env.location.ID)
	require.NoError(t, err)
	env.client.details["1"] = &linkedin.JobDetail{
		JobState:       linkedin.JobStateListed,
		CompanyDetails: map[string]json.RawMessage{"decoration": json.RawMessage(`{"companyName":"ghost"}`)},
	}

	require.NoError(t, env.pipe.Process(ctx, env.cred, []uint{posting.ID}))

	_, err = env.repos.Postings.GetByID(ctx, posting.ID)
	assert.Error(t, err, "a posting without a resolvable company is dropped")
}

func TestProcessEnrichesAndScores(t *testing.T) {
	env := newTestEnv(t, Config{
		Keywords:    []string{"relocation", "visa"},
		Complements: []string{"support"},
	})
	ctx := context.Background()

	posting, _, err := env.repos.Postings.GetOrCreateStub(ctx, "1", "Visa Sponsorship Engineer", env.location.ID)
	require.NoError(t, err)

	detail := listedDetail("77")
	detail.Description.Text = "we offer relocation support"
	detail.WorkplaceTypes = []string{"urn:li:fs_workplaceType:2", "urn:li:fs_workplaceType:3"}
	env.client.details["1"] = detail
	env.client.skills["1"] = &linkedin.SkillMatches{
		SkillMatchStatuses: []linkedin.SkillMatchStatus{
			{Skill: linkedin.SkillPayload{Name: "Go", EntityURN: "urn:li:skill:600"}},
		},
	}

	require.NoError(t, env.pipe.Process(ctx, env.cred, []uint{posting.ID}))

	reloaded, err := env.repos.Postings.GetByLinkedInID(ctx, "1")
	require.NoError(t, err)

	// relocation(+1) and support(+3) in the description, visa(+2) in the title.
	assert.Equal(t, uint(6), reloaded.Points)
	assert.Equal(t, domain.StatusWaitingForReview, reloaded.Status)
	assert.Equal(t, "we offer relocation support", reloaded.Description)
	assert.Equal(t, "Berlin, Germany", reloaded.FullLocation)
	assert.True(t, reloaded.Remote)
	assert.True(t, reloaded.Hybrid)
	assert.False(t, reloaded.OnSite)
	require.NotNil(t, reloaded.ListedAt)
	assert.Equal(t, time.Unix(1710500000, 0).UTC(), reloaded.ListedAt.UTC())
	require.Len(t, reloaded.Skills, 1)
	assert.Equal(t, "Go", reloaded.Skills[0].Name)
	require.NotNil(t, reloaded.CompanyID)

	company, err := env.repos.Companies.GetByLinkedInID(ctx, "77")
	require.NoError(t, err)
	assert.Equal(t, "acme", company.UniversalName)
}

func TestProcessScoreZeroRejects(t *testing.T) {
	env := newTestEnv(t, Config{Keywords: []string{"visa"}, Complements: []string{"support"}})
	ctx := context.Background()

	posting, _, err := env.repos.Postings.GetOrCreateStub(ctx, "1", "Job 1", env.location.ID)
	require.NoError(t, err)
	env.client.details["1"] = listedDetail("77")

	require.NoError(t, env.pipe.Process(ctx, env.cred, []uint{posting.ID}))

	reloaded, err := env.repos.Postings.GetByID(ctx, posting.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, reloaded.Status)
	assert.Zero(t, reloaded.Points)
}

func TestRunProcessAllBatches(t *testing.T) {
	env := newTestEnv(t, Config{ProcessBatchSize: 2, DispatchBackoff: 10 * time.Millisecond})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("%d", i)
		_, _, err := env.repos.Postings.GetOrCreateStub(ctx, id, "Job "+id, env.location.ID)
		require.NoError(t, err)
		env.client.details[id] = listedDetail("77")
	}

	require.NoError(t, env.pipe.RunProcessAll(ctx))
	env.pipe.dispatcher.Wait()

	assert.Equal(t, 5, env.client.detailCalls, "every pending stub is processed exactly once")

	remaining, err := env.repos.Postings.ListIDsByStatus(ctx, domain.StatusPartiallyProceeded)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRunSearchAllQueuesDuplicates(t *testing.T) {
	env := newTestEnv(t, Config{SearchPageSize: 20, SearchOffsetCap: 200, DispatchBackoff: 10 * time.Millisecond})
	ctx := context.Background()

	// Second root title forces a second unit against the single credential.
	other := &domain.Title{Name: "Manager", LinkedInID: "t-2"}
	require.NoError(t, env.repos.Titles.Save(ctx, other))
	env.client.searchPages = [][]linkedin.SearchResult{searchPage("1")}

	require.NoError(t, env.pipe.RunSearchAll(ctx))
	env.pipe.dispatcher.Wait()

	ids, err := env.repos.Postings.ListIDsByStatus(ctx, domain.StatusPartiallyProceeded)
	require.NoError(t, err)
	assert.Len(t, ids, 1, "both units ran against the shared result set")
}
