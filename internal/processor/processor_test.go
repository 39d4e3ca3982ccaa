package processor

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/internal/enrich"
	"github.com/asapdigest/content-pipeline/internal/errlog"
	"github.com/asapdigest/content-pipeline/internal/events"
	"github.com/asapdigest/content-pipeline/internal/storage/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleBody = `The city council approved the downtown redevelopment plan on Tuesday evening, ending a debate that had stretched across four public hearings and two revised drafts.

Supporters argued the plan would bring several hundred construction jobs and new transit connections to neighborhoods that have waited a decade for investment. Opponents questioned the financing model and the displacement risk for long-standing tenants along the corridor.

The final vote passed with a narrow margin, and the first permits are expected to be filed before the end of the quarter, according to the planning department.`

func article() domain.ContentItem {
	return domain.ContentItem{
		Type:      domain.TypeArticle,
		Title:     "Five Word Title Here Now",
		Content:   articleBody,
		SourceURL: "https://example.com/a",
	}
}

type env struct {
	proc    *Processor
	content *inmem.ContentRepository
	index   *inmem.IndexRepository
}

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()
	content := inmem.NewContentRepository()
	index := inmem.NewIndexRepository(content)
	return &env{
		proc:    New(content, index, errlog.New(nil), opts...),
		content: content,
		index:   index,
	}
}

func TestProcess_ValidItemEndToEnd(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res := e.proc.Process(ctx, article(), 0)

	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), res.Fingerprint)
	assert.GreaterOrEqual(t, res.Quality.Score, 40)
	assert.NotContains(t, res.Warnings, "quality_score")
	assert.Equal(t, domain.StatusPending, res.Item.Status)

	save := e.proc.Save(ctx, res, 0)
	require.True(t, save.Success, "errors: %v", save.Errors)
	assert.Positive(t, save.ContentID)

	stored, err := e.proc.GetContent(ctx, save.ContentID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, res.Fingerprint, stored.Fingerprint)
	assert.Equal(t, res.Quality.Score, stored.QualityScore)
	assert.Equal(t, 1, e.index.Len())
}

func TestProcess_ValidationFailureShortCircuits(t *testing.T) {
	e := newEnv(t)

	item := article()
	item.Title = ""
	item.SourceURL = "example.com/a"

	res := e.proc.Process(context.Background(), item, 0)

	require.False(t, res.Success)
	assert.Contains(t, res.Errors, "title")
	assert.Contains(t, res.Errors, "source_url")
	assert.Empty(t, res.Fingerprint) // dedup stage never ran
}

func TestProcess_DuplicateDetection(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first := e.proc.Process(ctx, article(), 0)
	require.True(t, first.Success)
	save := e.proc.Save(ctx, first, 0)
	require.True(t, save.Success)

	// A different title with identical content and source still collides:
	// the fingerprint ignores titles.
	second := article()
	second.Title = "Rewritten Headline For The Story"
	res := e.proc.Process(ctx, second, 0)

	require.False(t, res.Success)
	assert.Contains(t, res.Errors, "duplicate")
	require.NotNil(t, res.Duplicate)
	assert.Equal(t, save.ContentID, res.Duplicate.ContentID)

	// The same item with excludeID set processes cleanly (update path).
	res = e.proc.Process(ctx, second, save.ContentID)
	assert.True(t, res.Success)
}

func TestProcess_AutoReject(t *testing.T) {
	ctx := context.Background()

	// Valid but weak: no summary, old date, short body. A threshold above
	// its heuristic score rejects it before persistence.
	weak := article()
	weak.PublishDate = "2020-01-01"

	strict := newEnv(t, WithAutoRejectScore(70))
	res := strict.proc.Process(ctx, weak, 0)

	require.False(t, res.Success)
	assert.Contains(t, res.Errors, "quality_score")
	assert.Positive(t, res.Quality.Score)
	// Nothing was persisted.
	stats, err := strict.proc.GetContentStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)

	// The default threshold accepts the same item.
	lax := newEnv(t)
	res = lax.proc.Process(ctx, weak, 0)
	assert.True(t, res.Success)
}

func TestProcess_MinimumScoreWarning(t *testing.T) {
	e := newEnv(t, WithMinimumScore(95))

	res := e.proc.Process(context.Background(), article(), 0)

	require.True(t, res.Success)
	assert.Contains(t, res.Warnings, "quality_score")
}

type flakyEnricher struct {
	stubEnricher
	summarizeErr error
}

type stubEnricher struct{}

func (stubEnricher) Summarize(context.Context, string) (string, error) {
	return "A concise summary.", nil
}
func (stubEnricher) ExtractEntities(context.Context, string) ([]string, error) {
	return []string{"city council"}, nil
}
func (stubEnricher) Classify(_ context.Context, _ string, taxonomy []string) ([]string, error) {
	return taxonomy[:1], nil
}
func (stubEnricher) GenerateKeywords(context.Context, string) ([]string, error) {
	return []string{"redevelopment", "council"}, nil
}
func (stubEnricher) AssessQuality(context.Context, string, enrich.QualityOptions) (*enrich.QualityResponse, error) {
	overall := 8.2
	return &enrich.QualityResponse{Overall: &overall}, nil
}

func (f flakyEnricher) Summarize(ctx context.Context, text string) (string, error) {
	if f.summarizeErr != nil {
		return "", f.summarizeErr
	}
	return f.stubEnricher.Summarize(ctx, text)
}

func TestProcess_EnrichmentIsBestEffort(t *testing.T) {
	e := newEnv(t, WithEnricher(flakyEnricher{summarizeErr: errors.New("model overloaded")}, nil))

	res := e.proc.Process(context.Background(), article(), 0)

	// A failed enrichment sub-call degrades that field and warns; the
	// item still succeeds.
	require.True(t, res.Success)
	assert.Contains(t, res.Warnings, "enrich_summary")
	require.NotNil(t, res.Item.AIMetadata)
	assert.Empty(t, res.Item.AIMetadata.Summary)
	assert.Equal(t, []string{"city council"}, res.Item.AIMetadata.Entities)
	assert.Equal(t, []string{"redevelopment", "council"}, res.Item.AIMetadata.Keywords)
	// The external assessment rides along with enrichment.
	require.NotNil(t, res.AIQuality)
	assert.InDelta(t, 8.2, res.AIQuality.Overall, 0.001)
	assert.True(t, res.AIQuality.Pass)
}

func TestSave_RollsBackContentOnIndexFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res := e.proc.Process(ctx, article(), 0)
	require.True(t, res.Success)

	e.index.FailInsert = errors.New("index unavailable")
	save := e.proc.Save(ctx, res, 0)

	require.False(t, save.Success)
	assert.Contains(t, save.Errors, "internal")
	// The content row was compensating-deleted.
	stats, err := e.proc.GetContentStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, e.index.Len())
}

func TestSave_ConcurrentFingerprintConflictIsDuplicate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	// Simulate a racing writer: both items processed before either save
	// landed, so the early duplicate check saw nothing.
	resA := e.proc.Process(ctx, article(), 0)
	resB := e.proc.Process(ctx, article(), 0)
	require.True(t, resA.Success)
	require.True(t, resB.Success)

	require.True(t, e.proc.Save(ctx, resA, 0).Success)
	save := e.proc.Save(ctx, resB, 0)

	require.False(t, save.Success)
	assert.Contains(t, save.Errors, "duplicate")
	stats, err := e.proc.GetContentStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
}

func TestSave_UpdateRestoresRowOnIndexFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res := e.proc.Process(ctx, article(), 0)
	require.True(t, res.Success)
	save := e.proc.Save(ctx, res, 0)
	require.True(t, save.Success)

	updated := article()
	updated.Title = "A Completely Different Headline"
	upRes := e.proc.Process(ctx, updated, save.ContentID)
	require.True(t, upRes.Success)

	e.index.FailUpdate = errors.New("index unavailable")
	upSave := e.proc.Save(ctx, upRes, save.ContentID)

	require.False(t, upSave.Success)
	stored, err := e.proc.GetContent(ctx, save.ContentID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	// The previous row was restored.
	assert.Equal(t, "Five Word Title Here Now", stored.Title)
}

func TestSave_Update(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res := e.proc.Process(ctx, article(), 0)
	save := e.proc.Save(ctx, res, 0)
	require.True(t, save.Success)

	updated := article()
	updated.Title = "A Completely Different Headline"
	upRes := e.proc.Process(ctx, updated, save.ContentID)
	require.True(t, upRes.Success)

	upSave := e.proc.Save(ctx, upRes, save.ContentID)
	require.True(t, upSave.Success)
	assert.Equal(t, save.ContentID, upSave.ContentID)

	stored, err := e.proc.GetContent(ctx, save.ContentID)
	require.NoError(t, err)
	assert.Equal(t, "A Completely Different Headline", stored.Title)
	assert.Equal(t, 1, e.index.Len())
}

func TestDelete_Idempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	removed, err := e.proc.Delete(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, removed)

	res := e.proc.Process(ctx, article(), 0)
	save := e.proc.Save(ctx, res, 0)
	require.True(t, save.Success)

	removed, err = e.proc.Delete(ctx, save.ContentID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Zero(t, e.index.Len())

	removed, err = e.proc.Delete(ctx, save.ContentID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDelete_PublishesDeletedPayload(t *testing.T) {
	ctx := context.Background()

	dispatcher := events.NewDispatcher()
	var got []events.Event
	dispatcher.Subscribe(func(_ context.Context, ev events.Event) {
		got = append(got, ev)
	})

	e := newEnv(t, WithEvents(dispatcher))

	res := e.proc.Process(ctx, article(), 0)
	save := e.proc.Save(ctx, res, 0)
	require.True(t, save.Success)

	_, err := e.proc.Delete(ctx, save.ContentID)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, events.ContentAdded, got[0].Type)
	assert.Equal(t, events.ContentDeleted, got[1].Type)
	// Subscribers receive the deleted row's payload.
	assert.Equal(t, "Five Word Title Here Now", got[1].Item.Title)
}

func TestFindSimilarContent_MergesExactAndFuzzy(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res := e.proc.Process(ctx, article(), 0)
	save := e.proc.Save(ctx, res, 0)
	require.True(t, save.Success)

	nearMiss := article()
	nearMiss.Title = "Five Word Title Here Today"
	nearMiss.SourceURL = "https://example.com/b"
	nmRes := e.proc.Process(ctx, nearMiss, 0)
	require.True(t, nmRes.Success)
	require.True(t, e.proc.Save(ctx, nmRes, 0).Success)

	similar, err := e.proc.FindSimilarContent(ctx, article(), 5)
	require.NoError(t, err)

	// One exact fingerprint match plus one fuzzy match, no id repeated.
	require.Len(t, similar, 2)
	assert.NotEqual(t, similar[0].ID, similar[1].ID)
	assert.Equal(t, save.ContentID, similar[0].ID)
}

func TestGetContentStats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	for _, src := range []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"} {
		item := article()
		item.SourceURL = src
		res := e.proc.Process(ctx, item, 0)
		require.True(t, res.Success)
		require.True(t, e.proc.Save(ctx, res, 0).Success)
	}

	stats, err := e.proc.GetContentStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(3), stats.ByStatus[domain.StatusPending])
	assert.Equal(t, int64(3), stats.ByType[domain.TypeArticle])
	assert.Len(t, stats.Recent, 3)

	var histTotal int64
	for _, n := range stats.ScoreHistogram {
		histTotal += n
	}
	assert.Equal(t, int64(3), histTotal)
}

func TestProcessBatch(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	items := make([]domain.ContentItem, 8)
	for i := range items {
		items[i] = article()
		items[i].SourceURL = "https://example.com/batch/" + string(rune('a'+i))
	}
	items[3].Title = "" // one invalid item in the batch

	results := e.proc.ProcessBatch(ctx, items, 4)

	require.Len(t, results, 8)
	for i, res := range results {
		require.NotNil(t, res, "result %d", i)
		if i == 3 {
			assert.False(t, res.Success)
		} else {
			assert.True(t, res.Success, "result %d errors: %v", i, res.Errors)
		}
	}
}
