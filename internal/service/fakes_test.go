package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"surveyforge/internal/model"
	"surveyforge/internal/repository"
	"sync"
	"time"
)

type memSurveyRepo struct {
	mu      sync.Mutex
	seq     int
	surveys map[string]*model.Survey
}

func newMemSurveyRepo() *memSurveyRepo {
	return &memSurveyRepo{surveys: map[string]*model.Survey{}}
}

func (r *memSurveyRepo) Create(_ context.Context, survey *model.Survey) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	survey.ID = fmt.Sprintf("s%d", r.seq)
	survey.CreatedAt = time.Now()
	survey.UpdatedAt = survey.CreatedAt
	cp := *survey
	r.surveys[survey.ID] = &cp
	return survey.ID, nil
}

func (r *memSurveyRepo) GetByID(_ context.Context, id string) (*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSurveyRepo) Upsert(_ context.Context, survey *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *survey
	cp.UpdatedAt = time.Now()
	if prev, ok := r.surveys[survey.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
	}
	r.surveys[survey.ID] = &cp
	return nil
}

func (r *memSurveyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surveys, id)
	return nil
}

func (r *memSurveyRepo) List(_ context.Context) ([]*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Survey, 0, len(r.surveys))
	for _, s := range r.surveys {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memResponseRepo struct {
	mu        sync.Mutex
	seq       int
	responses []*model.Response
	createErr error
}

func newMemResponseRepo() *memResponseRepo {
	return &memResponseRepo{}
}

func (r *memResponseRepo) Create(_ context.Context, response *model.Response) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	r.seq++
	response.ID = fmt.Sprintf("r%d", r.seq)
	cp := *response
	r.responses = append(r.responses, &cp)
	return response.ID, nil
}

func (r *memResponseRepo) ListBySurvey(_ context.Context, surveyID string) ([]*model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Response
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			out = append(out, resp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r *memResponseRepo) ExistsByEmail(_ context.Context, surveyID, email string) (bool, error) {
	return r.exists(func(resp *model.Response) bool {
		return resp.SurveyID == surveyID && resp.RespondentEmail == email
	}), nil
}

func (r *memResponseRepo) ExistsByClient(_ context.Context, surveyID, clientID string) (bool, error) {
	return r.exists(func(resp *model.Response) bool {
		return resp.SurveyID == surveyID && resp.ClientID == clientID
	}), nil
}

func (r *memResponseRepo) exists(match func(*model.Response) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.responses {
		if match(resp) {
			return true
		}
	}
	return false
}

func (r *memResponseRepo) DeleteBySurvey(_ context.Context, surveyID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.responses[:0]
	var n int64
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			n++
			continue
		}
		kept = append(kept, resp)
	}
	r.responses = kept
	return n, nil
}

func (r *memResponseRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.responses)
}

type memThemeRepo struct {
	themes []*model.SavedTheme
}

func (r *memThemeRepo) Create(_ context.Context, theme *model.SavedTheme) (string, error) {
	theme.ID = fmt.Sprintf("t%d", len(r.themes)+1)
	r.themes = append(r.themes, theme)
	return theme.ID, nil
}

func (r *memThemeRepo) List(_ context.Context) ([]*model.SavedTheme, error) {
	return r.themes, nil
}

func (r *memThemeRepo) Delete(_ context.Context, id string) error {
	for i, t := range r.themes {
		if t.ID == id {
			r.themes = append(r.themes[:i], r.themes[i+1:]...)
			break
		}
	}
	return nil
}

type memAssetStore struct {
	files map[string][]byte
	meta  map[string]*repository.Asset
}

func newMemAssetStore() *memAssetStore {
	return &memAssetStore{files: map[string][]byte{}, meta: map[string]*repository.Asset{}}
}

func (s *memAssetStore) Upload(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("a%d", len(s.files)+1)
	s.files[id] = data
	s.meta[id] = &repository.Asset{ID: id, Name: name, ContentType: contentType, Size: int64(len(data))}
	return id, nil
}

func (s *memAssetStore) Open(_ context.Context, id string) (io.ReadCloser, *repository.Asset, error) {
	data, ok := s.files[id]
	if !ok {
		return nil, nil, nil
	}
	return io.NopCloser(bytes.NewReader(data)), s.meta[id], nil
}

type memSurveyCache struct {
	surveys map[string]*model.Survey
}

func newMemSurveyCache() *memSurveyCache {
	return &memSurveyCache{surveys: map[string]*model.Survey{}}
}

func (c *memSurveyCache) Get(_ context.Context, id string) (*model.Survey, error) {
	s, ok := c.surveys[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (c *memSurveyCache) Set(_ context.Context, survey *model.Survey) error {
	cp := *survey
	c.surveys[survey.ID] = &cp
	return nil
}

func (c *memSurveyCache) Invalidate(_ context.Context, id string) error {
	delete(c.surveys, id)
	return nil
}

type memRespondentCache struct {
	mu      sync.Mutex
	markers map[string]map[string]bool
}

func newMemRespondentCache() *memRespondentCache {
	return &memRespondentCache{markers: map[string]map[string]bool{}}
}

func (c *memRespondentCache) MarkResponded(_ context.Context, surveyID, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.markers[surveyID] == nil {
		c.markers[surveyID] = map[string]bool{}
	}
	c.markers[surveyID][key] = true
	return nil
}

func (c *memRespondentCache) HasResponded(_ context.Context, surveyID, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markers[surveyID][key], nil
}

func (c *memRespondentCache) Clear(_ context.Context, surveyID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.markers, surveyID)
	return nil
}

type memSummaryCache struct {
	summaries map[string]*model.ResultsSummary
}

func newMemSummaryCache() *memSummaryCache {
	return &memSummaryCache{summaries: map[string]*model.ResultsSummary{}}
}

func (c *memSummaryCache) Get(_ context.Context, id string) (*model.ResultsSummary, error) {
	return c.summaries[id], nil
}

func (c *memSummaryCache) Set(_ context.Context, id string, summary *model.ResultsSummary) error {
	c.summaries[id] = summary
	return nil
}

func (c *memSummaryCache) Invalidate(_ context.Context, id string) error {
	delete(c.summaries, id)
	return nil
}

type broadcastEvent struct {
	surveyID string
	msgType  string
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	events       []broadcastEvent
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToSurveyAdmins(surveyID string, msgType string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{surveyID: surveyID, msgType: msgType})
}

func (b *recordingBroadcaster) DisconnectSurvey(surveyID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, surveyID)
}

var errStoreDown = errors.New("store unavailable")
