package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"surveyforge/internal/model"
	"surveyforge/internal/repository"
	"sync"
)

type memSurveys struct {
	mu   sync.Mutex
	seq  int
	docs map[string]model.Survey
}

func (r *memSurveys) Create(_ context.Context, s *model.Survey) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = fmt.Sprintf("s%d", r.seq)
	r.docs[s.ID] = *s
	return s.ID, nil
}

func (r *memSurveys) GetByID(_ context.Context, id string) (*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *memSurveys) Upsert(_ context.Context, s *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[s.ID] = *s
	return nil
}

func (r *memSurveys) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *memSurveys) List(_ context.Context) ([]*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Survey{}
	for _, s := range r.docs {
		s := s
		out = append(out, &s)
	}
	return out, nil
}

type memResponses struct {
	mu   sync.Mutex
	docs []model.Response
}

func (r *memResponses) Create(_ context.Context, resp *model.Response) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp.ID = fmt.Sprintf("r%d", len(r.docs)+1)
	r.docs = append(r.docs, *resp)
	return resp.ID, nil
}

func (r *memResponses) ListBySurvey(_ context.Context, surveyID string) ([]*model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Response
	for i := range r.docs {
		if r.docs[i].SurveyID == surveyID {
			resp := r.docs[i]
			out = append(out, &resp)
		}
	}
	return out, nil
}

func (r *memResponses) ExistsByEmail(_ context.Context, surveyID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.docs {
		if resp.SurveyID == surveyID && resp.RespondentEmail == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memResponses) ExistsByClient(_ context.Context, surveyID, clientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.docs {
		if resp.SurveyID == surveyID && resp.ClientID == clientID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memResponses) DeleteBySurvey(_ context.Context, surveyID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.docs[:0]
	var n int64
	for _, resp := range r.docs {
		if resp.SurveyID == surveyID {
			n++
			continue
		}
		kept = append(kept, resp)
	}
	r.docs = kept
	return n, nil
}

type memThemes struct {
	themes []*model.SavedTheme
}

func (r *memThemes) Create(_ context.Context, t *model.SavedTheme) (string, error) {
	t.ID = fmt.Sprintf("t%d", len(r.themes)+1)
	r.themes = append(r.themes, t)
	return t.ID, nil
}

func (r *memThemes) List(_ context.Context) ([]*model.SavedTheme, error) {
	return r.themes, nil
}

func (r *memThemes) Delete(_ context.Context, id string) error {
	for i, t := range r.themes {
		if t.ID == id {
			r.themes = append(r.themes[:i], r.themes[i+1:]...)
			break
		}
	}
	return nil
}

type memAssets struct {
	files map[string][]byte
	meta  map[string]*repository.Asset
}

func (s *memAssets) Upload(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("a%d", len(s.files)+1)
	s.files[id] = data
	s.meta[id] = &repository.Asset{ID: id, Name: name, ContentType: contentType, Size: int64(len(data))}
	return id, nil
}

func (s *memAssets) Open(_ context.Context, id string) (io.ReadCloser, *repository.Asset, error) {
	data, ok := s.files[id]
	if !ok {
		return nil, nil, nil
	}
	return io.NopCloser(bytes.NewReader(data)), s.meta[id], nil
}

// noCache never holds anything, so every read goes to the repositories
type noCache struct{}

func (noCache) Get(context.Context, string) (*model.Survey, error) { return nil, nil }
func (noCache) Set(context.Context, *model.Survey) error { return nil }
func (noCache) Invalidate(context.Context, string) error { return nil }

type noSummaryCache struct{}

func (noSummaryCache) Get(context.Context, string) (*model.ResultsSummary, error) { return nil, nil }
func (noSummaryCache) Set(context.Context, string, *model.ResultsSummary) error { return nil }
func (noSummaryCache) Invalidate(context.Context, string) error { return nil }

type noMarkers struct{}

func (noMarkers) MarkResponded(context.Context, string, string) error { return nil }
func (noMarkers) HasResponded(context.Context, string, string) (bool, error) { return false, nil }
func (noMarkers) Clear(context.Context, string) error { return nil }
