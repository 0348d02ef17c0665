package server

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/analysis"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
)

// memStore is an in-memory Store
type memStore struct {
	mu      sync.Mutex
	users   map[string]*types.User
	resumes map[string]*types.Resume
	pingErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]*types.User),
		resumes: make(map[string]*types.Resume),
	}
}

func (m *memStore) FindOrCreateUser(_ context.Context, subject, email string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[subject]; ok {
		cp := *u
		return &cp, nil
	}
	now := time.Now().UTC()
	u := &types.User{
		ID:         "user-" + subject,
		SupabaseID: subject,
		Email:      email,
		Settings:   types.DefaultSettings(),
		Usage:      types.Usage{LastActiveAt: now},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.users[subject] = u
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUser(_ context.Context, subject string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[subject]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateUser(_ context.Context, user *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.SupabaseID] = &cp
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, subject string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[subject]
	delete(m.users, subject)
	return ok, nil
}

func (m *memStore) IncrementGenerations(_ context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[subject]
	if !ok {
		u = &types.User{SupabaseID: subject, Settings: types.DefaultSettings()}
		m.users[subject] = u
	}
	u.Usage.GenerationsCount++
	u.Usage.LastActiveAt = time.Now().UTC()
	return nil
}

func (m *memStore) CreateResume(_ context.Context, resume *types.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *resume
	m.resumes[resume.ID] = &cp
	return nil
}

func (m *memStore) ListResumes(_ context.Context, userID string) ([]types.ResumeSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.ResumeSummary
	for _, r := range m.resumes {
		if r.UserID == userID {
			out = append(out, types.ResumeSummary{ID: r.ID, Title: r.Title, Status: r.Status, UpdatedAt: r.UpdatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memStore) GetResume(_ context.Context, id string) (*types.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) UpdateResume(_ context.Context, resume *types.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resumes[resume.ID]; !ok {
		return errors.New("no rows updated")
	}
	cp := *resume
	m.resumes[resume.ID] = &cp
	return nil
}

func (m *memStore) DeleteResume(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.resumes[id]
	delete(m.resumes, id)
	return ok, nil
}

func (m *memStore) DeleteResumesByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.resumes {
		if r.UserID == userID {
			delete(m.resumes, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) Close() {}

// put stores a resume directly
func (m *memStore) put(r *types.Resume) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.resumes[r.ID] = &cp
}

// tokenMap accepts tokens of the form "token-<subject>"
type tokenMap struct{}

func (tokenMap) ValidateToken(_ context.Context, token string) (*middleware.Principal, error) {
	subject, ok := strings.CutPrefix(token, "token-")
	if !ok || subject == "" {
		return nil, ErrInvalidToken
	}
	return &middleware.Principal{Subject: subject, Email: subject + "@example.com"}, nil
}

// stubAnalyzer returns canned data, streaming response in two chunks
type stubAnalyzer struct {
	data     *types.StructuredData
	err      error
	response string
	calls    int
}

func (a *stubAnalyzer) Analyze(_ context.Context, text string) (*types.StructuredData, error) {
	a.calls++
	if strings.TrimSpace(text) == "" {
		return nil, analysis.ErrEmptyInput
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.data, nil
}

func (a *stubAnalyzer) Stream(ctx context.Context, text string, onChunk llm.ChunkFunc) (*types.StructuredData, error) {
	a.calls++
	if strings.TrimSpace(text) == "" {
		return nil, analysis.ErrEmptyInput
	}
	if err := llm.Replay(ctx, a.response, 8, onChunk); err != nil {
		return nil, err
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.data, nil
}

// stubImporter returns canned text or errors
type stubImporter struct {
	text       string
	err        error
	gotURL     string
	gotBrowser bool
	gotPDF     []byte
}

func (i *stubImporter) FromURL(_ context.Context, url string, useBrowser bool) (string, error) {
	i.gotURL = url
	i.gotBrowser = useBrowser
	return i.text, i.err
}

func (i *stubImporter) FromPDF(data []byte) (string, error) {
	i.gotPDF = data
	if !ingestion.IsPDF(data) {
		return "", ingestion.ErrNotPDF
	}
	return i.text, i.err
}

func sampleStructured() *types.StructuredData {
	return &types.StructuredData{
		PersonalInfo: types.PersonalInfo{FullName: "Jane Doe", Email: "jane@example.com"},
		Summary:      "Backend engineer",
		Experience: []types.Experience{{
			Company:    "Acme",
			Position:   "Engineer",
			StartDate:  "01/2020",
			IsCurrent:  true,
			Highlights: []string{"Built the billing service"},
		}},
		Education: []types.Education{{Institution: "State University", Degree: "BSc"}},
		Skills:    []string{"Go", "PostgreSQL"},
	}
}
