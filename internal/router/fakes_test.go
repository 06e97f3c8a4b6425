package router

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/connectpp/student-network/internal/mail"
	"github.com/connectpp/student-network/internal/model"
	"github.com/connectpp/student-network/internal/repository"
)

// store keeps every table in memory behind one lock and implements the
// store interfaces of the service and handler packages.
type store struct {
	mu          sync.Mutex
	users       map[string]model.User
	userOrder   []string
	public      map[string]model.PublicProfile
	programming map[string]model.ProgrammingProfile
	projects    map[string]model.Project
	techs       map[string]model.Tech
	seq         int
	created     map[string]int
}

func newStore() *store {
	return &store{
		users:       map[string]model.User{},
		public:      map[string]model.PublicProfile{},
		programming: map[string]model.ProgrammingProfile{},
		projects:    map[string]model.Project{},
		techs:       map[string]model.Tech{},
		created:     map[string]int{},
	}
}

type userStore struct{ *store }

func (s userStore) FindByRegno(_ context.Context, regno string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[regno]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s userStore) FindByName(_ context.Context, first, last string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, regno := range s.userOrder {
		u := s.users[regno]
		if u.Firstname == first && (last == "" || u.Lastname == last) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s userStore) List(context.Context) ([]model.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.UserSummary{}
	for _, regno := range s.userOrder {
		out = append(out, s.users[regno].Summary())
	}
	return out, nil
}

func (s userStore) Insert(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Regno]; ok {
		return repository.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.Regno] = *u
	s.userOrder = append(s.userOrder, u.Regno)
	return nil
}

func (s userStore) UpdatePassword(_ context.Context, regno, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[regno]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[regno] = u
	return nil
}

type publicStore struct{ *store }

func (s publicStore) FindByRegno(_ context.Context, regno string) (model.PublicProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.public[regno]
	if !ok {
		return model.PublicProfile{}, repository.ErrNotFound
	}
	return p, nil
}

func (s publicStore) Insert(_ context.Context, p model.PublicProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.public[p.Regno]; ok {
		return repository.ErrDuplicate
	}
	s.public[p.Regno] = p
	return nil
}

func (s publicStore) Upsert(_ context.Context, seed model.PublicProfile, patch model.PublicProfilePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.public[seed.Regno]
	if !ok {
		p = seed
	}
	for _, a := range patch.Assignments() {
		v := a.Value.(string)
		switch a.Column {
		case "profile_photo_url":
			p.ProfilePhotoURL = v
		case "branch":
			p.Branch = v
		case "joining_year":
			p.JoiningYear = v
		}
	}
	s.public[seed.Regno] = p
	return nil
}

type programmingStore struct{ *store }

func (s programmingStore) FindByRegno(_ context.Context, regno string) (model.ProgrammingProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.programming[regno]
	if !ok {
		return model.ProgrammingProfile{}, repository.ErrNotFound
	}
	return p, nil
}

func (s programmingStore) Upsert(_ context.Context, regno string, patch model.ProgrammingProfilePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.programming[regno]
	p.Regno = regno
	for _, a := range patch.Assignments() {
		v := a.Value.(string)
		switch a.Column {
		case "prefered_language":
			p.PreferedLanguage = v
		case "code_chef_url":
			p.CodeChefURL = v
		case "hackerearth_url":
			p.HackerearthURL = v
		case "top_coder_url":
			p.TopCoderURL = v
		case "git_hub_url":
			p.GitHubURL = v
		case "project_euler_key":
			p.ProjectEulerKey = v
		}
	}
	s.programming[regno] = p
	return nil
}

type projectStore struct{ *store }

func (s projectStore) ListByRegno(_ context.Context, regno string) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Project{}
	for _, p := range s.projects {
		if p.Regno == regno {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.created[out[i].ID] < s.created[out[j].ID] })
	return out, nil
}

func (s projectStore) nameTaken(regno, name, except string) bool {
	for id, p := range s.projects {
		if id != except && p.Regno == regno && p.ProjectName == name {
			return true
		}
	}
	return false
}

func (s projectStore) Insert(_ context.Context, p *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(p.Regno, p.ProjectName, "") {
		return repository.ErrDuplicate
	}
	p.ID = uuid.NewString()
	s.seq++
	s.created[p.ID] = s.seq
	s.projects[p.ID] = *p
	return nil
}

func (s projectStore) Update(_ context.Context, id, regno string, patch model.ProjectPatch) error {
	if uuid.Validate(id) != nil {
		return repository.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.Regno != regno {
		return repository.ErrNotFound
	}
	for _, a := range patch.Assignments() {
		v := a.Value.(string)
		switch a.Column {
		case "project_name":
			if s.nameTaken(regno, v, id) {
				return repository.ErrDuplicate
			}
			p.ProjectName = v
		case "brief_description":
			p.BriefDescription = v
		case "git_hub_url":
			p.GitHubURL = v
		case "start_time":
			p.StartTime = v
		case "end_time":
			p.EndTime = &v
		}
	}
	s.projects[id] = p
	return nil
}

func (s projectStore) Delete(_ context.Context, id, regno string) error {
	if uuid.Validate(id) != nil {
		return repository.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.Regno != regno {
		return repository.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

type techStore struct{ *store }

func (s techStore) ListByRegno(_ context.Context, regno string) ([]model.Tech, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Tech{}
	for _, t := range s.techs {
		if t.Regno == regno {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.created[out[i].ID] < s.created[out[j].ID] })
	return out, nil
}

func (s techStore) Insert(_ context.Context, t *model.Tech) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	s.seq++
	s.created[t.ID] = s.seq
	s.techs[t.ID] = *t
	return nil
}

func (s techStore) Update(_ context.Context, id, regno string, patch model.TechPatch) error {
	if uuid.Validate(id) != nil {
		return repository.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.techs[id]
	if !ok || t.Regno != regno {
		return repository.ErrNotFound
	}
	for _, a := range patch.Assignments() {
		switch a.Column {
		case "tech_name":
			t.TechName = a.Value.(string)
		case "learning_year":
			t.LearningYear = a.Value.(string)
		case "still_use_it":
			t.StillUseIt = a.Value.(bool)
		case "level":
			t.Level = a.Value.(int)
		case "source_name":
			t.SourceName = a.Value.(string)
		case "source_url":
			t.SourceURL = a.Value.(string)
		}
	}
	s.techs[id] = t
	return nil
}

func (s techStore) Delete(_ context.Context, id, regno string) error {
	if uuid.Validate(id) != nil {
		return repository.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.techs[id]
	if !ok || t.Regno != regno {
		return repository.ErrNotFound
	}
	delete(s.techs, id)
	return nil
}

// inbox records sent mail so tests can read the OTP back.
type inbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (b *inbox) Send(_ context.Context, m mail.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, m)
	return nil
}

func (b *inbox) last() mail.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sent) == 0 {
		return mail.Message{}
	}
	return b.sent[len(b.sent)-1]
}
