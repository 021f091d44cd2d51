package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/testmate/testmate-backend/internal/mail"
	"github.com/testmate/testmate-backend/internal/model"
	"github.com/testmate/testmate-backend/internal/repository"
)

// In-memory fakes for the service-layer store interfaces. They return
// pgx.ErrNoRows and repository.ErrDuplicate exactly like the real
// repositories so error mapping is exercised unchanged.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.PRN == u.PRN {
			return repository.ErrDuplicate
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) GetByEmailAndRole(_ context.Context, email string, role model.Role) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.Role == role {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) ListTeachersByStream(_ context.Context, stream string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if u.Stream == stream && u.Role == model.RoleTeacher {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) DeleteByEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if u.Email == email {
			delete(f.users, id)
			return nil
		}
	}
	return nil
}

func (f *fakeUserStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) MarkVerified(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Verified = true
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

type fakeSessionStore struct {
	mu    sync.Mutex
	lists map[uuid.UUID][]model.SessionToken
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{lists: make(map[uuid.UUID][]model.SessionToken)}
}

func (f *fakeSessionStore) ListTokens(_ context.Context, userID uuid.UUID) ([]model.SessionToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SessionToken(nil), f.lists[userID]...), nil
}

func (f *fakeSessionStore) ReplaceTokens(_ context.Context, userID uuid.UUID, tokens []model.SessionToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[userID] = append([]model.SessionToken(nil), tokens...)
	return nil
}

func (f *fakeSessionStore) HasToken(_ context.Context, userID uuid.UUID, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.lists[userID] {
		if t.Token == token {
			return true, nil
		}
	}
	return false, nil
}

type tokenKey struct {
	user    uuid.UUID
	purpose model.TokenPurpose
}

type fakeTokenStore struct {
	mu   sync.Mutex
	rows map[tokenKey]*model.OneTimeToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: make(map[tokenKey]*model.OneTimeToken)}
}

func (f *fakeTokenStore) Upsert(_ context.Context, t *model.OneTimeToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	cp := *t
	f.rows[tokenKey{t.UserID, t.Purpose}] = &cp
	return nil
}

func (f *fakeTokenStore) GetLive(_ context.Context, userID uuid.UUID, purpose model.TokenPurpose, cutoff time.Time) (*model.OneTimeToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[tokenKey{userID, purpose}]
	if !ok || !t.CreatedAt.After(cutoff) {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokenStore) Delete(_ context.Context, userID uuid.UUID, purpose model.TokenPurpose) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, tokenKey{userID, purpose})
	return nil
}

// backdate moves a stored token's creation time so tests can expire it.
func (f *fakeTokenStore) backdate(userID uuid.UUID, purpose model.TokenPurpose, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.rows[tokenKey{userID, purpose}]; ok {
		t.CreatedAt = t.CreatedAt.Add(-d)
	}
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (f *fakeMailer) Send(msg mail.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakePaperCache struct {
	mu     sync.Mutex
	papers map[uuid.UUID]*model.QuizPaper
	hits   int
}

func newFakePaperCache() *fakePaperCache {
	return &fakePaperCache{papers: make(map[uuid.UUID]*model.QuizPaper)}
}

func (f *fakePaperCache) Get(_ context.Context, quizID uuid.UUID) (*model.QuizPaper, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.papers[quizID]
	if ok {
		f.hits++
	}
	return p, ok
}

func (f *fakePaperCache) Set(_ context.Context, paper *model.QuizPaper) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.papers[paper.QuizID] = paper
}

func (f *fakePaperCache) Invalidate(_ context.Context, quizID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.papers, quizID)
}

type fakeSubjectStore struct {
	mu       sync.Mutex
	subjects map[uuid.UUID]*model.Subject
}

func newFakeSubjectStore() *fakeSubjectStore {
	return &fakeSubjectStore{subjects: make(map[uuid.UUID]*model.Subject)}
}

func (f *fakeSubjectStore) Create(_ context.Context, s *model.Subject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.subjects {
		if existing.Name == s.Name || existing.Code == s.Code {
			return repository.ErrDuplicate
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	f.subjects[s.ID] = &cp
	return nil
}

func (f *fakeSubjectStore) GetByName(_ context.Context, name string) (*model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subjects {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSubjectStore) GetByCode(_ context.Context, code string) (*model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subjects {
		if s.Code == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSubjectStore) ListByTeacherEmails(_ context.Context, emails []string) ([]model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Subject
	for _, s := range f.subjects {
		for _, email := range emails {
			if s.TeacherEmail == email {
				out = append(out, *s)
				break
			}
		}
	}
	return out, nil
}

type fakeQuestionStore struct {
	mu        sync.Mutex
	questions map[uuid.UUID]*model.Question
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{questions: make(map[uuid.UUID]*model.Question)}
}

func (f *fakeQuestionStore) Create(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = uuid.New()
	q.CreatedAt = time.Now()
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionStore) ListBySubject(_ context.Context, subjectID uuid.UUID, topic string) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Question
	for _, q := range f.questions {
		if q.SubjectID == subjectID && (topic == "" || q.Topic == topic) {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Question
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) SetAnswer(_ context.Context, id uuid.UUID, answerText, answerImage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	q.AnswerText = answerText
	q.AnswerImage = answerImage
	return nil
}

func (f *fakeQuestionStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.questions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.questions, id)
	return nil
}

type fakeQuizStore struct {
	mu      sync.Mutex
	quizzes map[uuid.UUID]*model.Quiz
	ledgers map[uuid.UUID]bool
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{
		quizzes: make(map[uuid.UUID]*model.Quiz),
		ledgers: make(map[uuid.UUID]bool),
	}
}

func (f *fakeQuizStore) CreateWithLedger(_ context.Context, q *model.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.quizzes {
		if existing.Title == q.Title && existing.SubjectID == q.SubjectID && existing.OwnerID == q.OwnerID {
			return fmt.Errorf("insert quiz: %w", repository.ErrDuplicate)
		}
	}
	q.ID = uuid.New()
	q.CreatedAt = time.Now()
	cp := *q
	f.quizzes[q.ID] = &cp
	f.ledgers[q.ID] = true
	return nil
}

func (f *fakeQuizStore) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	cp.QuestionIDs = append([]uuid.UUID(nil), q.QuestionIDs...)
	return &cp, nil
}

func (f *fakeQuizStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Quiz
	for _, q := range f.quizzes {
		if q.OwnerID == ownerID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuizStore) ListForStudent(_ context.Context, ownerIDs []uuid.UUID, year string) ([]model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Quiz
	for _, q := range f.quizzes {
		for _, owner := range ownerIDs {
			if q.OwnerID == owner && (q.Year == year || q.Year == "All Year") {
				out = append(out, *q)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeQuizStore) ReplaceQuestionIDs(_ context.Context, quizID uuid.UUID, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[quizID]
	if !ok {
		return pgx.ErrNoRows
	}
	q.QuestionIDs = append([]uuid.UUID(nil), ids...)
	return nil
}

func (f *fakeQuizStore) DeleteWithLedger(_ context.Context, quizID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ledgers[quizID] {
		return pgx.ErrNoRows
	}
	delete(f.ledgers, quizID)
	delete(f.quizzes, quizID)
	return nil
}

type entryKey struct {
	quiz uuid.UUID
	prn  string
}

type fakeResultStore struct {
	mu      sync.Mutex
	entries map[entryKey]*model.ResultEntry
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{entries: make(map[entryKey]*model.ResultEntry)}
}

func (f *fakeResultStore) InsertPlaceholder(_ context.Context, quizID uuid.UUID, prn string) (*model.ResultEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := entryKey{quizID, prn}
	if _, ok := f.entries[key]; ok {
		return nil, pgx.ErrNoRows
	}
	e := &model.ResultEntry{QuizID: quizID, PRN: prn, StartedAt: time.Now()}
	f.entries[key] = e
	cp := *e
	return &cp, nil
}

func (f *fakeResultStore) SetScore(_ context.Context, quizID uuid.UUID, prn string, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[entryKey{quizID, prn}]
	if !ok {
		return pgx.ErrNoRows
	}
	e.Score = score
	return nil
}

func (f *fakeResultStore) GetEntry(_ context.Context, quizID uuid.UUID, prn string) (*model.ResultEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[entryKey{quizID, prn}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeResultStore) ListByQuiz(_ context.Context, quizID uuid.UUID) ([]model.ResultEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ResultEntry
	for key, e := range f.entries {
		if key.quiz == quizID {
			out = append(out, *e)
		}
	}
	return out, nil
}
