package service

import (
	"context"
	"dungeon_backend/internal/config"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"dungeon_backend/pkg/lock"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type memStudentStore struct {
	mu       sync.Mutex
	students map[string]model.Student
}

func newMemStudentStore() *memStudentStore {
	return &memStudentStore{students: map[string]model.Student{}}
}

func (m *memStudentStore) Create(_ context.Context, s *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.students[s.ID] = *s
	return nil
}

func (m *memStudentStore) FindByID(_ context.Context, id string) (*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, util.ErrStudentNotFound
	}
	return &s, nil
}

func (m *memStudentStore) Save(_ context.Context, s *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[s.ID] = *s
	return nil
}

func (m *memStudentStore) Top(_ context.Context, limit int) ([]model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].Exp > out[j].Exp
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStudentStore) AnswerTotals(_ context.Context) (int64, int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var correct, wrong int64
	for _, s := range m.students {
		correct += int64(s.TotalCorrect)
		wrong += int64(s.TotalWrong)
	}
	return correct, wrong, int64(len(m.students)), nil
}

func (m *memStudentStore) get(id string) model.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.students[id]
}

type memMentalStore struct {
	mu     sync.Mutex
	states map[string]model.MentalState
}

func newMemMentalStore() *memMentalStore {
	return &memMentalStore{states: map[string]model.MentalState{}}
}

func (m *memMentalStore) FindByStudent(_ context.Context, studentID string) (*model.MentalState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[studentID]
	if !ok {
		return nil, util.ErrMentalStateNotFound
	}
	return &st, nil
}

func (m *memMentalStore) Save(_ context.Context, st *model.MentalState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.StudentID] = *st
	return nil
}

type memInstructorStore struct {
	mu     sync.Mutex
	nextID uint
	byKey  map[string]model.Instructor
}

func newMemInstructorStore() *memInstructorStore {
	return &memInstructorStore{byKey: map[string]model.Instructor{}}
}

func (m *memInstructorStore) FindByKey(_ context.Context, key string) (*model.Instructor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.byKey[key]
	if !ok {
		return nil, util.ErrInstructorNotFound
	}
	return &in, nil
}

func (m *memInstructorStore) Create(_ context.Context, in *model.Instructor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	in.ID = m.nextID
	m.byKey[in.LookupKey] = *in
	return nil
}

func (m *memInstructorStore) Save(_ context.Context, in *model.Instructor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[in.LookupKey] = *in
	return nil
}

type memExpLogStore struct {
	mu   sync.Mutex
	logs []model.ExpLog
}

func (m *memExpLogStore) Create(_ context.Context, l *model.ExpLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *l)
	return nil
}

func (m *memExpLogStore) all() []model.ExpLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ExpLog(nil), m.logs...)
}

type memDialogueStore struct {
	mu        sync.Mutex
	dialogues []model.RageDialogue
}

func (m *memDialogueStore) Create(_ context.Context, d *model.RageDialogue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = uint(len(m.dialogues) + 1)
	m.dialogues = append(m.dialogues, *d)
	return nil
}

func (m *memDialogueStore) Recent(_ context.Context, instructorID uint, limit int) ([]model.RageDialogue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RageDialogue
	for i := len(m.dialogues) - 1; i >= 0 && len(out) < limit; i-- {
		if m.dialogues[i].InstructorID == instructorID {
			out = append(out, m.dialogues[i])
		}
	}
	return out, nil
}

func (m *memDialogueStore) all() []model.RageDialogue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RageDialogue(nil), m.dialogues...)
}

type memQuizStore struct {
	mu       sync.Mutex
	quizzes  map[string]model.Quiz
	attempts []model.QuizAttempt
}

func newMemQuizStore(quizzes ...model.Quiz) *memQuizStore {
	m := &memQuizStore{quizzes: map[string]model.Quiz{}}
	for _, q := range quizzes {
		m.quizzes[q.ID] = q
	}
	return m
}

func (m *memQuizStore) FindByID(_ context.Context, id string) (*model.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return nil, util.ErrQuizNotFound
	}
	return &q, nil
}

func (m *memQuizStore) ListByBoss(_ context.Context, bossID string) ([]model.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Quiz
	for _, q := range m.quizzes {
		if q.RaidBossID != nil && *q.RaidBossID == bossID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQuizStore) RecordAttempt(_ context.Context, a *model.QuizAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *a)
	return nil
}

func (m *memQuizStore) SolvedInRaid(_ context.Context, sessionID, studentID, quizID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.IsCorrect && a.QuizID == quizID && a.StudentID == studentID && a.RaidSessionID != nil && *a.RaidSessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

type memMissionStore struct {
	missions []model.MentalRecoveryMission
}

func (m *memMissionStore) FindByID(_ context.Context, id string) (*model.MentalRecoveryMission, error) {
	for _, mission := range m.missions {
		if mission.ID == id {
			mission := mission
			return &mission, nil
		}
	}
	return nil, util.ErrMissionNotFound
}

func (m *memMissionStore) ListActive(_ context.Context, missionType string) ([]model.MentalRecoveryMission, error) {
	var out []model.MentalRecoveryMission
	for _, mission := range m.missions {
		if mission.IsActive && (missionType == "" || mission.MissionType == missionType) {
			out = append(out, mission)
		}
	}
	return out, nil
}

// memRaidStore 与 gorm 实现一致：ApplyHit 比较 PrevHP，ClaimReward 检查并置位
type memRaidStore struct {
	mu           sync.Mutex
	students     *memStudentStore
	bosses       map[string]model.RaidBoss
	sessions     map[string]model.RaidSession
	participants map[string]model.RaidParticipant
}

func newMemRaidStore(students *memStudentStore) *memRaidStore {
	return &memRaidStore{
		students:     students,
		bosses:       map[string]model.RaidBoss{},
		sessions:     map[string]model.RaidSession{},
		participants: map[string]model.RaidParticipant{},
	}
}

func (m *memRaidStore) addBoss(b model.RaidBoss) model.RaidBoss {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m.bosses[b.ID] = b
	return b
}

func (m *memRaidStore) FindBoss(_ context.Context, id string) (*model.RaidBoss, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bosses[id]
	if !ok {
		return nil, util.ErrBossNotFound
	}
	return &b, nil
}

func (m *memRaidStore) ActiveBosses(_ context.Context) ([]model.RaidBoss, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RaidBoss
	for _, b := range m.bosses {
		if b.IsActive && !b.IsDefeated {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memRaidStore) CreateSession(_ context.Context, s *model.RaidSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *memRaidStore) FindSession(_ context.Context, id string) (*model.RaidSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memRaidStore) ActiveSessions(_ context.Context) ([]model.RaidSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RaidSession
	for _, s := range m.sessions {
		if s.Status != model.RaidCompleted {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memRaidStore) OverdueSessions(_ context.Context, now time.Time) ([]model.RaidSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RaidSession
	for _, s := range m.sessions {
		if s.Expired(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memRaidStore) AddParticipant(_ context.Context, p *model.RaidParticipant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.participants {
		if existing.RaidSessionID == p.RaidSessionID && existing.StudentID == p.StudentID {
			return util.ErrAlreadyJoined
		}
	}
	s, ok := m.sessions[p.RaidSessionID]
	if !ok {
		return util.ErrSessionNotFound
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.participants[p.ID] = *p
	s.ParticipantCount++
	m.sessions[s.ID] = s
	return nil
}

func (m *memRaidStore) FindParticipant(_ context.Context, sessionID, studentID string) (*model.RaidParticipant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.RaidSessionID == sessionID && p.StudentID == studentID {
			return &p, nil
		}
	}
	return nil, util.ErrNotParticipant
}

func (m *memRaidStore) ListParticipants(_ context.Context, sessionID string) ([]model.RaidParticipant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RaidParticipant
	for _, p := range m.participants {
		if p.RaidSessionID == sessionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DamageDealt > out[j].DamageDealt })
	return out, nil
}

func (m *memRaidStore) StartSession(_ context.Context, sessionID string, startedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return util.ErrSessionNotFound
	}
	if s.Status != model.RaidWaiting {
		return util.ErrRaidNotWaiting
	}
	s.Status = model.RaidInProgress
	s.StartedAt = &startedAt
	m.sessions[sessionID] = s
	return nil
}

func (m *memRaidStore) ApplyHit(_ context.Context, hit RaidHit) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[hit.SessionID]
	if !ok {
		return false, util.ErrSessionNotFound
	}
	if s.Status != model.RaidInProgress || s.CurrentHP != hit.PrevHP {
		return false, nil
	}
	s.CurrentHP -= hit.Damage
	s.TotalDamageDealt += hit.Damage
	if hit.Completes {
		at := hit.At
		s.Status = model.RaidCompleted
		s.IsSuccess = true
		s.EndedAt = &at
		b := m.bosses[hit.BossID]
		b.IsDefeated = true
		m.bosses[hit.BossID] = b
	}
	m.sessions[s.ID] = s

	p := m.participants[hit.ParticipantID]
	p.DamageDealt += hit.Damage
	p.CorrectAnswers++
	m.participants[p.ID] = p
	return true, nil
}

func (m *memRaidStore) RecordMiss(_ context.Context, participantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[participantID]
	if !ok {
		return util.ErrNotParticipant
	}
	p.WrongAnswers++
	m.participants[participantID] = p
	return nil
}

func (m *memRaidStore) ExpireSession(_ context.Context, sessionID string, endedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return false, util.ErrSessionNotFound
	}
	if s.Status == model.RaidCompleted {
		return false, nil
	}
	s.Status = model.RaidCompleted
	s.IsSuccess = false
	s.EndedAt = &endedAt
	m.sessions[sessionID] = s
	return true, nil
}

func (m *memRaidStore) ClaimReward(ctx context.Context, participantID string, student *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[participantID]
	if !ok {
		return util.ErrNotParticipant
	}
	if p.RewardClaimed {
		return util.ErrRewardAlreadyClaimed
	}
	p.RewardClaimed = true
	m.participants[participantID] = p
	return m.students.Save(ctx, student)
}

func (m *memRaidStore) session(id string) model.RaidSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

func (m *memRaidStore) boss(id string) model.RaidBoss {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bosses[id]
}

// noopLocker 不加锁，用于验证存储层的条件更新
type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	clock       *fakeClock
	rules       *Rules
	locker      lock.Locker
	students    *memStudentStore
	mentalStore *memMentalStore
	instructors *memInstructorStore
	expLogs     *memExpLogStore
	dialogues   *memDialogueStore
	quizzes     *memQuizStore
	raids       *memRaidStore

	studentSvc    *StudentService
	mentalSvc     *MentalService
	instructorSvc *InstructorService
	raidSvc       *RaidService
	dialogueSvc   *DialogueService
	gameSvc       *GameService
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		InstructorKey:    "hth422",
		InstructorName:   "허태훈",
		FatherRagePolicy: config.FatherRageFrozen,
		RaidRewardCurve:  config.RaidRewardFlat,
		LockBackend:      config.LockLocal,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:       newFakeClock(),
		rules:       NewRules(testGameConfig()),
		locker:      lock.NewLocalLocker(),
		students:    newMemStudentStore(),
		mentalStore: newMemMentalStore(),
		instructors: newMemInstructorStore(),
		expLogs:     &memExpLogStore{},
		dialogues:   &memDialogueStore{},
		quizzes:     newMemQuizStore(),
	}
	env.raids = newMemRaidStore(env.students)

	env.studentSvc = NewStudentService(env.students, env.expLogs, env.locker)
	env.mentalSvc = NewMentalService(env.mentalStore, env.students, env.locker)
	env.mentalSvc.Now = env.clock.Now
	env.instructorSvc = NewInstructorService(env.instructors, env.students, env.expLogs, env.dialogues, env.locker, env.rules)
	env.raidSvc = NewRaidService(env.raids, env.students, env.quizzes, env.expLogs, env.locker, env.rules)
	env.raidSvc.Now = env.clock.Now
	env.dialogueSvc = NewDialogueService(nil, env.dialogues, time.Second, rand.New(rand.NewPCG(1, 2)))
	env.gameSvc = NewGameService(env.quizzes, env.studentSvc, env.mentalSvc, env.instructorSvc, env.dialogueSvc)
	env.gameSvc.Now = env.clock.Now
	return env
}

func (env *testEnv) addStudent(t *testing.T, name string) *model.Student {
	t.Helper()
	s, err := env.studentSvc.CreateStudent(context.Background(), name, name, nil)
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	return s
}

func (env *testEnv) seedInstructor(t *testing.T) *model.Instructor {
	t.Helper()
	in, err := env.instructorSvc.Seed(context.Background(), "허태훈")
	if err != nil {
		t.Fatalf("seed instructor: %v", err)
	}
	return in
}
