package repository

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/service"
	"dungeon_backend/internal/util"
	"dungeon_backend/pkg/database"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createStudent(t *testing.T, repo *StudentRepository, username string, level, exp int) *model.Student {
	t.Helper()
	s := &model.Student{Username: username, DisplayName: username, Level: level, Exp: exp}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestStudentRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	a := createStudent(t, repo, "kim", 2, 10)
	createStudent(t, repo, "lee", 3, 0)
	createStudent(t, repo, "park", 2, 40)

	found, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "kim", found.Username)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, util.ErrStudentNotFound)

	top, err := repo.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "lee", top[0].Username)
	assert.Equal(t, "park", top[1].Username)

	found.TotalCorrect = 3
	found.TotalWrong = 1
	require.NoError(t, repo.Save(ctx, found))

	correct, wrong, students, err := repo.AnswerTotals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, correct)
	assert.EqualValues(t, 1, wrong)
	assert.EqualValues(t, 3, students)
}

func TestMentalStateRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewMentalStateRepository(db)
	ctx := context.Background()

	_, err := repo.FindByStudent(ctx, "s1")
	assert.ErrorIs(t, err, util.ErrMentalStateNotFound)

	st := service.NewMentalState("s1")
	require.NoError(t, repo.Save(ctx, st))
	assert.NotZero(t, st.ID)

	st.Gauge = 40
	require.NoError(t, repo.Save(ctx, st))

	loaded, err := repo.FindByStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 40, loaded.Gauge)
	assert.Equal(t, st.ID, loaded.ID)
}

func TestInstructorRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewInstructorRepository(db)
	ctx := context.Background()

	_, err := repo.FindByKey(ctx, "hth422")
	assert.ErrorIs(t, err, util.ErrInstructorNotFound)

	require.NoError(t, repo.Create(ctx, &model.Instructor{LookupKey: "hth422", Name: "허태훈", Level: 1, EvolutionStage: model.StageNormal}))
	in, err := repo.FindByKey(ctx, "hth422")
	require.NoError(t, err)
	assert.Equal(t, "허태훈", in.Name)
}

func TestDialogueRepositoryRecent(t *testing.T) {
	db := newTestDB(t)
	repo := NewDialogueRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &model.RageDialogue{
			InstructorID: 1,
			DialogueText: text,
			DialogueType: "light",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &model.RageDialogue{InstructorID: 2, DialogueText: "other", DialogueType: "light"}))

	recent, err := repo.Recent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].DialogueText)
	assert.Equal(t, "second", recent[1].DialogueText)
}

func TestDialogueRepositoryKeepsZeroIntensity(t *testing.T) {
	db := newTestDB(t)
	repo := NewDialogueRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.RageDialogue{InstructorID: 1, DialogueText: "잘했어", DialogueType: "correct", IntensityLevel: 0}))

	recent, err := repo.Recent(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 0, recent[0].IntensityLevel)
}

func TestMissionRepositorySkipsInactive(t *testing.T) {
	db := newTestDB(t)
	repo := NewMissionRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.MentalRecoveryMission{MissionType: model.MissionMeditation, Title: "on", RecoveryAmount: 10, IsActive: true}).Error)
	require.NoError(t, db.Create(&model.MentalRecoveryMission{MissionType: model.MissionMeditation, Title: "off", RecoveryAmount: 10, IsActive: false}).Error)

	missions, err := repo.ListActive(ctx, model.MissionMeditation)
	require.NoError(t, err)
	require.Len(t, missions, 1)
	assert.Equal(t, "on", missions[0].Title)
}

func TestQuizRepositorySolvedInRaid(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuizRepository(db)
	ctx := context.Background()

	session := "session-1"
	other := "session-2"
	attempts := []model.QuizAttempt{
		{QuizID: "q1", StudentID: "s1", RaidSessionID: &session, IsCorrect: false},
		{QuizID: "q2", StudentID: "s1", RaidSessionID: &session, IsCorrect: true},
		{QuizID: "q1", StudentID: "s1", RaidSessionID: &other, IsCorrect: true},
		{QuizID: "q1", StudentID: "s2", RaidSessionID: &session, IsCorrect: true},
		{QuizID: "q3", StudentID: "s1", IsCorrect: true},
	}
	for i := range attempts {
		attempts[i].AttemptedAt = time.Now()
		require.NoError(t, repo.RecordAttempt(ctx, &attempts[i]))
	}

	cases := []struct {
		quiz, student string
		want          bool
	}{
		{"q1", "s1", false},
		{"q2", "s1", true},
		{"q1", "s2", true},
		{"q3", "s1", false},
	}
	for _, tc := range cases {
		solved, err := repo.SolvedInRaid(ctx, session, tc.student, tc.quiz)
		require.NoError(t, err)
		assert.Equal(t, tc.want, solved, "%s/%s", tc.quiz, tc.student)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, database.Seed(db))
	require.NoError(t, database.Seed(db))

	ctx := context.Background()
	bosses, err := NewRaidRepository(db).ActiveBosses(ctx)
	require.NoError(t, err)
	assert.Len(t, bosses, 3)
	assert.Equal(t, 3000, bosses[0].TotalHP)

	missions, err := NewMissionRepository(db).ListActive(ctx, "")
	require.NoError(t, err)
	assert.Len(t, missions, 9)

	words, err := NewMissionRepository(db).ListActive(ctx, model.MissionWordQuiz)
	require.NoError(t, err)
	assert.Len(t, words, 5)

	bossQuizzes, err := NewQuizRepository(db).ListByBoss(ctx, bosses[0].ID)
	require.NoError(t, err)
	assert.Len(t, bossQuizzes, 3)
}

type raidFixture struct {
	repo     *RaidRepository
	students *StudentRepository
	boss     model.RaidBoss
	session  model.RaidSession
}

func newRaidFixture(t *testing.T, hp int) *raidFixture {
	t.Helper()
	db := newTestDB(t)
	f := &raidFixture{repo: NewRaidRepository(db), students: NewStudentRepository(db)}
	f.boss = model.RaidBoss{BossName: "boss", TotalHP: hp, MinParticipants: 1, TimeLimitMinutes: 15, DamagePerCorrect: 100, RewardExp: 30, RewardPoints: 150, IsActive: true}
	require.NoError(t, db.Create(&f.boss).Error)
	f.session = model.RaidSession{
		RaidBossID: f.boss.ID,
		Status:     model.RaidWaiting,
		CurrentHP:  hp,
		Deadline:   time.Now().Add(15 * time.Minute),
	}
	require.NoError(t, f.repo.CreateSession(context.Background(), &f.session))
	return f
}

func (f *raidFixture) join(t *testing.T, username string) (*model.Student, *model.RaidParticipant) {
	t.Helper()
	s := createStudent(t, f.students, username, 1, 0)
	p := &model.RaidParticipant{RaidSessionID: f.session.ID, StudentID: s.ID, JoinedAt: time.Now()}
	require.NoError(t, f.repo.AddParticipant(context.Background(), p))
	return s, p
}

func TestRaidRepositoryParticipants(t *testing.T) {
	f := newRaidFixture(t, 300)
	ctx := context.Background()

	s, _ := f.join(t, "kim")
	f.join(t, "lee")

	err := f.repo.AddParticipant(ctx, &model.RaidParticipant{RaidSessionID: f.session.ID, StudentID: s.ID, JoinedAt: time.Now()})
	assert.ErrorIs(t, err, util.ErrAlreadyJoined)

	session, err := f.repo.FindSession(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.ParticipantCount)

	_, err = f.repo.FindParticipant(ctx, f.session.ID, "nobody")
	assert.ErrorIs(t, err, util.ErrNotParticipant)

	require.NoError(t, f.repo.StartSession(ctx, f.session.ID, time.Now()))
	assert.ErrorIs(t, f.repo.StartSession(ctx, f.session.ID, time.Now()), util.ErrRaidNotWaiting)
	assert.ErrorIs(t, f.repo.StartSession(ctx, "missing", time.Now()), util.ErrSessionNotFound)
}

func TestRaidRepositoryApplyHit(t *testing.T) {
	f := newRaidFixture(t, 150)
	ctx := context.Background()
	_, p := f.join(t, "kim")
	require.NoError(t, f.repo.StartSession(ctx, f.session.ID, time.Now()))

	ok, err := f.repo.ApplyHit(ctx, service.RaidHit{SessionID: f.session.ID, ParticipantID: p.ID, BossID: f.boss.ID, PrevHP: 150, Damage: 100, At: time.Now()})
	require.NoError(t, err)
	assert.True(t, ok)

	// 过期的 PrevHP 不生效
	ok, err = f.repo.ApplyHit(ctx, service.RaidHit{SessionID: f.session.ID, ParticipantID: p.ID, BossID: f.boss.ID, PrevHP: 150, Damage: 100, At: time.Now()})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.repo.ApplyHit(ctx, service.RaidHit{SessionID: f.session.ID, ParticipantID: p.ID, BossID: f.boss.ID, PrevHP: 50, Damage: 50, Completes: true, At: time.Now()})
	require.NoError(t, err)
	assert.True(t, ok)

	session, err := f.repo.FindSession(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.CurrentHP)
	assert.Equal(t, 150, session.TotalDamageDealt)
	assert.Equal(t, model.RaidCompleted, session.Status)
	assert.True(t, session.IsSuccess)

	participant, err := f.repo.FindParticipant(ctx, f.session.ID, p.StudentID)
	require.NoError(t, err)
	assert.Equal(t, 150, participant.DamageDealt)
	assert.Equal(t, 2, participant.CorrectAnswers)

	boss, err := f.repo.FindBoss(ctx, f.boss.ID)
	require.NoError(t, err)
	assert.True(t, boss.IsDefeated)

	expired, err := f.repo.ExpireSession(ctx, f.session.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestRaidRepositoryExpire(t *testing.T) {
	f := newRaidFixture(t, 300)
	ctx := context.Background()

	overdue, err := f.repo.OverdueSessions(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	expired, err := f.repo.ExpireSession(ctx, f.session.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, expired)

	session, err := f.repo.FindSession(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RaidCompleted, session.Status)
	assert.False(t, session.IsSuccess)

	active, err := f.repo.ActiveSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRaidRepositoryClaimReward(t *testing.T) {
	f := newRaidFixture(t, 300)
	ctx := context.Background()
	s, p := f.join(t, "kim")

	s.Exp = 30
	s.Points = 150
	require.NoError(t, f.repo.ClaimReward(ctx, p.ID, s))

	s.Exp = 60
	assert.ErrorIs(t, f.repo.ClaimReward(ctx, p.ID, s), util.ErrRewardAlreadyClaimed)
	assert.ErrorIs(t, f.repo.ClaimReward(ctx, "missing", s), util.ErrNotParticipant)

	stored, err := f.students.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.Exp)
	assert.Equal(t, 150, stored.Points)

	participant, err := f.repo.FindParticipant(ctx, f.session.ID, s.ID)
	require.NoError(t, err)
	assert.True(t, participant.RewardClaimed)
}
