package database

import (
	"dungeon_backend/internal/model"
	applog "dungeon_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func defaultBosses() []model.RaidBoss {
	return []model.RaidBoss{
		{
			BossName:           "최종 보스: 허태훈의 분노",
			Description:        "모든 던전을 정복한 자만이 도전할 수 있는 최강의 보스",
			TotalHP:            10000,
			MinParticipants:    3,
			TimeLimitMinutes:   30,
			DamagePerCorrect:   200,
			RewardExp:          100,
			RewardPoints:       500,
			PenaltyDescription: "실패 시 전원 과제 3배",
			IsActive:           true,
		},
		{
			BossName:           "중간 보스: 지식의 수호자",
			Description:        "지식을 시험하는 중간 난이도 레이드",
			TotalHP:            5000,
			MinParticipants:    2,
			TimeLimitMinutes:   20,
			DamagePerCorrect:   150,
			RewardExp:          50,
			RewardPoints:       250,
			PenaltyDescription: "실패 시 전원 과제 2배",
			IsActive:           true,
		},
		{
			BossName:           "입문 보스: 협동의 시작",
			Description:        "레이드를 처음 시작하는 초보자용",
			TotalHP:            3000,
			MinParticipants:    2,
			TimeLimitMinutes:   15,
			DamagePerCorrect:   100,
			RewardExp:          30,
			RewardPoints:       150,
			PenaltyDescription: "실패 시 전원 복습 필수",
			IsActive:           true,
		},
	}
}

func wordQuiz(title, word, answer string) model.MentalRecoveryMission {
	return model.MentalRecoveryMission{
		MissionType:     model.MissionWordQuiz,
		Title:           title,
		Description:     "단어의 뜻을 영어로 적어보세요",
		QuestionText:    "영어로 '" + word + "'를 뭐라고 할까요?",
		CorrectAnswer:   answer,
		RecoveryAmount:  15,
		DifficultyLevel: 1,
		IsActive:        true,
	}
}

func defaultMissions() []model.MentalRecoveryMission {
	return []model.MentalRecoveryMission{
		wordQuiz("단어 퀴즈: 사과", "사과", "apple"),
		wordQuiz("단어 퀴즈: 고양이", "고양이", "cat"),
		wordQuiz("단어 퀴즈: 안녕", "안녕", "hello"),
		wordQuiz("단어 퀴즈: 물", "물", "water"),
		wordQuiz("단어 퀴즈: 책", "책", "book"),
		{
			MissionType:     model.MissionSelfPraise,
			Title:           "셀프 칭찬하기",
			Description:     "자신을 칭찬하는 긍정적인 문장을 10자 이상 작성해보세요",
			QuestionText:    "오늘 나 자신에게 해주고 싶은 칭찬을 적어보세요 (최소 10자)",
			RecoveryAmount:  20,
			DifficultyLevel: 1,
			IsActive:        true,
		},
		{
			MissionType:     model.MissionSelfPraise,
			Title:           "긍정 확언",
			Description:     "나는 할 수 있다는 마음가짐을 갖고 긍정적인 다짐을 적어보세요",
			QuestionText:    "나는 반드시 __________할 수 있다! (빈칸 채우기)",
			RecoveryAmount:  20,
			DifficultyLevel: 1,
			IsActive:        true,
		},
		{
			MissionType:     model.MissionMeditation,
			Title:           "심호흡 명상",
			Description:     "30초간 깊게 숨을 쉬며 마음을 진정시켜보세요",
			QuestionText:    "30초간 눈을 감고 깊게 숨을 들이쉬고 내쉬세요",
			RecoveryAmount:  10,
			DifficultyLevel: 1,
			IsActive:        true,
		},
		{
			MissionType:     model.MissionMeditation,
			Title:           "스트레칭 타임",
			Description:     "잠시 자리에서 일어나 가볍게 스트레칭을 해보세요",
			QuestionText:    "30초간 편안하게 몸을 풀어보세요",
			RecoveryAmount:  10,
			DifficultyLevel: 1,
			IsActive:        true,
		},
	}
}

// defaultQuizzes bossID 为空时为普通题目
func defaultQuizzes(bossID *string) []model.Quiz {
	return []model.Quiz{
		{
			RaidBossID:      bossID,
			Question:        "Java에서 모든 클래스의 최상위 클래스는?",
			OptionA:         "Object",
			OptionB:         "Class",
			OptionC:         "Main",
			OptionD:         "Base",
			CorrectAnswer:   "A",
			Explanation:     "모든 클래스는 암묵적으로 java.lang.Object를 상속합니다.",
			DifficultyLevel: 1,
		},
		{
			RaidBossID:      bossID,
			Question:        "HTTP 상태 코드 404의 의미는?",
			OptionA:         "서버 오류",
			OptionB:         "리소스 없음",
			OptionC:         "인증 필요",
			OptionD:         "요청 성공",
			CorrectAnswer:   "B",
			Explanation:     "404 Not Found는 요청한 리소스를 찾을 수 없다는 뜻입니다.",
			DifficultyLevel: 1,
		},
		{
			RaidBossID:      bossID,
			Question:        "SQL에서 중복을 제거하는 키워드는?",
			OptionA:         "UNIQUE",
			OptionB:         "GROUP",
			OptionC:         "DISTINCT",
			OptionD:         "ONLY",
			CorrectAnswer:   "C",
			Explanation:     "SELECT DISTINCT는 결과에서 중복 행을 제거합니다.",
			DifficultyLevel: 2,
		},
	}
}

// Seed 表为空时写入初始数据，重复执行不会产生重复记录
func Seed(db *gorm.DB) error {
	var bossCount int64
	if err := db.Model(&model.RaidBoss{}).Count(&bossCount).Error; err != nil {
		return err
	}
	if bossCount == 0 {
		bosses := defaultBosses()
		if err := db.Create(&bosses).Error; err != nil {
			return err
		}
		for i := range bosses {
			quizzes := defaultQuizzes(&bosses[i].ID)
			if err := db.Create(&quizzes).Error; err != nil {
				return err
			}
		}
		applog.Log.Info("Raid bosses seeded", zap.Int("count", len(bosses)))
	}

	var missionCount int64
	if err := db.Model(&model.MentalRecoveryMission{}).Count(&missionCount).Error; err != nil {
		return err
	}
	if missionCount == 0 {
		missions := defaultMissions()
		if err := db.Create(&missions).Error; err != nil {
			return err
		}
		applog.Log.Info("Recovery missions seeded", zap.Int("count", len(missions)))
	}

	var quizCount int64
	if err := db.Model(&model.Quiz{}).Where("raid_boss_id IS NULL").Count(&quizCount).Error; err != nil {
		return err
	}
	if quizCount == 0 {
		quizzes := defaultQuizzes(nil)
		if err := db.Create(&quizzes).Error; err != nil {
			return err
		}
	}
	return nil
}
