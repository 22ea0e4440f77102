package service

import (
	"context"
	"dungeon_backend/internal/config"
	"dungeon_backend/internal/model"
	"dungeon_backend/pkg/logger"
	"dungeon_backend/pkg/monitoring"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type DialogueKind string

const (
	DialogueCorrect     DialogueKind = "correct"
	DialogueCombo       DialogueKind = "combo"
	DialogueComboBroken DialogueKind = "combo_broken"
	DialogueLight       DialogueKind = "light"
	DialogueDoubt       DialogueKind = "doubt"
	DialoguePressure    DialogueKind = "pressure"
	DialogueDestruction DialogueKind = "destruction"
)

// 连续答对达到该次数触发 combo 台词
const comboThreshold = 3

// 每个池的第一句同时作为生成失败时的固定台词
var dialoguePools = map[DialogueKind][]string{
	DialogueCorrect: {
		"음... 이번엔 운이 좋았네",
		"이 정도는 해야 기본이지",
		"이정도면 괜찮은데?",
		"계속 이렇게만 해봐",
		"허태훈의 감탄 효과 발동!",
		"제법인데? 다음 문제도 도전해봐",
		"완벽한 답이야!",
	},
	DialogueCombo: {
		"오, 이건 좀 하는데?",
		"오, 드디어 정신 차렸네?",
		"오, 제대로 공부했네? 계속 이렇게 해",
		"좋아, 이 기세를 몰아가자!",
		"역시 내 제자답군",
		"이 속도로 계속 가자!",
	},
	DialogueComboBroken: {
		"거기까지였구나",
		"그럼 그렇지",
		"방심했지?",
	},
	DialogueLight: {
		"또 틀렸네? 집중력이 문제인가?",
		"야 그건 기본이잖아",
		"이게 틀려? 진짜?",
	},
	DialogueDoubt: {
		"너는 복습을 했니? 했으면 이럴 리가 없지 ㅋㅋ",
		"수업 들었어 안 들었어?",
		"숙제 안 하고 왔지?",
		"진짜 안 외웠구나... 뒤진다",
	},
	DialoguePressure: {
		"이 정도 문제도 못 푸는데 어떻게 살아갈 거니?",
		"아니 이건 초등학생도 푸는데",
		"이게 틀리면 과제 3배다",
		"니대가리로 이해가 가긴하겠니",
	},
	DialogueDestruction: {
		"아니야 네가 못한 게 아니라 세상이 널 버린 거야",
		"목졸라뿐다",
		"공부는 말이지… 이 세상에서 제일 귀찮은 사랑이야…",
	},
}

const defaultLine = "복습 좀 해라"

// PickLine 从对应台词池中随机选择，随机源由调用方提供
func PickLine(rng *rand.Rand, kind DialogueKind) string {
	pool := dialoguePools[kind]
	if len(pool) == 0 {
		return defaultLine
	}
	return pool[rng.IntN(len(pool))]
}

// FallbackLine 生成失败时使用的固定台词
func FallbackLine(kind DialogueKind) string {
	pool := dialoguePools[kind]
	if len(pool) == 0 {
		return defaultLine
	}
	return pool[0]
}

// Intensity 台词强度等级
func (k DialogueKind) Intensity() int {
	switch k {
	case DialogueLight, DialogueComboBroken:
		return 1
	case DialogueDoubt:
		return 2
	case DialoguePressure:
		return 3
	case DialogueDestruction:
		return 4
	default:
		return 0
	}
}

// DialogueContext 生成台词时的上下文
type DialogueContext struct {
	Kind                DialogueKind
	InstructorName      string
	StudentName         string
	Question            string
	Gauge               int
	ConsecutiveWrongs   int
	ConsecutiveCorrects int
}

type DialogueGenerator interface {
	Generate(ctx context.Context, dc DialogueContext) (string, error)
}

var errEmptyCompletion = errors.New("empty completion")

// OpenAIDialogueGenerator 通过 OpenAI 兼容接口生成台词
type OpenAIDialogueGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAIDialogueGenerator(cfg config.AIConfig) (*OpenAIDialogueGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai.api_key is required for dialogue generation")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return newOpenAIDialogueGenerator(openai.NewClientWithConfig(oc), cfg.Model, cfg.MaxTokens), nil
}

func newOpenAIDialogueGenerator(client *openai.Client, model string, maxTokens int) *OpenAIDialogueGenerator {
	if model == "" {
		model = openai.GPT4oMini
	}
	if maxTokens <= 0 {
		maxTokens = 150
	}
	return &OpenAIDialogueGenerator{client: client, model: model, maxTokens: maxTokens}
}

func (g *OpenAIDialogueGenerator) Generate(ctx context.Context, dc DialogueContext) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: 0.9,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: dialogueSystemPrompt(dc)},
			{Role: openai.ChatMessageRoleUser, Content: dialogueUserPrompt(dc)},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

func dialogueSystemPrompt(dc DialogueContext) string {
	name := dc.InstructorName
	if name == "" {
		name = "허태훈"
	}
	return fmt.Sprintf("너는 '%s' 강사야. 엄격하지만 학생을 생각한다. 반말로 한 문장만 말해.", name)
}

func dialogueUserPrompt(dc DialogueContext) string {
	var guideline string
	switch dc.Kind {
	case DialogueDestruction:
		guideline = "학생이 포기하고 싶게 만드는 파괴적인 말"
	case DialoguePressure:
		guideline = "다른 사람과 비교하며 압박하는 말"
	case DialogueDoubt:
		guideline = "학생의 능력을 의심하는 말. 복습 안 했다고 의심하기"
	case DialogueLight:
		guideline = "가볍게 꼬집는 말. 집중력 부족하다고 지적하기"
	case DialogueComboBroken:
		guideline = "연속 정답이 끊긴 것을 비꼬는 말"
	case DialogueCombo:
		guideline = "연속 정답을 마지못해 인정하는 말"
	default:
		guideline = "정답을 맞힌 학생에게 건네는 짧은 칭찬"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "상황:\n- 학생: %s\n", dc.StudentName)
	if dc.Question != "" {
		fmt.Fprintf(&b, "- 문제: %s\n", dc.Question)
	}
	fmt.Fprintf(&b, "- 멘탈 게이지: %d/100\n- 연속 오답: %d회\n- 연속 정답: %d회\n", dc.Gauge, dc.ConsecutiveWrongs, dc.ConsecutiveCorrects)
	fmt.Fprintf(&b, "- 대사 유형: %s\n조건: %s\n대사만 출력해:", dc.Kind, guideline)
	return b.String()
}

// DialogueService 台词生成与记录，任何失败都不会影响调用方
type DialogueService struct {
	Generator DialogueGenerator
	Store     DialogueStore
	Timeout   time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDialogueService(generator DialogueGenerator, store DialogueStore, timeout time.Duration, rng *rand.Rand) *DialogueService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &DialogueService{Generator: generator, Store: store, Timeout: timeout, rng: rng}
}

type Line struct {
	Kind      DialogueKind `json:"kind"`
	Text      string       `json:"text"`
	Generated bool         `json:"generated"`
}

func (s *DialogueService) pick(kind DialogueKind) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PickLine(s.rng, kind)
}

// Line 优先调用生成器，超时或出错时回退到固定台词
func (s *DialogueService) Line(ctx context.Context, dc DialogueContext) Line {
	if s.Generator == nil {
		return Line{Kind: dc.Kind, Text: s.pick(dc.Kind)}
	}

	genCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	text, err := s.Generator.Generate(genCtx, dc)
	if err != nil {
		monitoring.DialogueFallbacks.WithLabelValues(string(dc.Kind)).Inc()
		logger.Log.Warn("Dialogue generation failed, using fallback",
			zap.String("kind", string(dc.Kind)),
			zap.Error(err),
		)
		return Line{Kind: dc.Kind, Text: FallbackLine(dc.Kind)}
	}
	return Line{Kind: dc.Kind, Text: text, Generated: true}
}

// Record 保存已展示的台词，写入失败只记录日志
func (s *DialogueService) Record(ctx context.Context, instructorID uint, studentID string, line Line) {
	if s.Store == nil {
		return
	}
	var sid *string
	if studentID != "" {
		sid = &studentID
	}
	err := s.Store.Create(ctx, &model.RageDialogue{
		InstructorID:   instructorID,
		StudentID:      sid,
		DialogueText:   line.Text,
		DialogueType:   string(line.Kind),
		IntensityLevel: line.Kind.Intensity(),
		Generated:      line.Generated,
	})
	if err != nil {
		logger.Log.Warn("Failed to record dialogue", zap.Uint("instructorId", instructorID), zap.Error(err))
	}
}
