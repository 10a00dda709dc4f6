package config

import (
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-educomic-kit/pkg/domain"
	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel           = "gemini-3-pro-preview"
	DefaultImageModel      = "gemini-3-pro-image-preview"
	DefaultOutputDir       = "generated_comics"
	DefaultPageCount       = 4
	DefaultContextLimit    = 4000  // プロンプトに埋め込む教育コンテキストの最大ルーン数
	DefaultTranscriptLimit = 10000 // 要約プロンプトに埋め込む文字起こしの最大ルーン数
	DefaultRateInterval    = 10 * time.Second

	DefaultAgeTier        = domain.AgeTierKid
	DefaultTruncatePolicy = domain.TruncateHard
)

// Config はアプリケーション全体の環境設定（APIキーやモデル名）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string

	OutputDir       string
	ContextLimit    int
	TranscriptLimit int
	RateInterval    time.Duration
	TruncatePolicy  domain.TruncatePolicy

	Options GenerateOptions
}

// LoadConfig は .env と環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	// .env があれば取り込む。無くても環境変数だけで動くのでエラーは無視するのだ。
	_ = godotenv.Load()

	cfg := &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		OutputDir:        envutil.GetEnv("COMIC_OUTPUT_DIR", DefaultOutputDir),
		ContextLimit:     getEnvInt("COMIC_CONTEXT_LIMIT", DefaultContextLimit),
		TranscriptLimit:  getEnvInt("COMIC_TRANSCRIPT_LIMIT", DefaultTranscriptLimit),
		RateInterval:     DefaultRateInterval,
		TruncatePolicy:   domain.TruncateHard,
	}
	return cfg
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// リクエスト内容
	Topic     string // --topic
	Source    string // --source: コンテキストのソース（生テキスト / @file / URL）
	AgeTier   string // --age
	PageCount int    // --pages
	RunID     string // --run-id: ファイル名衝突を避けたいときの識別子

	// 挙動設定
	Summarize      bool   // --summarize: ソースを要約してからコンテキストに使う
	TruncatePolicy string // --truncate: hard / word
	OutputDir      string // --output-dir
	AIModel        string // --model: テキスト生成用のGeminiモデル
	ImageModel     string // --image-model: 画像生成用のGeminiモデル

	// 実行制御
	RateInterval time.Duration // --rate-interval
}

// getEnvInt は整数値の環境変数を読み、パースできなければデフォルトを返すのだ。
func getEnvInt(key string, def int) int {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
