// Package summary は動画の文字起こしなどの生テキストから、
// コミック台本の土台になる教育コンテキスト文字列を導出します。
// 音声のダウンロードと文字起こし自体は外部の協調コンポーネントの責務で、
// このパッケージはテキストを受け取るところから始まります。
package summary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-educomic-kit/pkg/domain"
	"github.com/shouni/go-educomic-kit/pkg/prompts"
	"golang.org/x/sync/singleflight"
)

// DefaultContext はソース未指定時のフォールバックコンテキストです。
const DefaultContext = "General topic explanation."

const (
	defaultCacheExpiration = 30 * time.Minute
	cacheCleanupInterval   = 1 * time.Hour
)

// TextGenerator は、プロンプトから応答テキストを生成する契約です。
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Provider は要約の生成・キャッシュ・重複呼び出しの集約を担います。
// 同じソースIDに対する要約は一度だけ計算され、並行する同一リクエストは
// singleflight で1回の生成に合流します。
type Provider struct {
	textGen       TextGenerator
	promptBuilder prompts.ScriptPromptBuilder
	httpClient    *http.Client

	summaryCache    *cache.Cache
	group           singleflight.Group
	transcriptLimit int
}

// NewProvider は、依存関係を注入して初期化します。
// transcriptLimit は要約プロンプトへ埋め込む文字起こしの最大ルーン数です。
func NewProvider(textGen TextGenerator, pb prompts.ScriptPromptBuilder, httpClient *http.Client, transcriptLimit int) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Provider{
		textGen:         textGen,
		promptBuilder:   pb,
		httpClient:      httpClient,
		summaryCache:    cache.New(defaultCacheExpiration, cacheCleanupInterval),
		transcriptLimit: transcriptLimit,
	}
}

// Resolve はソース指定から教育コンテキスト文字列を解決します。
//   - 空文字           → 既定のコンテキスト
//   - "@path" 形式     → ローカルファイルの内容
//   - http(s) URL      → 取得したボディ
//   - それ以外         → そのまま不透明なテキストとして扱う
func (p *Provider) Resolve(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "":
		return DefaultContext, nil
	case strings.HasPrefix(source, "@"):
		data, err := os.ReadFile(strings.TrimPrefix(source, "@"))
		if err != nil {
			return "", fmt.Errorf("コンテキストファイルの読み込みに失敗しました: %w", err)
		}
		return string(data), nil
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return p.fetch(ctx, source)
	default:
		return source, nil
	}
}

// Summarize は文字起こしテキストから年齢層に合わせた教育的要約を抽出します。
// 結果は sourceID ごとにキャッシュされ、同一IDの再実行は外部呼び出しを伴いません。
// 要約の失敗はこの呼び出し単位に隔離され、台本生成ステージへは波及しません。
func (p *Provider) Summarize(ctx context.Context, sourceID, transcript string, tier domain.AgeTier) (string, error) {
	key := string(tier) + ":" + sourceID
	if cached, found := p.summaryCache.Get(key); found {
		slog.InfoContext(ctx, "キャッシュ済みの要約を再利用するのだ", "source_id", sourceID)
		return cached.(string), nil
	}

	val, err, _ := p.group.Do(key, func() (interface{}, error) {
		// singleflight 待機中に他のゴルーチンが完了している可能性があるため再確認
		if cached, found := p.summaryCache.Get(key); found {
			return cached.(string), nil
		}

		prompt, err := p.promptBuilder.Build(prompts.ModeSummary, prompts.TemplateData{
			AgeRange:   tier.Range(),
			Transcript: domain.Truncate(transcript, p.transcriptLimit, domain.TruncateHard),
		})
		if err != nil {
			return nil, fmt.Errorf("要約プロンプトの構築に失敗しました: %w", err)
		}

		summary, err := p.textGen.GenerateText(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("要約の生成に失敗しました: %w", err)
		}

		p.summaryCache.Set(key, summary, cache.DefaultExpiration)
		return summary, nil
	})
	if err != nil {
		return "", err
	}

	summary, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	return summary, nil
}

// fetch は URL からコンテキスト本文を取得します。
func (p *Provider) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("コンテキスト取得リクエストの作成に失敗しました: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("コンテキストの取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("コンテキストの取得に失敗しました。ステータスコード: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("コンテキスト本文の読み込みに失敗しました: %w", err)
	}
	return string(body), nil
}
