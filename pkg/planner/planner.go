// Package planner はトピックと教育コンテキストから、ページ番号で索引された
// 厳密なコミック台本（PageScript）を導出します。
package planner

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shouni/go-educomic-kit/pkg/domain"
	"github.com/shouni/go-educomic-kit/pkg/parser"
	"github.com/shouni/go-educomic-kit/pkg/prompts"
)

// TextGenerator は、プロンプトから応答テキストを生成する契約です。
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ScriptPlanner はプロンプト構築・テキストモデル呼び出し・ページ分解を束ねます。
type ScriptPlanner struct {
	textGen       TextGenerator
	promptBuilder prompts.ScriptPromptBuilder

	contextLimit   int
	truncatePolicy domain.TruncatePolicy
}

// NewScriptPlanner は、依存関係を注入して初期化します。
// contextLimit は教育コンテキストをプロンプトへ埋め込む際の最大ルーン数です。
func NewScriptPlanner(textGen TextGenerator, pb prompts.ScriptPromptBuilder, contextLimit int, policy domain.TruncatePolicy) *ScriptPlanner {
	return &ScriptPlanner{
		textGen:        textGen,
		promptBuilder:  pb,
		contextLimit:   contextLimit,
		truncatePolicy: policy,
	}
}

// Plan は台本を生成して PageScript に変換します。
// テキストモデルの呼び出し失敗と空応答は PlanningError として即座に伝播し、
// 部分的な台本が後続の画像生成に使われることはありません。
func (p *ScriptPlanner) Plan(ctx context.Context, req domain.ScriptRequest) (domain.PageScript, error) {
	prompt, err := p.buildPrompt(req)
	if err != nil {
		return nil, &domain.PlanningError{Err: err}
	}

	slog.InfoContext(ctx, "台本の生成を開始するのだ", "topic", req.Topic, "pages", req.PageCount, "age_tier", req.AgeTier)

	raw, err := p.textGen.GenerateText(ctx, prompt)
	if err != nil {
		return nil, &domain.PlanningError{Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &domain.PlanningError{Err: domain.ErrEmptyScript}
	}

	script := p.parseScript(raw, req.PageCount)
	if len(script) == 0 {
		return nil, &domain.PlanningError{Err: domain.ErrEmptyScript}
	}

	slog.InfoContext(ctx, "台本のパースが完了したのだ", "recognized_pages", len(script), "requested_pages", req.PageCount)
	return script, nil
}

// buildPrompt は年齢層の指示セットと出力フォーマット契約を1つのプロンプトに束ねます。
// コンテキストは設定された上限まで黙って切り詰められます。
func (p *ScriptPlanner) buildPrompt(req domain.ScriptRequest) (string, error) {
	bundle := req.AgeTier.Bundle()

	data := prompts.TemplateData{
		Role:         bundle.Role,
		Topic:        req.Topic,
		Context:      domain.Truncate(req.Context, p.contextLimit, p.truncatePolicy),
		AgeRange:     req.AgeTier.Range(),
		Style:        bundle.Style,
		Pacing:       bundle.Pacing,
		Tone:         bundle.Tone,
		PageCount:    req.PageCount,
		OutputFormat: prompts.BuildOutputFormat(req.PageCount),
	}

	return p.promptBuilder.Build(prompts.ModeScript, data)
}

// parseScript は応答をページブロックへ分解し、範囲外のページ番号を落とします。
// 合成ページを発明しないため、keys ⊆ {1..pageCount} が常に成り立ちます。
func (p *ScriptPlanner) parseScript(raw string, pageCount int) domain.PageScript {
	script := make(domain.PageScript)
	for num, block := range parser.SplitPages(raw) {
		if num < 1 || num > pageCount {
			slog.Warn("範囲外のページ番号を無視するのだ", "page", num, "page_count", pageCount)
			continue
		}
		script[num] = block
	}
	return script
}
