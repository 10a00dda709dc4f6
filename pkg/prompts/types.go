package prompts

import (
	_ "embed"
)

const (
	// ModeScript はコミック台本生成用のプロンプトモードです。
	ModeScript = "script"
	// ModeSummary は文字起こしからの教育的要約抽出用のプロンプトモードです。
	ModeSummary = "summary"
)

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
// モードによって使用されるフィールドは異なります。
type TemplateData struct {
	// --- script モード ---
	Role         string // 年齢層ペルソナ
	Topic        string
	Context      string // 切り詰め済みの教育コンテキスト
	AgeRange     string // 例: "6-10"
	Style        string
	Pacing       string
	Tone         string
	PageCount    int
	OutputFormat string // BuildOutputFormat が生成する [Page i] の列挙

	// --- summary モード ---
	Transcript string // 切り詰め済みの文字起こしテキスト
}

var (
	//go:embed script.md
	ScriptPrompt string
	//go:embed summary.md
	SummaryPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModeScript:  ScriptPrompt,
	ModeSummary: SummaryPrompt,
}
