package prompts

import (
	"fmt"
	"strings"
	"text/template"
)

// ScriptPromptBuilder は、AIプロンプトを構築する契約です。
type ScriptPromptBuilder interface {
	Build(mode string, data TemplateData) (string, error)
}

// TextPromptBuilder はプロンプトテンプレートの構成を管理し、モード選択のロジックを内包します。
type TextPromptBuilder struct {
	templates map[string]*template.Template
}

// NewTextPromptBuilder は TextPromptBuilder を初期化します。
func NewTextPromptBuilder() (*TextPromptBuilder, error) {
	parsedTemplates := make(map[string]*template.Template)
	for mode, content := range allTemplates {
		if content == "" {
			return nil, fmt.Errorf("プロンプトテンプレート '%s' (go:embed) の読み込みに失敗しました: 内容が空です", mode)
		}

		tmpl, err := template.New(mode).Parse(content)
		if err != nil {
			return nil, fmt.Errorf("プロンプト '%s' の解析に失敗: %w", mode, err)
		}
		parsedTemplates[mode] = tmpl
	}

	return &TextPromptBuilder{
		templates: parsedTemplates,
	}, nil
}

// Build は、要求されたモードに応じて適切なテンプレートを実行します。
func (b *TextPromptBuilder) Build(mode string, data TemplateData) (string, error) {
	tmpl, ok := b.templates[mode]
	if !ok {
		return "", fmt.Errorf("不明なモードです: '%s'", mode)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("プロンプトテンプレートの実行に失敗しました: %w", err)
	}

	return sb.String(), nil
}

// BuildOutputFormat は 1..pageCount の [Page i] マーカーを列挙した
// 出力フォーマット指示を組み立てます。タイトル行はページ1のみです。
// このフォーマットは生成モデルに対する厳格な契約であり、
// 逸脱した出力はパーサー側でノイズとして落とされます。
func BuildOutputFormat(pageCount int) string {
	var lines []string
	for i := 1; i <= pageCount; i++ {
		lines = append(lines, fmt.Sprintf("[Page %d]", i))
		if i == 1 {
			lines = append(lines, "Title: (Catchy Title)")
		}
		lines = append(lines, "→ Detailed description of the visual panels")
		lines = append(lines, "→ Dialogue/Captions")
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
