package asset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-educomic-kit/pkg/domain"
)

const (
	// pageTopicRunes はページ画像ファイル名に埋め込むトピックの最大長です。
	pageTopicRunes = 5
	// finalTopicRunes は最終成果物ファイル名に埋め込むトピックの最大長です。
	finalTopicRunes = 10
)

// unsafeChars はファイル名として危険な文字と空白類をまとめて潰すためのパターンです。
var unsafeChars = regexp.MustCompile(`[\s/\\:*?"<>|]+`)

// SanitizeTopic はトピックを最大 maxRunes に切り詰め、
// 空白や不正な文字をアンダースコアに正規化して返します。
func SanitizeTopic(topic string, maxRunes int) string {
	runes := []rune(topic)
	if len(runes) > maxRunes {
		runes = runes[:maxRunes]
	}
	return unsafeChars.ReplaceAllString(string(runes), "_")
}

// PageImagePath はページ単位の中間画像の保存先パスを決定的に導出します。
// RunID が指定されている場合はファイル名に挿入し、並行リクエスト間の衝突を避けます。
func PageImagePath(baseDir string, req domain.ScriptRequest, page int) string {
	name := fmt.Sprintf("comic_%s_%d.png", SanitizeTopic(req.Topic, pageTopicRunes), page)
	if req.RunID != "" {
		name = fmt.Sprintf("comic_%s_%s_%d.png", req.RunID, SanitizeTopic(req.Topic, pageTopicRunes), page)
	}
	return ResolveOutputPath(baseDir, name)
}

// FinalImagePath は合成済み最終画像の保存先パスを決定的に導出します。
func FinalImagePath(baseDir string, req domain.ScriptRequest) string {
	name := fmt.Sprintf("final_%s_%s.png", SanitizeTopic(req.Topic, finalTopicRunes), req.AgeTier.Range())
	if req.RunID != "" {
		name = fmt.Sprintf("final_%s_%s_%s.png", req.RunID, SanitizeTopic(req.Topic, finalTopicRunes), req.AgeTier.Range())
	}
	return ResolveOutputPath(baseDir, name)
}

// ResolveOutputPath はベースディレクトリとファイル名から最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) string {
	if strings.TrimSpace(baseDir) == "" {
		return fileName
	}
	return filepath.Join(baseDir, fileName)
}
