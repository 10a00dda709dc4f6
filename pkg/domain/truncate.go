package domain

import (
	"fmt"
	"unicode"
)

// TruncatePolicy はプロンプトに埋め込むテキストの切り詰め方針です。
type TruncatePolicy string

const (
	// TruncateHard は文字数ちょうどで切り捨てます（従来挙動）。
	TruncateHard TruncatePolicy = "hard"
	// TruncateWord は上限を超える場合、直前の空白まで戻って単語の途中で
	// 切れないようにします。境界が見つからなければ TruncateHard と同じです。
	TruncateWord TruncatePolicy = "word"
)

// ParseTruncatePolicy は文字列から切り詰め方針を解決します。
func ParseTruncatePolicy(s string) (TruncatePolicy, error) {
	switch TruncatePolicy(s) {
	case TruncateHard:
		return TruncateHard, nil
	case TruncateWord:
		return TruncateWord, nil
	default:
		return "", fmt.Errorf("不明な切り詰め方針です: %q (hard / word のいずれかを指定してほしいのだ)", s)
	}
}

// Truncate は s を最大 limit ルーンに黙って切り詰めます。
// limit が 0 以下の場合は切り詰めを行いません。
func Truncate(s string, limit int, policy TruncatePolicy) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	cut := runes[:limit]
	if policy == TruncateWord {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}
	return string(cut)
}
