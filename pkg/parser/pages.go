// Package parser はテキストモデルの応答を [Page N] マーカーで
// ページ番号付きの台本ブロックへ分解します。
package parser

import (
	"strconv"
	"strings"
)

// SplitPages は応答テキストをページマーカーの直前で分割し、
// ページ番号からブロック全文へのマップを構築します。
//
// 分割は先読み方式で、マーカー自身は後続のブロック側に残ります。
// 空ブロックと、先頭にマーカーを持たないブロック（モデルが付け足した
// 前置きや後書き）はノイズとして捨てます。同じページ番号が複数回
// 現れた場合は後勝ちです（正しい応答ではページ番号は重複しないため）。
func SplitPages(text string) map[int]string {
	pages := make(map[int]string)

	for _, block := range splitAtMarkers(text) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		m := leadingMarkerRegex.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		pages[num] = block
	}

	return pages
}

// splitAtMarkers は各マーカーの開始位置を境界としてテキストを切り出します。
// 最初のマーカーより前のテキストも1ブロックとして返します（呼び出し側で
// マーカー無しブロックとして破棄されます）。
func splitAtMarkers(text string) []string {
	locs := pageMarkerRegex.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	var blocks []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			blocks = append(blocks, text[prev:loc[0]])
		}
		prev = loc[0]
	}
	blocks = append(blocks, text[prev:])
	return blocks
}
