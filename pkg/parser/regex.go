package parser

import "regexp"

var (
	// pageMarkerRegex は "[Page 3]" 形式のページマーカーを特定します。
	pageMarkerRegex = regexp.MustCompile(`\[Page\s+(\d+)\]`)

	// leadingMarkerRegex はブロック先頭のページマーカーからページ番号をキャプチャします。
	leadingMarkerRegex = regexp.MustCompile(`^\[Page\s+(\d+)\]`)
)
