package generator

import (
	"context"

	imagedom "github.com/shouni/gemini-image-kit/ports"
)

// PageImageSession は、画像のみを出力するステートフルな生成セッションの契約です。
// 外部サービスが会話コンテキストを保持するかどうかに依存しないよう、
// 連続性の根拠となる直前の成功画像（grounding）は毎回明示的に渡します。
type PageImageSession interface {
	// RenderPage は1ページ分の台本テキストと、存在すれば直前の成功画像を
	// 送信し、応答から最初のインライン画像データを返します。
	RenderPage(ctx context.Context, script string, grounding *imagedom.ImageResponse) (*imagedom.ImageResponse, error)
}

// SessionFactory は、ページ列全体を貫く1つのセッションを開く契約です。
// セッションはリクエストごとに1つだけ作られます（ページごとではありません）。
type SessionFactory interface {
	NewSession(ctx context.Context) (PageImageSession, error)
}
