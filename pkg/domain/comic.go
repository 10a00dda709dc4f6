package domain

import (
	"image"
	"sort"

	imagedom "github.com/shouni/gemini-image-kit/ports"
)

// ScriptRequest はコミック1作品分の生成依頼です。リクエストごとに一度だけ
// 構築され、以降は読み取り専用として各ステージを流れます。
type ScriptRequest struct {
	Topic     string  `json:"topic"`
	Context   string  `json:"context"`
	PageCount int     `json:"page_count"`
	AgeTier   AgeTier `json:"age_tier"`

	// RunID は省略可能なリクエスト識別子。指定すると生成ファイル名に
	// 挿入され、同一トピックの並行リクエスト間でのファイル名衝突を防ぎます。
	RunID string `json:"run_id,omitempty"`
}

// PageScript はページ番号（1..PageCount）から台本テキストブロックへのマップです。
// モデルがページを省略した場合はキーが欠落します。欠落は常に許容され、
// 穴埋めのための合成ページは決して作られません。
type PageScript map[int]string

// Indices は存在するページ番号を昇順で返します。
func (ps PageScript) Indices() []int {
	idx := make([]int, 0, len(ps))
	for i := range ps {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// PageImage は生成に成功した1ページ分の画像ハンドルです。
// デコード済みラスタと、永続化されたファイルパスの両方を保持します。
type PageImage struct {
	PageIndex int
	Image     image.Image
	Response  *imagedom.ImageResponse // 生成モデルが返した生バイト列とMIMEタイプ
	Path      string
}

// PageOutcome はページ単位の結果値です。失敗を例外ではなくデータとして
// セッションに記録し、最終判断はオーケストレーター側に委ねます。
type PageOutcome struct {
	PageIndex int
	Skipped   bool  // 台本にページが存在しなかった
	Err       error // 生成・デコード失敗の理由（成功時は nil）
}

// Rendered はこのページが画像として成立したかどうかを返します。
func (o PageOutcome) Rendered() bool {
	return !o.Skipped && o.Err == nil
}

// GenerationSession は1リクエスト分の生成済みページを生成順に保持します。
// 追記専用で、失敗・スキップされたページは単に欠落します（プレースホルダ禁止）。
type GenerationSession struct {
	images []PageImage
	last   *imagedom.ImageResponse
}

// Append は成功ページを追記し、次ページの連続性グラウンディングに使う
// 「直近の成功画像」参照を前進させます。
func (s *GenerationSession) Append(img PageImage) {
	s.images = append(s.images, img)
	s.last = img.Response
}

// LastImage は直近に成功した画像を返します。まだ1枚も成功していなければ nil です。
func (s *GenerationSession) LastImage() *imagedom.ImageResponse {
	return s.last
}

// Images は生成順のページ画像リストを返します。
func (s *GenerationSession) Images() []PageImage {
	return s.images
}

// Empty は1ページも成功していない状態かどうかを返します。
func (s *GenerationSession) Empty() bool {
	return len(s.images) == 0
}

// ComicArtifact は最終的に合成された1枚のコミック画像です。
// GenerationSession が空でない場合に限って生成されます。
type ComicArtifact struct {
	Path        string
	Width       int
	Height      int
	PageIndices []int // 合成に含まれたページ番号（昇順）
}
