// Package generator は台本の各ページを順番に画像化し、
// ページ間の視覚的連続性を直前の成功画像で担保します。
package generator

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/shouni/go-educomic-kit/pkg/asset"
	"github.com/shouni/go-educomic-kit/pkg/domain"
	"golang.org/x/time/rate"
)

// ContinuityGenerator は1リクエスト分のページ画像列を厳密な順序で生成します。
//
// 並列化は行いません。ページ i の生成は「直近に実際に描画されたページ」を
// 入力に含むため、順序は性能上の選択ではなく因果的な制約です。
type ContinuityGenerator struct {
	factory   SessionFactory
	limiter   *rate.Limiter
	outputDir string
}

// NewContinuityGenerator は、セッションファクトリとレート間隔、
// 中間画像の出力先ディレクトリを受け取って初期化します。
func NewContinuityGenerator(factory SessionFactory, rateInterval time.Duration, outputDir string) *ContinuityGenerator {
	return &ContinuityGenerator{
		factory:   factory,
		limiter:   rate.NewLimiter(rate.Every(rateInterval), 1),
		outputDir: outputDir,
	}
}

// Generate は script のページを 1..PageCount の順に画像化します。
//
// ページ単位の失敗（転送・デコード・画像パート欠落）はその場で吸収され、
// outcome として記録した上で次のページへ進みます。失敗したページは
// 「直近の成功画像」参照を前進させないため、次の grounding は常に
// 実際に描画された最新ページを指します。エラーを返すのは、
// 全ページが失敗して合成できる画像が1枚も無い場合だけです。
func (g *ContinuityGenerator) Generate(ctx context.Context, req domain.ScriptRequest, script domain.PageScript) ([]domain.PageImage, []domain.PageOutcome, error) {
	session, err := g.factory.NewSession(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("画像生成セッションの開始に失敗しました: %w", err)
	}

	var state domain.GenerationSession
	outcomes := make([]domain.PageOutcome, 0, req.PageCount)

	for i := 1; i <= req.PageCount; i++ {
		pageText, ok := script[i]
		if !ok {
			// 台本に無いページは完全にスキップするのだ。プレースホルダは作らない。
			slog.InfoContext(ctx, "台本に存在しないページをスキップするのだ", "page", i)
			outcomes = append(outcomes, domain.PageOutcome{PageIndex: i, Skipped: true})
			continue
		}

		if err := g.limiter.Wait(ctx); err != nil {
			// レート待機の失敗はキャンセル起因なので、リクエスト全体を打ち切る
			return state.Images(), outcomes, fmt.Errorf("リミッター待機中にエラーが発生しました: %w", err)
		}

		slog.InfoContext(ctx, "ページ画像を生成するのだ",
			"page", i, "total", req.PageCount, "grounded", state.LastImage() != nil)

		pageImg, renderErr := g.renderPage(ctx, session, req, i, pageText, &state)
		if renderErr != nil {
			slog.WarnContext(ctx, "ページの生成に失敗したので続行するのだ", "page", i, "error", renderErr)
			outcomes = append(outcomes, domain.PageOutcome{PageIndex: i, Err: renderErr})
			continue
		}

		state.Append(*pageImg)
		outcomes = append(outcomes, domain.PageOutcome{PageIndex: i})
	}

	if state.Empty() {
		return nil, outcomes, fmt.Errorf("全 %d ページの生成に失敗しました: %w", req.PageCount, domain.ErrNoPagesProduced)
	}

	return state.Images(), outcomes, nil
}

// renderPage は1ページ分の送信・デコード・永続化を行います。
func (g *ContinuityGenerator) renderPage(ctx context.Context, session PageImageSession, req domain.ScriptRequest, page int, pageText string, state *domain.GenerationSession) (*domain.PageImage, error) {
	resp, err := session.RenderPage(ctx, pageText, state.LastImage())
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, domain.ErrNoImagePart
	}

	decoded, _, err := image.Decode(bytes.NewReader(resp.Data))
	if err != nil {
		return nil, fmt.Errorf("画像データのデコードに失敗しました: %w", err)
	}

	path := asset.PageImagePath(g.outputDir, req, page)
	if err := g.persist(path, resp.Data); err != nil {
		return nil, err
	}

	return &domain.PageImage{
		PageIndex: page,
		Image:     decoded,
		Response:  resp,
		Path:      path,
	}, nil
}

// persist は生成されたバイト列をそのままページ画像ファイルとして書き出します。
func (g *ContinuityGenerator) persist(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ページ画像の書き込みに失敗しました (%s): %w", path, err)
	}
	return nil
}
