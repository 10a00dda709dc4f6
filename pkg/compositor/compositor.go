// Package compositor は、生成順に並んだページ画像を縦1列に連結して
// 1枚のコミック画像へ決定的に合成します。
package compositor

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	_ "image/jpeg"
)

// Result は合成結果のパスとキャンバス寸法です。
type Result struct {
	Path   string
	Width  int
	Height int
}

// VerticalCompositor はページ画像を上から下へ貼り合わせる純粋な変換器です。
// 同じ入力列に対しては常に同じピクセルを出力します。
type VerticalCompositor struct{}

// NewVerticalCompositor は VerticalCompositor を返します。
func NewVerticalCompositor() *VerticalCompositor {
	return &VerticalCompositor{}
}

// Compose は orderedPaths の画像を入力順に縦連結し、outPath へPNGとして保存します。
//
// キャンバスは「幅 = 全画像の最大幅、高さ = 全画像の高さの合計」で、
// 拡大縮小もトリミングも行いません。狭い画像は左寄せになり、余白は
// ゼロ値キャンバス由来の透明ピクセルのままです。入力が空の場合は
// (nil, nil) を返します（異常ではなく「合成するものが無い」だけなのだ）。
// 読めない中間ファイルはハードエラーとして伝播します。
func (c *VerticalCompositor) Compose(ctx context.Context, orderedPaths []string, outPath string) (*Result, error) {
	if len(orderedPaths) == 0 {
		slog.WarnContext(ctx, "合成対象の画像がないため何も出力しないのだ")
		return nil, nil
	}

	images := make([]*image.RGBA, 0, len(orderedPaths))
	maxWidth, totalHeight := 0, 0
	for _, path := range orderedPaths {
		img, err := loadRGBA(path)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		if b.Dx() > maxWidth {
			maxWidth = b.Dx()
		}
		totalHeight += b.Dy()
		images = append(images, img)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, maxWidth, totalHeight))
	yOffset := 0
	for _, img := range images {
		b := img.Bounds()
		dst := image.Rect(0, yOffset, b.Dx(), yOffset+b.Dy())
		draw.Draw(canvas, dst, img, b.Min, draw.Src)
		yOffset += b.Dy()
	}

	if err := savePNG(canvas, outPath); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "コミック画像の合成が完了したのだ",
		"path", outPath, "pages", len(images), "width", maxWidth, "height", totalHeight)

	return &Result{Path: outPath, Width: maxWidth, Height: totalHeight}, nil
}

// loadRGBA はファイルを開いてデコードし、透過を扱える共通モードへ正規化します。
func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("中間画像を開けませんでした (%s): %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("中間画像のデコードに失敗しました (%s): %w", path, err)
	}

	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return rgba, nil
}

// savePNG はキャンバスを outPath に書き出します。既存ファイルは上書きします。
func savePNG(img image.Image, outPath string) error {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("最終画像ファイルの作成に失敗しました (%s): %w", outPath, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("PNGエンコードに失敗しました: %w", err)
	}
	return nil
}
