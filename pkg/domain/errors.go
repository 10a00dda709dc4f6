package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyScript はテキストモデルの応答から1ページも台本を認識できなかったことを示します。
	ErrEmptyScript = errors.New("台本の応答からページを1つも認識できませんでした")

	// ErrNoPagesProduced は全ページの生成に失敗し、合成できる画像が1枚もないことを示します。
	// これだけがリクエスト全体の失敗であり、ページ欠けのあるコミックは正常な結果です。
	ErrNoPagesProduced = errors.New("no pages produced")

	// ErrNoImagePart は画像生成の応答にインライン画像データが含まれていなかったことを示します。
	ErrNoImagePart = errors.New("応答にインライン画像データが含まれていません")
)

// PlanningError は台本生成ステージの失敗です。
// Planning の失敗はパイプライン全体を即座に中断させます（部分的な台本は使いません）。
type PlanningError struct {
	Err error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("台本の生成に失敗しました: %v", e.Err)
}

func (e *PlanningError) Unwrap() error {
	return e.Err
}
