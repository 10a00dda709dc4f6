package cmd

import (
	"fmt"
	"os"

	"github.com/shouni/go-educomic-kit/internal/config"

	"github.com/spf13/cobra"
)

// opts は各サブコマンドが共有する実行時オプションなのだ。
var opts config.GenerateOptions

var rootCmd = &cobra.Command{
	Use:   "educomic",
	Short: "教育トピックを年齢層に合わせたコミックにするツールなのだ。",
	Long: `educomic は、トピック（と任意の補助コンテキスト）から教育コミックを生成するのだ。
台本生成 → ページ画像の逐次生成 → 縦1枚への合成、という流れで動くのだよ。`,
	PersistentPreRunE: preRunAppE,
	SilenceUsage:      true,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- リクエスト内容 ---
	rootCmd.PersistentFlags().StringVarP(&opts.Topic, "topic", "t", "", "コミックのトピックなのだ（必須）。")
	rootCmd.PersistentFlags().StringVarP(&opts.Source, "source", "s", "", "教育コンテキストのソース（生テキスト / @file / URL）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.AgeTier, "age", "a", string(config.DefaultAgeTier), "対象年齢層（toddler / kid / teen）なのだ。")
	rootCmd.PersistentFlags().IntVarP(&opts.PageCount, "pages", "p", config.DefaultPageCount, "生成するページ数なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.RunID, "run-id", "", "出力ファイル名の衝突を避けたいときの識別子なのだ。")

	// --- 挙動設定 ---
	rootCmd.PersistentFlags().BoolVar(&opts.Summarize, "summarize", false, "ソースを年齢層向けに要約してからコンテキストに使うのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.TruncatePolicy, "truncate", string(config.DefaultTruncatePolicy), "コンテキストの切り詰め方針（hard / word）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "画像の出力ディレクトリなのだ（未指定なら環境設定に従う）。")

	// --- AIモデル・レート設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", "", "台本生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "画像生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.RateInterval, "rate-interval", config.DefaultRateInterval, "画像生成リクエストの最小間隔なのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(generateCmd, scriptCmd, contextCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
