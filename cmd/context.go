package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-educomic-kit/pkg/domain"
	"github.com/shouni/go-educomic-kit/pkg/workflow"

	"github.com/spf13/cobra"
)

// contextCmd は、ソースから教育コンテキストを解決（必要なら要約）して表示するのだ。
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "ソースから教育コンテキストを解決して表示するのだ。",
	Long: `--source の指定（生テキスト / @file / URL）を教育コンテキストへ解決するのだ。
--summarize を付けると、年齢層に合わせた要約まで行うのだよ。
generate に渡る前のコンテキストを確認したいときに使うのだ。`,
	RunE: contextCommand,
}

func contextCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	tier, err := domain.ParseAgeTier(opts.AgeTier)
	if err != nil {
		return err
	}

	// コンテキストの確認にトピックは不要なので、buildRunInputs は通さないのだ
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	m, err := workflow.New(ctx, cfg)
	if err != nil {
		return err
	}

	resolved, err := resolveContext(ctx, m, tier)
	if err != nil {
		return fmt.Errorf("教育コンテキストの解決に失敗したのだ: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), resolved)

	slog.Info("コンテキストの解決が完了したのだ！", "source", opts.Source, "summarized", opts.Summarize)
	return nil
}
